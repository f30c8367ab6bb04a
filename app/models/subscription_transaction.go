package models

import "time"

// Gateway transaction statuses mirrored from payment notifications.
const (
	GatewayStatusPending    = "pending"
	GatewayStatusSettlement = "settlement"
	GatewayStatusCapture    = "capture"
	GatewayStatusDeny       = "deny"
	GatewayStatusExpire     = "expire"
	GatewayStatusCancel     = "cancel"
)

// SubscriptionTransaction is one billing attempt. The row is immutable after
// creation except for the gateway mirror fields and the paid/period columns.
// PaidAt transitions nil -> non-nil exactly once; it is the idempotency guard
// against duplicate webhook delivery.
type SubscriptionTransaction struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	OrderID              string     `gorm:"type:varchar(64);uniqueIndex" json:"order_id"`
	CompanyID            uint       `gorm:"not null;index" json:"company_id"`
	GrossAmount          int64      `gorm:"not null;default:0" json:"gross_amount"`
	ChangeType           string     `gorm:"type:varchar(20);not null" json:"change_type"`
	FromLevel            int        `gorm:"not null;default:0" json:"from_level"`
	ToLevel              int        `gorm:"not null;default:0" json:"to_level"`
	DurationMonths       int        `gorm:"not null;default:1" json:"duration_months"`
	GatewayStatus        string     `gorm:"type:varchar(32);not null;default:'pending';index" json:"gateway_status"`
	PaymentMethod        string     `gorm:"type:varchar(50);default:''" json:"payment_method"`
	GatewayTransactionID string     `gorm:"type:varchar(100);default:''" json:"gateway_transaction_id"`
	SnapToken            string     `gorm:"type:varchar(100);default:''" json:"-"`
	RedirectURL          string     `gorm:"type:varchar(255);default:''" json:"redirect_url"`
	PaidAt               *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	PeriodStart          *time.Time `gorm:"type:timestamp;default:null" json:"period_start,omitempty"`
	PeriodEnd            *time.Time `gorm:"type:timestamp;default:null" json:"period_end,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPaid reports whether the entitlement change for this transaction has been
// applied.
func (t *SubscriptionTransaction) IsPaid() bool {
	return t.PaidAt != nil
}
