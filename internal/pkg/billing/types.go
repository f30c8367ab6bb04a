package billing

import "errors"

// ChangeType is the closed classification of a requested plan change. Both
// the classifier and the reconciler switch over it exhaustively; anything
// else on a ledger row is a data error, not a silently dropped case.
type ChangeType string

const (
	ChangeNew          ChangeType = "NEW"
	ChangeExtend       ChangeType = "EXTEND"
	ChangeUpgrade      ChangeType = "UPGRADE"
	ChangeUpgradeRenew ChangeType = "UPGRADE_RENEW"
	ChangeDowngrade    ChangeType = "DOWNGRADE"
)

var (
	// ErrCompanyNotFound is returned when a transaction is requested for an
	// unknown tenant.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrNoSubscriptionToDowngrade rejects a downgrade for a tenant that has
	// never held a paid term.
	ErrNoSubscriptionToDowngrade = errors.New("no active subscription to downgrade")
	// ErrDowngradeTooEarly rejects a downgrade while more than the renew
	// window remains; there is no refund mechanism, so downgrades are
	// restricted to the tail of the paid term.
	ErrDowngradeTooEarly = errors.New("downgrade only allowed at the end of the paid term")
	// ErrSignatureMismatch rejects an inauthentic payment notification before
	// any ledger state is touched.
	ErrSignatureMismatch = errors.New("notification signature mismatch")
	// ErrUnknownOrder is returned for notifications referencing no ledger row.
	ErrUnknownOrder = errors.New("unknown order id")
)

// CreateTransactionInput is the tenant-facing request for a plan change.
type CreateTransactionInput struct {
	TargetLevel    int `json:"target_level" validate:"min=0,max=2"`
	DurationMonths int `json:"duration_months" validate:"omitempty,min=1,max=12"`
}

// CheckoutResult is what a create-transaction call hands back: either a
// confirmation of an immediately applied downgrade, or the hosted payment
// session for a charged transition.
type CheckoutResult struct {
	ChangeType  ChangeType `json:"change_type"`
	Downgrade   bool       `json:"downgrade"`
	Message     string     `json:"message,omitempty"`
	OrderID     string     `json:"order_id,omitempty"`
	GrossAmount int64      `json:"gross_amount,omitempty"`
	Token       string     `json:"token,omitempty"`
	RedirectURL string     `json:"redirect_url,omitempty"`
}

// GatewayNotification is the inbound webhook payload. GrossAmount stays a
// string because the signature covers the gateway's exact decimal rendering.
type GatewayNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	TransactionStatus string `json:"transaction_status"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type,omitempty"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	TransactionID     string `json:"transaction_id,omitempty"`
}

// NotificationResult reports what a webhook delivery did. Applied is true
// only for the first settlement of a transaction; duplicates and non-final
// statuses absorb with Applied false.
type NotificationResult struct {
	Applied    bool       `json:"applied"`
	Duplicate  bool       `json:"duplicate"`
	Status     string     `json:"status"`
	ChangeType ChangeType `json:"change_type"`
	CompanyID  uint       `json:"company_id"`
}
