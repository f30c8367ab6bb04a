package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mahendrapn/GajiHub/app/models"
	"github.com/mahendrapn/GajiHub/internal/pkg/entitlements"
	"github.com/mahendrapn/GajiHub/internal/pkg/env"
	"github.com/mahendrapn/GajiHub/internal/pkg/payment"
	"gorm.io/gorm"
)

// Clock supplies "now" to the engine; injected so day-boundary and
// month-rollover arithmetic is testable.
type Clock func() time.Time

// Config holds the engine's business constants.
type Config struct {
	// ServerKey authenticates gateway notifications.
	ServerKey string
	// RenewWindowDays is the tail of the paid term in which downgrades are
	// allowed and upgrades become renewals. Zero means the default of 5.
	RenewWindowDays int
}

// ConfigFromEnv reads the billing configuration from the environment.
func ConfigFromEnv() Config {
	window := DefaultRenewWindowDays
	if raw := strings.TrimSpace(env.GetEnv("BILLING_RENEW_WINDOW_DAYS", "")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			window = v
		}
	}
	return Config{
		ServerKey:       strings.TrimSpace(env.GetEnv("PAYMENT_SERVER_KEY", "")),
		RenewWindowDays: window,
	}
}

// Service is the subscription billing and entitlement reconciliation engine.
type Service struct {
	repo     Repository
	sessions payment.SessionCreator
	cfg      Config
	clock    Clock
}

// NewService creates the engine from an injected repository and payment
// session adapter. A nil clock falls back to time.Now.
func NewService(repo Repository, sessions payment.SessionCreator, cfg Config, clock Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	if cfg.RenewWindowDays <= 0 {
		cfg.RenewWindowDays = DefaultRenewWindowDays
	}
	return &Service{repo: repo, sessions: sessions, cfg: cfg, clock: clock}
}

// NewServiceFromDB creates the engine from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, sessions payment.SessionCreator, cfg Config) *Service {
	return NewService(NewRepository(db), sessions, cfg, nil)
}

// CreateTransaction handles a tenant's plan-change request: classify the
// transition, price it, and either apply a free downgrade immediately or open
// a hosted payment session and persist a pending ledger row.
func (s *Service) CreateTransaction(ctx context.Context, companyID uint, in CreateTransactionInput) (*CheckoutResult, error) {
	company, err := s.repo.GetCompanyByID(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	now := s.clock()
	currentLevel := entitlements.EffectiveLevel(company, now)

	change, err := Classify(currentLevel, in.TargetLevel, company.PlanExpiresAt, now, s.cfg.RenewWindowDays)
	if err != nil {
		return nil, err
	}

	months := in.DurationMonths
	if months < 1 {
		months = 1
	}

	if change == ChangeDowngrade {
		return s.applyDowngrade(company, currentLevel, in.TargetLevel, now)
	}

	amount := ChargeAmount(change, currentLevel, in.TargetLevel, months, company.PlanExpiresAt, now)
	orderID := synthesizeOrderID(change, currentLevel, in.TargetLevel, now)

	session, err := s.sessions.CreateSession(ctx, payment.SessionRequest{
		OrderID:       orderID,
		GrossAmount:   amount,
		CustomerName:  company.Name,
		CustomerEmail: company.Email,
		CustomerPhone: company.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment session for %s: %w", orderID, err)
	}

	tx := &models.SubscriptionTransaction{
		OrderID:        orderID,
		CompanyID:      company.ID,
		GrossAmount:    amount,
		ChangeType:     string(change),
		FromLevel:      currentLevel,
		ToLevel:        in.TargetLevel,
		DurationMonths: months,
		GatewayStatus:  models.GatewayStatusPending,
		SnapToken:      session.Token,
		RedirectURL:    session.RedirectURL,
	}
	if err := s.repo.CreateTransaction(tx); err != nil {
		return nil, err
	}

	return &CheckoutResult{
		ChangeType:  change,
		OrderID:     orderID,
		GrossAmount: amount,
		Token:       session.Token,
		RedirectURL: session.RedirectURL,
	}, nil
}

// applyDowngrade lowers the stored level in place. No charge, no gateway
// round-trip: the ledger row is written already paid so the reconciler never
// sees it.
func (s *Service) applyDowngrade(company *models.Company, fromLevel, toLevel int, now time.Time) (*CheckoutResult, error) {
	orderID := synthesizeOrderID(ChangeDowngrade, fromLevel, toLevel, now)

	err := s.repo.WithinTransaction(func(r Repository) error {
		locked, err := r.GetCompanyForUpdate(company.ID)
		if err != nil {
			return err
		}
		locked.PlanLevel = toLevel
		if err := r.SaveCompany(locked); err != nil {
			return err
		}

		paidAt := now
		return r.CreateTransaction(&models.SubscriptionTransaction{
			OrderID:        orderID,
			CompanyID:      company.ID,
			GrossAmount:    0,
			ChangeType:     string(ChangeDowngrade),
			FromLevel:      fromLevel,
			ToLevel:        toLevel,
			DurationMonths: 0,
			GatewayStatus:  models.GatewayStatusSettlement,
			PaidAt:         &paidAt,
			PeriodStart:    &paidAt,
			PeriodEnd:      locked.PlanExpiresAt,
		})
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		ChangeType: ChangeDowngrade,
		Downgrade:  true,
		Message: fmt.Sprintf("plan changed to %s, effective immediately until %s",
			entitlements.PlanName(toLevel), formatExpiry(company.PlanExpiresAt)),
	}, nil
}

// ListTransactions returns the company's ledger rows, newest first.
func (s *Service) ListTransactions(ctx context.Context, companyID uint, limit int) ([]models.SubscriptionTransaction, error) {
	_ = ctx
	return s.repo.ListTransactionsByCompany(companyID, limit)
}

// SweepLapsedEntitlements mirrors elapsed expirations into the stored level.
// Purely cosmetic for correctness (the read path always re-derives), but it
// keeps raw rows and admin reports honest.
func (s *Service) SweepLapsedEntitlements() (int64, error) {
	return s.repo.ExpireLapsedCompanies(s.clock())
}

// synthesizeOrderID builds the kind-prefixed order id that doubles as the
// idempotency key and the gateway correlation id.
func synthesizeOrderID(change ChangeType, fromLevel, toLevel int, now time.Time) string {
	ts := now.UnixMilli()
	switch change {
	case ChangeNew:
		return fmt.Sprintf("new%d-%d", toLevel, ts)
	case ChangeExtend:
		return fmt.Sprintf("extend%d-%d", toLevel, ts)
	case ChangeUpgrade:
		return fmt.Sprintf("upgrade%dto%d-%d", fromLevel, toLevel, ts)
	case ChangeUpgradeRenew:
		return fmt.Sprintf("upgraderenew%dto%d-%d", fromLevel, toLevel, ts)
	case ChangeDowngrade:
		return fmt.Sprintf("downgrade%dto%d-%d", fromLevel, toLevel, ts)
	default:
		return fmt.Sprintf("change%dto%d-%d", fromLevel, toLevel, ts)
	}
}

func formatExpiry(t *time.Time) string {
	if t == nil {
		return "now"
	}
	return t.Format(time.RFC3339)
}
