package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mahendrapn/GajiHub/app/models"
	"gorm.io/gorm"
)

// HandleNotification reconciles an inbound payment notification against the
// ledger and, exactly once per transaction, applies the entitlement change.
//
// Order of operations is load-bearing:
//  1. authenticity check, before any state is read or written;
//  2. ledger lookup by order id (row-locked);
//  3. gateway status mirror, regardless of outcome;
//  4. non-final and failed statuses absorb benignly;
//  5. paid_at-null idempotency guard;
//  6. entitlement apply keyed on the stored change type.
//
// Steps 2-6 run inside a single DB transaction so a crash cannot leave a
// half-applied state, and a duplicate delivery can never double-extend a term.
func (s *Service) HandleNotification(ctx context.Context, n GatewayNotification) (*NotificationResult, error) {
	_ = ctx
	if !VerifyNotificationSignature(n, s.cfg.ServerKey) {
		return nil, ErrSignatureMismatch
	}

	var res NotificationResult
	err := s.repo.WithinTransaction(func(r Repository) error {
		tx, err := r.GetTransactionByOrderIDForUpdate(n.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownOrder
			}
			return err
		}

		// Mirror the gateway's view whatever happens below.
		tx.GatewayStatus = n.TransactionStatus
		if n.PaymentType != "" {
			tx.PaymentMethod = n.PaymentType
		}
		if n.TransactionID != "" {
			tx.GatewayTransactionID = n.TransactionID
		}

		res = NotificationResult{
			Status:     n.TransactionStatus,
			ChangeType: ChangeType(tx.ChangeType),
			CompanyID:  tx.CompanyID,
		}

		if !isPaidNotification(n) {
			return r.SaveTransaction(tx)
		}

		if tx.PaidAt != nil {
			// Already applied; a retried or duplicated delivery must never
			// extend the term a second time.
			res.Duplicate = true
			return r.SaveTransaction(tx)
		}

		now := s.clock()
		tx.PaidAt = &now

		company, err := r.GetCompanyForUpdate(tx.CompanyID)
		if err != nil {
			return err
		}

		// Stack the new term on top of whatever is still active, re-read at
		// apply time so concurrent orders for the same tenant compose.
		baseStart := now
		if company.PlanExpiresAt != nil && company.PlanExpiresAt.After(now) {
			baseStart = *company.PlanExpiresAt
		}

		periodStart := baseStart
		var periodEnd time.Time

		switch ChangeType(tx.ChangeType) {
		case ChangeUpgrade:
			company.PlanLevel = tx.ToLevel
			if company.PlanExpiresAt != nil && company.PlanExpiresAt.After(now) {
				// The tenant paid only the incremental value; the existing
				// expiry stays put.
				periodStart = now
				periodEnd = *company.PlanExpiresAt
			} else {
				// Term lapsed between creation and confirmation; fall back to
				// a fresh term.
				periodStart = now
				periodEnd = AddMonths(now, tx.DurationMonths)
				expiry := periodEnd
				company.PlanExpiresAt = &expiry
			}

		case ChangeUpgradeRenew:
			company.PlanLevel = tx.ToLevel
			periodEnd = AddMonths(baseStart, 1)
			expiry := periodEnd
			company.PlanExpiresAt = &expiry

		case ChangeNew, ChangeExtend:
			company.PlanLevel = tx.ToLevel
			periodEnd = AddMonths(baseStart, tx.DurationMonths)
			expiry := periodEnd
			company.PlanExpiresAt = &expiry

		case ChangeDowngrade:
			// Downgrades settle at creation time and never reach the gateway.
			return fmt.Errorf("downgrade order %s cannot arrive via webhook", tx.OrderID)

		default:
			return fmt.Errorf("unknown change type %q on order %s", tx.ChangeType, tx.OrderID)
		}

		tx.PeriodStart = &periodStart
		tx.PeriodEnd = &periodEnd

		if err := r.SaveCompany(company); err != nil {
			return err
		}
		if err := r.SaveTransaction(tx); err != nil {
			return err
		}

		res.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// isPaidNotification reports whether the gateway considers the payment
// final: settlement, or a card capture that cleared fraud review.
func isPaidNotification(n GatewayNotification) bool {
	switch n.TransactionStatus {
	case models.GatewayStatusSettlement:
		return true
	case models.GatewayStatusCapture:
		return n.FraudStatus == "accept"
	default:
		return false
	}
}
