package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/mahendrapn/GajiHub/app/models"
	"github.com/mahendrapn/GajiHub/app/repository"
	"github.com/mahendrapn/GajiHub/internal/pkg/billing"
	"github.com/mahendrapn/GajiHub/internal/pkg/companycontext"
	"github.com/mahendrapn/GajiHub/internal/pkg/database"
	"github.com/mahendrapn/GajiHub/internal/pkg/entitlements"
	"github.com/mahendrapn/GajiHub/internal/pkg/payment"
)

var validate = validator.New()

func billingService() *billing.Service {
	return billing.NewServiceFromDB(database.GetDB(), payment.NewSnapClientFromEnv(), billing.ConfigFromEnv())
}

// HandleGetPlans returns the plan catalog with monthly prices and feature
// gates. Public: tenants pick a tier before authenticating.
func HandleGetPlans(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"plans": billing.Catalog()})
}

// HandleGetSubscription returns the authenticated tenant's derived
// entitlement. Served from cache when possible; this is the same read path
// the attendance and payroll gates use.
func HandleGetSubscription(c *fiber.Ctx) error {
	companyCtx := companycontext.GetCompanyContext(c)
	if !companyCtx.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	status, err := entitlements.CachedStatus(companyCtx.CompanyID, time.Now(), func() (*models.Company, error) {
		return repository.GetGlobalFactory().GetCompanyRepository().GetByID(companyCtx.CompanyID)
	})
	if err != nil {
		log.Printf("subscription status lookup failed for company %d: %v", companyCtx.CompanyID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"subscription": status,
		"features":     entitlements.FeaturesFor(status.Level),
	})
}

// HandleListSubscriptionTransactions returns the tenant's billing ledger,
// newest first.
func HandleListSubscriptionTransactions(c *fiber.Ctx) error {
	companyCtx := companycontext.GetCompanyContext(c)
	if !companyCtx.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	limit := c.QueryInt("limit", 50)
	txs, err := billingService().ListTransactions(requestContext(c), companyCtx.CompanyID, limit)
	if err != nil {
		log.Printf("transaction list failed for company %d: %v", companyCtx.CompanyID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"transactions": txs})
}

// HandleCreateSubscriptionTransaction handles a tenant's plan-change request.
// Downgrades apply immediately; charged transitions return a hosted payment
// session the tenant completes with the gateway.
func HandleCreateSubscriptionTransaction(c *fiber.Ctx) error {
	companyCtx := companycontext.GetCompanyContext(c)
	if !companyCtx.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var in billing.CreateTransactionInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	result, err := billingService().CreateTransaction(requestContext(c), companyCtx.CompanyID, in)
	if err != nil {
		return respondBillingError(c, err)
	}

	if result.Downgrade {
		entitlements.Invalidate(companyCtx.CompanyID)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"downgrade": true,
			"message":   result.Message,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_id":     result.OrderID,
		"change_type":  result.ChangeType,
		"gross_amount": result.GrossAmount,
		"token":        result.Token,
		"redirect_url": result.RedirectURL,
	})
}

// HandlePaymentNotification is the gateway-facing webhook. The signature is
// the authentication; deliveries are at-least-once and unordered, so every
// absorbed outcome (pending, failed, duplicate) answers 200 to stop retries.
func HandlePaymentNotification(c *fiber.Ctx) error {
	var n billing.GatewayNotification
	if err := c.BodyParser(&n); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}

	result, err := billingService().HandleNotification(requestContext(c), n)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrSignatureMismatch):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
		case errors.Is(err, billing.ErrUnknownOrder):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown_order"})
		default:
			log.Printf("payment notification failed for order %s: %v", n.OrderID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "notification_failed"})
		}
	}

	if result.Applied {
		entitlements.Invalidate(result.CompanyID)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":        true,
		"applied":   result.Applied,
		"duplicate": result.Duplicate,
		"status":    result.Status,
	})
}

func respondBillingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, billing.ErrCompanyNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, billing.ErrNoSubscriptionToDowngrade),
		errors.Is(err, billing.ErrDowngradeTooEarly):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	default:
		log.Printf("create transaction failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
}

func requestContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
