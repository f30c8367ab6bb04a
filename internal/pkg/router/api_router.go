package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/mahendrapn/GajiHub/app/controllers"
	"github.com/mahendrapn/GajiHub/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")
	v1.Get("/ping", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
	})

	// Public catalog; tenants pick a tier before authenticating.
	v1.Get("/plans", controllers.HandleGetPlans)

	// Gateway-facing webhook. No API key: the payload signature is the
	// authentication.
	v1.Post("/payment/notifications", controllers.HandlePaymentNotification)

	// Tenant-scoped subscription routes.
	subscription := v1.Group("/subscription", middleware.APIKeyAuthMiddleware())
	subscription.Get("/", controllers.HandleGetSubscription)
	subscription.Get("/transactions", controllers.HandleListSubscriptionTransactions)
	subscription.Post("/transactions", controllers.HandleCreateSubscriptionTransaction)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
