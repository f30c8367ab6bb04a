package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mahendrapn/GajiHub/internal/pkg/billing"
	"github.com/mahendrapn/GajiHub/internal/pkg/cache"
	"github.com/mahendrapn/GajiHub/internal/pkg/database"
	"github.com/mahendrapn/GajiHub/internal/pkg/env"
	"github.com/mahendrapn/GajiHub/internal/pkg/payment"
	"github.com/mahendrapn/GajiHub/internal/pkg/router"
	"github.com/mahendrapn/GajiHub/internal/pkg/scheduler"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName: "GajiHub",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// periodic maintenance jobs
	svc := billing.NewServiceFromDB(database.GetDB(), payment.NewSnapClientFromEnv(), billing.ConfigFromEnv())
	scheduler.Start(svc)

	// ROUTER
	router.InstallRouter(app)

	return app
}
