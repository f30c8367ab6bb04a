package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/mahendrapn/GajiHub/internal/pkg/billing"
)

// Start wires the periodic maintenance jobs and starts the cron runner.
// The expiry sweep only mirrors elapsed expirations into the stored plan
// level; the entitlement read path never depends on it having run.
func Start(svc *billing.Service) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("@hourly", func() {
		n, err := svc.SweepLapsedEntitlements()
		if err != nil {
			log.Printf("entitlement expiry sweep failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("entitlement expiry sweep: %d companies reset to free", n)
		}
	}); err != nil {
		log.Printf("failed to schedule entitlement expiry sweep: %v", err)
	}

	c.Start()
	return c
}
