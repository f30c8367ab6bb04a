package billing

import "github.com/mahendrapn/GajiHub/internal/pkg/entitlements"

// Monthly plan prices in IDR (smallest currency unit). This is the only
// place unit prices live.
const (
	basicMonthlyPrice int64 = 299_000
	proMonthlyPrice   int64 = 799_000
)

// MonthlyPrice returns the monthly price for a plan level. Total over all
// inputs; unknown levels are free.
func MonthlyPrice(level int) int64 {
	switch level {
	case entitlements.LevelBasic:
		return basicMonthlyPrice
	case entitlements.LevelPro:
		return proMonthlyPrice
	default:
		return 0
	}
}

// Plan is a catalog entry served to tenants picking a tier.
type Plan struct {
	Level        int                   `json:"level"`
	Name         string                `json:"name"`
	MonthlyPrice int64                 `json:"monthly_price"`
	Features     entitlements.Features `json:"features"`
}

// Catalog lists all purchasable plan levels in ascending order.
func Catalog() []Plan {
	levels := []int{entitlements.LevelFree, entitlements.LevelBasic, entitlements.LevelPro}
	plans := make([]Plan, 0, len(levels))
	for _, level := range levels {
		plans = append(plans, Plan{
			Level:        level,
			Name:         entitlements.PlanName(level),
			MonthlyPrice: MonthlyPrice(level),
			Features:     entitlements.FeaturesFor(level),
		})
	}
	return plans
}
