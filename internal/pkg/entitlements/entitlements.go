package entitlements

import (
	"time"

	"github.com/mahendrapn/GajiHub/app/models"
)

// Plan levels are ordered: a higher level always entitles a superset of a
// lower one.
const (
	LevelFree  = 0
	LevelBasic = 1
	LevelPro   = 2
)

// Status is the derived entitlement of a company at a point in time.
type Status struct {
	Level     int        `json:"level"`
	Plan      string     `json:"plan"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// PlanName maps a plan level to its public name. Unknown levels are free.
func PlanName(level int) string {
	switch level {
	case LevelBasic:
		return "basic"
	case LevelPro:
		return "pro"
	default:
		return "free"
	}
}

// EffectiveStatus derives the entitlement a company actually holds right now.
// The stored PlanLevel is only corrected lazily (next transaction or the
// expiry sweeper), so an elapsed or absent expiration always reads as free.
// Attendance and payroll gating must go through this, never the raw column.
func EffectiveStatus(c *models.Company, now time.Time) Status {
	if c == nil || c.PlanExpiresAt == nil || !c.PlanExpiresAt.After(now) {
		return Status{Level: LevelFree, Plan: PlanName(LevelFree)}
	}
	return Status{Level: c.PlanLevel, Plan: PlanName(c.PlanLevel), ExpiresAt: c.PlanExpiresAt}
}

// EffectiveLevel is a shorthand for EffectiveStatus(...).Level.
func EffectiveLevel(c *models.Company, now time.Time) int {
	return EffectiveStatus(c, now).Level
}

// Features are the HR feature gates unlocked by a plan level. Consumed by the
// attendance and payroll modules, which only ever read the output of the
// billing engine.
type Features struct {
	MaxEmployees      int  `json:"max_employees"`
	PayrollEnabled    bool `json:"payroll_enabled"`
	AttendanceReports bool `json:"attendance_reports"`
}

// FeaturesFor returns the feature gates for a (derived) plan level.
func FeaturesFor(level int) Features {
	switch level {
	case LevelPro:
		return Features{MaxEmployees: -1, PayrollEnabled: true, AttendanceReports: true}
	case LevelBasic:
		return Features{MaxEmployees: 50, PayrollEnabled: true, AttendanceReports: false}
	default:
		return Features{MaxEmployees: 10, PayrollEnabled: false, AttendanceReports: false}
	}
}
