package billing

import (
	"math"
	"time"
)

// MinimumCharge is the smallest amount the gateway accepts for a hosted
// payment session.
const MinimumCharge int64 = 1000

// ChargeAmount computes the integer amount due for a classified plan change.
// months is the requested duration (already normalized to >= 1); expiresAt is
// only consulted for the prorated UPGRADE case.
//
//   - DOWNGRADE is free (applied synchronously, no gateway round-trip).
//   - NEW / EXTEND charge the full target price for the whole duration.
//   - UPGRADE_RENEW charges exactly one month of the target tier: renewal
//     resets to monthly granularity when the term is nearly exhausted.
//   - UPGRADE charges only the incremental value of the higher tier for the
//     term still remaining (remainingDays / 30 months equivalent), floored to
//     MinimumCharge. The existing expiration is left untouched at apply time.
func ChargeAmount(change ChangeType, currentLevel, targetLevel, months int, expiresAt *time.Time, now time.Time) int64 {
	switch change {
	case ChangeDowngrade:
		return 0

	case ChangeNew, ChangeExtend:
		return MonthlyPrice(targetLevel) * int64(months)

	case ChangeUpgradeRenew:
		// The requested duration is deliberately ignored here.
		return MonthlyPrice(targetLevel)

	case ChangeUpgrade:
		diffMonthly := MonthlyPrice(targetLevel) - MonthlyPrice(currentLevel)
		if diffMonthly <= 0 || expiresAt == nil {
			// Unreachable given the classifier's guards; computed as zero
			// rather than surfaced as a failure path.
			return 0
		}
		monthsEquivalent := float64(DaysLeft(*expiresAt, now)) / 30.0
		amount := int64(math.Round(float64(diffMonthly) * monthsEquivalent))
		if amount < MinimumCharge {
			return MinimumCharge
		}
		return amount

	default:
		return 0
	}
}
