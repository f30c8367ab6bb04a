package billing

import (
	"time"

	"github.com/mahendrapn/GajiHub/internal/pkg/entitlements"
)

// DefaultRenewWindowDays is the tail of a paid term in which a downgrade is
// accepted and in which an upgrade is treated as a renewal instead of a
// prorated top-up.
const DefaultRenewWindowDays = 5

// Classify decides what kind of plan change a request is. currentLevel must
// already be the derived effective level (free when the term has elapsed);
// expiresAt is the raw stored expiration, which may be nil or in the past.
//
// The decision table is evaluated top-down, first match wins:
//
//	target < current                          -> DOWNGRADE (gated below)
//	target == current                         -> EXTEND, or NEW from free
//	target > current, active, <= window days  -> UPGRADE_RENEW
//	target > current, active, > window days   -> UPGRADE
//	target > current, not active              -> NEW
func Classify(currentLevel, targetLevel int, expiresAt *time.Time, now time.Time, renewWindowDays int) (ChangeType, error) {
	if renewWindowDays <= 0 {
		renewWindowDays = DefaultRenewWindowDays
	}

	switch {
	case targetLevel < currentLevel:
		if expiresAt == nil {
			return "", ErrNoSubscriptionToDowngrade
		}
		if DaysLeft(*expiresAt, now) > renewWindowDays {
			return "", ErrDowngradeTooEarly
		}
		return ChangeDowngrade, nil

	case targetLevel == currentLevel:
		if currentLevel == entitlements.LevelFree {
			return ChangeNew, nil
		}
		return ChangeExtend, nil

	default: // targetLevel > currentLevel
		active := expiresAt != nil && expiresAt.After(now) && currentLevel > entitlements.LevelFree
		if !active {
			return ChangeNew, nil
		}
		if DaysLeft(*expiresAt, now) <= renewWindowDays {
			return ChangeUpgradeRenew, nil
		}
		return ChangeUpgrade, nil
	}
}
