package entitlements

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mahendrapn/GajiHub/app/models"
	"github.com/mahendrapn/GajiHub/internal/pkg/cache"
)

// statusTTL keeps the hot gating path cheap without letting a stale level
// outlive a webhook apply for long; applies also invalidate explicitly.
const statusTTL = 60 * time.Second

func statusCacheKey(companyID uint) string {
	return fmt.Sprintf("entitlement:%d", companyID)
}

// CachedStatus returns the derived entitlement for a company, served from
// Redis when possible. load is only called on a cache miss.
func CachedStatus(companyID uint, now time.Time, load func() (*models.Company, error)) (Status, error) {
	key := statusCacheKey(companyID)
	if raw, err := cache.Get(key); err == nil {
		var st Status
		if json.Unmarshal([]byte(raw), &st) == nil {
			// Re-check expiry; the cached entry may straddle the boundary.
			if st.ExpiresAt == nil || st.ExpiresAt.After(now) {
				return st, nil
			}
		}
	}

	company, err := load()
	if err != nil {
		return Status{}, err
	}
	st := EffectiveStatus(company, now)
	if payload, err := json.Marshal(st); err == nil {
		// Best effort; gating still works without the cache.
		_ = cache.Set(key, payload, statusTTL)
	}
	return st, nil
}

// Invalidate drops the cached entitlement for a company. Called after any
// entitlement mutation (webhook apply, downgrade, expiry sweep).
func Invalidate(companyID uint) {
	_ = cache.Delete(statusCacheKey(companyID))
}
