// Package subscriptions computes listing subscription periods. Nothing here
// writes state: lapse is a fact derived at read time.
package subscriptions

import (
	"math"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
)

const day = 24 * time.Hour

// Tier is a priced subscription package. Prices live outside this service.
type Tier string

const (
	Tier30Days Tier = "30_days"
	Tier90Days Tier = "90_days"
)

var tierDays = map[Tier]int{
	Tier30Days: 30,
	Tier90Days: 90,
}

// TierDays resolves a tier name into the number of days it grants.
func TierDays(tier string) (int, error) {
	days, ok := tierDays[Tier(strings.TrimSpace(tier))]
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown subscription tier").
			WithDetails(map[string]any{"tier": tier})
	}
	return days, nil
}

// Extend returns max(now, current) + days. The result is never earlier than current.
func Extend(current *time.Time, now time.Time, days int) (time.Time, error) {
	if days < 0 {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "days must not be negative")
	}
	base := now.UTC()
	if current != nil && current.After(base) {
		base = current.UTC()
	}
	return base.Add(time.Duration(days) * day), nil
}

// Period is the derived subscription view of a listing.
type Period struct {
	ExpiresAt *time.Time `json:"expires_at"`
	DaysLeft  *int       `json:"days_left"`
	Lapsed    bool       `json:"lapsed"`
}

// PeriodAt derives the period for expiresAt observed at now. DaysLeft is the
// ceiling of the remaining days, zero or negative once lapsed, and nil when no
// subscription was ever attached.
func PeriodAt(expiresAt *time.Time, now time.Time) Period {
	if expiresAt == nil {
		return Period{Lapsed: true}
	}
	remaining := expiresAt.Sub(now)
	days := int(math.Ceil(remaining.Hours() / 24))
	exp := expiresAt.UTC()
	return Period{
		ExpiresAt: &exp,
		DaysLeft:  &days,
		Lapsed:    !expiresAt.After(now),
	}
}

// IsActive reports whether a subscription covers now.
func IsActive(expiresAt *time.Time, now time.Time) bool {
	return expiresAt != nil && expiresAt.After(now)
}
