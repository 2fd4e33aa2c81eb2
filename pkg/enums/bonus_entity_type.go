package enums

import "fmt"

// BonusEntityType names what earned a bonus entry.
type BonusEntityType string

const (
	BonusEntityListing      BonusEntityType = "listing"
	BonusEntitySubscription BonusEntityType = "subscription"
	BonusEntityOwner        BonusEntityType = "owner"
	BonusEntityOther        BonusEntityType = "other"
)

var validBonusEntityTypes = []BonusEntityType{
	BonusEntityListing,
	BonusEntitySubscription,
	BonusEntityOwner,
	BonusEntityOther,
}

// IsValid reports whether the value is a known bonus entity type.
func (t BonusEntityType) IsValid() bool {
	for _, candidate := range validBonusEntityTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseBonusEntityType converts raw input into a BonusEntityType.
func ParseBonusEntityType(value string) (BonusEntityType, error) {
	for _, candidate := range validBonusEntityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bonus entity type %q", value)
}
