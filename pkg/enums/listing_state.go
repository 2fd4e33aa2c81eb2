package enums

import "fmt"

// ListingState maps to the listing_state enum in Postgres.
type ListingState string

const (
	ListingStateDraft             ListingState = "draft"
	ListingStatePendingModeration ListingState = "pending_moderation"
	ListingStateApproved          ListingState = "approved"
	ListingStateRejected          ListingState = "rejected"
	ListingStateActive            ListingState = "active"
	ListingStateFrozen            ListingState = "frozen"
	ListingStateInactive          ListingState = "inactive"
	ListingStateArchived          ListingState = "archived"
)

var validListingStates = []ListingState{
	ListingStateDraft,
	ListingStatePendingModeration,
	ListingStateApproved,
	ListingStateRejected,
	ListingStateActive,
	ListingStateFrozen,
	ListingStateInactive,
	ListingStateArchived,
}

// String implements fmt.Stringer.
func (s ListingState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known listing state.
func (s ListingState) IsValid() bool {
	for _, candidate := range validListingStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ListingStates returns every listing state in declaration order.
func ListingStates() []ListingState {
	out := make([]ListingState, len(validListingStates))
	copy(out, validListingStates)
	return out
}

// ParseListingState converts raw input into a ListingState.
func ParseListingState(value string) (ListingState, error) {
	for _, candidate := range validListingStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing state %q", value)
}
