package enums

import (
	"fmt"
	"strings"
)

// ModerationDecision is the outcome a moderator chooses for a pending listing.
type ModerationDecision string

const (
	ModerationDecisionApprove ModerationDecision = "approve"
	ModerationDecisionReject  ModerationDecision = "reject"
)

// IsValid reports whether the value is a known moderation decision.
func (d ModerationDecision) IsValid() bool {
	return d == ModerationDecisionApprove || d == ModerationDecisionReject
}

// ParseModerationDecision accepts the decision name as well as the resulting
// listing state ("approved" / "rejected").
func ParseModerationDecision(value string) (ModerationDecision, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ModerationDecisionApprove), string(ListingStateApproved):
		return ModerationDecisionApprove, nil
	case string(ModerationDecisionReject), string(ListingStateRejected):
		return ModerationDecisionReject, nil
	}
	return "", fmt.Errorf("invalid moderation decision %q", value)
}
