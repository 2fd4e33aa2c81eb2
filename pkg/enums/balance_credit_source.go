package enums

import "fmt"

// BalanceCreditSource names what funded a withdrawable balance credit.
type BalanceCreditSource string

const (
	BalanceCreditAchievement BalanceCreditSource = "achievement"
	BalanceCreditCommission  BalanceCreditSource = "commission"
	BalanceCreditAdjustment  BalanceCreditSource = "adjustment"
)

var validBalanceCreditSources = []BalanceCreditSource{
	BalanceCreditAchievement,
	BalanceCreditCommission,
	BalanceCreditAdjustment,
}

func (s BalanceCreditSource) IsValid() bool {
	for _, candidate := range validBalanceCreditSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBalanceCreditSource converts raw input into a BalanceCreditSource.
func ParseBalanceCreditSource(value string) (BalanceCreditSource, error) {
	for _, candidate := range validBalanceCreditSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid balance credit source %q", value)
}
