package enums

import "fmt"

// WithdrawalMethod is the payout channel a manager requests.
type WithdrawalMethod string

const (
	WithdrawalMethodSBP    WithdrawalMethod = "sbp"
	WithdrawalMethodCard   WithdrawalMethod = "card"
	WithdrawalMethodSalary WithdrawalMethod = "salary"
)

var validWithdrawalMethods = []WithdrawalMethod{
	WithdrawalMethodSBP,
	WithdrawalMethodCard,
	WithdrawalMethodSalary,
}

// IsValid reports whether the value is a known withdrawal method.
func (m WithdrawalMethod) IsValid() bool {
	for _, candidate := range validWithdrawalMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseWithdrawalMethod converts raw input into a WithdrawalMethod.
func ParseWithdrawalMethod(value string) (WithdrawalMethod, error) {
	for _, candidate := range validWithdrawalMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid withdrawal method %q", value)
}
