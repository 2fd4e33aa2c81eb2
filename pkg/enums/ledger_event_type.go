package enums

import "fmt"

// LedgerEventType maps to the ledger_event_type enum in Postgres.
type LedgerEventType string

const (
	LedgerEventBonusAccrued        LedgerEventType = "bonus_accrued"
	LedgerEventBonusPaid           LedgerEventType = "bonus_paid"
	LedgerEventBonusReopened       LedgerEventType = "bonus_reopened"
	LedgerEventPayoutRecorded      LedgerEventType = "payout_recorded"
	LedgerEventBalanceCredited     LedgerEventType = "balance_credited"
	LedgerEventWithdrawalRequested LedgerEventType = "withdrawal_requested"
	LedgerEventWithdrawalSettled   LedgerEventType = "withdrawal_settled"
	LedgerEventWithdrawalRejected  LedgerEventType = "withdrawal_rejected"
	LedgerEventWithdrawalCancelled LedgerEventType = "withdrawal_cancelled"
)

var validLedgerEventTypes = []LedgerEventType{
	LedgerEventBonusAccrued,
	LedgerEventBonusPaid,
	LedgerEventBonusReopened,
	LedgerEventPayoutRecorded,
	LedgerEventBalanceCredited,
	LedgerEventWithdrawalRequested,
	LedgerEventWithdrawalSettled,
	LedgerEventWithdrawalRejected,
	LedgerEventWithdrawalCancelled,
}

// IsValid reports whether the value matches the canonical ledger event enum.
func (t LedgerEventType) IsValid() bool {
	for _, candidate := range validLedgerEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerEventType converts raw input into LedgerEventType.
func ParseLedgerEventType(value string) (LedgerEventType, error) {
	for _, candidate := range validLedgerEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger event type %q", value)
}
