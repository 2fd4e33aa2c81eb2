package enums

import "testing"

func TestParseListingState(t *testing.T) {
	for _, state := range ListingStates() {
		got, err := ParseListingState(string(state))
		if err != nil || got != state {
			t.Fatalf("ParseListingState(%q) = %q, %v", state, got, err)
		}
	}
	if _, err := ParseListingState("deleted"); err == nil {
		t.Fatal("expected deleted to be rejected as a listing state")
	}
}

func TestParseModerationDecisionAcceptsStateNames(t *testing.T) {
	cases := map[string]ModerationDecision{
		"approve":  ModerationDecisionApprove,
		"approved": ModerationDecisionApprove,
		" REJECT ": ModerationDecisionReject,
		"rejected": ModerationDecisionReject,
	}
	for raw, want := range cases {
		got, err := ParseModerationDecision(raw)
		if err != nil || got != want {
			t.Fatalf("ParseModerationDecision(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseModerationDecision("maybe"); err == nil {
		t.Fatal("expected unknown decision to fail")
	}
}

func TestUserRoleFamilies(t *testing.T) {
	if UserRoleOwner.IsStaff() {
		t.Fatal("owner must not be staff")
	}
	if !UserRoleAccountant.IsStaff() {
		t.Fatal("accountant must be staff")
	}
	if !UserRoleManager.IsManagerFamily() || UserRoleEmployee.IsManagerFamily() {
		t.Fatal("unexpected manager family membership")
	}
	if UserRoleManager.IsSeniorManager() || !UserRoleChiefManager.IsSeniorManager() || !UserRoleSuperadmin.IsSeniorManager() {
		t.Fatal("unexpected senior manager membership")
	}
}

func TestWithdrawalStatusOpen(t *testing.T) {
	open := map[WithdrawalStatus]bool{
		WithdrawalStatusPending:    true,
		WithdrawalStatusProcessing: true,
		WithdrawalStatusPaid:       false,
		WithdrawalStatusRejected:   false,
		WithdrawalStatusCancelled:  false,
	}
	for status, want := range open {
		if status.IsOpen() != want {
			t.Fatalf("%s.IsOpen() = %v, want %v", status, status.IsOpen(), want)
		}
	}
}

func TestParseBalanceCreditSource(t *testing.T) {
	for _, source := range validBalanceCreditSources {
		got, err := ParseBalanceCreditSource(string(source))
		if err != nil || got != source {
			t.Fatalf("ParseBalanceCreditSource(%q) = %q, %v", source, got, err)
		}
	}
	if _, err := ParseBalanceCreditSource("bonus"); err == nil {
		t.Fatal("expected bonus to be rejected as a credit source")
	}
	if !LedgerEventBalanceCredited.IsValid() {
		t.Fatal("balance_credited must be a ledger event type")
	}
}
