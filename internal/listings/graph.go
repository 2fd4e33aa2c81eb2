package listings

import (
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
)

type stateSet map[enums.ListingState]struct{}

func states(values ...enums.ListingState) stateSet {
	out := make(stateSet, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

// transitions is the listing lifecycle graph. Anything not listed is rejected.
var transitions = map[enums.ListingState]stateSet{
	enums.ListingStateDraft:             states(enums.ListingStatePendingModeration),
	enums.ListingStatePendingModeration: states(enums.ListingStateApproved, enums.ListingStateRejected),
	enums.ListingStateApproved:          states(enums.ListingStateActive, enums.ListingStatePendingModeration),
	enums.ListingStateRejected:          states(enums.ListingStatePendingModeration),
	enums.ListingStateActive: states(
		enums.ListingStateFrozen,
		enums.ListingStateInactive,
		enums.ListingStateArchived,
		enums.ListingStatePendingModeration,
	),
	enums.ListingStateFrozen:   states(enums.ListingStateActive, enums.ListingStatePendingModeration),
	enums.ListingStateInactive: states(enums.ListingStateActive, enums.ListingStatePendingModeration),
	enums.ListingStateArchived: states(enums.ListingStateActive),
}

// actionEdges pins each state-changing action to the edges it may take.
var actionEdges = map[enums.ListingAction]struct {
	from stateSet
	to   enums.ListingState
}{
	enums.ListingActionSubmit:     {states(enums.ListingStateDraft), enums.ListingStatePendingModeration},
	enums.ListingActionResubmit:   {states(enums.ListingStateApproved, enums.ListingStateRejected, enums.ListingStateActive, enums.ListingStateFrozen, enums.ListingStateInactive), enums.ListingStatePendingModeration},
	enums.ListingActionApprove:    {states(enums.ListingStatePendingModeration), enums.ListingStateApproved},
	enums.ListingActionReject:     {states(enums.ListingStatePendingModeration), enums.ListingStateRejected},
	enums.ListingActionPublish:    {states(enums.ListingStateApproved), enums.ListingStateActive},
	enums.ListingActionFreeze:     {states(enums.ListingStateActive), enums.ListingStateFrozen},
	enums.ListingActionUnfreeze:   {states(enums.ListingStateFrozen), enums.ListingStateActive},
	enums.ListingActionDeactivate: {states(enums.ListingStateActive), enums.ListingStateInactive},
	enums.ListingActionActivate:   {states(enums.ListingStateInactive), enums.ListingStateActive},
	enums.ListingActionArchive:    {states(enums.ListingStateActive), enums.ListingStateArchived},
	enums.ListingActionUnarchive:  {states(enums.ListingStateArchived), enums.ListingStateActive},
}

// fieldActions write listing columns without moving the state. They are
// refused on archived listings.
var fieldActions = map[enums.ListingAction]struct{}{
	enums.ListingActionExtendSubscription: {},
	enums.ListingActionAssignManager:      {},
	enums.ListingActionReleaseManager:     {},
}

// CanTransition reports whether the graph has an edge from -> to.
func CanTransition(from, to enums.ListingState) bool {
	_, ok := transitions[from][to]
	return ok
}

// Target resolves the state an action leads to from the current state.
func Target(action enums.ListingAction, from enums.ListingState) (enums.ListingState, error) {
	if _, ok := fieldActions[action]; ok {
		if from == enums.ListingStateArchived {
			return "", invalidTransition(action, from, from)
		}
		return from, nil
	}
	edge, ok := actionEdges[action]
	if !ok {
		return "", invalidTransition(action, from, "")
	}
	if _, ok := edge.from[from]; !ok || !CanTransition(from, edge.to) {
		return "", invalidTransition(action, from, edge.to)
	}
	return edge.to, nil
}

// SubmitAction picks submit for a first submission and resubmit otherwise.
func SubmitAction(from enums.ListingState) enums.ListingAction {
	if from == enums.ListingStateDraft {
		return enums.ListingActionSubmit
	}
	return enums.ListingActionResubmit
}

func invalidTransition(action enums.ListingAction, from, to enums.ListingState) error {
	details := map[string]any{
		"action": action,
		"from":   from,
	}
	if to != "" {
		details["to"] = to
	}
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, "listing cannot "+string(action)+" from "+string(from)).
		WithDetails(details)
}
