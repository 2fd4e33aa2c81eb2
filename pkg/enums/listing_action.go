package enums

// ListingAction names the operation recorded for a listing transition.
type ListingAction string

const (
	ListingActionCreate             ListingAction = "create"
	ListingActionSubmit             ListingAction = "submit"
	ListingActionResubmit           ListingAction = "resubmit"
	ListingActionApprove            ListingAction = "approve"
	ListingActionReject             ListingAction = "reject"
	ListingActionPublish            ListingAction = "publish"
	ListingActionFreeze             ListingAction = "freeze"
	ListingActionUnfreeze           ListingAction = "unfreeze"
	ListingActionDeactivate         ListingAction = "deactivate"
	ListingActionActivate           ListingAction = "activate"
	ListingActionArchive            ListingAction = "archive"
	ListingActionUnarchive          ListingAction = "unarchive"
	ListingActionExtendSubscription ListingAction = "extend_subscription"
	ListingActionAssignManager      ListingAction = "assign_manager"
	ListingActionReleaseManager     ListingAction = "release_manager"
	ListingActionDelete             ListingAction = "delete"
)

// String implements fmt.Stringer.
func (a ListingAction) String() string {
	return string(a)
}
