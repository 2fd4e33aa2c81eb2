package listings

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/hourstay-backend/internal/users"
	"github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/db"
	"github.com/angelmondragon/hourstay-backend/pkg/db/dbtest"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	client  *db.Client
	repo    Repository
	svc     Service
	owner   *models.User
	manager *models.User
	chief   *models.User
	root    *models.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Users:    users.NewRepository(client.DB()),
		TxRunner: client,
		Logger:   logger.New(logger.Options{ServiceName: "listings-test", Output: io.Discard}),
		Clock:    func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return &harness{
		client:  client,
		repo:    repo,
		svc:     svc,
		owner:   dbtest.SeedUser(t, client, enums.UserRoleOwner),
		manager: dbtest.SeedUser(t, client, enums.UserRoleManager),
		chief:   dbtest.SeedUser(t, client, enums.UserRoleChiefManager),
		root:    dbtest.SeedUser(t, client, enums.UserRoleSuperadmin),
	}
}

func as(u *models.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Role: u.Role, Permissions: u.Permissions}
}

// seed inserts a listing directly in the given state.
func (h *harness) seed(t *testing.T, state enums.ListingState, mutate ...func(*models.Listing)) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		ID:             uuid.New(),
		OwnerID:        h.owner.ID,
		Title:          "Loft near the station",
		State:          state,
		CreatedByOwner: true,
		Version:        1,
		CreatedAt:      testNow.Add(-time.Hour),
		UpdatedAt:      testNow.Add(-time.Hour),
	}
	for _, m := range mutate {
		m(listing)
	}
	require.NoError(t, h.repo.Create(context.Background(), listing))
	return listing
}

func (h *harness) reload(t *testing.T, id uuid.UUID) *models.Listing {
	t.Helper()
	listing, err := h.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return listing
}

func assignedTo(u *models.User) func(*models.Listing) {
	return func(l *models.Listing) {
		id := u.ID
		l.AssignedManagerID = &id
	}
}

func expiresAt(at time.Time) func(*models.Listing) {
	return func(l *models.Listing) { l.SubscriptionExpiresAt = &at }
}

func TestCreateByOwnerStartsInDraft(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	listing, err := h.svc.Create(ctx, as(h.owner), CreateInput{Title: "  Studio  "})
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateDraft, listing.State)
	assert.Equal(t, "Studio", listing.Title)
	assert.True(t, listing.CreatedByOwner)
	assert.Equal(t, int64(1), listing.Version)

	history, err := h.svc.History(ctx, as(h.owner), listing.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, enums.ListingActionCreate, history[0].Action)
}

func TestCreateByStaffRequiresOwnerAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Create(ctx, as(h.chief), CreateInput{Title: "Flat"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	managerID := h.manager.ID
	_, err = h.svc.Create(ctx, as(h.chief), CreateInput{Title: "Flat", OwnerID: &managerID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	ownerID := h.owner.ID
	listing, err := h.svc.Create(ctx, as(h.chief), CreateInput{Title: "Flat", OwnerID: &ownerID})
	require.NoError(t, err)
	assert.False(t, listing.CreatedByOwner)
	require.NotNil(t, listing.CreatedByEmployeeID)
	assert.Equal(t, h.chief.ID, *listing.CreatedByEmployeeID)
}

func TestLifecycleWalk(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner, chief := as(h.owner), as(h.chief)

	listing, err := h.svc.Create(ctx, owner, CreateInput{Title: "Room"})
	require.NoError(t, err)

	listing, err = h.svc.Submit(ctx, owner, listing.ID, listing.Version, nil)
	require.NoError(t, err)
	require.Equal(t, enums.ListingStatePendingModeration, listing.State)

	_, err = h.svc.Submit(ctx, owner, listing.ID, listing.Version, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	err = h.client.WithTx(ctx, func(tx *gorm.DB) error {
		var cerr error
		listing, cerr = Commit(ctx, h.repo.WithTx(tx), listing, Change{Action: enums.ListingActionApprove, Actor: as(h.root), At: testNow})
		return cerr
	})
	require.NoError(t, err)
	require.Equal(t, enums.ListingStateApproved, listing.State)

	listing, err = h.svc.ExtendSubscription(ctx, chief, listing.ID, listing.Version, 30)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateActive, listing.State)
	require.NotNil(t, listing.SubscriptionExpiresAt)
	assert.True(t, listing.SubscriptionExpiresAt.Equal(testNow.Add(30*24*time.Hour)))

	listing, err = h.svc.Freeze(ctx, chief, listing.ID, listing.Version, "owner asked")
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateFrozen, listing.State)

	listing, err = h.svc.Unfreeze(ctx, chief, listing.ID, listing.Version, "resolved")
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateActive, listing.State)

	listing, err = h.svc.Deactivate(ctx, chief, listing.ID, listing.Version, "season over")
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateInactive, listing.State)

	listing, err = h.svc.Activate(ctx, chief, listing.ID, listing.Version, "season open")
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateActive, listing.State)

	title := "Room with balcony"
	listing, err = h.svc.Submit(ctx, owner, listing.ID, listing.Version, &title)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatePendingModeration, listing.State)
	assert.Equal(t, title, listing.Title)

	history, err := h.svc.History(ctx, owner, listing.ID)
	require.NoError(t, err)
	actions := make([]enums.ListingAction, 0, len(history))
	for i, row := range history {
		actions = append(actions, row.Action)
		assert.Equal(t, int64(i+1), row.Version)
	}
	assert.Equal(t, []enums.ListingAction{
		enums.ListingActionCreate,
		enums.ListingActionSubmit,
		enums.ListingActionApprove,
		enums.ListingActionExtendSubscription,
		enums.ListingActionPublish,
		enums.ListingActionFreeze,
		enums.ListingActionUnfreeze,
		enums.ListingActionDeactivate,
		enums.ListingActionActivate,
		enums.ListingActionResubmit,
	}, actions)
	assert.Equal(t, string(auth.System.Role), history[4].ActorRole)
	assert.Nil(t, history[4].ActorID)
}

func TestArchiveAndUnarchiveRestoreConfiguration(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	reason := "checked in person"
	listing := h.seed(t, enums.ListingStateActive, assignedTo(h.manager), func(l *models.Listing) { l.StateReason = &reason })

	archived, err := h.svc.Archive(ctx, as(h.owner), listing.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateArchived, archived.State)
	assert.Nil(t, archived.AssignedManagerID)
	assert.NotEmpty(t, archived.ArchivedSnapshot)

	_, err = h.svc.Freeze(ctx, as(h.chief), listing.ID, archived.Version, "late")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	restored, err := h.svc.Unarchive(ctx, as(h.owner), listing.ID, archived.Version)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateActive, restored.State)
	require.NotNil(t, restored.AssignedManagerID)
	assert.Equal(t, h.manager.ID, *restored.AssignedManagerID)
	require.NotNil(t, restored.StateReason)
	assert.Equal(t, reason, *restored.StateReason)
	assert.Empty(t, restored.ArchivedSnapshot)
	assert.Equal(t, listing.Version+2, restored.Version)
}

func TestArchiveRequiresActive(t *testing.T) {
	h := newHarness(t)
	listing := h.seed(t, enums.ListingStateFrozen)

	_, err := h.svc.Archive(context.Background(), as(h.owner), listing.ID, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
	assert.Equal(t, enums.ListingStateFrozen, h.reload(t, listing.ID).State)
}

func TestStaleVersionIsConcurrencyConflict(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	listing := h.seed(t, enums.ListingStateActive, assignedTo(h.manager))
	read := listing.Version

	frozen, err := h.svc.Freeze(ctx, as(h.chief), listing.ID, read, "complaint")
	require.NoError(t, err)
	assert.Equal(t, read+1, frozen.Version)

	_, err = h.svc.Unfreeze(ctx, as(h.manager), listing.ID, read, "not needed")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConcurrencyConflict))

	_, err = h.svc.Freeze(ctx, as(h.manager), listing.ID, read, "again")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConcurrencyConflict))

	current := h.reload(t, listing.ID)
	assert.Equal(t, enums.ListingStateFrozen, current.State)
	assert.Equal(t, read+1, current.Version)
}

func TestCommitDetectsConcurrentWrite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	listing := h.seed(t, enums.ListingStateActive)

	rows, err := h.repo.UpdateVersioned(ctx, listing.ID, listing.Version, map[string]any{"title": "changed"})
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	// listing still carries the version read before the concurrent write.
	_, err = Commit(ctx, h.repo, listing, Change{Action: enums.ListingActionFreeze, Actor: as(h.chief)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConcurrencyConflict))

	history, err := h.repo.ListTransitions(ctx, listing.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLapsedActiveListingIsReportedNotChanged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	lapsed := h.seed(t, enums.ListingStateActive, expiresAt(testNow.Add(-48*time.Hour)))
	h.seed(t, enums.ListingStateActive, expiresAt(testNow.Add(48*time.Hour)))
	h.seed(t, enums.ListingStateFrozen, expiresAt(testNow.Add(-48*time.Hour)))
	h.seed(t, enums.ListingStateActive, expiresAt(testNow.Add(-90*24*time.Hour)))

	got, err := h.svc.Get(ctx, as(h.owner), lapsed.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateActive, got.State)
	assert.Equal(t, lapsed.Version, got.Version)

	report, err := h.svc.Lapsed(ctx, as(h.chief), 30, 0)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, lapsed.ID, report[0].ID)

	all, err := h.svc.Lapsed(ctx, as(h.chief), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	after := h.reload(t, lapsed.ID)
	assert.Equal(t, enums.ListingStateActive, after.State)
	assert.Equal(t, lapsed.Version, after.Version)

	dto := FromModel(after, testNow)
	assert.True(t, dto.Subscription.Lapsed)
	require.NotNil(t, dto.Subscription.DaysLeft)
	assert.Equal(t, -2, *dto.Subscription.DaysLeft)
}

func TestExtendSubscriptionRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	limited := dbtest.SeedUser(t, h.client, enums.UserRoleEmployee,
		dbtest.WithPermissions(enums.PermissionListings),
		dbtest.WithSubscriptionDaysLimit(30))
	future := testNow.Add(10 * 24 * time.Hour)
	listing := h.seed(t, enums.ListingStateActive, expiresAt(future))

	_, err := h.svc.ExtendSubscription(ctx, as(limited), listing.ID, 0, 90)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = h.svc.ExtendSubscription(ctx, as(h.owner), listing.ID, 0, 30)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = h.svc.ExtendSubscription(ctx, as(limited), listing.ID, 0, -1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	updated, err := h.svc.ExtendSubscription(ctx, as(limited), listing.ID, 0, 30)
	require.NoError(t, err)
	assert.True(t, updated.SubscriptionExpiresAt.Equal(future.Add(30*24*time.Hour)))

	updated, err = h.svc.ExtendSubscription(ctx, as(h.root), listing.ID, updated.Version, 365)
	require.NoError(t, err)
	assert.True(t, updated.SubscriptionExpiresAt.Equal(future.Add(395*24*time.Hour)))
}

func TestExtendWithoutCoverageKeepsApproved(t *testing.T) {
	h := newHarness(t)
	listing := h.seed(t, enums.ListingStateApproved)

	updated, err := h.svc.ExtendSubscription(context.Background(), as(h.chief), listing.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateApproved, updated.State)
	assert.Nil(t, updated.SubscriptionExpiresAt)
	assert.Equal(t, listing.Version, updated.Version)

	history, err := h.svc.History(context.Background(), as(h.chief), listing.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestManagerActionsRequireAssignment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	other := dbtest.SeedUser(t, h.client, enums.UserRoleManager)
	listing := h.seed(t, enums.ListingStateActive, assignedTo(other))

	_, err := h.svc.Freeze(ctx, as(h.manager), listing.ID, 0, "noise")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = h.svc.Freeze(ctx, as(h.owner), listing.ID, 0, "noise")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	frozen, err := h.svc.Freeze(ctx, as(other), listing.ID, 0, "noise")
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateFrozen, frozen.State)

	_, err = h.svc.Unfreeze(ctx, as(other), listing.ID, 0, "  ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeactivateReleasesManager(t *testing.T) {
	h := newHarness(t)
	listing := h.seed(t, enums.ListingStateActive, assignedTo(h.manager))

	updated, err := h.svc.Deactivate(context.Background(), as(h.manager), listing.ID, 0, "owner unreachable")
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStateInactive, updated.State)
	assert.Nil(t, updated.AssignedManagerID)
	require.NotNil(t, updated.StateReason)
	assert.Equal(t, "owner unreachable", *updated.StateReason)
}

func TestAssignManagerHonoursObjectLimit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	capped := dbtest.SeedUser(t, h.client, enums.UserRoleManager, dbtest.WithObjectLimit(1))
	first := h.seed(t, enums.ListingStateActive)
	second := h.seed(t, enums.ListingStateFrozen)

	taken, err := h.svc.AssignManager(ctx, as(capped), first.ID, 0, capped.ID)
	require.NoError(t, err)
	require.NotNil(t, taken.AssignedManagerID)

	_, err = h.svc.AssignManager(ctx, as(capped), second.ID, 0, capped.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = h.svc.AssignManager(ctx, as(h.manager), second.ID, 0, capped.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = h.svc.AssignManager(ctx, as(h.chief), second.ID, 0, h.owner.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	released, err := h.svc.ReleaseManager(ctx, as(capped), first.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, released.AssignedManagerID)

	_, err = h.svc.ReleaseManager(ctx, as(capped), first.ID, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = h.svc.AssignManager(ctx, as(h.chief), second.ID, 0, capped.ID)
	require.NoError(t, err)
}

func TestDeleteIsSuperadminOnlyAndKeepsHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	listing, err := h.svc.Create(ctx, as(h.owner), CreateInput{Title: "Temporary"})
	require.NoError(t, err)

	err = h.svc.Delete(ctx, as(h.chief), listing.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	require.NoError(t, h.svc.Delete(ctx, as(h.root), listing.ID))

	_, err = h.svc.Get(ctx, as(h.root), listing.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	history, err := h.svc.History(ctx, as(h.root), listing.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, enums.ListingActionDelete, history[1].Action)

	err = h.svc.Delete(ctx, as(h.root), listing.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestOwnersOnlyTouchTheirOwnListings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	stranger := dbtest.SeedUser(t, h.client, enums.UserRoleOwner)
	listing := h.seed(t, enums.ListingStateDraft)

	_, err := h.svc.Get(ctx, as(stranger), listing.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = h.svc.Submit(ctx, as(stranger), listing.ID, 0, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	assert.Equal(t, listing.Version, h.reload(t, listing.ID).Version)
}
