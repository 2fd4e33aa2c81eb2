package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/hourstay-backend/internal/subscriptions"
	"github.com/angelmondragon/hourstay-backend/internal/users"
	"github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/angelmondragon/hourstay-backend/pkg/metrics"
	"github.com/angelmondragon/hourstay-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives listings through their lifecycle.
type Service interface {
	Create(ctx context.Context, actor auth.Principal, input CreateInput) (*models.Listing, error)
	Get(ctx context.Context, actor auth.Principal, id uuid.UUID) (*models.Listing, error)
	Submit(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, title *string) (*models.Listing, error)
	Freeze(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, reason string) (*models.Listing, error)
	Unfreeze(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, reason string) (*models.Listing, error)
	Deactivate(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, reason string) (*models.Listing, error)
	Activate(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, reason string) (*models.Listing, error)
	Archive(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64) (*models.Listing, error)
	Unarchive(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64) (*models.Listing, error)
	ExtendSubscription(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, days int) (*models.Listing, error)
	AssignManager(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, managerID uuid.UUID) (*models.Listing, error)
	ReleaseManager(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64) (*models.Listing, error)
	Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error
	History(ctx context.Context, actor auth.Principal, id uuid.UUID) ([]models.ListingTransition, error)
	Lapsed(ctx context.Context, actor auth.Principal, withinDays, limit int) ([]models.Listing, error)
}

// CreateInput captures a new draft listing.
type CreateInput struct {
	Title   string
	OwnerID *uuid.UUID
}

// archiveSnapshot is the configuration restored by unarchive.
type archiveSnapshot struct {
	AssignedManagerID *uuid.UUID `json:"assigned_manager_id"`
	StateReason       *string    `json:"state_reason"`
}

// ServiceParams bundles the dependencies of the listing service.
type ServiceParams struct {
	Repo     Repository
	Users    users.Repository
	TxRunner txRunner
	Logger   *logger.Logger
	Metrics  *metrics.DomainMetrics
	Clock    func() time.Time
}

type service struct {
	repo    Repository
	users   users.Repository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.DomainMetrics
	now     func() time.Time
}

// NewService constructs the listing service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:    params.Repo,
		users:   params.Users,
		tx:      params.TxRunner,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     func() time.Time { return clock().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Principal, input CreateInput) (*models.Listing, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	now := s.now()
	listing := &models.Listing{
		ID:        uuid.New(),
		Title:     title,
		State:     enums.ListingStateDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var created *models.Listing
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		switch {
		case actor.IsOwner():
			if input.OwnerID != nil && *input.OwnerID != actor.UserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "owners create listings for themselves only")
			}
			listing.OwnerID = actor.UserID
			listing.CreatedByOwner = true
		case actor.Can(enums.PermissionOwners) || actor.Can(enums.PermissionListings):
			if input.OwnerID == nil || *input.OwnerID == uuid.Nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "owner_id is required")
			}
			owner, err := s.users.WithTx(tx).FindByID(ctx, *input.OwnerID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "owner not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner")
			}
			if owner.Role != enums.UserRoleOwner {
				return pkgerrors.New(pkgerrors.CodeValidation, "owner_id must reference an owner account")
			}
			listing.OwnerID = owner.ID
			listing.CreatedByEmployeeID = actor.ActorID()
		default:
			return pkgerrors.New(pkgerrors.CodeForbidden, "listing creation not permitted")
		}

		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, listing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
		}
		if err := repo.InsertTransition(ctx, &models.ListingTransition{
			ID:        uuid.New(),
			ListingID: listing.ID,
			Action:    enums.ListingActionCreate,
			FromState: enums.ListingStateDraft,
			ToState:   enums.ListingStateDraft,
			ActorID:   actor.ActorID(),
			ActorRole: string(actor.Role),
			Version:   listing.Version,
			CreatedAt: now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record listing transition")
		}
		var err error
		created, err = Load(ctx, repo, listing.ID)
		return err
	})
	s.metrics.ObserveTransition(string(enums.ListingActionCreate), metrics.ResultFor(err))
	if err != nil {
		return nil, err
	}
	s.logCommitted(ctx, actor, enums.ListingActionCreate, created)
	return created, nil
}

func (s *service) Get(ctx context.Context, actor auth.Principal, id uuid.UUID) (*models.Listing, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	listing, err := Load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(actor, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *service) Submit(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, title *string) (*models.Listing, error) {
	var fields map[string]any
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be empty")
		}
		fields = map[string]any{"title": trimmed}
	}

	var action enums.ListingAction
	out, err := s.run(ctx, actor, id, func(_ *gorm.DB, repo Repository, current *models.Listing) (*models.Listing, error) {
		action = SubmitAction(current.State)
		if err := authorizeOwnerOrStaff(actor, current); err != nil {
			return nil, err
		}
		return Commit(ctx, repo, current, Change{
			Action:          action,
			Actor:           actor,
			ExpectedVersion: expectedVersion,
			Fields:          fields,
			At:              s.now(),
		})
	})
	if action == "" {
		action = enums.ListingActionSubmit
	}
	return s.finish(ctx, actor, action, out, err)
}

func (s *service) Freeze(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, reason string) (*models.Listing, error) {
	return s.managerAction(ctx, actor, id, expectedVersion, enums.ListingActionFreeze, reason, nil)
}

func (s *service) Unfreeze(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, reason string) (*models.Listing, error) {
	return s.managerAction(ctx, actor, id, expectedVersion, enums.ListingActionUnfreeze, reason, nil)
}

// Deactivate also drops the manager assignment.
func (s *service) Deactivate(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, reason string) (*models.Listing, error) {
	return s.managerAction(ctx, actor, id, expectedVersion, enums.ListingActionDeactivate, reason, map[string]any{
		"assigned_manager_id": nil,
	})
}

func (s *service) Activate(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, reason string) (*models.Listing, error) {
	return s.managerAction(ctx, actor, id, expectedVersion, enums.ListingActionActivate, reason, nil)
}

func (s *service) managerAction(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, action enums.ListingAction, reason string, extra map[string]any) (*models.Listing, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return s.finish(ctx, actor, action, nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required"))
	}
	out, err := s.run(ctx, actor, id, func(_ *gorm.DB, repo Repository, current *models.Listing) (*models.Listing, error) {
		if err := authorizeManager(actor, current); err != nil {
			return nil, err
		}
		fields := map[string]any{"state_reason": reason}
		for k, v := range extra {
			fields[k] = v
		}
		return Commit(ctx, repo, current, Change{
			Action:          action,
			Actor:           actor,
			ExpectedVersion: expectedVersion,
			Comment:         &reason,
			Fields:          fields,
			At:              s.now(),
		})
	})
	return s.finish(ctx, actor, action, out, err)
}

// Archive parks an active listing and remembers its assignment for unarchive.
func (s *service) Archive(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64) (*models.Listing, error) {
	out, err := s.run(ctx, actor, id, func(_ *gorm.DB, repo Repository, current *models.Listing) (*models.Listing, error) {
		if err := authorizeOwnerOrStaff(actor, current); err != nil {
			return nil, err
		}
		snapshot, err := json.Marshal(archiveSnapshot{
			AssignedManagerID: current.AssignedManagerID,
			StateReason:       current.StateReason,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode archive snapshot")
		}
		return Commit(ctx, repo, current, Change{
			Action:          enums.ListingActionArchive,
			Actor:           actor,
			ExpectedVersion: expectedVersion,
			Fields: map[string]any{
				"archived_snapshot":   json.RawMessage(snapshot),
				"assigned_manager_id": nil,
			},
			At: s.now(),
		})
	})
	return s.finish(ctx, actor, enums.ListingActionArchive, out, err)
}

// Unarchive always lands on active and restores the archived configuration.
func (s *service) Unarchive(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64) (*models.Listing, error) {
	out, err := s.run(ctx, actor, id, func(_ *gorm.DB, repo Repository, current *models.Listing) (*models.Listing, error) {
		if err := authorizeOwnerOrStaff(actor, current); err != nil {
			return nil, err
		}
		var snapshot archiveSnapshot
		if len(current.ArchivedSnapshot) > 0 {
			if err := json.Unmarshal(current.ArchivedSnapshot, &snapshot); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode archive snapshot")
			}
		}
		return Commit(ctx, repo, current, Change{
			Action:          enums.ListingActionUnarchive,
			Actor:           actor,
			ExpectedVersion: expectedVersion,
			Fields: map[string]any{
				"archived_snapshot":   nil,
				"assigned_manager_id": nullableUUID(snapshot.AssignedManagerID),
				"state_reason":        nullableString(snapshot.StateReason),
			},
			At: s.now(),
		})
	})
	return s.finish(ctx, actor, enums.ListingActionUnarchive, out, err)
}

// ExtendSubscription adds days to the subscription and publishes an approved
// listing once the period covers now. Zero days leaves the listing untouched.
func (s *service) ExtendSubscription(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, days int) (*models.Listing, error) {
	action := enums.ListingActionExtendSubscription
	if err := actor.Validate(); err != nil {
		return s.finish(ctx, actor, action, nil, err)
	}
	if err := actor.Require(enums.PermissionListings); err != nil {
		return s.finish(ctx, actor, action, nil, err)
	}
	if days < 0 {
		return s.finish(ctx, actor, action, nil, pkgerrors.New(pkgerrors.CodeValidation, "days must not be negative"))
	}

	out, err := s.run(ctx, actor, id, func(tx *gorm.DB, repo Repository, current *models.Listing) (*models.Listing, error) {
		if !actor.IsSuperadmin() {
			staff, err := s.users.WithTx(tx).FindByID(ctx, actor.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff account not found")
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff account")
			}
			if limit := staff.SubscriptionDaysLimit; limit != nil && days > *limit {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "days exceed subscription limit").
					WithDetails(map[string]any{"days": days, "limit": *limit})
			}
		}
		if days == 0 {
			return current, nil
		}

		now := s.now()
		expires, err := subscriptions.Extend(current.SubscriptionExpiresAt, now, days)
		if err != nil {
			return nil, err
		}
		comment := fmt.Sprintf("+%d days", days)
		updated, err := Commit(ctx, repo, current, Change{
			Action:          action,
			Actor:           actor,
			ExpectedVersion: expectedVersion,
			Comment:         &comment,
			Fields:          map[string]any{"subscription_expires_at": expires},
			At:              now,
		})
		if err != nil {
			return nil, err
		}
		return PublishIfCovered(ctx, repo, updated, now)
	})
	return s.finish(ctx, actor, action, out, err)
}

// PublishIfCovered moves an approved listing to active when its subscription
// covers now. Other listings are returned unchanged.
func PublishIfCovered(ctx context.Context, repo Repository, listing *models.Listing, now time.Time) (*models.Listing, error) {
	if listing.State != enums.ListingStateApproved || !subscriptions.IsActive(listing.SubscriptionExpiresAt, now) {
		return listing, nil
	}
	return Commit(ctx, repo, listing, Change{
		Action:          enums.ListingActionPublish,
		Actor:           auth.System,
		ExpectedVersion: listing.Version,
		At:              now,
	})
}

func (s *service) AssignManager(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64, managerID uuid.UUID) (*models.Listing, error) {
	action := enums.ListingActionAssignManager
	if managerID == uuid.Nil {
		return s.finish(ctx, actor, action, nil, pkgerrors.New(pkgerrors.CodeValidation, "manager_id is required"))
	}
	out, err := s.run(ctx, actor, id, func(tx *gorm.DB, repo Repository, current *models.Listing) (*models.Listing, error) {
		if err := actor.Require(enums.PermissionListings); err != nil {
			return nil, err
		}
		if actor.Role == enums.UserRoleManager {
			if managerID != actor.UserID {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "managers may only take listings for themselves")
			}
			if current.AssignedManagerID != nil && *current.AssignedManagerID != actor.UserID {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing is assigned to another manager")
			}
		}
		if current.AssignedManagerID != nil && *current.AssignedManagerID == managerID {
			return current, nil
		}

		manager, err := s.users.WithTx(tx).LockForUpdate(ctx, managerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "manager not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock manager")
		}
		if !manager.IsActive || !manager.Role.IsManagerFamily() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee must be an active manager")
		}
		if manager.ObjectLimit > 0 {
			held, err := repo.CountAssigned(ctx, managerID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count assigned listings")
			}
			if held >= int64(manager.ObjectLimit) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "manager object limit reached").
					WithDetails(map[string]any{"object_limit": manager.ObjectLimit, "assigned": held})
			}
		}

		return Commit(ctx, repo, current, Change{
			Action:          action,
			Actor:           actor,
			ExpectedVersion: expectedVersion,
			Fields:          map[string]any{"assigned_manager_id": managerID},
			At:              s.now(),
		})
	})
	return s.finish(ctx, actor, action, out, err)
}

func (s *service) ReleaseManager(ctx context.Context, actor auth.Principal, id uuid.UUID, expectedVersion int64) (*models.Listing, error) {
	action := enums.ListingActionReleaseManager
	out, err := s.run(ctx, actor, id, func(_ *gorm.DB, repo Repository, current *models.Listing) (*models.Listing, error) {
		if err := authorizeManager(actor, current); err != nil {
			return nil, err
		}
		if current.AssignedManagerID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing has no assigned manager")
		}
		return Commit(ctx, repo, current, Change{
			Action:          action,
			Actor:           actor,
			ExpectedVersion: expectedVersion,
			Fields:          map[string]any{"assigned_manager_id": nil},
			At:              s.now(),
		})
	})
	return s.finish(ctx, actor, action, out, err)
}

// Delete removes the listing row for good. The history rows stay.
func (s *service) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !actor.IsSuperadmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only superadmin may delete listings")
	}
	var deleted *models.Listing
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := Load(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := repo.InsertTransition(ctx, &models.ListingTransition{
			ID:        uuid.New(),
			ListingID: current.ID,
			Action:    enums.ListingActionDelete,
			FromState: current.State,
			ToState:   current.State,
			ActorID:   actor.ActorID(),
			ActorRole: string(actor.Role),
			Version:   current.Version + 1,
			CreatedAt: s.now(),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record listing transition")
		}
		if err := repo.Delete(ctx, current.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
		}
		deleted = current
		return nil
	})
	s.metrics.ObserveTransition(string(enums.ListingActionDelete), metrics.ResultFor(err))
	if err != nil {
		return err
	}
	s.logCommitted(ctx, actor, enums.ListingActionDelete, deleted)
	return nil
}

func (s *service) History(ctx context.Context, actor auth.Principal, id uuid.UUID) ([]models.ListingTransition, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	listing, err := s.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !actor.IsSuperadmin() {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	default:
		if err := authorizeView(actor, listing); err != nil {
			return nil, err
		}
	}
	rows, err := s.repo.ListTransitions(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listing transitions")
	}
	return rows, nil
}

// Lapsed reports active listings whose subscription ran out. It never writes.
func (s *service) Lapsed(ctx context.Context, actor auth.Principal, withinDays, limit int) ([]models.Listing, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := actor.Require(enums.PermissionListings); err != nil {
		return nil, err
	}
	now := s.now()
	var since *time.Time
	if withinDays > 0 {
		cutoff := now.Add(-time.Duration(withinDays) * 24 * time.Hour)
		since = &cutoff
	}
	rows, err := s.repo.ListLapsed(ctx, now, since, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list lapsed listings")
	}
	return rows, nil
}

type stepFunc func(tx *gorm.DB, repo Repository, current *models.Listing) (*models.Listing, error)

func (s *service) run(ctx context.Context, actor auth.Principal, id uuid.UUID, step stepFunc) (*models.Listing, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	var out *models.Listing
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := Load(ctx, repo, id)
		if err != nil {
			return err
		}
		out, err = step(tx, repo, current)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) finish(ctx context.Context, actor auth.Principal, action enums.ListingAction, out *models.Listing, err error) (*models.Listing, error) {
	s.metrics.ObserveTransition(string(action), metrics.ResultFor(err))
	if err != nil {
		return nil, err
	}
	s.logCommitted(ctx, actor, action, out)
	return out, nil
}

func (s *service) logCommitted(ctx context.Context, actor auth.Principal, action enums.ListingAction, listing *models.Listing) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"listing_id": listing.ID.String(),
		"action":     string(action),
		"state":      string(listing.State),
		"version":    listing.Version,
		"actor_role": string(actor.Role),
	})
	s.logg.Info(ctx, "listing write committed")
}

func authorizeView(actor auth.Principal, listing *models.Listing) error {
	if actor.IsOwner() {
		if listing.OwnerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another owner")
		}
		return nil
	}
	if !actor.Role.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "listing not visible")
	}
	return nil
}

// authorizeOwnerOrStaff allows the listing's owner or listings staff.
func authorizeOwnerOrStaff(actor auth.Principal, listing *models.Listing) error {
	if actor.IsOwner() {
		if listing.OwnerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another owner")
		}
		return nil
	}
	return actor.Require(enums.PermissionListings)
}

// authorizeManager requires the listings capability. Plain managers must also
// hold the assignment.
func authorizeManager(actor auth.Principal, listing *models.Listing) error {
	if err := actor.Require(enums.PermissionListings); err != nil {
		return err
	}
	if actor.Role == enums.UserRoleManager {
		if listing.AssignedManagerID == nil || *listing.AssignedManagerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "listing is not assigned to this manager")
		}
	}
	return nil
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
