package listings

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Change describes one write against a listing.
type Change struct {
	Action          enums.ListingAction
	Actor           auth.Principal
	ExpectedVersion int64
	Comment         *string
	Fields          map[string]any
	At              time.Time
}

// Load reads a listing inside the current transaction and maps a missing row
// to NotFound.
func Load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Listing, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}

// Commit checks the caller's version, validates the action against the graph,
// applies the conditional update and appends the history row. repo must be
// bound to the surrounding transaction.
func Commit(ctx context.Context, repo Repository, current *models.Listing, ch Change) (*models.Listing, error) {
	version := ch.ExpectedVersion
	if version == 0 {
		version = current.Version
	}
	if version != current.Version {
		return nil, versionConflict(current.ID, version, current.Version)
	}

	to, err := Target(ch.Action, current.State)
	if err != nil {
		return nil, err
	}

	at := ch.At.UTC()
	if ch.At.IsZero() {
		at = time.Now().UTC()
	}
	updates := map[string]any{"updated_at": at}
	for k, v := range ch.Fields {
		updates[k] = v
	}
	if to != current.State {
		updates["state"] = to
	}

	rows, err := repo.UpdateVersioned(ctx, current.ID, version, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
	}
	if rows == 0 {
		exists, err := repo.Exists(ctx, current.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check listing")
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, versionConflict(current.ID, version, 0)
	}

	role := string(ch.Actor.Role)
	if role == "" {
		role = string(auth.System.Role)
	}
	if err := repo.InsertTransition(ctx, &models.ListingTransition{
		ID:        uuid.New(),
		ListingID: current.ID,
		Action:    ch.Action,
		FromState: current.State,
		ToState:   to,
		ActorID:   ch.Actor.ActorID(),
		ActorRole: role,
		Comment:   ch.Comment,
		Version:   version + 1,
		CreatedAt: at,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record listing transition")
	}

	return Load(ctx, repo, current.ID)
}

func versionConflict(id uuid.UUID, expected, actual int64) error {
	details := map[string]any{
		"listing_id":       id,
		"expected_version": expected,
	}
	if actual > 0 {
		details["current_version"] = actual
	}
	return pkgerrors.New(pkgerrors.CodeConcurrencyConflict, "listing was modified concurrently").WithDetails(details)
}
