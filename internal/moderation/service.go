// Package moderation resolves listings waiting for review. It is a narrow view
// over the listing state machine: only pending_moderation listings enter it.
package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/hourstay-backend/internal/listings"
	"github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/angelmondragon/hourstay-backend/pkg/metrics"
	"github.com/angelmondragon/hourstay-backend/pkg/notify"
	"github.com/angelmondragon/hourstay-backend/pkg/pagination"
	"github.com/angelmondragon/hourstay-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service moderates pending listings.
type Service interface {
	Moderate(ctx context.Context, actor auth.Principal, input ModerateInput) (*Result, error)
	Queue(ctx context.Context, actor auth.Principal, params pagination.Params) (*pagination.Page[models.Listing], error)
}

// ModerateInput carries one moderation decision.
type ModerateInput struct {
	ListingID       uuid.UUID
	ExpectedVersion int64
	Decision        enums.ModerationDecision
	Comment         string
}

// Result is the committed listing plus any post-commit warnings.
type Result struct {
	Listing  *models.Listing
	Warnings []types.Warning
}

// ServiceParams bundles the moderation dependencies.
type ServiceParams struct {
	Repo     listings.Repository
	TxRunner txRunner
	Gateway  notify.Gateway
	Logger   *logger.Logger
	Metrics  *metrics.DomainMetrics
	Clock    func() time.Time
}

type service struct {
	repo    listings.Repository
	tx      txRunner
	gateway notify.Gateway
	logg    *logger.Logger
	metrics *metrics.DomainMetrics
	now     func() time.Time
}

// NewService builds the moderation workflow.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("notification gateway required")
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
		tx:      params.TxRunner,
		gateway: params.Gateway,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     func() time.Time { return clock().UTC() },
	}, nil
}

// Moderate approves or rejects a pending listing. An approved listing that
// already holds a live subscription is published in the same transaction.
// Owner notification runs after commit and never undoes the decision.
func (s *service) Moderate(ctx context.Context, actor auth.Principal, input ModerateInput) (*Result, error) {
	action := enums.ListingActionApprove
	if input.Decision == enums.ModerationDecisionReject {
		action = enums.ListingActionReject
	}

	listing, err := s.commit(ctx, actor, action, input)
	s.metrics.ObserveTransition(string(action), metrics.ResultFor(err))
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"listing_id": listing.ID.String(),
		"action":     string(action),
		"state":      string(listing.State),
		"version":    listing.Version,
		"actor_role": string(actor.Role),
	})
	s.logg.Info(logCtx, "listing moderated")

	result := &Result{Listing: listing}
	if action == enums.ListingActionApprove && listing.CreatedByOwner {
		if err := s.gateway.ListingApproved(ctx, listing.ID); err != nil {
			s.metrics.IncNotificationFailure(notify.EventListingApproved)
			warnCtx := s.logg.WithField(logCtx, "error", err.Error())
			s.logg.Warn(warnCtx, "listing approval notification failed")
			result.Warnings = append(result.Warnings, types.Warning{
				Code:    types.WarningPartialFailure,
				Message: "listing approved but the owner notification could not be delivered",
			})
		}
	}
	return result, nil
}

func (s *service) commit(ctx context.Context, actor auth.Principal, action enums.ListingAction, input ModerateInput) (*models.Listing, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !actor.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderation not permitted")
	}
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}
	comment := strings.TrimSpace(input.Comment)
	if action == enums.ListingActionReject && comment == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment is required when rejecting")
	}

	var commentPtr *string
	var stored any
	if comment != "" {
		commentPtr = &comment
		stored = comment
	}

	var out *models.Listing
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := listings.Load(ctx, repo, input.ListingID)
		if err != nil {
			return err
		}
		now := s.now()
		updated, err := listings.Commit(ctx, repo, current, listings.Change{
			Action:          action,
			Actor:           actor,
			ExpectedVersion: input.ExpectedVersion,
			Comment:         commentPtr,
			Fields:          map[string]any{"moderation_comment": stored},
			At:              now,
		})
		if err != nil {
			return err
		}
		if action == enums.ListingActionApprove {
			updated, err = listings.PublishIfCovered(ctx, repo, updated, now)
			if err != nil {
				return err
			}
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Queue lists pending listings, oldest first.
func (s *service) Queue(ctx context.Context, actor auth.Principal, params pagination.Params) (*pagination.Page[models.Listing], error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !actor.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderation not permitted")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByState(ctx, enums.ListingStatePendingModeration, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list moderation queue")
	}
	page := pagination.Trim(rows, params.Limit, func(l models.Listing) pagination.Cursor {
		return pagination.Cursor{CreatedAt: l.CreatedAt, ID: l.ID}
	})
	return &page, nil
}
