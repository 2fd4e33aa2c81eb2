package listings

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/hourstay-backend/api/middleware"
	"github.com/angelmondragon/hourstay-backend/api/responses"
	"github.com/angelmondragon/hourstay-backend/api/validators"
	"github.com/angelmondragon/hourstay-backend/internal/listings"
	"github.com/angelmondragon/hourstay-backend/internal/subscriptions"
	pkgAuth "github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/angelmondragon/hourstay-backend/pkg/pagination"
	"github.com/google/uuid"
)

var now = func() time.Time { return time.Now().UTC() }

type createRequest struct {
	Title   string     `json:"title" validate:"required,max=255"`
	OwnerID *uuid.UUID `json:"owner_id"`
}

type versionRequest struct {
	Version int64 `json:"version" validate:"required,min=1"`
}

type submitRequest struct {
	Version int64   `json:"version" validate:"required,min=1"`
	Title   *string `json:"title" validate:"omitempty,max=255"`
}

type reasonRequest struct {
	Version int64  `json:"version" validate:"required,min=1"`
	Reason  string `json:"reason" validate:"max=1000"`
}

type extendRequest struct {
	Version int64   `json:"version" validate:"required,min=1"`
	Days    *int    `json:"days" validate:"omitempty,min=1"`
	Tier    *string `json:"tier"`
}

type assignRequest struct {
	Version   int64     `json:"version" validate:"required,min=1"`
	ManagerID uuid.UUID `json:"manager_id" validate:"required"`
}

// Create opens a new draft listing.
func Create(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}

		var body createRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Create(r.Context(), actor, listings.CreateInput{
			Title:   validators.SanitizeString(body.Title, 255),
			OwnerID: body.OwnerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listings.FromModel(listing, now()))
	}
}

// Get returns one listing with its derived subscription period.
func Get(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listings.FromModel(listing, now()))
	}
}

// History returns the transition log of a listing, oldest first.
func History(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.History(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listings.TransitionsFromModels(rows))
	}
}

// Submit sends a draft or rejected listing to moderation.
func Submit(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body submitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Submit(r.Context(), actor, id, body.Version, body.Title)
		writeListing(w, r, logg, listing, err)
	}
}

// Freeze, Unfreeze, Deactivate and Activate take {reason, version}.
func Freeze(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return withReason(svc, logg, func(r *http.Request, a pkgAuth.Principal, id uuid.UUID, v int64, reason string) (*models.Listing, error) {
		return svc.Freeze(r.Context(), a, id, v, reason)
	})
}

func Unfreeze(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return withReason(svc, logg, func(r *http.Request, a pkgAuth.Principal, id uuid.UUID, v int64, reason string) (*models.Listing, error) {
		return svc.Unfreeze(r.Context(), a, id, v, reason)
	})
}

func Deactivate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return withReason(svc, logg, func(r *http.Request, a pkgAuth.Principal, id uuid.UUID, v int64, reason string) (*models.Listing, error) {
		return svc.Deactivate(r.Context(), a, id, v, reason)
	})
}

func Activate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return withReason(svc, logg, func(r *http.Request, a pkgAuth.Principal, id uuid.UUID, v int64, reason string) (*models.Listing, error) {
		return svc.Activate(r.Context(), a, id, v, reason)
	})
}

// Archive and Unarchive take {version}.
func Archive(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return withVersion(svc, logg, func(r *http.Request, a pkgAuth.Principal, id uuid.UUID, v int64) (*models.Listing, error) {
		return svc.Archive(r.Context(), a, id, v)
	})
}

func Unarchive(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return withVersion(svc, logg, func(r *http.Request, a pkgAuth.Principal, id uuid.UUID, v int64) (*models.Listing, error) {
		return svc.Unarchive(r.Context(), a, id, v)
	})
}

func Release(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return withVersion(svc, logg, func(r *http.Request, a pkgAuth.Principal, id uuid.UUID, v int64) (*models.Listing, error) {
		return svc.ReleaseManager(r.Context(), a, id, v)
	})
}

// Extend adds days to the subscription, given directly or through a tier.
func Extend(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body extendRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var days int
		switch {
		case body.Days != nil && body.Tier != nil:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "send either days or tier"))
			return
		case body.Days != nil:
			days = *body.Days
		case body.Tier != nil:
			days, err = subscriptions.TierDays(*body.Tier)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "days or tier is required"))
			return
		}

		listing, err := svc.ExtendSubscription(r.Context(), actor, id, body.Version, days)
		writeListing(w, r, logg, listing, err)
	}
}

// Assign hands the listing to a manager.
func Assign(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body assignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.AssignManager(r.Context(), actor, id, body.Version, body.ManagerID)
		writeListing(w, r, logg, listing, err)
	}
}

// Delete hard-deletes a listing. Superadmin only.
func Delete(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
	}
}

// Lapsed lists active listings whose subscription has run out.
func Lapsed(svc listings.Service, defaultWithinDays int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		within, err := validators.ParseQueryInt(r, "within_days", defaultWithinDays, 0, 3650)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Lapsed(r.Context(), actor, within, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listings.FromModels(rows, now()))
	}
}

func withReason(svc listings.Service, logg *logger.Logger, call func(*http.Request, pkgAuth.Principal, uuid.UUID, int64, string) (*models.Listing, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body reasonRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := call(r, actor, id, body.Version, strings.TrimSpace(body.Reason))
		writeListing(w, r, logg, listing, err)
	}
}

func withVersion(svc listings.Service, logg *logger.Logger, call func(*http.Request, pkgAuth.Principal, uuid.UUID, int64) (*models.Listing, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body versionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := call(r, actor, id, body.Version)
		writeListing(w, r, logg, listing, err)
	}
}

func prepare(w http.ResponseWriter, r *http.Request, available bool, logg *logger.Logger) (pkgAuth.Principal, bool) {
	if !available {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
		return pkgAuth.Principal{}, false
	}
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return pkgAuth.Principal{}, false
	}
	return actor, true
}

func writeListing(w http.ResponseWriter, r *http.Request, logg *logger.Logger, listing *models.Listing, err error) {
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, listings.FromModel(listing, now()))
}
