package listings

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/hourstay-backend/api/responses"
	"github.com/angelmondragon/hourstay-backend/api/validators"
	"github.com/angelmondragon/hourstay-backend/internal/listings"
	"github.com/angelmondragon/hourstay-backend/internal/moderation"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/angelmondragon/hourstay-backend/pkg/pagination"
)

type moderateRequest struct {
	Decision string `json:"decision" validate:"required"`
	Comment  string `json:"comment" validate:"max=2000"`
	Version  int64  `json:"version" validate:"required,min=1"`
}

// Moderate applies an approve or reject decision. A notification failure
// after commit is reported in the warnings array with status 200.
func Moderate(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
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
		var body moderateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decision, err := enums.ParseModerationDecision(body.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision").
				WithDetails(map[string]any{"field": "decision"}))
			return
		}

		result, err := svc.Moderate(r.Context(), actor, moderation.ModerateInput{
			ListingID:       id,
			ExpectedVersion: body.Version,
			Decision:        decision,
			Comment:         strings.TrimSpace(body.Comment),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessWarnings(w, http.StatusOK, listings.FromModel(result.Listing, now()), result.Warnings)
	}
}

// Queue pages listings waiting for a moderation decision, oldest first.
func Queue(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Queue(r.Context(), actor, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[listings.ListingDTO]{
			Items:      listings.FromModels(page.Items, now()),
			NextCursor: page.NextCursor,
		})
	}
}
