package withdrawals

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/hourstay-backend/api/middleware"
	"github.com/angelmondragon/hourstay-backend/api/responses"
	"github.com/angelmondragon/hourstay-backend/api/validators"
	"github.com/angelmondragon/hourstay-backend/internal/withdrawals"
	pkgAuth "github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/angelmondragon/hourstay-backend/pkg/pagination"
)

type createRequest struct {
	Amount    *int64                 `json:"amount"`
	AmountRub *string                `json:"amount_rub" validate:"omitempty,rubles"`
	Method    string                 `json:"method" validate:"required"`
	Details   withdrawals.RawDetails `json:"details"`
}

type processRequest struct {
	PaidAmount    *int64  `json:"paid_amount"`
	PaidAmountRub *string `json:"paid_amount_rub" validate:"omitempty,rubles"`
	Note          *string `json:"note" validate:"omitempty,max=1000"`
}

type rejectRequest struct {
	Note string `json:"note" validate:"required,max=1000"`
}

// Create files a withdrawal request against the caller's available balance.
func Create(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
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
		amount, err := validators.ResolveAmount(body.Amount, body.AmountRub, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParseWithdrawalMethod(strings.TrimSpace(body.Method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid method").
				WithDetails(map[string]any{"field": "method"}))
			return
		}
		details, err := withdrawals.NewDetails(method, body.Details)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Create(r.Context(), actor, withdrawals.CreateInput{Amount: *amount, Details: details})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, withdrawals.FromModel(request))
	}
}

// Get returns one request visible to the caller.
func Get(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return withID(svc, logg, func(r *http.Request, actor pkgAuth.Principal, svc withdrawals.Service) (*models.WithdrawalRequest, error) {
		id, err := validators.ParseUUIDParam(r, "withdrawalId")
		if err != nil {
			return nil, err
		}
		return svc.Get(r.Context(), actor, id)
	})
}

// Mine pages the caller's own requests, newest first.
func Mine(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return withPage(svc, logg, func(r *http.Request, actor pkgAuth.Principal, params pagination.Params) (*pagination.Page[models.WithdrawalRequest], error) {
		return svc.ListMine(r.Context(), actor, params)
	})
}

// Queue pages the open requests awaiting accounting, oldest first.
func Queue(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return withPage(svc, logg, func(r *http.Request, actor pkgAuth.Principal, params pagination.Params) (*pagination.Page[models.WithdrawalRequest], error) {
		return svc.Queue(r.Context(), actor, params)
	})
}

// Start moves a pending request into processing.
func Start(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return withID(svc, logg, func(r *http.Request, actor pkgAuth.Principal, svc withdrawals.Service) (*models.WithdrawalRequest, error) {
		id, err := validators.ParseUUIDParam(r, "withdrawalId")
		if err != nil {
			return nil, err
		}
		return svc.StartProcessing(r.Context(), actor, id)
	})
}

// Process settles a request; paid_amount may be lower than the requested amount.
func Process(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return withID(svc, logg, func(r *http.Request, actor pkgAuth.Principal, svc withdrawals.Service) (*models.WithdrawalRequest, error) {
		id, err := validators.ParseUUIDParam(r, "withdrawalId")
		if err != nil {
			return nil, err
		}
		var body processRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		paid, err := validators.ResolveAmount(body.PaidAmount, body.PaidAmountRub, true)
		if err != nil {
			return nil, err
		}
		return svc.Process(r.Context(), actor, id, *paid, body.Note)
	})
}

// Reject closes a request with a mandatory note and releases the reservation.
func Reject(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return withID(svc, logg, func(r *http.Request, actor pkgAuth.Principal, svc withdrawals.Service) (*models.WithdrawalRequest, error) {
		id, err := validators.ParseUUIDParam(r, "withdrawalId")
		if err != nil {
			return nil, err
		}
		var body rejectRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.Reject(r.Context(), actor, id, strings.TrimSpace(body.Note))
	})
}

// Cancel lets the requesting manager withdraw a pending request.
func Cancel(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return withID(svc, logg, func(r *http.Request, actor pkgAuth.Principal, svc withdrawals.Service) (*models.WithdrawalRequest, error) {
		id, err := validators.ParseUUIDParam(r, "withdrawalId")
		if err != nil {
			return nil, err
		}
		return svc.Cancel(r.Context(), actor, id)
	})
}

func withID(svc withdrawals.Service, logg *logger.Logger, call func(*http.Request, pkgAuth.Principal, withdrawals.Service) (*models.WithdrawalRequest, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		request, err := call(r, actor, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, withdrawals.FromModel(request))
	}
}

func withPage(svc withdrawals.Service, logg *logger.Logger, call func(*http.Request, pkgAuth.Principal, pagination.Params) (*pagination.Page[models.WithdrawalRequest], error)) http.HandlerFunc {
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

		page, err := call(r, actor, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[withdrawals.WithdrawalDTO]{
			Items:      withdrawals.FromModels(page.Items),
			NextCursor: page.NextCursor,
		})
	}
}

func prepare(w http.ResponseWriter, r *http.Request, available bool, logg *logger.Logger) (pkgAuth.Principal, bool) {
	if !available {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "withdrawal service unavailable"))
		return pkgAuth.Principal{}, false
	}
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return pkgAuth.Principal{}, false
	}
	return actor, true
}
