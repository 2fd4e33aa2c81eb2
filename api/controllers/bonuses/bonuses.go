package bonuses

import (
	"net/http"

	"github.com/angelmondragon/hourstay-backend/api/middleware"
	"github.com/angelmondragon/hourstay-backend/api/responses"
	"github.com/angelmondragon/hourstay-backend/api/validators"
	"github.com/angelmondragon/hourstay-backend/internal/ledger"
	pkgAuth "github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/google/uuid"
)

type createRequest struct {
	AdminID    uuid.UUID  `json:"admin_id" validate:"required"`
	EntityType string     `json:"entity_type" validate:"required"`
	EntityID   *uuid.UUID `json:"entity_id"`
	Amount     *int64     `json:"amount"`
	AmountRub  *string    `json:"amount_rub" validate:"omitempty,rubles"`
	Notes      *string    `json:"notes" validate:"omitempty,max=1000"`
}

type markPaidRequest struct {
	AdminID   uuid.UUID   `json:"admin_id" validate:"required"`
	IDs       []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
	Amount    *int64      `json:"amount"`
	AmountRub *string     `json:"amount_rub" validate:"omitempty,rubles"`
	Note      *string     `json:"note" validate:"omitempty,max=1000"`
}

type creditRequest struct {
	AdminID     uuid.UUID  `json:"admin_id" validate:"required"`
	Source      string     `json:"source" validate:"required"`
	ReferenceID *uuid.UUID `json:"reference_id"`
	Amount      *int64     `json:"amount"`
	AmountRub   *string    `json:"amount_rub" validate:"omitempty,rubles"`
	Notes       *string    `json:"notes" validate:"omitempty,max=1000"`
}

type markUnpaidRequest struct {
	AdminID uuid.UUID   `json:"admin_id" validate:"required"`
	IDs     []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
}

// Create credits a bonus entry to a staff member.
func Create(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
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
		entityType, err := enums.ParseBonusEntityType(body.EntityType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entity_type").
				WithDetails(map[string]any{"field": "entity_type"}))
			return
		}
		amount, err := validators.ResolveAmount(body.Amount, body.AmountRub, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.CreateBonusEntry(r.Context(), actor, ledger.CreateEntryInput{
			AdminID:    body.AdminID,
			EntityType: entityType,
			EntityID:   body.EntityID,
			Amount:     *amount,
			Notes:      body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ledger.EntryFromModel(entry))
	}
}

// List returns the entries of one admin, optionally filtered by ?paid=.
func List(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		adminID, err := adminFromQuery(r, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paid, err := validators.ParseQueryBool(r, "paid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListEntries(r.Context(), actor, adminID, paid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ledger.EntriesFromModels(rows))
	}
}

// Stats returns totals for one admin when ?admin_id= is given, otherwise the
// per-admin breakdown.
func Stats(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		adminID, present, err := validators.ParseQueryUUID(r, "admin_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if present {
			totals, err := svc.Totals(r.Context(), actor, adminID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, totals)
			return
		}

		rows, err := svc.ListTotals(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// Balance returns the derived withdrawable balance.
func Balance(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		adminID, err := adminFromQuery(r, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), actor, adminID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

// Credit adds to a staff member's withdrawable balance. A repeated
// reference_id answers 200 with the credit already on file.
func Credit(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		var body creditRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		source, err := enums.ParseBalanceCreditSource(body.Source)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source").
				WithDetails(map[string]any{"field": "source"}))
			return
		}
		amount, err := validators.ResolveAmount(body.Amount, body.AmountRub, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		credit, created, err := svc.CreditBalance(r.Context(), actor, ledger.CreditInput{
			AdminID:     body.AdminID,
			Source:      source,
			ReferenceID: body.ReferenceID,
			Amount:      *amount,
			Notes:       body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, ledger.CreditFromModel(credit))
	}
}

// Credits lists the balance credits of one admin, newest first.
func Credits(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		adminID, err := adminFromQuery(r, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListCredits(r.Context(), actor, adminID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ledger.CreditsFromModels(rows))
	}
}

// Events returns the audit trail of one admin's ledger.
func Events(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		adminID, err := adminFromQuery(r, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Events(r.Context(), actor, adminID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ledger.EventsFromModels(rows))
	}
}

// MarkPaid closes a batch of entries under one payout record.
func MarkPaid(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		var body markPaidRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amount, err := validators.ResolveAmount(body.Amount, body.AmountRub, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MarkPaid(r.Context(), actor, ledger.MarkPaidInput{
			AdminID: body.AdminID,
			IDs:     body.IDs,
			Amount:  amount,
			Note:    body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ledger.ResultFromPayout(result))
	}
}

// MarkUnpaid reopens previously paid entries.
func MarkUnpaid(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		var body markUnpaidRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		totals, err := svc.MarkUnpaid(r.Context(), actor, body.AdminID, body.IDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, totals)
	}
}

// Payouts lists payout snapshots of one admin, newest first.
func Payouts(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := prepare(w, r, svc != nil, logg)
		if !ok {
			return
		}
		adminID, err := adminFromQuery(r, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListPayouts(r.Context(), actor, adminID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ledger.PayoutsFromModels(rows))
	}
}

// adminFromQuery defaults to the caller's own account.
func adminFromQuery(r *http.Request, actor pkgAuth.Principal) (uuid.UUID, error) {
	adminID, present, err := validators.ParseQueryUUID(r, "admin_id")
	if err != nil {
		return uuid.Nil, err
	}
	if !present {
		return actor.UserID, nil
	}
	return adminID, nil
}

func prepare(w http.ResponseWriter, r *http.Request, available bool, logg *logger.Logger) (pkgAuth.Principal, bool) {
	if !available {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
		return pkgAuth.Principal{}, false
	}
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return pkgAuth.Principal{}, false
	}
	return actor, true
}
