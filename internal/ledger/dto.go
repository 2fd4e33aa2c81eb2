package ledger

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/money"
	"github.com/google/uuid"
)

// EntryDTO is the API shape of a bonus entry.
type EntryDTO struct {
	ID         uuid.UUID  `json:"id"`
	AdminID    uuid.UUID  `json:"admin_id"`
	EntityType string     `json:"entity_type"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
	Amount     int64      `json:"amount"`
	AmountRub  string     `json:"amount_rub"`
	IsPaid     bool       `json:"is_paid"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	PaidBy     *uuid.UUID `json:"paid_by,omitempty"`
	PayoutID   *uuid.UUID `json:"payout_id,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	CreatedBy  uuid.UUID  `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PayoutDTO is the API shape of a payout snapshot.
type PayoutDTO struct {
	ID            uuid.UUID `json:"id"`
	AdminID       uuid.UUID `json:"admin_id"`
	Amount        int64     `json:"amount"`
	AmountRub     string    `json:"amount_rub"`
	BonusesClosed int       `json:"bonuses_closed"`
	Note          *string   `json:"note,omitempty"`
	PaidBy        uuid.UUID `json:"paid_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventDTO is the API shape of an audit ledger event.
type EventDTO struct {
	ID          uuid.UUID       `json:"id"`
	AdminID     uuid.UUID       `json:"admin_id"`
	ActorID     uuid.UUID       `json:"actor_id"`
	Type        string          `json:"type"`
	Amount      int64           `json:"amount"`
	ReferenceID *uuid.UUID      `json:"reference_id,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreditDTO is the API shape of a withdrawable balance credit.
type CreditDTO struct {
	ID          uuid.UUID  `json:"id"`
	AdminID     uuid.UUID  `json:"admin_id"`
	Source      string     `json:"source"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
	Amount      int64      `json:"amount"`
	AmountRub   string     `json:"amount_rub"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PayoutResultDTO renders a mark-paid outcome.
type PayoutResultDTO struct {
	Payout  *PayoutDTO `json:"payout"`
	Entries []EntryDTO `json:"entries"`
	Totals  Totals     `json:"totals"`
}

func EntryFromModel(e *models.BonusEntry) EntryDTO {
	return EntryDTO{
		ID:         e.ID,
		AdminID:    e.AdminID,
		EntityType: string(e.EntityType),
		EntityID:   e.EntityID,
		Amount:     e.Amount,
		AmountRub:  money.Format(e.Amount),
		IsPaid:     e.IsPaid,
		PaidAt:     e.PaidAt,
		PaidBy:     e.PaidBy,
		PayoutID:   e.PayoutID,
		Notes:      e.Notes,
		CreatedBy:  e.CreatedBy,
		CreatedAt:  e.CreatedAt,
	}
}

func EntriesFromModels(rows []models.BonusEntry) []EntryDTO {
	out := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, EntryFromModel(&rows[i]))
	}
	return out
}

func PayoutFromModel(p *models.PayoutRecord) *PayoutDTO {
	if p == nil {
		return nil
	}
	return &PayoutDTO{
		ID:            p.ID,
		AdminID:       p.AdminID,
		Amount:        p.Amount,
		AmountRub:     money.Format(p.Amount),
		BonusesClosed: p.BonusesClosed,
		Note:          p.Note,
		PaidBy:        p.PaidBy,
		CreatedAt:     p.CreatedAt,
	}
}

func PayoutsFromModels(rows []models.PayoutRecord) []PayoutDTO {
	out := make([]PayoutDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *PayoutFromModel(&rows[i]))
	}
	return out
}

func CreditFromModel(c *models.BalanceCredit) CreditDTO {
	return CreditDTO{
		ID:          c.ID,
		AdminID:     c.AdminID,
		Source:      string(c.Source),
		ReferenceID: c.ReferenceID,
		Amount:      c.Amount,
		AmountRub:   money.Format(c.Amount),
		Notes:       c.Notes,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
	}
}

func CreditsFromModels(rows []models.BalanceCredit) []CreditDTO {
	out := make([]CreditDTO, 0, len(rows))
	for i := range rows {
		out = append(out, CreditFromModel(&rows[i]))
	}
	return out
}

func EventsFromModels(rows []models.LedgerEvent) []EventDTO {
	out := make([]EventDTO, 0, len(rows))
	for _, e := range rows {
		out = append(out, EventDTO{
			ID:          e.ID,
			AdminID:     e.AdminID,
			ActorID:     e.ActorID,
			Type:        string(e.Type),
			Amount:      e.Amount,
			ReferenceID: e.ReferenceID,
			Metadata:    e.Metadata,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

// ResultFromPayout renders a mark-paid result.
func ResultFromPayout(r *PayoutResult) *PayoutResultDTO {
	if r == nil {
		return nil
	}
	return &PayoutResultDTO{
		Payout:  PayoutFromModel(r.Payout),
		Entries: EntriesFromModels(r.Entries),
		Totals:  r.Totals,
	}
}
