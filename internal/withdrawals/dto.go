package withdrawals

import (
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/money"
	"github.com/google/uuid"
)

// WithdrawalDTO is the API shape of a withdrawal request.
type WithdrawalDTO struct {
	ID          uuid.UUID  `json:"id"`
	ManagerID   uuid.UUID  `json:"manager_id"`
	Amount      int64      `json:"amount"`
	AmountRub   string     `json:"amount_rub"`
	Method      string     `json:"method"`
	Details     Details    `json:"details"`
	Status      string     `json:"status"`
	PaidAmount  int64      `json:"paid_amount"`
	PaymentNote *string    `json:"payment_note,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ProcessedBy *uuid.UUID `json:"processed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FromModel renders one request.
func FromModel(w *models.WithdrawalRequest) *WithdrawalDTO {
	if w == nil {
		return nil
	}
	return &WithdrawalDTO{
		ID:          w.ID,
		ManagerID:   w.ManagerID,
		Amount:      w.Amount,
		AmountRub:   money.Format(w.Amount),
		Method:      string(w.Method),
		Details:     DetailsFromModel(w),
		Status:      string(w.Status),
		PaidAmount:  w.PaidAmount,
		PaymentNote: w.PaymentNote,
		ProcessedAt: w.ProcessedAt,
		ProcessedBy: w.ProcessedBy,
		CreatedAt:   w.CreatedAt,
	}
}

// FromModels renders a page of requests.
func FromModels(rows []models.WithdrawalRequest) []WithdrawalDTO {
	out := make([]WithdrawalDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
