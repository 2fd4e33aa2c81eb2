package listings

import (
	"time"

	"github.com/angelmondragon/hourstay-backend/internal/subscriptions"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/google/uuid"
)

// ListingDTO is the API shape of a listing with its derived subscription period.
type ListingDTO struct {
	ID                  uuid.UUID            `json:"id"`
	OwnerID             uuid.UUID            `json:"owner_id"`
	Title               string               `json:"title"`
	State               string               `json:"state"`
	ModerationComment   *string              `json:"moderation_comment,omitempty"`
	StateReason         *string              `json:"state_reason,omitempty"`
	Subscription        subscriptions.Period `json:"subscription"`
	CreatedByOwner      bool                 `json:"created_by_owner"`
	CreatedByEmployeeID *uuid.UUID           `json:"created_by_employee_id,omitempty"`
	AssignedManagerID   *uuid.UUID           `json:"assigned_manager_id,omitempty"`
	Version             int64                `json:"version"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// TransitionDTO is one history row.
type TransitionDTO struct {
	ID        uuid.UUID  `json:"id"`
	Action    string     `json:"action"`
	FromState string     `json:"from_state"`
	ToState   string     `json:"to_state"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	ActorRole string     `json:"actor_role"`
	Comment   *string    `json:"comment,omitempty"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
}

// FromModel renders a listing as observed at now.
func FromModel(l *models.Listing, now time.Time) *ListingDTO {
	if l == nil {
		return nil
	}
	return &ListingDTO{
		ID:                  l.ID,
		OwnerID:             l.OwnerID,
		Title:               l.Title,
		State:               string(l.State),
		ModerationComment:   l.ModerationComment,
		StateReason:         l.StateReason,
		Subscription:        subscriptions.PeriodAt(l.SubscriptionExpiresAt, now),
		CreatedByOwner:      l.CreatedByOwner,
		CreatedByEmployeeID: l.CreatedByEmployeeID,
		AssignedManagerID:   l.AssignedManagerID,
		Version:             l.Version,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

// FromModels renders a slice of listings.
func FromModels(rows []models.Listing, now time.Time) []ListingDTO {
	out := make([]ListingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i], now))
	}
	return out
}

// TransitionsFromModels renders history rows.
func TransitionsFromModels(rows []models.ListingTransition) []TransitionDTO {
	out := make([]TransitionDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, TransitionDTO{
			ID:        r.ID,
			Action:    string(r.Action),
			FromState: string(r.FromState),
			ToState:   string(r.ToState),
			ActorID:   r.ActorID,
			ActorRole: r.ActorRole,
			Comment:   r.Comment,
			Version:   r.Version,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}
