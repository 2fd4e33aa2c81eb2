package models

import (
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/google/uuid"
)

// ListingTransition is the append-only history of committed listing actions.
// It carries moderation comments and manager reasons.
type ListingTransition struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ListingID uuid.UUID           `gorm:"column:listing_id;type:uuid;not null"`
	Action    enums.ListingAction `gorm:"column:action;not null"`
	FromState enums.ListingState  `gorm:"column:from_state;type:listing_state;not null"`
	ToState   enums.ListingState  `gorm:"column:to_state;type:listing_state;not null"`
	ActorID   *uuid.UUID          `gorm:"column:actor_id;type:uuid"`
	ActorRole string              `gorm:"column:actor_role;not null"`
	Comment   *string             `gorm:"column:comment"`
	Version   int64               `gorm:"column:version;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
