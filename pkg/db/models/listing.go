package models

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/google/uuid"
)

// Listing is a bookable property entry. State changes go through the listing
// state machine only; Version increments on every committed write.
type Listing struct {
	ID                    uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID               uuid.UUID          `gorm:"column:owner_id;type:uuid;not null"`
	Title                 string             `gorm:"column:title;not null"`
	State                 enums.ListingState `gorm:"column:state;type:listing_state;not null;default:'draft'"`
	ModerationComment     *string            `gorm:"column:moderation_comment"`
	StateReason           *string            `gorm:"column:state_reason"`
	SubscriptionExpiresAt *time.Time         `gorm:"column:subscription_expires_at"`
	CreatedByOwner        bool               `gorm:"column:created_by_owner;not null;default:false"`
	CreatedByEmployeeID   *uuid.UUID         `gorm:"column:created_by_employee_id;type:uuid"`
	AssignedManagerID     *uuid.UUID         `gorm:"column:assigned_manager_id;type:uuid"`
	ArchivedSnapshot      json.RawMessage    `gorm:"column:archived_snapshot;type:jsonb"`
	Version               int64              `gorm:"column:version;not null;default:1"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
