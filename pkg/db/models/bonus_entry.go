package models

import (
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/google/uuid"
)

// BonusEntry credits a staff member for a qualifying action. Amounts are kopecks.
type BonusEntry struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AdminID    uuid.UUID             `gorm:"column:admin_id;type:uuid;not null"`
	EntityType enums.BonusEntityType `gorm:"column:entity_type;not null"`
	EntityID   *uuid.UUID            `gorm:"column:entity_id;type:uuid"`
	Amount     int64                 `gorm:"column:amount;not null"`
	IsPaid     bool                  `gorm:"column:is_paid;not null;default:false"`
	PaidAt     *time.Time            `gorm:"column:paid_at"`
	PaidBy     *uuid.UUID            `gorm:"column:paid_by;type:uuid"`
	PayoutID   *uuid.UUID            `gorm:"column:payout_id;type:uuid"`
	Notes      *string               `gorm:"column:notes"`
	CreatedBy  uuid.UUID             `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
}
