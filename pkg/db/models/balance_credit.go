package models

import (
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/google/uuid"
)

// BalanceCredit funds the withdrawable balance of a staff account. Bonus
// entries are a separate obligation and never feed it.
type BalanceCredit struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AdminID     uuid.UUID                 `gorm:"column:admin_id;type:uuid;not null"`
	Source      enums.BalanceCreditSource `gorm:"column:source;not null"`
	ReferenceID *uuid.UUID                `gorm:"column:reference_id;type:uuid"`
	Amount      int64                     `gorm:"column:amount;not null"`
	Notes       *string                   `gorm:"column:notes"`
	CreatedBy   uuid.UUID                 `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
