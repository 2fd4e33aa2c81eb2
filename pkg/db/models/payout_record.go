package models

import (
	"time"

	"github.com/google/uuid"
)

// PayoutRecord is the immutable snapshot of one mark-paid batch.
type PayoutRecord struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AdminID       uuid.UUID `gorm:"column:admin_id;type:uuid;not null"`
	Amount        int64     `gorm:"column:amount;not null"`
	BonusesClosed int       `gorm:"column:bonuses_closed;not null"`
	Note          *string   `gorm:"column:note"`
	PaidBy        uuid.UUID `gorm:"column:paid_by;type:uuid;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
