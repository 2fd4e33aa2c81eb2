package models

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/google/uuid"
)

// LedgerEvent records an immutable money lifecycle event for a staff account.
type LedgerEvent struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AdminID     uuid.UUID             `gorm:"column:admin_id;type:uuid;not null"`
	ActorID     uuid.UUID             `gorm:"column:actor_id;type:uuid;not null"`
	Type        enums.LedgerEventType `gorm:"column:type;type:ledger_event_type;not null"`
	Amount      int64                 `gorm:"column:amount;not null"`
	ReferenceID *uuid.UUID            `gorm:"column:reference_id;type:uuid"`
	Metadata    json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
