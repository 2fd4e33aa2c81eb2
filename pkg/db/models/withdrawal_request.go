package models

import (
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/google/uuid"
)

// WithdrawalRequest is a manager's request to convert ledger balance into a payment.
type WithdrawalRequest struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ManagerID     uuid.UUID              `gorm:"column:manager_id;type:uuid;not null"`
	Amount        int64                  `gorm:"column:amount;not null"`
	Method        enums.WithdrawalMethod `gorm:"column:method;type:withdrawal_method;not null"`
	Phone         *string                `gorm:"column:phone"`
	CardNumber    string                 `gorm:"column:card_number;not null"`
	RecipientName *string                `gorm:"column:recipient_name"`
	BankName      *string                `gorm:"column:bank_name"`
	Status        enums.WithdrawalStatus `gorm:"column:status;type:withdrawal_status;not null;default:'pending'"`
	PaidAmount    int64                  `gorm:"column:paid_amount;not null;default:0"`
	PaymentNote   *string                `gorm:"column:payment_note"`
	ProcessedAt   *time.Time             `gorm:"column:processed_at"`
	ProcessedBy   *uuid.UUID             `gorm:"column:processed_by;type:uuid"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
