package models

import (
	"time"

	dbtypes "github.com/angelmondragon/hourstay-backend/pkg/db/types"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/google/uuid"
)

// User is a platform account: a listing owner or a back-office staff member.
type User struct {
	ID                    uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email                 string                `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash          string                `gorm:"column:password_hash;not null"`
	Name                  string                `gorm:"column:name;not null"`
	Role                  enums.UserRole        `gorm:"column:role;type:user_role;not null"`
	Permissions           dbtypes.PermissionSet `gorm:"column:permissions;type:text[];not null;default:'{}'"`
	SubscriptionDaysLimit *int                  `gorm:"column:subscription_days_limit"`
	ObjectLimit           int                   `gorm:"column:object_limit;not null;default:0"`
	IsActive              bool                  `gorm:"column:is_active;not null;default:true"`
	LastLoginAt           *time.Time            `gorm:"column:last_login_at"`
	CreatedAt             time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
