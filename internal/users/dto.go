package users

import (
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/hourstay-backend/pkg/db/types"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/google/uuid"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID                    uuid.UUID  `json:"id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	Role                  string     `json:"role"`
	Permissions           []string   `json:"permissions"`
	SubscriptionDaysLimit *int       `json:"subscription_days_limit,omitempty"`
	ObjectLimit           int        `json:"object_limit"`
	IsActive              bool       `json:"is_active"`
	LastLoginAt           *time.Time `json:"last_login_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email                 string
	PasswordHash          string
	Name                  string
	Role                  enums.UserRole
	Permissions           dbtypes.PermissionSet
	SubscriptionDaysLimit *int
	ObjectLimit           int
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:                    u.ID,
		Email:                 u.Email,
		Name:                  u.Name,
		Role:                  string(u.Role),
		Permissions:           u.Permissions.Strings(),
		SubscriptionDaysLimit: u.SubscriptionDaysLimit,
		ObjectLimit:           u.ObjectLimit,
		IsActive:              u.IsActive,
		LastLoginAt:           u.LastLoginAt,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	perms := c.Permissions
	if perms == nil {
		perms = dbtypes.PermissionSet{}
	}
	return &models.User{
		ID:                    uuid.New(),
		Email:                 c.Email,
		PasswordHash:          c.PasswordHash,
		Name:                  c.Name,
		Role:                  c.Role,
		Permissions:           append(dbtypes.PermissionSet(nil), perms...),
		SubscriptionDaysLimit: c.SubscriptionDaysLimit,
		ObjectLimit:           c.ObjectLimit,
		IsActive:              true,
	}
}
