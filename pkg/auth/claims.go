package auth

import (
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Role        enums.UserRole
	Permissions []enums.Permission
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID          `json:"user_id"`
	Role        enums.UserRole     `json:"role"`
	Permissions []enums.Permission `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Principal returns the authenticated actor described by the claims.
func (c *AccessTokenClaims) Principal() Principal {
	return Principal{
		UserID:      c.UserID,
		Role:        c.Role,
		Permissions: append([]enums.Permission(nil), c.Permissions...),
	}
}
