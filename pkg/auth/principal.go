package auth

import (
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/google/uuid"
)

// Principal is the verified actor behind a request: (admin_id, role, permission_set).
type Principal struct {
	UserID      uuid.UUID
	Role        enums.UserRole
	Permissions []enums.Permission
}

// System is the actor recorded for transitions the platform performs on its own.
var System = Principal{Role: "system"}

// roleGrants are the capabilities a role carries without explicit permissions.
var roleGrants = map[enums.UserRole][]enums.Permission{
	enums.UserRoleManager:            {enums.PermissionListings},
	enums.UserRoleOperationalManager: {enums.PermissionListings, enums.PermissionOwners},
	enums.UserRoleChiefManager:       {enums.PermissionListings, enums.PermissionOwners, enums.PermissionBonuses},
	enums.UserRoleAccountant:         {enums.PermissionAccounting, enums.PermissionBonuses},
}

// IsSystem reports whether the principal is the platform itself.
func (p Principal) IsSystem() bool {
	return p.Role == System.Role && p.UserID == uuid.Nil
}

// IsSuperadmin reports whether the principal holds the highest privilege role.
func (p Principal) IsSuperadmin() bool {
	return p.Role == enums.UserRoleSuperadmin
}

// IsOwner reports whether the principal is a listing owner account.
func (p Principal) IsOwner() bool {
	return p.Role == enums.UserRoleOwner
}

// Can reports whether the principal holds the capability, either through the
// role or an explicit permission.
func (p Principal) Can(perm enums.Permission) bool {
	if p.IsSuperadmin() {
		return true
	}
	for _, granted := range roleGrants[p.Role] {
		if granted == perm {
			return true
		}
	}
	if p.Role != enums.UserRoleEmployee {
		return false
	}
	for _, granted := range p.Permissions {
		if granted == perm {
			return true
		}
	}
	return false
}

// CanModerate reports whether the principal may resolve pending listings.
func (p Principal) CanModerate() bool {
	switch p.Role {
	case enums.UserRoleSuperadmin, enums.UserRoleChiefManager, enums.UserRoleOperationalManager:
		return true
	case enums.UserRoleEmployee:
		return p.Can(enums.PermissionListings)
	}
	return false
}

// Require returns a PermissionDenied error unless the principal holds perm.
func (p Principal) Require(perm enums.Permission) error {
	if p.Can(perm) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "missing "+string(perm)+" capability")
}

// Validate rejects principals that did not come from a verified identity.
func (p Principal) Validate() error {
	if p.UserID == uuid.Nil || !p.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authenticated principal required")
	}
	return nil
}

// ActorID returns a pointer suitable for nullable actor columns.
func (p Principal) ActorID() *uuid.UUID {
	if p.UserID == uuid.Nil {
		return nil
	}
	id := p.UserID
	return &id
}
