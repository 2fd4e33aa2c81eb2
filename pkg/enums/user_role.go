package enums

import "fmt"

// UserRole represents the platform role carried on a user and their token.
type UserRole string

const (
	UserRoleOwner              UserRole = "owner"
	UserRoleEmployee           UserRole = "employee"
	UserRoleManager            UserRole = "manager"
	UserRoleOperationalManager UserRole = "operational_manager"
	UserRoleChiefManager       UserRole = "chief_manager"
	UserRoleAccountant         UserRole = "accountant"
	UserRoleSuperadmin         UserRole = "superadmin"
)

var validUserRoles = []UserRole{
	UserRoleOwner,
	UserRoleEmployee,
	UserRoleManager,
	UserRoleOperationalManager,
	UserRoleChiefManager,
	UserRoleAccountant,
	UserRoleSuperadmin,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role belongs to the back-office.
func (r UserRole) IsStaff() bool {
	return r.IsValid() && r != UserRoleOwner
}

// IsManagerFamily reports whether the role may hold listing assignments and
// request withdrawals.
func (r UserRole) IsManagerFamily() bool {
	switch r {
	case UserRoleManager, UserRoleOperationalManager, UserRoleChiefManager:
		return true
	}
	return false
}

// IsSeniorManager reports whether the role may act on listings it is not
// assigned to.
func (r UserRole) IsSeniorManager() bool {
	switch r {
	case UserRoleOperationalManager, UserRoleChiefManager, UserRoleSuperadmin:
		return true
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
