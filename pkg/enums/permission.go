package enums

import "fmt"

// Permission is a capability granted to an employee on top of their role.
type Permission string

const (
	PermissionListings   Permission = "listings"
	PermissionOwners     Permission = "owners"
	PermissionSettings   Permission = "settings"
	PermissionBonuses    Permission = "bonuses"
	PermissionAccounting Permission = "accounting"
)

var validPermissions = []Permission{
	PermissionListings,
	PermissionOwners,
	PermissionSettings,
	PermissionBonuses,
	PermissionAccounting,
}

// IsValid reports whether the value is a known Permission.
func (p Permission) IsValid() bool {
	for _, candidate := range validPermissions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePermission converts raw input into a Permission.
func ParsePermission(value string) (Permission, error) {
	for _, candidate := range validPermissions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid permission %q", value)
}
