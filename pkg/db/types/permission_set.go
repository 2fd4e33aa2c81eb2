package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/angelmondragon/hourstay-backend/pkg/enums"
)

// PermissionSet persists as a Postgres text[] literal ({listings,bonuses}).
type PermissionSet []enums.Permission

func (p *PermissionSet) Scan(src any) error {
	if src == nil {
		*p = PermissionSet{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return p.parseFromString(v)
	case []byte:
		return p.parseFromString(string(v))
	default:
		return fmt.Errorf("PermissionSet: unsupported Scan type %T", src)
	}
}

func (p PermissionSet) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "{}", nil
	}
	parts := make([]string, 0, len(p))
	for _, perm := range p {
		parts = append(parts, string(perm))
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Has reports whether the set grants perm.
func (p PermissionSet) Has(perm enums.Permission) bool {
	for _, candidate := range p {
		if candidate == perm {
			return true
		}
	}
	return false
}

// Strings returns the raw permission names.
func (p PermissionSet) Strings() []string {
	out := make([]string, 0, len(p))
	for _, perm := range p {
		out = append(out, string(perm))
	}
	return out
}

// ParsePermissionSet validates raw names, dropping duplicates.
func ParsePermissionSet(values []string) (PermissionSet, error) {
	out := make(PermissionSet, 0, len(values))
	for _, raw := range values {
		perm, err := enums.ParsePermission(strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		if !out.Has(perm) {
			out = append(out, perm)
		}
	}
	return out, nil
}

func (p *PermissionSet) parseFromString(s string) error {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if strings.TrimSpace(s) == "" {
		*p = PermissionSet{}
		return nil
	}

	raw := strings.Split(s, ",")
	for i := range raw {
		raw[i] = strings.Trim(strings.TrimSpace(raw[i]), `"`)
	}
	parsed, err := ParsePermissionSet(raw)
	if err != nil {
		return fmt.Errorf("PermissionSet: %w", err)
	}
	*p = parsed
	return nil
}
