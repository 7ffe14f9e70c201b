package employee

import "slices"

// PermissionPolicy evaluates capability checks. AdminRole is the role that
// bypasses every check.
type PermissionPolicy struct {
	AdminRole string
}

func NewPermissionPolicy(adminRole string) PermissionPolicy {
	if adminRole == "" {
		adminRole = "admin"
	}
	return PermissionPolicy{AdminRole: adminRole}
}

// Allows reports whether e may act when any one of required is needed.
// An empty requirement is unrestricted, even without a principal.
func (p PermissionPolicy) Allows(e *Employee, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if e == nil {
		return false
	}
	if p.IsAdmin(e) || e.HasAll() {
		return true
	}
	for _, r := range required {
		if slices.Contains(e.Permissions, r) {
			return true
		}
	}
	return false
}

func (p PermissionPolicy) IsAdmin(e *Employee) bool {
	return e != nil && p.AdminRole != "" && e.Role == p.AdminRole
}
