// Package employee holds the principal read by the session subsystem.
package employee

import (
	"context"
	"slices"
	"strings"
)

// PermissionAll grants every capability.
const PermissionAll = "all"

// DefaultRole is used when an employee row carries no position.
const DefaultRole = "staff"

// Employee is a principal. ID is the row key referenced by sessions;
// EmployeeNo is the identifier typed at login. Username is the legacy
// identifier kept for older rows.
type Employee struct {
	ID          string   `json:"id" validate:"required"`
	EmployeeNo  string   `json:"employee_id" validate:"required"`
	Username    string   `json:"username,omitempty"`
	Name        string   `json:"name" validate:"required"`
	Role        string   `json:"role" validate:"required"`
	Permissions []string `json:"permissions"`
}

// Normalize fills the identifier, role and permissions so that every
// employee leaving the login path has the same shape. typed is what the
// operator entered.
func Normalize(e *Employee, typed, defaultRole string) *Employee {
	if e == nil {
		return nil
	}
	if defaultRole == "" {
		defaultRole = DefaultRole
	}
	n := *e
	switch {
	case strings.TrimSpace(n.EmployeeNo) != "":
	case strings.TrimSpace(n.Username) != "":
		n.EmployeeNo = n.Username
	default:
		n.EmployeeNo = typed
	}
	if strings.TrimSpace(n.Role) == "" {
		n.Role = defaultRole
	}
	if n.Name == "" {
		n.Name = n.EmployeeNo
	}
	if n.Permissions == nil {
		n.Permissions = []string{}
	} else {
		n.Permissions = slices.Clone(n.Permissions)
	}
	return &n
}

// HasAll reports whether the employee holds the wildcard capability.
func (e *Employee) HasAll() bool {
	return slices.Contains(e.Permissions, PermissionAll)
}

// Repository is read access to the employees table plus the profile update.
type Repository interface {
	GetByEmployeeNo(ctx context.Context, employeeNo string) (*Employee, error)
	GetByUsername(ctx context.Context, username string) (*Employee, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Employee, error)
	UpdateName(ctx context.Context, id, name string) error
}
