package employee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    Employee
		typed string
		want  Employee
	}{
		{
			name:  "primary identifier kept",
			in:    Employee{ID: "u1", EmployeeNo: "E001", Name: "Amy", Role: "cashier", Permissions: []string{"sales"}},
			typed: "E001",
			want:  Employee{ID: "u1", EmployeeNo: "E001", Name: "Amy", Role: "cashier", Permissions: []string{"sales"}},
		},
		{
			name:  "legacy username becomes identifier",
			in:    Employee{ID: "u2", Username: "bob", Name: "Bob"},
			typed: "bob",
			want:  Employee{ID: "u2", EmployeeNo: "bob", Username: "bob", Name: "Bob", Role: "staff", Permissions: []string{}},
		},
		{
			name:  "typed identifier as last resort",
			in:    Employee{ID: "u3"},
			typed: "E777",
			want:  Employee{ID: "u3", EmployeeNo: "E777", Name: "E777", Role: "staff", Permissions: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(&tt.in, tt.typed, "")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	assert.Nil(t, Normalize(nil, "x", ""))
}

func TestNormalizeDoesNotAliasPermissions(t *testing.T) {
	in := &Employee{ID: "u1", EmployeeNo: "E1", Name: "n", Role: "r", Permissions: []string{"sales"}}
	out := Normalize(in, "E1", "")
	out.Permissions[0] = "reports"
	assert.Equal(t, "sales", in.Permissions[0])
}

func TestPermissionPolicyAllows(t *testing.T) {
	policy := NewPermissionPolicy("")
	cashier := &Employee{Role: "cashier", Permissions: []string{"sales", "members"}}
	admin := &Employee{Role: "admin", Permissions: []string{}}
	wildcard := &Employee{Role: "manager", Permissions: []string{"all"}}
	empty := &Employee{Role: "staff", Permissions: []string{}}

	tests := []struct {
		name     string
		e        *Employee
		required []string
		want     bool
	}{
		{"empty requirement for everyone", empty, nil, true},
		{"empty requirement without principal", nil, []string{}, true},
		{"no principal", nil, []string{"sales"}, false},
		{"admin role bypasses", admin, []string{"reports"}, true},
		{"all grants everything", wildcard, []string{"employees"}, true},
		{"intersection grants", cashier, []string{"products", "members"}, true},
		{"disjoint denied", cashier, []string{"reports"}, false},
		{"no capabilities denied", empty, []string{"sales"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Allows(tt.e, tt.required))
		})
	}
}

func TestPermissionPolicyCustomAdminRole(t *testing.T) {
	policy := NewPermissionPolicy("owner")
	assert.True(t, policy.Allows(&Employee{Role: "owner"}, []string{"reports"}))
	assert.False(t, policy.Allows(&Employee{Role: "admin"}, []string{"reports"}))
}
