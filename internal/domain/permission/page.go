// Package permission describes which capabilities open which station pages.
package permission

import (
	"context"
	"maps"
	"slices"

	"github.com/storedesk/storedesk/internal/domain/employee"
)

// CapabilityDisabled marks a page that nobody may open.
const CapabilityDisabled = "disabled"

// ActionView is the only action pages are checked for.
const ActionView = "view"

// Decision is the outcome of a page access check.
type Decision string

const (
	DecisionDisabled     Decision = "disabled"
	DecisionUnrestricted Decision = "unrestricted"
	DecisionGranted      Decision = "granted"
	DecisionDenied       Decision = "denied"
)

// Allowed reports whether the decision lets the principal in.
func (d Decision) Allowed() bool {
	return d == DecisionUnrestricted || d == DecisionGranted
}

// DefaultPages is the built-in page map. A principal needs any one of the
// listed capabilities.
func DefaultPages() map[string][]string {
	return map[string][]string{
		"sales":         {"sales"},
		"products":      {"products", "purchase"},
		"purchase":      {"purchase"},
		"members":       {"members"},
		"employees":     {"employees"},
		"reports":       {"reports"},
		"suppliers":     {"suppliers"},
		"import-export": {"import-export"},
		"coupons":       {CapabilityDisabled},
	}
}

// PageNames returns the keys of pages sorted.
func PageNames(pages map[string][]string) []string {
	return slices.Sorted(maps.Keys(pages))
}

// PageGuard decides page access for a principal.
type PageGuard interface {
	CheckPage(ctx context.Context, e *employee.Employee, page string) (Decision, error)
	Requirements(page string) ([]string, error)
}
