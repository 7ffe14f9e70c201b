package permission

import (
	"context"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/permission"
	"github.com/storedesk/storedesk/internal/infrastructure/metrics"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

var _ permission.PageGuard = (*PageGuard)(nil)

// pagePolicyFile is the on-disk seed format.
//
//	pages:
//	  sales: [sales]
//	  coupons: [disabled]
type pagePolicyFile struct {
	Pages map[string][]string `yaml:"pages"`
}

// LoadPagePolicyFile reads a page map from a YAML file.
func LoadPagePolicyFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page policy file: %w", err)
	}
	var f pagePolicyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse page policy file: %w", err)
	}
	if len(f.Pages) == 0 {
		return nil, fmt.Errorf("page policy file %s defines no pages", path)
	}
	return f.Pages, nil
}

type PageGuard struct {
	enforcer *Enforcer
	policy   employee.PermissionPolicy
	metrics  *metrics.Metrics
	logger   logger.Interface
}

func NewPageGuard(enforcer *Enforcer, policy employee.PermissionPolicy, m *metrics.Metrics, log logger.Interface) *PageGuard {
	return &PageGuard{
		enforcer: enforcer,
		policy:   policy,
		metrics:  m,
		logger:   log,
	}
}

// Seed stores pages when no page rule exists yet. Existing rules win.
func (g *PageGuard) Seed(pages map[string][]string) error {
	exists, err := g.enforcer.HasPolicies()
	if err != nil {
		return err
	}
	if exists {
		g.logger.Debugw("page policy already present, skipping seed")
		return nil
	}

	for _, page := range permission.PageNames(pages) {
		if err := g.enforcer.SetPage(page, pages[page]); err != nil {
			return err
		}
	}
	g.logger.Infow("page policy seeded", "pages", len(pages))
	return nil
}

func (g *PageGuard) Requirements(page string) ([]string, error) {
	return g.enforcer.Requirements(page)
}

func (g *PageGuard) CheckPage(ctx context.Context, e *employee.Employee, page string) (permission.Decision, error) {
	decision, err := g.decide(e, page)
	if err != nil {
		return permission.DecisionDenied, err
	}
	g.metrics.PageDecision(page, string(decision))
	return decision, nil
}

func (g *PageGuard) decide(e *employee.Employee, page string) (permission.Decision, error) {
	required, err := g.enforcer.Requirements(page)
	if err != nil {
		return "", err
	}
	if slices.Contains(required, permission.CapabilityDisabled) {
		return permission.DecisionDisabled, nil
	}
	if len(required) == 0 {
		return permission.DecisionUnrestricted, nil
	}
	if e == nil {
		return permission.DecisionDenied, nil
	}
	if g.policy.IsAdmin(e) || e.HasAll() {
		return permission.DecisionGranted, nil
	}
	for _, capability := range e.Permissions {
		if capability == permission.CapabilityDisabled {
			continue
		}
		ok, err := g.enforcer.Enforce(capability, page)
		if err != nil {
			return "", err
		}
		if ok {
			return permission.DecisionGranted, nil
		}
	}
	return permission.DecisionDenied, nil
}
