package permission

import (
	"fmt"
	"slices"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/storedesk/storedesk/internal/domain/permission"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

// pageModel grants obj to any request whose capability matches a policy
// subject for the same page and action.
const pageModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// Enforcer wraps a casbin enforcer whose policies live in casbin_rule.
type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

func NewEnforcer(db *gorm.DB, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(pageModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

func (e *Enforcer) Enforce(capability, page string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(capability, page, permission.ActionView)
	if err != nil {
		e.logger.Errorw("page permission check failed", "error", err, "capability", capability, "page", page)
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return allowed, nil
}

// Requirements returns the capabilities stored for page, sorted.
func (e *Enforcer) Requirements(page string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules, err := e.enforcer.GetFilteredPolicy(1, page, permission.ActionView)
	if err != nil {
		return nil, fmt.Errorf("failed to read page policy: %w", err)
	}
	caps := make([]string, 0, len(rules))
	for _, rule := range rules {
		caps = append(caps, rule[0])
	}
	slices.Sort(caps)
	return caps, nil
}

// HasPolicies reports whether any page rule has been stored.
func (e *Enforcer) HasPolicies() (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules, err := e.enforcer.GetPolicy()
	if err != nil {
		return false, fmt.Errorf("failed to read policy: %w", err)
	}
	return len(rules) > 0, nil
}

// SetPage replaces the capabilities required for page.
func (e *Enforcer) SetPage(page string, capabilities []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemoveFilteredPolicy(1, page); err != nil {
		return fmt.Errorf("failed to clear page policy %s: %w", page, err)
	}
	if len(capabilities) == 0 {
		return nil
	}

	rules := make([][]string, 0, len(capabilities))
	for _, c := range capabilities {
		rules = append(rules, []string{c, page, permission.ActionView})
	}
	if _, err := e.enforcer.AddPolicies(rules); err != nil {
		e.logger.Errorw("failed to add page policy", "error", err, "page", page)
		return fmt.Errorf("failed to add page policy %s: %w", page, err)
	}
	return nil
}
