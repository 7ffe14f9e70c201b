// Package testutil provides in-memory collaborators for application tests.
package testutil

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/domain/shared/events"
	"github.com/storedesk/storedesk/internal/shared/errors"
)

// SessionStore is an in-memory session.Repository. The *Err fields, when
// set, are returned instead of performing the operation.
type SessionStore struct {
	mu   sync.Mutex
	rows map[string]*session.Session

	CreateErr     error
	MarkActiveErr error
	InvalidateErr error
	GetErr        error
	ListErr       error

	// InvalidateDelay holds Invalidate after it has committed.
	InvalidateDelay time.Duration

	InvalidateCalls []string
}

var _ session.Repository = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{rows: make(map[string]*session.Session)}
}

func (s *SessionStore) Create(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if _, ok := s.rows[sess.SessionID]; ok {
		return errors.NewConflictError("create session: duplicate key", sess.SessionID)
	}
	c := *sess
	s.rows[sess.SessionID] = &c
	return nil
}

func (s *SessionStore) MarkActive(ctx context.Context, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MarkActiveErr != nil {
		return s.MarkActiveErr
	}
	if row, ok := s.rows[sessionID]; ok {
		t := at
		row.LastActivity = &t
		row.IsActive = true
		row.LogoutTime = nil
	}
	return nil
}

func (s *SessionStore) Invalidate(ctx context.Context, sessionID string, at time.Time) error {
	if err := s.invalidate(sessionID, at); err != nil {
		return err
	}
	if s.InvalidateDelay > 0 {
		time.Sleep(s.InvalidateDelay)
	}
	return nil
}

func (s *SessionStore) invalidate(sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InvalidateCalls = append(s.InvalidateCalls, sessionID)
	if s.InvalidateErr != nil {
		return s.InvalidateErr
	}
	if row, ok := s.rows[sessionID]; ok {
		t := at
		row.IsActive = false
		row.LogoutTime = &t
	}
	return nil
}

func (s *SessionStore) InvalidateAllExcept(ctx context.Context, employeeID, keepSessionID string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InvalidateErr != nil {
		return 0, s.InvalidateErr
	}
	var n int64
	for id, row := range s.rows {
		if row.EmployeeID == employeeID && id != keepSessionID && row.IsActive {
			t := at
			row.IsActive = false
			row.LogoutTime = &t
			n++
		}
	}
	return n, nil
}

func (s *SessionStore) ListActive(ctx context.Context, filter session.Filter) ([]*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var out []*session.Session
	for _, row := range s.rows {
		if !row.IsActive {
			continue
		}
		if filter.EmployeeID != "" && row.EmployeeID != filter.EmployeeID {
			continue
		}
		c := *row
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoginTime.After(out[j].LoginTime) })
	return out, nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	row, ok := s.rows[sessionID]
	if !ok {
		return nil, errors.NewNotFoundError("session not found", sessionID)
	}
	c := *row
	return &c, nil
}

// Put stores a row directly.
func (s *SessionStore) Put(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *sess
	s.rows[sess.SessionID] = &c
}

// Row returns a copy of the stored row, or nil.
func (s *SessionStore) Row(sessionID string) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[sessionID]
	if !ok {
		return nil
	}
	c := *row
	return &c
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// IdentityCache keeps one identity in memory.
type IdentityCache struct {
	mu       sync.Mutex
	identity *session.Identity
	SaveErr  error
}

var _ session.IdentityCache = (*IdentityCache)(nil)

func NewIdentityCache() *IdentityCache {
	return &IdentityCache{}
}

func (c *IdentityCache) Save(ctx context.Context, identity *session.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SaveErr != nil {
		return c.SaveErr
	}
	cp := *identity
	if identity.Employee != nil {
		e := *identity.Employee
		e.Permissions = slices.Clone(identity.Employee.Permissions)
		cp.Employee = &e
	}
	c.identity = &cp
	return nil
}

func (c *IdentityCache) Load(ctx context.Context) (*session.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return nil, false
	}
	cp := *c.identity
	if c.identity.Employee != nil {
		e := *c.identity.Employee
		e.Permissions = slices.Clone(c.identity.Employee.Permissions)
		cp.Employee = &e
	}
	return &cp, true
}

func (c *IdentityCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = nil
	return nil
}

// EmployeeDirectory is an in-memory employee.Repository.
type EmployeeDirectory struct {
	mu        sync.Mutex
	employees []*employee.Employee
	LookupErr error
}

var _ employee.Repository = (*EmployeeDirectory)(nil)

func NewEmployeeDirectory(employees ...*employee.Employee) *EmployeeDirectory {
	return &EmployeeDirectory{employees: employees}
}

func (d *EmployeeDirectory) find(match func(*employee.Employee) bool) (*employee.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.LookupErr != nil {
		return nil, d.LookupErr
	}
	for _, e := range d.employees {
		if match(e) {
			c := *e
			c.Permissions = slices.Clone(e.Permissions)
			return &c, nil
		}
	}
	return nil, errors.NewNotFoundError("employee not found")
}

func (d *EmployeeDirectory) GetByEmployeeNo(ctx context.Context, employeeNo string) (*employee.Employee, error) {
	return d.find(func(e *employee.Employee) bool { return e.EmployeeNo != "" && e.EmployeeNo == employeeNo })
}

func (d *EmployeeDirectory) GetByUsername(ctx context.Context, username string) (*employee.Employee, error) {
	return d.find(func(e *employee.Employee) bool { return e.Username != "" && e.Username == username })
}

func (d *EmployeeDirectory) GetByIDs(ctx context.Context, ids []string) (map[string]*employee.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.LookupErr != nil {
		return nil, d.LookupErr
	}
	out := make(map[string]*employee.Employee)
	for _, e := range d.employees {
		if slices.Contains(ids, e.ID) {
			c := *e
			out[e.ID] = &c
		}
	}
	return out, nil
}

func (d *EmployeeDirectory) UpdateName(ctx context.Context, id, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.employees {
		if e.ID == id {
			e.Name = name
			return nil
		}
	}
	return errors.NewNotFoundError("employee not found", id)
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	Events []events.DomainEvent
}

func (p *Publisher) Publish(event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *Publisher) Last() events.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Events) == 0 {
		return nil
	}
	return p.Events[len(p.Events)-1]
}

func (p *Publisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Events)
}
