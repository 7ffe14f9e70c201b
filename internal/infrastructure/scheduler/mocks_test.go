package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/session"
)

type mockSessionRepository struct {
	markActiveCalls atomic.Int64
	markActiveFunc  func(ctx context.Context, sessionID string, at time.Time) error
}

func (m *mockSessionRepository) Create(ctx context.Context, s *session.Session) error {
	return nil
}

func (m *mockSessionRepository) MarkActive(ctx context.Context, sessionID string, at time.Time) error {
	m.markActiveCalls.Add(1)
	if m.markActiveFunc != nil {
		return m.markActiveFunc(ctx, sessionID, at)
	}
	return nil
}

func (m *mockSessionRepository) Invalidate(ctx context.Context, sessionID string, at time.Time) error {
	return nil
}

func (m *mockSessionRepository) InvalidateAllExcept(ctx context.Context, employeeID, keepSessionID string, at time.Time) (int64, error) {
	return 0, nil
}

func (m *mockSessionRepository) ListActive(ctx context.Context, filter session.Filter) ([]*session.Session, error) {
	return nil, nil
}

func (m *mockSessionRepository) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	return nil, nil
}

type mockIdentityCache struct {
	mu       sync.Mutex
	identity *session.Identity
}

func newMockIdentityCache(identity *session.Identity) *mockIdentityCache {
	return &mockIdentityCache{identity: identity}
}

func (m *mockIdentityCache) Save(ctx context.Context, identity *session.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = identity
	return nil
}

func (m *mockIdentityCache) Load(ctx context.Context) (*session.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity, m.identity != nil
}

func (m *mockIdentityCache) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = nil
	return nil
}

func testIdentity() *session.Identity {
	return &session.Identity{
		Employee:  &employee.Employee{ID: "emp-1", EmployeeNo: "E001", Name: "Alice", Role: "staff", Permissions: []string{}},
		SessionID: "session_01HZX3T8Q9M2N4P6R8S0V2W4Y6",
		LoginTime: time.Now().UTC(),
	}
}
