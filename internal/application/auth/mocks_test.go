package auth

import (
	"context"
	"sync"

	"github.com/storedesk/storedesk/internal/domain/employee"
)

type mockEmployeeRepository struct {
	GetByEmployeeNoFunc func(ctx context.Context, employeeNo string) (*employee.Employee, error)
	GetByUsernameFunc   func(ctx context.Context, username string) (*employee.Employee, error)
	GetByIDsFunc        func(ctx context.Context, ids []string) (map[string]*employee.Employee, error)
	UpdateNameFunc      func(ctx context.Context, id, name string) error
}

func (m *mockEmployeeRepository) GetByEmployeeNo(ctx context.Context, employeeNo string) (*employee.Employee, error) {
	if m.GetByEmployeeNoFunc != nil {
		return m.GetByEmployeeNoFunc(ctx, employeeNo)
	}
	return nil, nil
}

func (m *mockEmployeeRepository) GetByUsername(ctx context.Context, username string) (*employee.Employee, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockEmployeeRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*employee.Employee, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return map[string]*employee.Employee{}, nil
}

func (m *mockEmployeeRepository) UpdateName(ctx context.Context, id, name string) error {
	if m.UpdateNameFunc != nil {
		return m.UpdateNameFunc(ctx, id, name)
	}
	return nil
}

type mockPresence struct {
	mu     sync.Mutex
	starts []string
	stops  int
	waits  int
}

func (m *mockPresence) Start(principalID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts = append(m.starts, principalID)
}

func (m *mockPresence) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
}

func (m *mockPresence) Wait() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waits++
}

func (m *mockPresence) Starts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.starts...)
}

func (m *mockPresence) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}
