package handlers

import (
	"context"
	"sync"

	"github.com/storedesk/storedesk/internal/application/auth"
	importDto "github.com/storedesk/storedesk/internal/application/importer/dto"
	sessionDto "github.com/storedesk/storedesk/internal/application/session/dto"
	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/permission"
	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/infrastructure/network"
	"github.com/storedesk/storedesk/internal/infrastructure/scheduler"
)

type mockAuthService struct {
	principal *employee.Employee
	sessionID string
	state     auth.State

	loginErr   error
	logoutErr  error
	profileErr error
	allowed    bool

	lastIdentifier string
	lastDevice     session.DeviceInfo
	lastName       string
	lastRequired   []string
}

func (m *mockAuthService) Login(ctx context.Context, identifier string, device session.DeviceInfo) (*employee.Employee, error) {
	m.lastIdentifier = identifier
	m.lastDevice = device
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	m.state = auth.StateLoggedIn
	return m.principal, nil
}

func (m *mockAuthService) Logout(ctx context.Context) error {
	m.principal = nil
	m.state = auth.StateLoggedOut
	return m.logoutErr
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, name string) (*employee.Employee, error) {
	m.lastName = name
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	updated := *m.principal
	updated.Name = name
	return &updated, nil
}

func (m *mockAuthService) HasPermission(required []string) bool {
	m.lastRequired = required
	return m.allowed
}

func (m *mockAuthService) CurrentPrincipal() *employee.Employee { return m.principal }
func (m *mockAuthService) CurrentSessionID() string            { return m.sessionID }
func (m *mockAuthService) State() auth.State                   { return m.state }

type mockPageGuard struct {
	decision     permission.Decision
	err          error
	requirements []string
	lastPage     string
	lastEmployee *employee.Employee
}

func (m *mockPageGuard) CheckPage(ctx context.Context, e *employee.Employee, page string) (permission.Decision, error) {
	m.lastPage = page
	m.lastEmployee = e
	return m.decision, m.err
}

func (m *mockPageGuard) Requirements(page string) ([]string, error) {
	return m.requirements, nil
}

type mockCoordinator struct {
	sessions     []*sessionDto.ActiveSessionResponse
	listErr      error
	logoutResult *sessionDto.ForceLogoutResponse
	logoutErr    error
	lastEmployee string
}

func (m *mockCoordinator) ListActiveSessions(ctx context.Context, employeeID string) ([]*sessionDto.ActiveSessionResponse, error) {
	m.lastEmployee = employeeID
	return m.sessions, m.listErr
}

func (m *mockCoordinator) ForceLogoutOthers(ctx context.Context) (*sessionDto.ForceLogoutResponse, error) {
	return m.logoutResult, m.logoutErr
}

type mockPresence struct {
	mu      sync.Mutex
	hidden  []bool
	unloads int
	state   scheduler.HeartbeatState
}

func (m *mockPresence) OnVisibilityChange(ctx context.Context, hidden bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden = append(m.hidden, hidden)
}

func (m *mockPresence) OnUnload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloads++
}

func (m *mockPresence) State() scheduler.HeartbeatState { return m.state }

type mockIPLookup struct {
	ip     string
	err    error
	loc    *network.Location
	locErr error
	lastIP string
}

func (m *mockIPLookup) PublicIP(ctx context.Context) (string, error) {
	return m.ip, m.err
}

func (m *mockIPLookup) LocationInfo(ctx context.Context, ip string) (*network.Location, error) {
	m.lastIP = ip
	return m.loc, m.locErr
}

func testEmployee() *employee.Employee {
	return &employee.Employee{
		ID:          "emp-1",
		EmployeeNo:  "E001",
		Name:        "Amy",
		Role:        "cashier",
		Permissions: []string{"sales"},
	}
}

type mockImporter struct {
	present  []importDto.DatasetPresence
	summary  *importDto.ImportSummary
	err      error
	clearErr error
	cleared  int
}

func (m *mockImporter) Check(ctx context.Context) ([]importDto.DatasetPresence, error) {
	return m.present, m.err
}

func (m *mockImporter) ImportAll(ctx context.Context) (*importDto.ImportSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func (m *mockImporter) ClearLocal(ctx context.Context) error {
	m.cleared++
	return m.clearErr
}
