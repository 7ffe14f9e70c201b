package handlers

import (
	"context"
	"encoding/json"

	"github.com/storedesk/storedesk/internal/application/auth"
	importDto "github.com/storedesk/storedesk/internal/application/importer/dto"
	sessionDto "github.com/storedesk/storedesk/internal/application/session/dto"
	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/inventory"
	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/infrastructure/network"
	"github.com/storedesk/storedesk/internal/infrastructure/scheduler"
	"github.com/storedesk/storedesk/internal/infrastructure/services"
)

// Collaborator interfaces for the handlers - enables unit testing with mocks.

type authService interface {
	Login(ctx context.Context, identifier string, device session.DeviceInfo) (*employee.Employee, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, name string) (*employee.Employee, error)
	HasPermission(required []string) bool
	CurrentPrincipal() *employee.Employee
	CurrentSessionID() string
	State() auth.State
}

type principalSource interface {
	CurrentPrincipal() *employee.Employee
}

type sessionCoordinator interface {
	ListActiveSessions(ctx context.Context, employeeID string) ([]*sessionDto.ActiveSessionResponse, error)
	ForceLogoutOthers(ctx context.Context) (*sessionDto.ForceLogoutResponse, error)
}

type presenceTracker interface {
	OnVisibilityChange(ctx context.Context, hidden bool)
	OnUnload()
	State() scheduler.HeartbeatState
}

type ipLookup interface {
	PublicIP(ctx context.Context) (string, error)
	LocationInfo(ctx context.Context, ip string) (*network.Location, error)
}

type stateStream interface {
	Register(connID string) *services.SSEConn
	Unregister(connID string)
}

type snapshotImporter interface {
	Check(ctx context.Context) ([]importDto.DatasetPresence, error)
	ImportAll(ctx context.Context) (*importDto.ImportSummary, error)
	ClearLocal(ctx context.Context) error
}

type inventoryService interface {
	ListRecords(ctx context.Context, table, legacyKey string) ([]*inventory.StoredRecord, error)
	GetRecord(ctx context.Context, table, id string) (*inventory.StoredRecord, error)
	CreateRecord(ctx context.Context, table, legacyKey string, payload json.RawMessage) (*inventory.StoredRecord, error)
	UpdateRecord(ctx context.Context, table, id string, payload json.RawMessage) (*inventory.StoredRecord, error)
	DeleteRecord(ctx context.Context, table, id string) error
	ListSales(ctx context.Context) ([]*inventory.Sale, error)
	GetSale(ctx context.Context, receiptNumber string) (*inventory.Sale, error)
	RecordSale(ctx context.Context, sale inventory.Sale) (*inventory.Sale, error)
	UpdateSale(ctx context.Context, receiptNumber string, sale inventory.Sale) (*inventory.Sale, error)
	DeleteSale(ctx context.Context, receiptNumber string) error
}
