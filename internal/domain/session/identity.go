package session

import (
	"context"
	"time"

	"github.com/storedesk/storedesk/internal/domain/employee"
)

// Identity is the locally persisted login: who is signed in on this
// station and which session row they own.
type Identity struct {
	Employee   *employee.Employee `json:"employee" validate:"required"`
	SessionID  string             `json:"session_id" validate:"required"`
	LoginTime  time.Time          `json:"login_time" validate:"required"`
	DeviceInfo DeviceInfo         `json:"device_info"`
}

// IdentityCache stores at most one Identity. Load never fails: a missing
// or unreadable entry is reported as absent.
type IdentityCache interface {
	Save(ctx context.Context, identity *Identity) error
	Load(ctx context.Context) (*Identity, bool)
	Clear(ctx context.Context) error
}
