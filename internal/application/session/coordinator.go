// Package session coordinates one employee's sessions across devices.
package session

import (
	"context"
	"time"

	"github.com/storedesk/storedesk/internal/application/session/dto"
	"github.com/storedesk/storedesk/internal/domain/employee"
	domainSession "github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/shared/biztime"
	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

// DefaultLiveWindow is three default heartbeat intervals.
const DefaultLiveWindow = 30 * time.Second

type Coordinator struct {
	sessions   domainSession.Repository
	employees  employee.Repository
	identity   domainSession.IdentityCache
	liveWindow time.Duration
	logger     logger.Interface
}

func NewCoordinator(
	sessions domainSession.Repository,
	employees employee.Repository,
	identity domainSession.IdentityCache,
	log logger.Interface,
) *Coordinator {
	return &Coordinator{
		sessions:   sessions,
		employees:  employees,
		identity:   identity,
		liveWindow: DefaultLiveWindow,
		logger:     log.With("component", "session_coordinator"),
	}
}

// WithLiveWindow sets how recently a session must have been heard from to
// be reported live. Non-positive values are ignored.
func (c *Coordinator) WithLiveWindow(d time.Duration) *Coordinator {
	if d > 0 {
		c.liveWindow = d
	}
	return c
}

// ListActiveSessions returns active sessions, newest login first, with the
// employee's name and position. An empty employeeID lists every employee.
func (c *Coordinator) ListActiveSessions(ctx context.Context, employeeID string) ([]*dto.ActiveSessionResponse, error) {
	rows, err := c.sessions.ListActive(ctx, domainSession.Filter{EmployeeID: employeeID})
	if err != nil {
		c.logger.Errorw("failed to list active sessions", "employee_id", employeeID, "error", err)
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.EmployeeID]; ok {
			continue
		}
		seen[row.EmployeeID] = struct{}{}
		ids = append(ids, row.EmployeeID)
	}

	names, err := c.employees.GetByIDs(ctx, ids)
	if err != nil {
		// Sessions are still useful without display names.
		c.logger.Warnw("failed to load employees for sessions", "error", err)
		names = map[string]*employee.Employee{}
	}

	currentID := ""
	if entry, ok := c.identity.Load(ctx); ok {
		currentID = entry.SessionID
	}

	now := biztime.Now()
	result := make([]*dto.ActiveSessionResponse, 0, len(rows))
	for _, row := range rows {
		var name, position string
		if e, ok := names[row.EmployeeID]; ok {
			name, position = e.Name, e.Role
		}
		result = append(result, dto.ToActiveSessionResponse(row, name, position,
			row.SessionID == currentID, row.IsLive(now, c.liveWindow)))
	}
	return result, nil
}

// ForceLogoutOthers invalidates every other active session of the cached
// employee. The current session is untouched.
func (c *Coordinator) ForceLogoutOthers(ctx context.Context) (*dto.ForceLogoutResponse, error) {
	entry, ok := c.identity.Load(ctx)
	if !ok {
		return nil, errors.NewSessionInvalidError("no cached session")
	}

	n, err := c.sessions.InvalidateAllExcept(ctx, entry.Employee.ID, entry.SessionID, biztime.Now())
	if err != nil {
		c.logger.Errorw("failed to log out other devices",
			"employee_id", entry.Employee.ID,
			"session_id", entry.SessionID,
			"error", err,
		)
		return nil, err
	}

	c.logger.Infow("logged out other devices",
		"employee_id", entry.Employee.ID,
		"kept_session_id", entry.SessionID,
		"count", n,
	)
	return &dto.ForceLogoutResponse{Invalidated: n, KeptSession: entry.SessionID}, nil
}
