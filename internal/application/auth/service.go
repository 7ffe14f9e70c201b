// Package auth implements the station login protocol: login, logout,
// restoring a cached login, session validation and permission checks.
package auth

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/domain/shared/events"
	"github.com/storedesk/storedesk/internal/infrastructure/metrics"
	"github.com/storedesk/storedesk/internal/shared/biztime"
	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/goroutine"
	"github.com/storedesk/storedesk/internal/shared/id"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

// State is the login state of the station.
type State string

const (
	StateLoggedOut State = "logged_out"
	StateLoggingIn State = "logging_in"
	StateLoggedIn  State = "logged_in"
)

const invalidateTimeout = 10 * time.Second

// Presence is started for the principal after login and stopped on logout.
type Presence interface {
	Start(principalID string)
	Stop()
	// Wait returns once no update is in flight.
	Wait()
}

type Config struct {
	DefaultRole string
	AdminRole   string
	Staleness   session.StalenessPolicy
	// Station is recorded in device info.
	Station string
}

// Service is the auth protocol for one station process. Login, Logout,
// Initialize and UpdateProfile are serialised; state reads never block on
// the store.
type Service struct {
	employees employee.Repository
	sessions  session.Repository
	identity  session.IdentityCache
	publisher events.EventPublisher
	presence  Presence
	metrics   *metrics.Metrics
	logger    logger.Interface

	policy      employee.PermissionPolicy
	staleness   session.StalenessPolicy
	defaultRole string
	station     string
	clock       biztime.Clock

	opMu sync.Mutex

	mu        sync.RWMutex
	state     State
	current   *employee.Employee
	sessionID string
	revoked   map[string]struct{}

	wg sync.WaitGroup
}

func NewService(
	employees employee.Repository,
	sessions session.Repository,
	identity session.IdentityCache,
	publisher events.EventPublisher,
	presence Presence,
	m *metrics.Metrics,
	cfg Config,
	log logger.Interface,
) *Service {
	defaultRole := cfg.DefaultRole
	if defaultRole == "" {
		defaultRole = employee.DefaultRole
	}
	return &Service{
		employees:   employees,
		sessions:    sessions,
		identity:    identity,
		publisher:   publisher,
		presence:    presence,
		metrics:     m,
		logger:      log.With("component", "auth"),
		policy:      employee.NewPermissionPolicy(cfg.AdminRole),
		staleness:   cfg.Staleness,
		defaultRole: defaultRole,
		station:     cfg.Station,
		clock:       time.Now,
		state:       StateLoggedOut,
		revoked:     make(map[string]struct{}),
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(clock biztime.Clock) *Service {
	s.clock = clock
	return s
}

func (s *Service) now() time.Time {
	return biztime.Normalize(s.clock())
}

// Login resolves identifier by employee number, falling back to the legacy
// username, and starts a new session for it. A failure to record the
// session remotely is logged and does not abort the login; a failure to
// save it on the station does.
func (s *Service) Login(ctx context.Context, identifier string, device session.DeviceInfo) (*employee.Employee, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.NewValidationError("employee id is required")
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	prev := s.setState(StateLoggingIn)

	found, err := s.lookup(ctx, identifier)
	if err != nil {
		s.setState(prev)
		if errors.IsPrincipalNotFoundError(err) {
			s.metrics.Login("not_found")
		} else {
			s.metrics.Login("error")
		}
		s.logger.Warnw("login failed", "identifier", identifier, "error", err)
		return nil, err
	}

	principal := employee.Normalize(found, identifier, s.defaultRole)
	now := s.now()
	sessionID := id.NewSessionIDAt(now)
	device = s.completeDevice(device, now)

	record, err := session.New(sessionID, principal.ID, device, now)
	if err != nil {
		s.setState(prev)
		s.metrics.Login("error")
		return nil, errors.NewInternalError("failed to build session", err.Error())
	}
	if err := s.sessions.Create(ctx, record); err != nil {
		s.logger.Warnw("session record not stored, login continues",
			"session_id", sessionID,
			"employee_id", principal.ID,
			"error", err,
		)
	}

	entry := &session.Identity{
		Employee:   principal,
		SessionID:  sessionID,
		LoginTime:  now,
		DeviceInfo: device,
	}
	if err := s.identity.Save(ctx, entry); err != nil {
		s.logger.Errorw("failed to save identity cache, aborting login", "session_id", sessionID, "error", err)
		if invErr := s.sessions.Invalidate(ctx, sessionID, now); invErr != nil {
			s.logger.Warnw("failed to invalidate unsaved session", "session_id", sessionID, "error", invErr)
		}
		s.setState(prev)
		s.metrics.Login("error")
		return nil, errors.NewInternalError("failed to save login on this station", err.Error())
	}

	s.mu.Lock()
	s.state = StateLoggedIn
	s.current = principal
	s.sessionID = sessionID
	s.mu.Unlock()

	if s.presence != nil {
		s.presence.Start(principal.ID)
	}
	s.metrics.Login("success")
	s.logger.Infow("employee logged in",
		"employee_id", principal.ID,
		"employee_no", principal.EmployeeNo,
		"session_id", sessionID,
	)
	s.publishState(true, principal)

	return clonePrincipal(principal), nil
}

func (s *Service) lookup(ctx context.Context, identifier string) (*employee.Employee, error) {
	found, err := s.employees.GetByEmployeeNo(ctx, identifier)
	if err == nil && found != nil {
		return found, nil
	}
	if err != nil && !errors.IsNotFoundError(err) {
		return nil, err
	}

	found, err = s.employees.GetByUsername(ctx, identifier)
	if err == nil && found != nil {
		return found, nil
	}
	if err != nil && !errors.IsNotFoundError(err) {
		return nil, err
	}
	return nil, errors.NewPrincipalNotFoundError(identifier)
}

func (s *Service) completeDevice(device session.DeviceInfo, now time.Time) session.DeviceInfo {
	if device.Hostname == "" {
		if host, err := os.Hostname(); err == nil {
			device.Hostname = host
		}
	}
	if device.Station == "" {
		device.Station = s.station
	}
	device.CapturedAt = now
	return device
}

// Logout ends the cached session. The local transition always completes;
// the returned error only reports a failed remote invalidation.
func (s *Service) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	var remoteErr error
	sessionIDs := make([]string, 0, 2)
	if entry, ok := s.identity.Load(ctx); ok {
		sessionIDs = append(sessionIDs, entry.SessionID)
	}
	s.mu.RLock()
	if s.sessionID != "" && !slices.Contains(sessionIDs, s.sessionID) {
		sessionIDs = append(sessionIDs, s.sessionID)
	}
	s.mu.RUnlock()

	for _, sid := range sessionIDs {
		s.revoke(sid)
	}

	// The heartbeat resurrects rows, so it must be quiet before the
	// remote invalidation.
	if s.presence != nil {
		s.presence.Stop()
	}
	if err := s.identity.Clear(ctx); err != nil {
		s.logger.Errorw("failed to clear identity cache", "error", err)
	}
	if s.presence != nil {
		s.presence.Wait()
	}

	now := s.now()
	for _, sid := range sessionIDs {
		if err := s.sessions.Invalidate(ctx, sid, now); err != nil {
			s.logger.Warnw("failed to invalidate session, logging out locally",
				"session_id", sid,
				"error", err,
			)
			if remoteErr == nil {
				remoteErr = err
			}
		}
	}

	s.mu.Lock()
	s.state = StateLoggedOut
	s.current = nil
	s.sessionID = ""
	s.mu.Unlock()

	s.metrics.Logout()
	s.logger.Infow("employee logged out", "sessions", len(sessionIDs))
	s.publishState(false, nil)

	return remoteErr
}

// Initialize restores a cached login when its session is still valid and
// clears the cache otherwise. It reports whether a login was restored.
func (s *Service) Initialize(ctx context.Context) bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	entry, ok := s.identity.Load(ctx)
	if !ok {
		s.setState(StateLoggedOut)
		s.publishState(false, nil)
		return false
	}

	if reason := s.ValidateSession(ctx, entry); !reason.Valid() {
		s.logger.Infow("cached session rejected",
			"session_id", entry.SessionID,
			"reason", string(reason),
		)
		if err := s.identity.Clear(ctx); err != nil {
			s.logger.Errorw("failed to clear identity cache", "error", err)
		}
		s.mu.Lock()
		s.state = StateLoggedOut
		s.current = nil
		s.sessionID = ""
		s.mu.Unlock()
		s.publishState(false, nil)
		return false
	}

	s.mu.Lock()
	s.state = StateLoggedIn
	s.current = entry.Employee
	s.sessionID = entry.SessionID
	s.mu.Unlock()

	if s.presence != nil {
		s.presence.Start(entry.Employee.ID)
	}
	s.logger.Infow("login restored", "employee_id", entry.Employee.ID, "session_id", entry.SessionID)
	s.publishState(true, entry.Employee)
	return true
}

// ValidateSession checks a cached identity against the store. It fails
// closed: any fetch error makes the session invalid. A stale row is
// invalidated in the background.
func (s *Service) ValidateSession(ctx context.Context, entry *session.Identity) session.InvalidReason {
	reason := s.validate(ctx, entry)
	s.metrics.SessionValidation(string(reason))
	return reason
}

func (s *Service) validate(ctx context.Context, entry *session.Identity) session.InvalidReason {
	if entry == nil || entry.SessionID == "" {
		return session.ReasonNoCache
	}
	if s.isRevoked(entry.SessionID) {
		return session.ReasonRevoked
	}

	row, err := s.sessions.Get(ctx, entry.SessionID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return session.ReasonNotFound
		}
		s.logger.Warnw("session lookup failed, treating as invalid",
			"session_id", entry.SessionID,
			"error", err,
		)
		return session.ReasonFetch
	}

	reason := s.staleness.Check(row, s.now())
	if reason == session.ReasonStale {
		s.invalidateAsync(entry.SessionID)
	}
	return reason
}

func (s *Service) invalidateAsync(sessionID string) {
	at := s.now()
	goroutine.SafeGoWait(&s.wg, s.logger, "invalidate-stale-session", func() {
		ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
		defer cancel()
		if err := s.sessions.Invalidate(ctx, sessionID, at); err != nil {
			s.logger.Warnw("failed to invalidate stale session", "session_id", sessionID, "error", err)
			return
		}
		s.logger.Infow("stale session invalidated", "session_id", sessionID)
	})
}

// HasPermission reports whether the current principal holds any of
// required. An empty requirement is always satisfied.
func (s *Service) HasPermission(required []string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy.Allows(s.current, required)
}

// UpdateProfile renames the current employee and refreshes the cache.
func (s *Service) UpdateProfile(ctx context.Context, name string) (*employee.Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name is required")
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current == nil {
		return nil, errors.NewSessionInvalidError("not logged in")
	}

	if err := s.employees.UpdateName(ctx, current.ID, name); err != nil {
		s.logger.Errorw("failed to update employee profile", "employee_id", current.ID, "error", err)
		return nil, err
	}

	updated := clonePrincipal(current)
	updated.Name = name

	if entry, ok := s.identity.Load(ctx); ok && entry.SessionID == s.CurrentSessionID() {
		entry.Employee = updated
		if err := s.identity.Save(ctx, entry); err != nil {
			s.logger.Errorw("failed to refresh identity cache", "error", err)
		}
	}

	s.mu.Lock()
	s.current = updated
	s.mu.Unlock()

	s.logger.Infow("employee profile updated", "employee_id", updated.ID)
	s.publishState(true, updated)
	return clonePrincipal(updated), nil
}

// CurrentPrincipal returns a copy of the logged-in employee, or nil.
func (s *Service) CurrentPrincipal() *employee.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePrincipal(s.current)
}

func (s *Service) CurrentSessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

func (s *Service) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Wait blocks until background invalidations have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) setState(state State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	s.state = state
	return prev
}

func (s *Service) revoke(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[sessionID] = struct{}{}
}

func (s *Service) isRevoked(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[sessionID]
	return ok
}

func (s *Service) publishState(loggedIn bool, e *employee.Employee) {
	if s.publisher == nil {
		return
	}
	event := NewAuthStateChangedEvent(loggedIn, clonePrincipal(e), s.now())
	if err := s.publisher.Publish(event); err != nil {
		s.logger.Warnw("failed to publish auth state", "error", err)
	}
}

func clonePrincipal(e *employee.Employee) *employee.Employee {
	if e == nil {
		return nil
	}
	c := *e
	c.Permissions = slices.Clone(e.Permissions)
	if c.Permissions == nil {
		c.Permissions = []string{}
	}
	return &c
}
