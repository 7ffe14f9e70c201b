// Package session models employee login sessions and the locally cached
// identity that points at one of them.
package session

import (
	"context"
	"fmt"
	"time"
)

// StalenessBasis selects the timestamp a session's age is measured from.
type StalenessBasis string

const (
	BasisLoginTime    StalenessBasis = "login_time"
	BasisLastActivity StalenessBasis = "last_activity"
)

func ParseStalenessBasis(s string) (StalenessBasis, error) {
	switch StalenessBasis(s) {
	case "", BasisLoginTime:
		return BasisLoginTime, nil
	case BasisLastActivity:
		return BasisLastActivity, nil
	default:
		return "", fmt.Errorf("unknown staleness basis %q", s)
	}
}

// DeviceInfo is captured once at login and never changes afterwards.
type DeviceInfo struct {
	UserAgent  string    `json:"user_agent,omitempty"`
	Platform   string    `json:"platform,omitempty"`
	Language   string    `json:"language,omitempty"`
	ScreenSize string    `json:"screen_size,omitempty"`
	Timezone   string    `json:"timezone,omitempty"`
	Hostname   string    `json:"hostname,omitempty"`
	Station    string    `json:"station,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// Session is one row of employee_sessions. EmployeeID references the
// employee row id.
type Session struct {
	SessionID    string
	EmployeeID   string
	LoginTime    time.Time
	LastActivity *time.Time
	IsActive     bool
	LogoutTime   *time.Time
	DeviceInfo   DeviceInfo
}

func New(sessionID, employeeID string, device DeviceInfo, now time.Time) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if employeeID == "" {
		return nil, fmt.Errorf("employee id is required")
	}
	return &Session{
		SessionID:    sessionID,
		EmployeeID:   employeeID,
		LoginTime:    now,
		LastActivity: &now,
		IsActive:     true,
		DeviceInfo:   device,
	}, nil
}

// InvalidReason explains why a session failed validation.
type InvalidReason string

const (
	ReasonNone      InvalidReason = ""
	ReasonRevoked   InvalidReason = "revoked"
	ReasonNotFound  InvalidReason = "not_found"
	ReasonFetch     InvalidReason = "fetch_failed"
	ReasonInactive  InvalidReason = "inactive"
	ReasonLoggedOut InvalidReason = "logged_out"
	ReasonStale     InvalidReason = "stale"
	ReasonNoCache   InvalidReason = "no_cache"
)

func (r InvalidReason) Valid() bool {
	return r == ReasonNone
}

// StalenessPolicy decides when a session is too old to honour.
type StalenessPolicy struct {
	Threshold time.Duration
	Basis     StalenessBasis
}

// Reference returns the timestamp the session age is measured from.
func (p StalenessPolicy) Reference(s *Session) time.Time {
	if p.Basis == BasisLastActivity && s.LastActivity != nil {
		return *s.LastActivity
	}
	return s.LoginTime
}

// Check reports ReasonNone when s is still honoured at now.
func (p StalenessPolicy) Check(s *Session, now time.Time) InvalidReason {
	switch {
	case !s.IsActive:
		return ReasonInactive
	case s.LogoutTime != nil:
		return ReasonLoggedOut
	case p.Threshold > 0 && now.Sub(p.Reference(s)) > p.Threshold:
		return ReasonStale
	default:
		return ReasonNone
	}
}

// IsLive is the store-side liveness predicate: active, not logged out and
// heard from within threshold.
func (s *Session) IsLive(now time.Time, threshold time.Duration) bool {
	if !s.IsActive || s.LogoutTime != nil {
		return false
	}
	last := s.LoginTime
	if s.LastActivity != nil {
		last = *s.LastActivity
	}
	return now.Sub(last) < threshold
}

// Filter narrows ListActive. An empty EmployeeID lists every employee.
type Filter struct {
	EmployeeID string
}

// Repository is the session store client. Errors are classified as
// schema or transient store errors; Get returns a not found error for a
// missing row.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	MarkActive(ctx context.Context, sessionID string, at time.Time) error
	Invalidate(ctx context.Context, sessionID string, at time.Time) error
	InvalidateAllExcept(ctx context.Context, employeeID, keepSessionID string, at time.Time) (int64, error)
	ListActive(ctx context.Context, filter Filter) ([]*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
}
