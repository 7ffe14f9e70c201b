package dto

import (
	"time"

	domainSession "github.com/storedesk/storedesk/internal/domain/session"
)

// ActiveSessionResponse is one active session decorated with the
// employee's display fields. Live is false once the device has stopped
// heartbeating.
type ActiveSessionResponse struct {
	SessionID        string                   `json:"session_id"`
	EmployeeID       string                   `json:"employee_id"`
	EmployeeName     string                   `json:"employee_name"`
	EmployeePosition string                   `json:"employee_position"`
	LoginTime        time.Time                `json:"login_time"`
	LastActivity     *time.Time               `json:"last_activity,omitempty"`
	DeviceInfo       domainSession.DeviceInfo `json:"device_info"`
	Current          bool                     `json:"current"`
	Live             bool                     `json:"live"`
}

type ForceLogoutResponse struct {
	Invalidated int64  `json:"invalidated"`
	KeptSession string `json:"kept_session_id"`
}

func ToActiveSessionResponse(s *domainSession.Session, name, position string, current, live bool) *ActiveSessionResponse {
	return &ActiveSessionResponse{
		SessionID:        s.SessionID,
		EmployeeID:       s.EmployeeID,
		EmployeeName:     name,
		EmployeePosition: position,
		LoginTime:        s.LoginTime,
		LastActivity:     s.LastActivity,
		DeviceInfo:       s.DeviceInfo,
		Current:          current,
		Live:             live,
	}
}
