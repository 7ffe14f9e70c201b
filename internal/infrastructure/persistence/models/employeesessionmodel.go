package models

import (
	"time"

	"gorm.io/datatypes"
)

// EmployeeSessionModel is a row of employee_sessions.
type EmployeeSessionModel struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement"`
	SessionID    string         `gorm:"column:session_id;size:64;not null;uniqueIndex"`
	EmployeeID   string         `gorm:"column:employee_id;size:64;not null;index"`
	LoginTime    time.Time      `gorm:"column:login_time;not null;index"`
	LastActivity *time.Time     `gorm:"column:last_activity"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true;index"`
	LogoutTime   *time.Time     `gorm:"column:logout_time"`
	DeviceInfo   datatypes.JSON `gorm:"column:device_info"`
}

func (EmployeeSessionModel) TableName() string {
	return "employee_sessions"
}
