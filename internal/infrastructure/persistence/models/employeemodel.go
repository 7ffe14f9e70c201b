package models

import (
	"time"

	"gorm.io/datatypes"
)

// EmployeeModel is a row of employees. EmployeeNo maps to the employee_id
// column, the identifier typed at login.
type EmployeeModel struct {
	ID          string                      `gorm:"primaryKey;size:36"`
	EmployeeNo  *string                     `gorm:"column:employee_id;size:64;uniqueIndex"`
	Username    *string                     `gorm:"column:username;size:64;index"`
	Name        string                      `gorm:"column:name;size:128"`
	Position    string                      `gorm:"column:position;size:64"`
	Permissions datatypes.JSONSlice[string] `gorm:"column:permissions"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (EmployeeModel) TableName() string {
	return "employees"
}
