package mappers

import (
	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/infrastructure/persistence/models"
)

type EmployeeMapper interface {
	ToModel(entity *employee.Employee) *models.EmployeeModel
	ToDomain(model *models.EmployeeModel) *employee.Employee
}

type EmployeeMapperImpl struct{}

func NewEmployeeMapper() EmployeeMapper {
	return &EmployeeMapperImpl{}
}

func (m *EmployeeMapperImpl) ToModel(entity *employee.Employee) *models.EmployeeModel {
	if entity == nil {
		return nil
	}
	perms := entity.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &models.EmployeeModel{
		ID:          entity.ID,
		EmployeeNo:  nullableString(entity.EmployeeNo),
		Username:    nullableString(entity.Username),
		Name:        entity.Name,
		Position:    entity.Role,
		Permissions: perms,
	}
}

// ToDomain returns the raw row; login normalises it afterwards.
func (m *EmployeeMapperImpl) ToDomain(model *models.EmployeeModel) *employee.Employee {
	if model == nil {
		return nil
	}
	var perms []string
	if model.Permissions != nil {
		perms = append([]string{}, model.Permissions...)
	}
	return &employee.Employee{
		ID:          model.ID,
		EmployeeNo:  derefString(model.EmployeeNo),
		Username:    derefString(model.Username),
		Name:        model.Name,
		Role:        model.Position,
		Permissions: perms,
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
