package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/infrastructure/persistence/mappers"
	"github.com/storedesk/storedesk/internal/infrastructure/persistence/models"
	"github.com/storedesk/storedesk/internal/shared/biztime"
	"github.com/storedesk/storedesk/internal/shared/errors"
)

type EmployeeRepository struct {
	db     *gorm.DB
	mapper mappers.EmployeeMapper
}

func NewEmployeeRepository(db *gorm.DB) employee.Repository {
	return &EmployeeRepository{
		db:     db,
		mapper: mappers.NewEmployeeMapper(),
	}
}

func (r *EmployeeRepository) GetByEmployeeNo(ctx context.Context, employeeNo string) (*employee.Employee, error) {
	return r.first(ctx, "get employee by employee_id", "employee_id = ?", employeeNo)
}

// GetByUsername looks up rows created before employee_id existed.
func (r *EmployeeRepository) GetByUsername(ctx context.Context, username string) (*employee.Employee, error) {
	return r.first(ctx, "get employee by username", "username = ?", username)
}

func (r *EmployeeRepository) first(ctx context.Context, op, cond string, arg string) (*employee.Employee, error) {
	var model models.EmployeeModel
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&model).Error; err != nil {
		return nil, classify(op, err)
	}
	return r.mapper.ToDomain(&model), nil
}

// GetByIDs returns the employees found, keyed by row id. Missing ids are
// simply absent from the map.
func (r *EmployeeRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*employee.Employee, error) {
	result := make(map[string]*employee.Employee, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.EmployeeModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, classify("get employees by ids", err)
	}
	for i := range rows {
		result[rows[i].ID] = r.mapper.ToDomain(&rows[i])
	}
	return result, nil
}

func (r *EmployeeRepository) UpdateName(ctx context.Context, id, name string) error {
	res := r.db.WithContext(ctx).
		Model(&models.EmployeeModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":       name,
			"updated_at": biztime.Now(),
		})
	if res.Error != nil {
		return classify("update employee name", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NewNotFoundError("employee not found", id)
	}
	return nil
}
