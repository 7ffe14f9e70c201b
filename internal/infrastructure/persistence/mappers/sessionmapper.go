package mappers

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/infrastructure/persistence/models"
	"github.com/storedesk/storedesk/internal/shared/biztime"
)

// SessionMapper converts between sessions and employee_sessions rows.
type SessionMapper interface {
	ToModel(entity *session.Session) (*models.EmployeeSessionModel, error)
	ToDomain(model *models.EmployeeSessionModel) *session.Session
}

type SessionMapperImpl struct{}

func NewSessionMapper() SessionMapper {
	return &SessionMapperImpl{}
}

func (m *SessionMapperImpl) ToModel(entity *session.Session) (*models.EmployeeSessionModel, error) {
	if entity == nil {
		return nil, nil
	}
	device, err := json.Marshal(entity.DeviceInfo)
	if err != nil {
		return nil, err
	}
	return &models.EmployeeSessionModel{
		SessionID:    entity.SessionID,
		EmployeeID:   entity.EmployeeID,
		LoginTime:    biztime.Normalize(entity.LoginTime),
		LastActivity: biztime.NormalizePtr(entity.LastActivity),
		IsActive:     entity.IsActive,
		LogoutTime:   biztime.NormalizePtr(entity.LogoutTime),
		DeviceInfo:   datatypes.JSON(device),
	}, nil
}

// ToDomain tolerates an unreadable device_info blob; it is informational.
func (m *SessionMapperImpl) ToDomain(model *models.EmployeeSessionModel) *session.Session {
	if model == nil {
		return nil
	}
	var device session.DeviceInfo
	if len(model.DeviceInfo) > 0 {
		_ = json.Unmarshal(model.DeviceInfo, &device)
	}
	return &session.Session{
		SessionID:    model.SessionID,
		EmployeeID:   model.EmployeeID,
		LoginTime:    biztime.Normalize(model.LoginTime),
		LastActivity: biztime.NormalizePtr(model.LastActivity),
		IsActive:     model.IsActive,
		LogoutTime:   biztime.NormalizePtr(model.LogoutTime),
		DeviceInfo:   device,
	}
}
