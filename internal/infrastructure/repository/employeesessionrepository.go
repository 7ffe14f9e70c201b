package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/infrastructure/persistence/mappers"
	"github.com/storedesk/storedesk/internal/infrastructure/persistence/models"
	"github.com/storedesk/storedesk/internal/shared/biztime"
	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

// EmployeeSessionRepository is the session store client over
// employee_sessions.
type EmployeeSessionRepository struct {
	db     *gorm.DB
	mapper mappers.SessionMapper
	logger logger.Interface
}

func NewEmployeeSessionRepository(db *gorm.DB, log logger.Interface) session.Repository {
	return &EmployeeSessionRepository{
		db:     db,
		mapper: mappers.NewSessionMapper(),
		logger: log,
	}
}

func (r *EmployeeSessionRepository) Create(ctx context.Context, s *session.Session) error {
	model, err := r.mapper.ToModel(s)
	if err != nil {
		return errors.NewValidationError("invalid device info", err.Error())
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return classify("create session", err)
	}
	return nil
}

// MarkActive records activity and revives the row: a session invalidated
// elsewhere becomes active again while its owner keeps sending heartbeats.
func (r *EmployeeSessionRepository) MarkActive(ctx context.Context, sessionID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.EmployeeSessionModel{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"last_activity": biztime.Normalize(at),
			"is_active":     true,
			"logout_time":   nil,
		})
	if result.Error != nil {
		return classify("mark session active", result.Error)
	}
	if result.RowsAffected == 0 {
		r.logger.Debugw("heartbeat matched no session row", "session_id", sessionID)
	}
	return nil
}

func (r *EmployeeSessionRepository) Invalidate(ctx context.Context, sessionID string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.EmployeeSessionModel{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"is_active":   false,
			"logout_time": biztime.Normalize(at),
		}).Error
	return classify("invalidate session", err)
}

// InvalidateAllExcept closes every active session of employeeID other than
// keepSessionID and returns how many rows changed.
func (r *EmployeeSessionRepository) InvalidateAllExcept(ctx context.Context, employeeID, keepSessionID string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.EmployeeSessionModel{}).
		Where("employee_id = ? AND session_id <> ? AND is_active = ?", employeeID, keepSessionID, true).
		Updates(map[string]interface{}{
			"is_active":   false,
			"logout_time": biztime.Normalize(at),
		})
	if result.Error != nil {
		return 0, classify("invalidate other sessions", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *EmployeeSessionRepository) ListActive(ctx context.Context, filter session.Filter) ([]*session.Session, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}

	var rows []models.EmployeeSessionModel
	if err := query.Order("login_time DESC").Find(&rows).Error; err != nil {
		return nil, classify("list active sessions", err)
	}

	sessions := make([]*session.Session, len(rows))
	for i := range rows {
		sessions[i] = r.mapper.ToDomain(&rows[i])
	}
	return sessions, nil
}

func (r *EmployeeSessionRepository) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	var model models.EmployeeSessionModel
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&model).Error
	if err != nil {
		return nil, classify("get session", err)
	}
	return r.mapper.ToDomain(&model), nil
}
