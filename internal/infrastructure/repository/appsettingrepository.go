package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storedesk/storedesk/internal/domain/setting"
	"github.com/storedesk/storedesk/internal/infrastructure/persistence/models"
	"github.com/storedesk/storedesk/internal/shared/biztime"
	"github.com/storedesk/storedesk/internal/shared/errors"
)

type AppSettingRepository struct {
	db *gorm.DB
}

func NewAppSettingRepository(db *gorm.DB) setting.Repository {
	return &AppSettingRepository{db: db}
}

func (r *AppSettingRepository) Get(ctx context.Context, name string) (string, bool, error) {
	var model models.AppSettingModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if err != nil {
		err = classify("get setting", err)
		if errors.IsNotFoundError(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Value, true, nil
}

func (r *AppSettingRepository) Set(ctx context.Context, name, value string) error {
	model := models.AppSettingModel{Name: name, Value: value, UpdatedAt: biztime.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	return classify("set setting", err)
}
