package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"slumberpod/model"
)

// AlarmRepository 闹钟仓库 (GORM模块)
type AlarmRepository interface {
	Create(ctx context.Context, alarm *model.Alarm) error
	GetByID(ctx context.Context, id int64) (*model.Alarm, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Alarm, error)
	Update(ctx context.Context, alarm *model.Alarm) error
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	Delete(ctx context.Context, id int64) error
}

type gormAlarmRepository struct {
	db *gorm.DB
}

// NewGormAlarmRepository 创建闹钟仓库
func NewGormAlarmRepository(db *gorm.DB) AlarmRepository {
	return &gormAlarmRepository{db: db}
}

func (r *gormAlarmRepository) Create(ctx context.Context, alarm *model.Alarm) error {
	if err := r.db.WithContext(ctx).Create(alarm).Error; err != nil {
		return fmt.Errorf("failed to create alarm: %w", err)
	}
	return nil
}

func (r *gormAlarmRepository) GetByID(ctx context.Context, id int64) (*model.Alarm, error) {
	var alarm model.Alarm
	err := r.db.WithContext(ctx).First(&alarm, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alarm %d: %w", id, err)
	}
	return &alarm, nil
}

func (r *gormAlarmRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Alarm, error) {
	var alarms []*model.Alarm
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("wake_time").
		Find(&alarms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alarms for user %d: %w", userID, err)
	}
	return alarms, nil
}

func (r *gormAlarmRepository) Update(ctx context.Context, alarm *model.Alarm) error {
	if err := r.db.WithContext(ctx).Save(alarm).Error; err != nil {
		return fmt.Errorf("failed to update alarm %d: %w", alarm.ID, err)
	}
	return nil
}

func (r *gormAlarmRepository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	err := r.db.WithContext(ctx).
		Model(&model.Alarm{}).
		Where("id = ?", id).
		Update("enabled", enabled).Error
	if err != nil {
		return fmt.Errorf("failed to toggle alarm %d: %w", id, err)
	}
	return nil
}

func (r *gormAlarmRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&model.Alarm{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete alarm %d: %w", id, err)
	}
	return nil
}
