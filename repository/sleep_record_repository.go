package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"slumberpod/model"
)

// SleepRecordRepository 睡眠记录仓库 (GORM模块)
type SleepRecordRepository interface {
	Create(ctx context.Context, record *model.SleepRecord) error
	GetByID(ctx context.Context, id int64) (*model.SleepRecord, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.SleepRecord, error)
	Update(ctx context.Context, record *model.SleepRecord) error
	Delete(ctx context.Context, id int64) error
	// WeeklyStats 最近7天的打卡次数、平均时长和平均评分
	WeeklyStats(ctx context.Context, userID int64) (*model.SleepStats, error)
}

type gormSleepRecordRepository struct {
	db *gorm.DB
}

// NewGormSleepRecordRepository 创建睡眠记录仓库
func NewGormSleepRecordRepository(db *gorm.DB) SleepRecordRepository {
	return &gormSleepRecordRepository{db: db}
}

func (r *gormSleepRecordRepository) Create(ctx context.Context, record *model.SleepRecord) error {
	if record.DurationMinutes == 0 && record.EndTime.After(record.StartTime) {
		record.DurationMinutes = int(record.EndTime.Sub(record.StartTime).Minutes())
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create sleep record: %w", err)
	}
	return nil
}

func (r *gormSleepRecordRepository) GetByID(ctx context.Context, id int64) (*model.SleepRecord, error) {
	var record model.SleepRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sleep record %d: %w", id, err)
	}
	return &record, nil
}

func (r *gormSleepRecordRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.SleepRecord, error) {
	var records []*model.SleepRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Limit(limit).Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sleep records for user %d: %w", userID, err)
	}
	return records, nil
}

func (r *gormSleepRecordRepository) Update(ctx context.Context, record *model.SleepRecord) error {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to update sleep record %d: %w", record.ID, err)
	}
	return nil
}

func (r *gormSleepRecordRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&model.SleepRecord{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete sleep record %d: %w", id, err)
	}
	return nil
}

func (r *gormSleepRecordRepository) WeeklyStats(ctx context.Context, userID int64) (*model.SleepStats, error) {
	since := time.Now().AddDate(0, 0, -7)

	var stats model.SleepStats
	err := r.db.WithContext(ctx).
		Model(&model.SleepRecord{}).
		Select("COUNT(*) AS count, COALESCE(AVG(duration_minutes), 0) AS avg_duration_minutes, COALESCE(AVG(quality), 0) AS avg_quality").
		Where("user_id = ? AND start_time >= ?", userID, since).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute sleep stats for user %d: %w", userID, err)
	}
	return &stats, nil
}
