package model

import "time"

// SleepRecord 一次睡眠打卡记录 (GORM模块)
type SleepRecord struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64     `gorm:"index;not null" json:"userId"`
	StartTime       time.Time `gorm:"not null" json:"startTime"`
	EndTime         time.Time `gorm:"not null" json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Quality         int       `json:"quality"` // 主观评分 1-5
	Note            string    `gorm:"size:500" json:"note,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (SleepRecord) TableName() string {
	return "sleep_records"
}

// SleepStats 近7天睡眠统计
type SleepStats struct {
	Count              int64   `json:"count"`
	AvgDurationMinutes float64 `json:"avgDurationMinutes"`
	AvgQuality         float64 `json:"avgQuality"`
}
