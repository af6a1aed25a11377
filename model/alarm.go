package model

import "time"

// Alarm 起床闹钟 (GORM模块)。服务端只做CRUD，不负责触发。
type Alarm struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"index;not null" json:"userId"`
	WakeTime   string    `gorm:"size:5;not null" json:"wakeTime"`   // "HH:MM"
	RepeatDays string    `gorm:"size:20" json:"repeatDays"`         // 逗号分隔 1-7，空表示单次
	AudioID    *int64    `json:"audioId,omitempty"`                 // 铃声音频，空用系统默认
	Enabled    bool      `gorm:"default:true" json:"enabled"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Alarm) TableName() string {
	return "alarms"
}
