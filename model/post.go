package model

import "time"

// Post 社区帖子 (GORM模块)
type Post struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"index;not null" json:"userId"`
	Content      string    `gorm:"size:2000;not null" json:"content"`
	ImageURL     string    `gorm:"size:767" json:"imageUrl,omitempty"`
	LikeCount    int64     `gorm:"default:0" json:"likeCount"`
	CommentCount int64     `gorm:"default:0" json:"commentCount"`
	Status       int8      `gorm:"default:1" json:"status"` // 0=隐藏 1=正常
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}
