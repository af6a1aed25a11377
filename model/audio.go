package model

import "time"

// Audio represents one playable sound in the catalog: system white noise,
// nature sound, or a user-created mix recording.
type Audio struct {
	ID              int64     `json:"id"`
	UserID          *int64    `json:"userId,omitempty"` // nil for system audio
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	AudioURL        string    `json:"audioUrl"`
	CoverURL        string    `json:"coverUrl,omitempty"`
	DurationSeconds float64   `json:"durationSeconds"`
	IsPublic        bool      `json:"isPublic"`
	IsFree          bool      `json:"isFree"`
	IsUserCreation  bool      `json:"isUserCreation"`
	PlayCount       int64     `json:"playCount"`
	FavoriteCount   int64     `json:"favoriteCount"`
	CommentCount    int64     `json:"commentCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AudioDetail 音频详情，附带当前调用者的收藏状态
type AudioDetail struct {
	Audio
	IsFavorite  bool    `json:"isFavorite"`
	CategoryIDs []int64 `json:"categoryIds"`
}
