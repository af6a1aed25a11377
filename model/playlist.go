package model

import "time"

// Playlist 用户创建的组合歌单，记录一组音频和默认播放模式
type Playlist struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	Mode        PlayMode  `json:"mode"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistAudio 歌单中的一条音频及其音量覆盖
type PlaylistAudio struct {
	ID         int64     `json:"id"`
	PlaylistID int64     `json:"playlistId"`
	AudioID    int64     `json:"audioId"`
	Position   int       `json:"position"`
	Volume     float64   `json:"volume"` // 组合播放时的音量覆盖，默认1.0
	CreatedAt  time.Time `json:"createdAt"`
}

// PlaylistWithAudios 歌单及其包含的音频
type PlaylistWithAudios struct {
	Playlist Playlist         `json:"playlist"`
	Entries  []*PlaylistAudio `json:"entries"`
	Audios   []*Audio         `json:"audios"`
}
