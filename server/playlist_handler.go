package server

import (
	"encoding/json"
	"net/http"

	"slumberpod/core/apperr"
	"slumberpod/logger"
	"slumberpod/model"
)

// PlaylistRequest 创建/更新歌单的规范请求体
type PlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl"`
	Mode        string `json:"mode"`
}

func validPlayMode(mode string) bool {
	switch model.PlayMode(mode) {
	case model.PlayModeSequential, model.PlayModeParallel, model.PlayModeMixed:
		return true
	}
	return false
}

// 获取歌单并校验所有权
func (h *APIHandler) ownedPlaylist(r *http.Request) (*model.Playlist, error) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, apperr.AuthRequired("login required")
	}
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}

	playlist, err := h.playlistRepo.GetByID(r.Context(), id)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	if playlist == nil {
		return nil, apperr.NotFound("playlist not found")
	}
	if playlist.UserID != userID {
		return nil, apperr.Forbidden("not your playlist")
	}
	return playlist, nil
}

// ListPlaylistsHandler 当前用户的歌单列表
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	playlists, err := h.playlistRepo.GetByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, playlists, "")
}

// CreatePlaylistHandler 创建歌单
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.Name == "" || len(req.Name) > 255 {
		writeError(w, apperr.Validation("name is required and must be at most 255 characters"))
		return
	}
	if req.Mode == "" {
		req.Mode = string(model.PlayModeParallel)
	}
	if !validPlayMode(req.Mode) {
		writeError(w, apperr.Validation("mode must be sequential, parallel or mixed"))
		return
	}

	playlist := &model.Playlist{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		Mode:        model.PlayMode(req.Mode),
	}
	id, err := h.playlistRepo.Create(r.Context(), playlist)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	playlist.ID = id

	logger.Info("[Playlist] 创建歌单", logger.Int64("playlistId", id), logger.Int64("userId", userID))
	writeSuccess(w, http.StatusCreated, playlist, "playlist created")
}

// GetPlaylistHandler 歌单详情，附带条目和音频信息
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.playlistRepo.GetEntries(r.Context(), playlist.ID)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.AudioID)
	}
	audios, err := h.audioRepo.GetByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	writeSuccess(w, http.StatusOK, &model.PlaylistWithAudios{
		Playlist: *playlist,
		Entries:  entries,
		Audios:   audios,
	}, "")
}

// UpdatePlaylistHandler 更新歌单信息
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.Name == "" || len(req.Name) > 255 {
		writeError(w, apperr.Validation("name is required and must be at most 255 characters"))
		return
	}
	if req.Mode != "" && !validPlayMode(req.Mode) {
		writeError(w, apperr.Validation("mode must be sequential, parallel or mixed"))
		return
	}

	playlist.Name = req.Name
	playlist.Description = req.Description
	playlist.CoverURL = req.CoverURL
	if req.Mode != "" {
		playlist.Mode = model.PlayMode(req.Mode)
	}

	if err := h.playlistRepo.Update(r.Context(), playlist); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, playlist, "playlist updated")
}

// DeletePlaylistHandler 删除歌单
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.playlistRepo.Delete(r.Context(), playlist.ID); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	logger.Info("[Playlist] 删除歌单", logger.Int64("playlistId", playlist.ID))
	writeSuccess(w, http.StatusOK, nil, "playlist deleted")
}

// AddPlaylistAudioRequest 添加音频到歌单的规范请求体
type AddPlaylistAudioRequest struct {
	AudioID  int64   `json:"audioId"`
	Position int     `json:"position"`
	Volume   float64 `json:"volume"`
}

// AddPlaylistAudioHandler 添加音频到歌单
func (h *APIHandler) AddPlaylistAudioHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req AddPlaylistAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.AudioID <= 0 {
		writeError(w, apperr.Validation("audioId is required"))
		return
	}
	if req.Volume == 0 {
		req.Volume = 1.0
	}
	if req.Volume < 0 || req.Volume > 2 {
		writeError(w, apperr.Validation("volume must be in [0,2]"))
		return
	}

	audio, err := h.audioRepo.GetByID(r.Context(), req.AudioID)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if audio == nil {
		writeError(w, apperr.NotFound("audio not found"))
		return
	}

	if err := h.playlistRepo.AddAudio(r.Context(), playlist.ID, req.AudioID, req.Position, req.Volume); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, nil, "audio added to playlist")
}

// RemovePlaylistAudioHandler 从歌单中移除音频
func (h *APIHandler) RemovePlaylistAudioHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		writeError(w, err)
		return
	}

	audioID, err := pathID(r, "audio_id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.playlistRepo.RemoveAudio(r.Context(), playlist.ID, audioID); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "audio removed from playlist")
}
