package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"slumberpod/core/apperr"
	"slumberpod/core/mixer"
	"slumberpod/model"
)

// InlineTrack 直接内联在请求里的音轨，不需要先入库
type InlineTrack struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	URL             string  `json:"url"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// PlanRequest 组合播放请求。trackIds 和 tracks 二选一，
// volumes 的键是音频ID(JSON对象键为字符串)。
type PlanRequest struct {
	TrackIDs []int64            `json:"trackIds"`
	Tracks   []InlineTrack      `json:"tracks"`
	Mode     string             `json:"mode"`
	Volumes  map[string]float64 `json:"volumes"`
}

// PlanPlaybackHandler 根据音轨列表和模式计算组合播放配置。
// 只产出描述，不做任何实际混音。
func (h *APIHandler) PlanPlaybackHandler(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if len(req.TrackIDs) == 0 && len(req.Tracks) == 0 {
		writeError(w, mixer.ErrEmptyTrackList)
		return
	}

	volumes, err := parseVolumes(req.Volumes)
	if err != nil {
		writeError(w, err)
		return
	}

	var audios []*model.Audio
	if len(req.TrackIDs) > 0 {
		audios, err = h.audioRepo.GetByIDs(r.Context(), req.TrackIDs)
		if err != nil {
			writeError(w, apperr.Dependency(err))
			return
		}
		if len(audios) != len(req.TrackIDs) {
			writeError(w, apperr.NotFound("one or more tracks not found"))
			return
		}
	} else {
		audios = make([]*model.Audio, 0, len(req.Tracks))
		for _, t := range req.Tracks {
			if t.URL == "" {
				writeError(w, apperr.Validation("inline tracks require a url"))
				return
			}
			audios = append(audios, &model.Audio{
				ID:              t.ID,
				Title:           t.Title,
				AudioURL:        t.URL,
				DurationSeconds: t.DurationSeconds,
			})
		}
	}

	plan, err := mixer.Plan(audios, model.PlayMode(req.Mode), volumes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, plan, "")
}

// PlanPlaylistHandler 对歌单条目执行组合播放规划，
// 条目上的音量覆盖直接生效。
func (h *APIHandler) PlanPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.playlistRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if playlist == nil {
		writeError(w, apperr.NotFound("playlist not found"))
		return
	}
	if playlist.UserID != userID {
		writeError(w, apperr.Forbidden("not your playlist"))
		return
	}

	entries, err := h.playlistRepo.GetEntries(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	ids := make([]int64, 0, len(entries))
	volumes := make(map[int64]float64, len(entries))
	for _, e := range entries {
		ids = append(ids, e.AudioID)
		volumes[e.AudioID] = e.Volume
	}

	audios, err := h.audioRepo.GetByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	mode := playlist.Mode
	if override := r.URL.Query().Get("mode"); override != "" {
		mode = model.PlayMode(override)
	}

	plan, err := mixer.Plan(audios, mode, volumes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, plan, "")
}

func parseVolumes(raw map[string]float64) (map[int64]float64, error) {
	volumes := make(map[int64]float64, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperr.Validation("volumes keys must be audio ids")
		}
		volumes[id] = v
	}
	return volumes, nil
}
