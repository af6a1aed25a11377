package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"slumberpod/core/apperr"
	"slumberpod/core/catalog"
	"slumberpod/logger"
	"slumberpod/model"
)

// ListAudiosHandler 音频列表。
// 查询参数: category_id | category=free | user_creations=1, limit, offset, orderBy, order
func (h *APIHandler) ListAudiosHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	category := query.Get("category_id")
	if category == "" {
		category = query.Get("category")
	}

	filter := catalog.Filter{
		Category: category,
		MineOnly: query.Get("user_creations") == "1",
		CallerID: CallerID(r.Context()),
	}
	sort := catalog.Sort{
		Field:     query.Get("orderBy"),
		Direction: query.Get("order"),
	}
	page := catalog.Page{
		Limit:  intParam(query.Get("limit"), catalog.DefaultLimit()),
		Offset: intParam(query.Get("offset"), 0),
	}

	audios, err := h.catalogSvc.List(r.Context(), filter, sort, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, audios, "")
}

// GetAudioHandler 音频详情，附带调用者的收藏状态和所属分类
func (h *APIHandler) GetAudioHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	audio, err := h.audioRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if audio == nil {
		writeError(w, apperr.NotFound("audio not found"))
		return
	}

	detail := &model.AudioDetail{Audio: *audio}
	if detail.CategoryIDs, err = h.audioRepo.GetCategoryIDs(r.Context(), id); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if callerID := CallerID(r.Context()); callerID != nil {
		if detail.IsFavorite, err = h.favoriteRepo.IsFavorite(r.Context(), *callerID, id); err != nil {
			writeError(w, apperr.Dependency(err))
			return
		}
	}

	writeSuccess(w, http.StatusOK, detail, "")
}

// CreateAudioRequest 创建音频的规范请求体。
// 字段名只接受这一种写法，不做别名匹配。
type CreateAudioRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	AudioURL        string  `json:"audioUrl"`
	CoverURL        string  `json:"coverUrl"`
	DurationSeconds float64 `json:"durationSeconds"`
	IsPublic        *bool   `json:"isPublic"`
	CategoryIDs     []int64 `json:"categoryIds"`
}

// CreateAudioHandler 创建用户音频
func (h *APIHandler) CreateAudioHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	var req CreateAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.Title == "" || len(req.Title) > 255 {
		writeError(w, apperr.Validation("title is required and must be at most 255 characters"))
		return
	}
	if req.AudioURL == "" {
		writeError(w, apperr.Validation("audioUrl is required"))
		return
	}
	if req.DurationSeconds < 0 {
		writeError(w, apperr.Validation("durationSeconds cannot be negative"))
		return
	}

	audio := &model.Audio{
		UserID:          &userID,
		Title:           req.Title,
		Description:     req.Description,
		AudioURL:        req.AudioURL,
		CoverURL:        req.CoverURL,
		DurationSeconds: req.DurationSeconds,
		IsPublic:        true,
		IsFree:          true,
		IsUserCreation:  true,
	}
	if req.IsPublic != nil {
		audio.IsPublic = *req.IsPublic
	}

	id, err := h.audioRepo.Create(r.Context(), audio, req.CategoryIDs)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	audio.ID = id

	logger.Info("[Audio] 创建音频", logger.Int64("audioId", id), logger.Int64("userId", userID))
	writeSuccess(w, http.StatusCreated, audio, "audio created")
}

// DeleteAudioHandler 删除音频，仅限创建者本人
func (h *APIHandler) DeleteAudioHandler(w http.ResponseWriter, r *http.Request) {
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

	audio, err := h.audioRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if audio == nil {
		writeError(w, apperr.NotFound("audio not found"))
		return
	}
	if audio.UserID == nil || *audio.UserID != userID {
		writeError(w, apperr.Forbidden("only the owner can delete this audio"))
		return
	}

	if err := h.audioRepo.Delete(r.Context(), id); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	logger.Info("[Audio] 删除音频", logger.Int64("audioId", id), logger.Int64("userId", userID))
	writeSuccess(w, http.StatusOK, nil, "audio deleted")
}

// PlayAudioHandler 播放上报: 播放计数+1，已登录用户记入最近播放
func (h *APIHandler) PlayAudioHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.audioRepo.IncrementPlayCount(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	if callerID := CallerID(r.Context()); callerID != nil {
		if err := h.recentCache.Add(r.Context(), *callerID, id); err != nil {
			// 最近播放是尽力而为的缓存，失败不影响播放上报
			logger.Warn("[Audio] 记录最近播放失败", logger.ErrorField(err))
		}
	}

	writeSuccess(w, http.StatusOK, nil, "play recorded")
}

// ToggleFavoriteHandler 切换收藏状态
func (h *APIHandler) ToggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
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

	audio, err := h.audioRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if audio == nil {
		writeError(w, apperr.NotFound("audio not found"))
		return
	}

	favorited, err := h.favoriteRepo.Toggle(r.Context(), userID, id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	writeSuccess(w, http.StatusOK, map[string]bool{"isFavorite": favorited}, "")
}

// ListFavoritesHandler 收藏列表
func (h *APIHandler) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	query := r.URL.Query()
	limit := intParam(query.Get("limit"), catalog.DefaultLimit())
	if limit < 1 {
		limit = 1
	} else if limit > 100 {
		limit = 100
	}
	offset := intParam(query.Get("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	audios, err := h.favoriteRepo.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, audios, "")
}

// RecentPlaysHandler 最近播放列表
func (h *APIHandler) RecentPlaysHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	ids, err := h.recentCache.List(r.Context(), userID, intParam(r.URL.Query().Get("limit"), 20))
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	audios, err := h.audioRepo.GetByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, audios, "")
}

// pathID 解析路径中的数字ID
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidParam("invalid " + name)
	}
	return id, nil
}

// intParam 解析查询参数，缺省或非法时返回fallback
func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
