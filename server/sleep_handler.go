package server

import (
	"encoding/json"
	"net/http"
	"time"

	"slumberpod/core/apperr"
	"slumberpod/model"
)

// SleepRecordRequest 创建/更新睡眠记录的规范请求体
type SleepRecordRequest struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Quality   int       `json:"quality"`
	Note      string    `json:"note"`
}

func (req *SleepRecordRequest) validate() error {
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return apperr.Validation("startTime and endTime are required")
	}
	if !req.EndTime.After(req.StartTime) {
		return apperr.Validation("endTime must be after startTime")
	}
	if req.Quality < 1 || req.Quality > 5 {
		return apperr.Validation("quality must be in [1,5]")
	}
	if len(req.Note) > 500 {
		return apperr.Validation("note must be at most 500 characters")
	}
	return nil
}

// CreateSleepRecordHandler 打卡一次睡眠
func (h *APIHandler) CreateSleepRecordHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	var req SleepRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	record := &model.SleepRecord{
		UserID:    userID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Quality:   req.Quality,
		Note:      req.Note,
	}
	if err := h.sleepRepo.Create(r.Context(), record); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusCreated, record, "sleep record created")
}

// ListSleepRecordsHandler 睡眠记录列表
func (h *APIHandler) ListSleepRecordsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	query := r.URL.Query()
	limit := intParam(query.Get("limit"), 20)
	if limit < 1 {
		limit = 1
	} else if limit > 100 {
		limit = 100
	}
	offset := intParam(query.Get("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	records, err := h.sleepRepo.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, records, "")
}

// SleepStatsHandler 近7天睡眠统计
func (h *APIHandler) SleepStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	stats, err := h.sleepRepo.WeeklyStats(r.Context(), userID)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, stats, "")
}

// 获取睡眠记录并校验所有权
func (h *APIHandler) ownedSleepRecord(r *http.Request) (*model.SleepRecord, error) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, apperr.AuthRequired("login required")
	}
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}

	record, err := h.sleepRepo.GetByID(r.Context(), id)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	if record == nil {
		return nil, apperr.NotFound("sleep record not found")
	}
	if record.UserID != userID {
		return nil, apperr.Forbidden("not your sleep record")
	}
	return record, nil
}

// UpdateSleepRecordHandler 更新睡眠记录
func (h *APIHandler) UpdateSleepRecordHandler(w http.ResponseWriter, r *http.Request) {
	record, err := h.ownedSleepRecord(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req SleepRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	record.StartTime = req.StartTime
	record.EndTime = req.EndTime
	record.DurationMinutes = int(req.EndTime.Sub(req.StartTime).Minutes())
	record.Quality = req.Quality
	record.Note = req.Note

	if err := h.sleepRepo.Update(r.Context(), record); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, record, "sleep record updated")
}

// DeleteSleepRecordHandler 删除睡眠记录
func (h *APIHandler) DeleteSleepRecordHandler(w http.ResponseWriter, r *http.Request) {
	record, err := h.ownedSleepRecord(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.sleepRepo.Delete(r.Context(), record.ID); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, nil, "sleep record deleted")
}
