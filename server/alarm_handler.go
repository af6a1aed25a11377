package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"slumberpod/core/apperr"
	"slumberpod/model"
)

var wakeTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// AlarmRequest 创建/更新闹钟的规范请求体
type AlarmRequest struct {
	WakeTime   string `json:"wakeTime"`
	RepeatDays string `json:"repeatDays"`
	AudioID    *int64 `json:"audioId"`
	Enabled    *bool  `json:"enabled"`
}

func (req *AlarmRequest) validate() error {
	if !wakeTimePattern.MatchString(req.WakeTime) {
		return apperr.Validation("wakeTime must be in HH:MM format")
	}
	if req.RepeatDays != "" {
		for _, part := range strings.Split(req.RepeatDays, ",") {
			day, err := strconv.Atoi(part)
			if err != nil || day < 1 || day > 7 {
				return apperr.Validation("repeatDays must be comma-separated weekdays 1-7")
			}
		}
	}
	return nil
}

// CreateAlarmHandler 创建闹钟
func (h *APIHandler) CreateAlarmHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	var req AlarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	alarm := &model.Alarm{
		UserID:     userID,
		WakeTime:   req.WakeTime,
		RepeatDays: req.RepeatDays,
		AudioID:    req.AudioID,
		Enabled:    true,
	}
	if req.Enabled != nil {
		alarm.Enabled = *req.Enabled
	}
	if err := h.alarmRepo.Create(r.Context(), alarm); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusCreated, alarm, "alarm created")
}

// ListAlarmsHandler 当前用户的闹钟列表
func (h *APIHandler) ListAlarmsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	alarms, err := h.alarmRepo.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, alarms, "")
}

// 获取闹钟并校验所有权
func (h *APIHandler) ownedAlarm(r *http.Request) (*model.Alarm, error) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, apperr.AuthRequired("login required")
	}
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}

	alarm, err := h.alarmRepo.GetByID(r.Context(), id)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	if alarm == nil {
		return nil, apperr.NotFound("alarm not found")
	}
	if alarm.UserID != userID {
		return nil, apperr.Forbidden("not your alarm")
	}
	return alarm, nil
}

// UpdateAlarmHandler 更新闹钟
func (h *APIHandler) UpdateAlarmHandler(w http.ResponseWriter, r *http.Request) {
	alarm, err := h.ownedAlarm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req AlarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	alarm.WakeTime = req.WakeTime
	alarm.RepeatDays = req.RepeatDays
	alarm.AudioID = req.AudioID
	if req.Enabled != nil {
		alarm.Enabled = *req.Enabled
	}

	if err := h.alarmRepo.Update(r.Context(), alarm); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, alarm, "alarm updated")
}

// ToggleAlarmHandler 开关闹钟
func (h *APIHandler) ToggleAlarmHandler(w http.ResponseWriter, r *http.Request) {
	alarm, err := h.ownedAlarm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	enabled := !alarm.Enabled
	if err := h.alarmRepo.SetEnabled(r.Context(), alarm.ID, enabled); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, map[string]bool{"enabled": enabled}, "")
}

// DeleteAlarmHandler 删除闹钟
func (h *APIHandler) DeleteAlarmHandler(w http.ResponseWriter, r *http.Request) {
	alarm, err := h.ownedAlarm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.alarmRepo.Delete(r.Context(), alarm.ID); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, nil, "alarm deleted")
}
