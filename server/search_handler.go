package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"slumberpod/core/apperr"
)

// SearchHistoryRequest 记录一次搜索
type SearchHistoryRequest struct {
	Keyword string `json:"keyword"`
}

// AddSearchHistoryHandler 记录搜索词
func (h *APIHandler) AddSearchHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	var req SearchHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		writeError(w, apperr.Validation("keyword is required"))
		return
	}
	if len(keyword) > 100 {
		writeError(w, apperr.Validation("keyword must be at most 100 characters"))
		return
	}

	if err := h.searchCache.Add(r.Context(), userID, keyword); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusCreated, nil, "search recorded")
}

// ListSearchHistoryHandler 最近的搜索词，按时间倒序
func (h *APIHandler) ListSearchHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	limit := intParam(r.URL.Query().Get("limit"), 20)
	words, err := h.searchCache.List(r.Context(), userID, limit)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, words, "")
}

// DeleteSearchHistoryHandler 删除单条或清空搜索历史。
// 带 keyword 参数删除单条，不带则清空。
func (h *APIHandler) DeleteSearchHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword != "" {
		if err := h.searchCache.Remove(r.Context(), userID, keyword); err != nil {
			writeError(w, apperr.Dependency(err))
			return
		}
		writeSuccess(w, http.StatusOK, nil, "search history entry removed")
		return
	}

	if err := h.searchCache.Clear(r.Context(), userID); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, nil, "search history cleared")
}
