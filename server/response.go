package server

import (
	"encoding/json"
	"net/http"

	"slumberpod/core/apperr"
	"slumberpod/logger"
)

// envelope 统一响应格式: {success, data|error, message}
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// writeSuccess 写成功响应
func writeSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// writeError 根据错误分类写失败响应。依赖错误只回传通用信息，
// 原始错误进日志。
func writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", logger.ErrorField(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   apperr.ClientMessage(err),
	})
}
