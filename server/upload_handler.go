package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"slumberpod/core/apperr"
	"slumberpod/logger"
)

const maxUploadBytes = 50 << 20 // 单请求最大50MB

// uploadResult 单个文件的上传结果，按调用方声明的key对应
type uploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// UploadHandler 批量上传。请求为multipart表单:
//   - keys 字段: JSON数组，声明本次要上传的文件key
//   - 其余每个文件part以key命名，只按key匹配，不看原始文件名
//
// 对象名用uuid生成，避免任何文件名编码问题。
func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperr.Validation("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	rawKeys := r.FormValue("keys")
	if rawKeys == "" {
		writeError(w, apperr.Validation("keys field is required"))
		return
	}
	var keys []string
	if err := json.Unmarshal([]byte(rawKeys), &keys); err != nil {
		writeError(w, apperr.Validation("keys must be a JSON array of strings"))
		return
	}
	if len(keys) == 0 {
		writeError(w, apperr.Validation("keys must not be empty"))
		return
	}

	results := make([]uploadResult, 0, len(keys))
	for _, key := range keys {
		headers, ok := r.MultipartForm.File[key]
		if !ok || len(headers) == 0 {
			writeError(w, apperr.Validation(fmt.Sprintf("missing file part for key %q", key)))
			return
		}
		fh := headers[0]

		f, err := fh.Open()
		if err != nil {
			writeError(w, apperr.Dependency(err))
			return
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		// 对象路径: uploads/<userID>/<uuid><原扩展名>
		ext := strings.ToLower(path.Ext(fh.Filename))
		objectPath := fmt.Sprintf("uploads/%d/%s%s", userID, uuid.New().String(), ext)

		url, err := h.objects.Upload(r.Context(), objectPath, f, fh.Size, contentType)
		f.Close()
		if err != nil {
			logger.Error("[Upload] 上传对象失败",
				logger.String("key", key),
				logger.String("objectPath", objectPath),
				logger.ErrorField(err))
			writeError(w, apperr.Dependency(err))
			return
		}

		results = append(results, uploadResult{Key: key, URL: url})
	}

	logger.Info("[Upload] 批量上传完成",
		logger.Int64("userID", userID),
		logger.Int("count", len(results)))
	writeSuccess(w, http.StatusCreated, results, "upload complete")
}
