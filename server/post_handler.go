package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"slumberpod/core/apperr"
	"slumberpod/model"
)

// PostRequest 发帖/改帖的规范请求体
type PostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
}

func (req *PostRequest) validate() error {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return apperr.Validation("content is required")
	}
	if len(content) > 2000 {
		return apperr.Validation("content must be at most 2000 characters")
	}
	return nil
}

// CreatePostHandler 发布帖子
func (h *APIHandler) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	post := &model.Post{
		UserID:   userID,
		Content:  strings.TrimSpace(req.Content),
		ImageURL: req.ImageURL,
		Status:   1,
	}
	if err := h.postRepo.Create(r.Context(), post); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusCreated, post, "post created")
}

// ListPostsHandler 社区帖子列表，公开可读
func (h *APIHandler) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
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

	posts, err := h.postRepo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, posts, "")
}

// GetPostHandler 帖子详情
func (h *APIHandler) GetPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.postRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if post == nil || post.Status != 1 {
		writeError(w, apperr.NotFound("post not found"))
		return
	}
	writeSuccess(w, http.StatusOK, post, "")
}

// UpdatePostHandler 修改自己的帖子
func (h *APIHandler) UpdatePostHandler(w http.ResponseWriter, r *http.Request) {
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

	post, err := h.postRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if post == nil {
		writeError(w, apperr.NotFound("post not found"))
		return
	}
	if post.UserID != userID {
		writeError(w, apperr.Forbidden("not your post"))
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	post.Content = strings.TrimSpace(req.Content)
	post.ImageURL = req.ImageURL
	if err := h.postRepo.Update(r.Context(), post); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, post, "post updated")
}

// DeletePostHandler 删除自己的帖子
func (h *APIHandler) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
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

	post, err := h.postRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if post == nil {
		writeError(w, apperr.NotFound("post not found"))
		return
	}
	if post.UserID != userID {
		writeError(w, apperr.Forbidden("not your post"))
		return
	}

	if err := h.postRepo.Delete(r.Context(), id); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, nil, "post deleted")
}

// LikePostHandler 点赞帖子
func (h *APIHandler) LikePostHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := GetUserIDFromContext(r.Context()); err != nil {
		writeError(w, apperr.AuthRequired("login required"))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.postRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if post == nil || post.Status != 1 {
		writeError(w, apperr.NotFound("post not found"))
		return
	}

	if err := h.postRepo.IncrementLike(r.Context(), id); err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	writeSuccess(w, http.StatusOK, map[string]int64{"likeCount": post.LikeCount + 1}, "")
}
