package server

import (
	"encoding/json"
	"net/http"

	"slumberpod/core/apperr"
	"slumberpod/logger"
	"slumberpod/model"
)

// ListCategoriesHandler 返回分类树: 根分类及各自的直接子分类
func (h *APIHandler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryRepo.GetAll(r.Context())
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	childrenByParent := make(map[int64][]*model.Category)
	for _, c := range categories {
		if c.ParentID != 0 {
			childrenByParent[c.ParentID] = append(childrenByParent[c.ParentID], c)
		}
	}

	tree := make([]*model.CategoryWithChildren, 0)
	for _, c := range categories {
		if c.ParentID != 0 {
			continue
		}
		node := &model.CategoryWithChildren{Category: *c, Children: childrenByParent[c.ID]}
		if node.Children == nil {
			node.Children = []*model.Category{}
		}
		tree = append(tree, node)
	}

	writeSuccess(w, http.StatusOK, tree, "")
}

// GetCategoryHandler 分类详情，附带子分类和音频数量
func (h *APIHandler) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	category, err := h.categoryRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if category == nil {
		writeError(w, apperr.NotFound("category not found"))
		return
	}

	children, err := h.categoryRepo.GetChildren(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	count, err := h.audioRepo.CountByCategory(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}

	writeSuccess(w, http.StatusOK, &model.CategoryWithChildren{
		Category:   *category,
		Children:   children,
		AudioCount: count,
	}, "")
}

// CategoryRequest 创建/更新分类的规范请求体
type CategoryRequest struct {
	Name      string `json:"name"`
	ParentID  int64  `json:"parentId"`
	SortOrder int    `json:"sortOrder"`
	IsFree    *bool  `json:"isFree"`
}

// CreateCategoryHandler 创建分类
func (h *APIHandler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.Name == "" || len(req.Name) > 100 {
		writeError(w, apperr.Validation("name is required and must be at most 100 characters"))
		return
	}
	if req.ParentID < 0 {
		writeError(w, apperr.Validation("parentId cannot be negative"))
		return
	}

	// 只允许两层树: 父分类必须是根分类
	if req.ParentID != 0 {
		parent, err := h.categoryRepo.GetByID(r.Context(), req.ParentID)
		if err != nil {
			writeError(w, apperr.Dependency(err))
			return
		}
		if parent == nil {
			writeError(w, apperr.NotFound("parent category not found"))
			return
		}
		if parent.ParentID != 0 {
			writeError(w, apperr.Validation("categories can be nested at most one level deep"))
			return
		}
	}

	category := &model.Category{
		Name:      req.Name,
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
		IsFree:    true,
	}
	if req.IsFree != nil {
		category.IsFree = *req.IsFree
	}

	id, err := h.categoryRepo.Create(r.Context(), category)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	category.ID = id

	logger.Info("[Category] 创建分类", logger.Int64("categoryId", id), logger.String("name", category.Name))
	writeSuccess(w, http.StatusCreated, category, "category created")
}

// UpdateCategoryHandler 更新分类
func (h *APIHandler) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.Name == "" || len(req.Name) > 100 {
		writeError(w, apperr.Validation("name is required and must be at most 100 characters"))
		return
	}

	existing, err := h.categoryRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Dependency(err))
		return
	}
	if existing == nil {
		writeError(w, apperr.NotFound("category not found"))
		return
	}

	existing.Name = req.Name
	existing.SortOrder = req.SortOrder
	if req.IsFree != nil {
		existing.IsFree = *req.IsFree
	}

	if err := h.categoryRepo.Update(r.Context(), existing); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, existing, "category updated")
}

// DeleteCategoryHandler 删除分类。有子分类或仍有音频映射时返回409。
func (h *APIHandler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.categoryRepo.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	logger.Info("[Category] 删除分类", logger.Int64("categoryId", id))
	writeSuccess(w, http.StatusOK, nil, "category deleted")
}
