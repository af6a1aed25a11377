package catalog

import (
	"context"

	"slumberpod/model"
)

// AudioStore 目录服务需要的音频查询能力
type AudioStore interface {
	ListAudios(ctx context.Context, q *Query) ([]*model.Audio, error)
}

// CategoryStore 目录服务需要的分类解析能力
type CategoryStore interface {
	// ResolveWithChildren 返回 {id} ∪ {parent_id == id 的直接子分类}。
	// 固定一层闭包，不做更深的递归。
	ResolveWithChildren(ctx context.Context, id int64) ([]int64, error)
}

// Service 音频目录查询服务: 归一化过滤/排序/分页，解析分类闭包，
// 再交给仓库执行。
type Service struct {
	audios     AudioStore
	categories CategoryStore
}

// NewService 创建目录服务
func NewService(audios AudioStore, categories CategoryStore) *Service {
	return &Service{audios: audios, categories: categories}
}

// List 解析一次列表请求并返回音频列表。
// 只读操作，无副作用。
func (s *Service) List(ctx context.Context, f Filter, sort Sort, page Page) ([]*model.Audio, error) {
	q, err := BuildQuery(f, sort, page)
	if err != nil {
		return nil, err
	}

	if q.Scope == ScopeCategory {
		ids, err := s.categories.ResolveWithChildren(ctx, q.CategoryID)
		if err != nil {
			return nil, err
		}
		q.CategoryIDs = ids
	}

	return s.audios.ListAudios(ctx, q)
}
