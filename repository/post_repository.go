package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"slumberpod/model"
)

// PostRepository 社区帖子仓库 (GORM模块)
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	// List 按时间倒序分页列出正常状态的帖子
	List(ctx context.Context, limit, offset int) ([]*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
	// IncrementLike 点赞计数+1
	IncrementLike(ctx context.Context, id int64) error
}

type gormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository 创建帖子仓库
func NewGormPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

func (r *gormPostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *gormPostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return &post, nil
}

func (r *gormPostRepository) List(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Where("status = ?", 1).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (r *gormPostRepository) Update(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("failed to update post %d: %w", post.ID, err)
	}
	return nil
}

func (r *gormPostRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&model.Post{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	return nil
}

func (r *gormPostRepository) IncrementLike(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to like post %d: %w", id, err)
	}
	return nil
}
