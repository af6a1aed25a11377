package model

import "time"

// Category 音频分类。两层树结构: parent_id 为 0 表示根分类。
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  int64     `json:"parentId"`
	SortOrder int       `json:"sortOrder"`
	IsFree    bool      `json:"isFree"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryWithChildren 分类及其直接子分类
type CategoryWithChildren struct {
	Category
	Children   []*Category `json:"children"`
	AudioCount int64       `json:"audioCount"`
}
