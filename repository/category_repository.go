package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"slumberpod/core/apperr"
	"slumberpod/model"
)

// CategoryRepository 定义分类相关的数据库操作接口
type CategoryRepository interface {
	// GetAll 获取全部分类，按 parent_id, sort_order 排序
	GetAll(ctx context.Context) ([]*model.Category, error)

	// GetByID 根据ID获取分类，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*model.Category, error)

	// GetChildren 获取直接子分类
	GetChildren(ctx context.Context, parentID int64) ([]*model.Category, error)

	// ResolveWithChildren 返回分类自身及直接子分类的ID集合，
	// 固定一层闭包
	ResolveWithChildren(ctx context.Context, id int64) ([]int64, error)

	// Create 创建分类
	Create(ctx context.Context, category *model.Category) (int64, error)

	// Update 更新分类
	Update(ctx context.Context, category *model.Category) error

	// Delete 删除分类。有子分类或仍有音频映射时拒绝删除。
	Delete(ctx context.Context, id int64) error
}

// mysqlCategoryRepository implements CategoryRepository for MySQL.
type mysqlCategoryRepository struct {
	db *sql.DB
}

// NewMySQLCategoryRepository 创建新的MySQL分类仓库实例
func NewMySQLCategoryRepository(db *sql.DB) CategoryRepository {
	return &mysqlCategoryRepository{db: db}
}

const categoryColumns = `id, name, parent_id, sort_order, is_free, created_at, updated_at`

func scanCategory(row interface{ Scan(...interface{}) error }) (*model.Category, error) {
	c := &model.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.ParentID, &c.SortOrder, &c.IsFree, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetAll 获取全部分类
func (r *mysqlCategoryRepository) GetAll(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM categories ORDER BY parent_id, sort_order, id", categoryColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetByID 根据ID获取分类
func (r *mysqlCategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM categories WHERE id = ?", categoryColumns), id)

	c, err := scanCategory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan category by ID %d: %w", id, err)
	}
	return c, nil
}

// GetChildren 获取直接子分类
func (r *mysqlCategoryRepository) GetChildren(ctx context.Context, parentID int64) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM categories WHERE parent_id = ? ORDER BY sort_order, id", categoryColumns),
		parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children of category %d: %w", parentID, err)
	}
	defer rows.Close()

	children := make([]*model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child category: %w", err)
		}
		children = append(children, c)
	}
	return children, rows.Err()
}

// ResolveWithChildren 一层分类闭包: {id} ∪ {parent_id == id}
func (r *mysqlCategoryRepository) ResolveWithChildren(ctx context.Context, id int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM categories WHERE id = ? OR parent_id = ?`, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category closure for %d: %w", id, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var cid int64
		if err := rows.Scan(&cid); err != nil {
			return nil, fmt.Errorf("failed to scan category id: %w", err)
		}
		ids = append(ids, cid)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.NotFound("category not found")
	}
	return ids, nil
}

// Create 创建分类
func (r *mysqlCategoryRepository) Create(ctx context.Context, category *model.Category) (int64, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, parent_id, sort_order, is_free, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		category.Name, category.ParentID, category.SortOrder, category.IsFree, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert category: %w", err)
	}
	return res.LastInsertId()
}

// Update 更新分类
func (r *mysqlCategoryRepository) Update(ctx context.Context, category *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, parent_id = ?, sort_order = ?, is_free = ?, updated_at = ? WHERE id = ?`,
		category.Name, category.ParentID, category.SortOrder, category.IsFree, time.Now(), category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category %d: %w", category.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("category not found")
	}
	return nil
}

// Delete 删除分类，先检查约束
func (r *mysqlCategoryRepository) Delete(ctx context.Context, id int64) error {
	var childCount int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE parent_id = ?`, id).Scan(&childCount); err != nil {
		return fmt.Errorf("failed to count children of category %d: %w", id, err)
	}
	if childCount > 0 {
		return apperr.Conflict("category has child categories")
	}

	var audioCount int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audio_categories WHERE category_id = ?`, id).Scan(&audioCount); err != nil {
		return fmt.Errorf("failed to count audios in category %d: %w", id, err)
	}
	if audioCount > 0 {
		return apperr.Conflict("category still has mapped audio")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("category not found")
	}
	return nil
}
