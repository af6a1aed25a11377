package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"slumberpod/core/apperr"
	"slumberpod/core/catalog"
	"slumberpod/model"
)

// AudioRepository 定义音频相关的数据库操作接口
type AudioRepository interface {
	// Create 创建音频并写入分类映射
	Create(ctx context.Context, audio *model.Audio, categoryIDs []int64) (int64, error)

	// GetByID 根据ID获取音频，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*model.Audio, error)

	// GetByIDs 批量获取音频，结果顺序与传入ID顺序一致
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Audio, error)

	// ListAudios 执行归一化后的列表查询计划
	ListAudios(ctx context.Context, q *catalog.Query) ([]*model.Audio, error)

	// GetCategoryIDs 获取音频所属的分类ID
	GetCategoryIDs(ctx context.Context, audioID int64) ([]int64, error)

	// IncrementPlayCount 播放计数+1
	IncrementPlayCount(ctx context.Context, id int64) error

	// CountByCategory 统计映射到某分类的音频数
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)

	// Delete 删除音频: 先清理分类映射和收藏，再删除记录本身
	Delete(ctx context.Context, id int64) error
}

// mysqlAudioRepository implements AudioRepository for MySQL.
type mysqlAudioRepository struct {
	db *sql.DB
}

// NewMySQLAudioRepository 创建新的MySQL音频仓库实例
func NewMySQLAudioRepository(db *sql.DB) AudioRepository {
	return &mysqlAudioRepository{db: db}
}

const audioColumns = `id, user_id, title, description, audio_url, cover_url, duration_seconds,
	is_public, is_free, is_user_creation, play_count, favorite_count, comment_count, created_at, updated_at`

func scanAudio(row interface{ Scan(...interface{}) error }) (*model.Audio, error) {
	a := &model.Audio{}
	var userID sql.NullInt64
	var description, coverURL sql.NullString
	err := row.Scan(&a.ID, &userID, &a.Title, &description, &a.AudioURL, &coverURL, &a.DurationSeconds,
		&a.IsPublic, &a.IsFree, &a.IsUserCreation, &a.PlayCount, &a.FavoriteCount, &a.CommentCount,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		a.UserID = &userID.Int64
	}
	a.Description = description.String
	a.CoverURL = coverURL.String
	return a, nil
}

// buildListQuery 把查询计划拼装成SQL。过滤值全部走参数占位符；
// ORDER BY/方向只用白名单枚举映射出的服务端字面量。
func buildListQuery(q *catalog.Query) (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}

	sb.WriteString("SELECT ")
	sb.WriteString(audioColumns)
	sb.WriteString(" FROM audios")

	switch q.Scope {
	case catalog.ScopeMine:
		sb.WriteString(" WHERE user_id = ? AND is_user_creation = 1")
		args = append(args, q.CallerID)
	case catalog.ScopeFree:
		sb.WriteString(" WHERE is_free = 1 AND is_public = 1")
	case catalog.ScopeCategory:
		sb.WriteString(" WHERE id IN (SELECT audio_id FROM audio_categories WHERE category_id IN (")
		placeholders := make([]string, len(q.CategoryIDs))
		for i, id := range q.CategoryIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		sb.WriteString(strings.Join(placeholders, ","))
		sb.WriteString(")) AND is_public = 1")
	default:
		sb.WriteString(" WHERE is_public = 1")
	}

	direction := "ASC"
	if q.OrderDesc {
		direction = "DESC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY %s %s", q.OrderColumn, direction))

	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, q.Limit, q.Offset)

	return sb.String(), args
}

// ListAudios 执行列表查询
func (r *mysqlAudioRepository) ListAudios(ctx context.Context, q *catalog.Query) ([]*model.Audio, error) {
	if q.Scope == catalog.ScopeCategory && len(q.CategoryIDs) == 0 {
		// 分类闭包为空，不会有任何映射
		return []*model.Audio{}, nil
	}

	query, args := buildListQuery(q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audios: %w", err)
	}
	defer rows.Close()

	audios := make([]*model.Audio, 0)
	for rows.Next() {
		a, err := scanAudio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audio: %w", err)
		}
		audios = append(audios, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListAudios: %w", err)
	}
	return audios, nil
}

// Create 创建音频并写入分类映射，两步在同一事务内完成
func (r *mysqlAudioRepository) Create(ctx context.Context, audio *model.Audio, categoryIDs []int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO audios (user_id, title, description, audio_url, cover_url, duration_seconds,
			is_public, is_free, is_user_creation, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		audio.UserID, audio.Title, audio.Description, audio.AudioURL, audio.CoverURL,
		audio.DurationSeconds, audio.IsPublic, audio.IsFree, audio.IsUserCreation, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert audio: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	for _, catID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO audio_categories (audio_id, category_id) VALUES (?, ?)`, id, catID); err != nil {
			return 0, fmt.Errorf("failed to insert category mapping: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit audio creation: %w", err)
	}
	return id, nil
}

// GetByID 根据ID获取音频
func (r *mysqlAudioRepository) GetByID(ctx context.Context, id int64) (*model.Audio, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM audios WHERE id = ?", audioColumns), id)

	a, err := scanAudio(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan audio by ID %d: %w", id, err)
	}
	return a, nil
}

// GetByIDs 批量获取并按传入顺序返回
func (r *mysqlAudioRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Audio, error) {
	if len(ids) == 0 {
		return []*model.Audio{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf("SELECT %s FROM audios WHERE id IN (%s)",
		audioColumns, strings.Join(placeholders, ","))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audios by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*model.Audio, len(ids))
	for rows.Next() {
		a, err := scanAudio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audio: %w", err)
		}
		byID[a.ID] = a
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetByIDs: %w", err)
	}

	audios := make([]*model.Audio, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			audios = append(audios, a)
		}
	}
	return audios, nil
}

// GetCategoryIDs 获取音频所属分类
func (r *mysqlAudioRepository) GetCategoryIDs(ctx context.Context, audioID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id FROM audio_categories WHERE audio_id = ?`, audioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category mappings: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan category id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IncrementPlayCount 播放计数+1，单条UPDATE，行级原子
func (r *mysqlAudioRepository) IncrementPlayCount(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE audios SET play_count = play_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment play count for audio %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("audio not found")
	}
	return nil
}

// CountByCategory 统计某分类下的音频映射数
func (r *mysqlAudioRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audio_categories WHERE category_id = ?`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audios in category %d: %w", categoryID, err)
	}
	return count, nil
}

// Delete 删除音频及其关联数据
func (r *mysqlAudioRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 先清理关联，再删主记录
	if _, err := tx.ExecContext(ctx, `DELETE FROM audio_categories WHERE audio_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category mappings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE audio_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete favorites: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM audios WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete audio %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audio deletion: %w", err)
	}
	return nil
}
