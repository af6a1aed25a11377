package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"slumberpod/model"
)

// FavoriteRepository 定义收藏相关的数据库操作接口
type FavoriteRepository interface {
	// Toggle 切换收藏状态，返回切换后是否已收藏。
	// 收藏行的删除/插入和计数更新在同一事务内完成。
	Toggle(ctx context.Context, userID, audioID int64) (bool, error)

	// IsFavorite 查询收藏状态
	IsFavorite(ctx context.Context, userID, audioID int64) (bool, error)

	// ListByUser 获取用户收藏的音频，按收藏时间倒序
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Audio, error)
}

// mysqlFavoriteRepository implements FavoriteRepository for MySQL.
type mysqlFavoriteRepository struct {
	db *sql.DB
}

// NewMySQLFavoriteRepository 创建新的MySQL收藏仓库实例
func NewMySQLFavoriteRepository(db *sql.DB) FavoriteRepository {
	return &mysqlFavoriteRepository{db: db}
}

// Toggle 切换收藏。删除/插入收藏行和 favorite_count 的增减
// 必须一起提交，否则并发toggle会把计数推偏；favorites 上的
// (user_id, audio_id) 唯一键在数据库层再兜一道底。
func (r *mysqlFavoriteRepository) Toggle(ctx context.Context, userID, audioID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND audio_id = ?`, userID, audioID)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}

	var favorited bool
	if deleted > 0 {
		// 已收藏 -> 取消
		_, err = tx.ExecContext(ctx,
			`UPDATE audios SET favorite_count = GREATEST(favorite_count - 1, 0) WHERE id = ?`, audioID)
		if err != nil {
			return false, fmt.Errorf("failed to decrement favorite count: %w", err)
		}
		favorited = false
	} else {
		// 未收藏 -> 收藏
		_, err = tx.ExecContext(ctx,
			`INSERT INTO favorites (user_id, audio_id) VALUES (?, ?)`, userID, audioID)
		if err != nil {
			return false, fmt.Errorf("failed to insert favorite: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE audios SET favorite_count = favorite_count + 1 WHERE id = ?`, audioID)
		if err != nil {
			return false, fmt.Errorf("failed to increment favorite count: %w", err)
		}
		favorited = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit favorite toggle: %w", err)
	}
	return favorited, nil
}

// IsFavorite 查询收藏状态
func (r *mysqlFavoriteRepository) IsFavorite(ctx context.Context, userID, audioID int64) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND audio_id = ?`, userID, audioID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

// ListByUser 获取用户收藏的音频
func (r *mysqlFavoriteRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Audio, error) {
	query := fmt.Sprintf(`SELECT %s FROM audios a
		JOIN favorites f ON f.audio_id = a.id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC
		LIMIT ? OFFSET ?`, prefixedAudioColumns("a"))

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites for user %d: %w", userID, err)
	}
	defer rows.Close()

	audios := make([]*model.Audio, 0)
	for rows.Next() {
		a, err := scanAudio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite audio: %w", err)
		}
		audios = append(audios, a)
	}
	return audios, rows.Err()
}

// prefixedAudioColumns 给音频列加上表别名前缀，供JOIN查询使用
func prefixedAudioColumns(alias string) string {
	cols := []string{"id", "user_id", "title", "description", "audio_url", "cover_url", "duration_seconds",
		"is_public", "is_free", "is_user_creation", "play_count", "favorite_count", "comment_count",
		"created_at", "updated_at"}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}
