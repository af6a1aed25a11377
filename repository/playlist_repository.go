package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"slumberpod/core/apperr"
	"slumberpod/model"
)

// PlaylistRepository 定义歌单相关的数据库操作接口
type PlaylistRepository interface {
	// Create 创建歌单
	Create(ctx context.Context, playlist *model.Playlist) (int64, error)

	// GetByID 根据ID获取歌单，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*model.Playlist, error)

	// GetByUserID 获取用户的所有歌单
	GetByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error)

	// Update 更新歌单信息
	Update(ctx context.Context, playlist *model.Playlist) error

	// Delete 删除歌单及其条目
	Delete(ctx context.Context, id int64) error

	// AddAudio 添加音频到歌单
	AddAudio(ctx context.Context, playlistID, audioID int64, position int, volume float64) error

	// RemoveAudio 从歌单中移除音频
	RemoveAudio(ctx context.Context, playlistID, audioID int64) error

	// GetEntries 获取歌单条目，按位置排序
	GetEntries(ctx context.Context, playlistID int64) ([]*model.PlaylistAudio, error)
}

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository 创建新的MySQL歌单仓库实例
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

// Create 创建歌单
func (r *mysqlPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) (int64, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO playlists (user_id, name, description, cover_url, mode, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		playlist.UserID, playlist.Name, playlist.Description, playlist.CoverURL, playlist.Mode, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert playlist: %w", err)
	}
	return res.LastInsertId()
}

// GetByID 根据ID获取歌单
func (r *mysqlPlaylistRepository) GetByID(ctx context.Context, id int64) (*model.Playlist, error) {
	p := &model.Playlist{}
	var description, coverURL sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, cover_url, mode, created_at, updated_at
		 FROM playlists WHERE id = ?`, id).
		Scan(&p.ID, &p.UserID, &p.Name, &description, &coverURL, &p.Mode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan playlist by ID %d: %w", id, err)
	}
	p.Description = description.String
	p.CoverURL = coverURL.String
	return p, nil
}

// GetByUserID 获取用户的所有歌单
func (r *mysqlPlaylistRepository) GetByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, description, cover_url, mode, created_at, updated_at
		 FROM playlists WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for user %d: %w", userID, err)
	}
	defer rows.Close()

	playlists := make([]*model.Playlist, 0)
	for rows.Next() {
		p := &model.Playlist{}
		var description, coverURL sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &description, &coverURL, &p.Mode,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		p.Description = description.String
		p.CoverURL = coverURL.String
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// Update 更新歌单信息
func (r *mysqlPlaylistRepository) Update(ctx context.Context, playlist *model.Playlist) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE playlists SET name = ?, description = ?, cover_url = ?, mode = ?, updated_at = ? WHERE id = ?`,
		playlist.Name, playlist.Description, playlist.CoverURL, playlist.Mode, time.Now(), playlist.ID)
	if err != nil {
		return fmt.Errorf("failed to update playlist %d: %w", playlist.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("playlist not found")
	}
	return nil
}

// Delete 删除歌单及其条目
func (r *mysqlPlaylistRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_audios WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist deletion: %w", err)
	}
	return nil
}

// AddAudio 添加音频到歌单，重复添加视为冲突
func (r *mysqlPlaylistRepository) AddAudio(ctx context.Context, playlistID, audioID int64, position int, volume float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO playlist_audios (playlist_id, audio_id, position, volume) VALUES (?, ?, ?, ?)`,
		playlistID, audioID, position, volume)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperr.Conflict("audio already in playlist")
		}
		return fmt.Errorf("failed to add audio %d to playlist %d: %w", audioID, playlistID, err)
	}
	return nil
}

// RemoveAudio 从歌单中移除音频
func (r *mysqlPlaylistRepository) RemoveAudio(ctx context.Context, playlistID, audioID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM playlist_audios WHERE playlist_id = ? AND audio_id = ?`, playlistID, audioID)
	if err != nil {
		return fmt.Errorf("failed to remove audio %d from playlist %d: %w", audioID, playlistID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("audio not in playlist")
	}
	return nil
}

// GetEntries 获取歌单条目
func (r *mysqlPlaylistRepository) GetEntries(ctx context.Context, playlistID int64) ([]*model.PlaylistAudio, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, playlist_id, audio_id, position, volume, created_at
		 FROM playlist_audios WHERE playlist_id = ? ORDER BY position, id`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	entries := make([]*model.PlaylistAudio, 0)
	for rows.Next() {
		e := &model.PlaylistAudio{}
		if err := rows.Scan(&e.ID, &e.PlaylistID, &e.AudioID, &e.Position, &e.Volume, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// isDuplicateEntry 识别MySQL唯一键冲突
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "duplicate entry")
}
