package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"slumberpod/model"
)

// UserRepository 定义用户相关的数据库操作接口
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository 创建新的MySQL用户仓库实例
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, phone, avatar_url, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	u := &model.User{}
	var phone, avatarURL sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &phone, &avatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Phone = phone.String
	u.AvatarURL = avatarURL.String
	return u, nil
}

// CreateUser 创建用户
func (r *mysqlUserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, phone, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.Phone, user.AvatarURL, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return res.LastInsertId()
}

// GetUserByID 根据ID查询用户，不存在时返回 (nil, nil)
func (r *mysqlUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE id = ?", userColumns), id)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user by ID %d: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername 根据用户名查询用户
func (r *mysqlUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE username = ?", userColumns), username)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user by username %s: %w", username, err)
	}
	return u, nil
}

// GetUserByEmail 根据邮箱查询用户
func (r *mysqlUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE email = ?", userColumns), email)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user by email %s: %w", email, err)
	}
	return u, nil
}
