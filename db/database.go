package db

import (
	"database/sql"
	"fmt"
	"time"

	"slumberpod/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// Connect establishes a connection pool to MySQL.
// 连接实例由调用方持有并注入各仓库，不再使用包级单例。
func Connect(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// 连接池参数
	conn.SetMaxIdleConns(10)
	conn.SetMaxOpenConns(100)
	conn.SetConnMaxLifetime(time.Hour)

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// InitSchema creates the core tables if they don't exist.
// 睡眠记录/闹钟/帖子等新模块的表由 GORM AutoMigrate 负责。
func InitSchema(conn *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(100) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			phone VARCHAR(20),
			avatar_url VARCHAR(767),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS audios (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NULL,
			title VARCHAR(255) NOT NULL,
			description VARCHAR(1000),
			audio_url VARCHAR(767) NOT NULL,
			cover_url VARCHAR(767),
			duration_seconds DOUBLE DEFAULT 0,
			is_public TINYINT(1) DEFAULT 1,
			is_free TINYINT(1) DEFAULT 1,
			is_user_creation TINYINT(1) DEFAULT 0,
			play_count BIGINT DEFAULT 0,
			favorite_count BIGINT DEFAULT 0,
			comment_count BIGINT DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT fk_audio_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
		);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			parent_id BIGINT DEFAULT 0,
			sort_order INT DEFAULT 0,
			is_free TINYINT(1) DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_parent (parent_id)
		);`,
		`CREATE TABLE IF NOT EXISTS audio_categories (
			audio_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			PRIMARY KEY (audio_id, category_id),
			KEY idx_category (category_id)
		);`,
		// (user_id, audio_id) 唯一键在数据库层兜底并发toggle
		`CREATE TABLE IF NOT EXISTS favorites (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			audio_id BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_user_audio UNIQUE (user_id, audio_id)
		);`,
		`CREATE TABLE IF NOT EXISTS playlists (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			description VARCHAR(1000),
			cover_url VARCHAR(767),
			mode VARCHAR(20) DEFAULT 'parallel',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_playlist_user (user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS playlist_audios (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			playlist_id BIGINT NOT NULL,
			audio_id BIGINT NOT NULL,
			position INT DEFAULT 0,
			volume DOUBLE DEFAULT 1.0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_playlist_audio UNIQUE (playlist_id, audio_id)
		);`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
