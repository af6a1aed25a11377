package server

import (
	"context"
	"fmt"

	"slumberpod/cache"
	"slumberpod/config"
	"slumberpod/core/auth"
	"slumberpod/core/catalog"
	"slumberpod/repository"
	"slumberpod/storage"
)

// APIHandler 处理所有API请求。依赖在构造时注入，
// 生命周期随进程启动/关闭。
type APIHandler struct {
	cfg *config.Config

	audioRepo    repository.AudioRepository
	categoryRepo repository.CategoryRepository
	favoriteRepo repository.FavoriteRepository
	userRepo     repository.UserRepository
	playlistRepo repository.PlaylistRepository
	sleepRepo    repository.SleepRecordRepository
	alarmRepo    repository.AlarmRepository
	postRepo     repository.PostRepository

	catalogSvc  *catalog.Service
	tokens      *auth.TokenManager
	objects     storage.ObjectStore
	searchCache *cache.SearchHistoryCache
	recentCache *cache.RecentPlayCache
}

// Deps 构造APIHandler所需的依赖
type Deps struct {
	Cfg          *config.Config
	AudioRepo    repository.AudioRepository
	CategoryRepo repository.CategoryRepository
	FavoriteRepo repository.FavoriteRepository
	UserRepo     repository.UserRepository
	PlaylistRepo repository.PlaylistRepository
	SleepRepo    repository.SleepRecordRepository
	AlarmRepo    repository.AlarmRepository
	PostRepo     repository.PostRepository
	Tokens       *auth.TokenManager
	Objects      storage.ObjectStore
	SearchCache  *cache.SearchHistoryCache
	RecentCache  *cache.RecentPlayCache
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(d Deps) *APIHandler {
	return &APIHandler{
		cfg:          d.Cfg,
		audioRepo:    d.AudioRepo,
		categoryRepo: d.CategoryRepo,
		favoriteRepo: d.FavoriteRepo,
		userRepo:     d.UserRepo,
		playlistRepo: d.PlaylistRepo,
		sleepRepo:    d.SleepRepo,
		alarmRepo:    d.AlarmRepo,
		postRepo:     d.PostRepo,
		catalogSvc:   catalog.NewService(d.AudioRepo, d.CategoryRepo),
		tokens:       d.Tokens,
		objects:      d.Objects,
		searchCache:  d.SearchCache,
		recentCache:  d.RecentCache,
	}
}

type contextKey string

const (
	contextKeyUserID   contextKey = "userID"
	contextKeyUsername contextKey = "username"
)

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(contextKeyUserID).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// CallerID 返回调用者ID指针，匿名请求返回nil
func CallerID(ctx context.Context) *int64 {
	if userID, err := GetUserIDFromContext(ctx); err == nil {
		return &userID
	}
	return nil
}
