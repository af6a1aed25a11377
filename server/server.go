package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"slumberpod/cache"
	"slumberpod/config"
	"slumberpod/core/auth"
	"slumberpod/db"
	"slumberpod/logger"
	"slumberpod/model"
	"slumberpod/repository"
	"slumberpod/storage"
)

// Start initializes dependencies and runs the HTTP server until SIGINT/SIGTERM.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	// MySQL: 核心业务走原生SQL
	conn, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer conn.Close()

	if err := db.InitSchema(conn); err != nil {
		logger.Fatal("failed to initialize database schema", logger.ErrorField(err))
	}

	// GORM: 睡眠记录/闹钟/帖子模块
	gdb, err := db.ConnectGorm(cfg)
	if err != nil {
		logger.Fatal("failed to connect gorm", logger.ErrorField(err))
	}
	if err := db.AutoMigrate(gdb, &model.SleepRecord{}, &model.Alarm{}, &model.Post{}); err != nil {
		logger.Fatal("failed to run auto migration", logger.ErrorField(err))
	}

	rdb, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Fatal("failed to connect to redis", logger.ErrorField(err))
	}
	defer rdb.Close()
	logger.Info("connected to redis", logger.String("addr", cfg.RedisHost+":"+cfg.RedisPort))

	objects, err := storage.New(cfg)
	if err != nil {
		logger.Fatal("failed to initialize object storage", logger.ErrorField(err))
	}

	apiHandler := NewAPIHandler(Deps{
		Cfg:          cfg,
		AudioRepo:    repository.NewMySQLAudioRepository(conn),
		CategoryRepo: repository.NewMySQLCategoryRepository(conn),
		FavoriteRepo: repository.NewMySQLFavoriteRepository(conn),
		UserRepo:     repository.NewMySQLUserRepository(conn),
		PlaylistRepo: repository.NewMySQLPlaylistRepository(conn),
		SleepRepo:    repository.NewGormSleepRecordRepository(gdb),
		AlarmRepo:    repository.NewGormAlarmRepository(gdb),
		PostRepo:     repository.NewGormPostRepository(gdb),
		Tokens:       auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour),
		Objects:      objects,
		SearchCache:  cache.NewSearchHistoryCache(rdb),
		RecentCache:  cache.NewRecentPlayCache(rdb),
	})

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// 认证
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// 音频目录。列表/详情匿名可访问，登录后附带收藏状态和个人范围
	router.HandleFunc("/api/audios", apiHandler.OptionalAuthMiddleware(apiHandler.ListAudiosHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/audios", apiHandler.AuthMiddleware(apiHandler.CreateAudioHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/audios/{id}", apiHandler.OptionalAuthMiddleware(apiHandler.GetAudioHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/audios/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteAudioHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/audios/{id}/play", apiHandler.OptionalAuthMiddleware(apiHandler.PlayAudioHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/audios/{id}/favorite", apiHandler.AuthMiddleware(apiHandler.ToggleFavoriteHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/favorites", apiHandler.AuthMiddleware(apiHandler.ListFavoritesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/recent-plays", apiHandler.AuthMiddleware(apiHandler.RecentPlaysHandler)).Methods(http.MethodGet)

	// 分类
	router.HandleFunc("/api/categories", apiHandler.ListCategoriesHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/categories", apiHandler.AuthMiddleware(apiHandler.CreateCategoryHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/categories/{id}", apiHandler.GetCategoryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/categories/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateCategoryHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/categories/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteCategoryHandler)).Methods(http.MethodDelete)

	// 组合播放
	router.HandleFunc("/api/playback/plan", apiHandler.OptionalAuthMiddleware(apiHandler.PlanPlaybackHandler)).Methods(http.MethodPost)

	// 歌单
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.ListPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.UpdatePlaylistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/audios", apiHandler.AuthMiddleware(apiHandler.AddPlaylistAudioHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/audios/{audio_id}", apiHandler.AuthMiddleware(apiHandler.RemovePlaylistAudioHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/plan", apiHandler.AuthMiddleware(apiHandler.PlanPlaylistHandler)).Methods(http.MethodGet)

	// 睡眠记录
	router.HandleFunc("/api/sleep-records", apiHandler.AuthMiddleware(apiHandler.ListSleepRecordsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/sleep-records", apiHandler.AuthMiddleware(apiHandler.CreateSleepRecordHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sleep-records/stats", apiHandler.AuthMiddleware(apiHandler.SleepStatsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/sleep-records/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateSleepRecordHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/sleep-records/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteSleepRecordHandler)).Methods(http.MethodDelete)

	// 闹钟
	router.HandleFunc("/api/alarms", apiHandler.AuthMiddleware(apiHandler.ListAlarmsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/alarms", apiHandler.AuthMiddleware(apiHandler.CreateAlarmHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/alarms/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateAlarmHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/alarms/{id}/toggle", apiHandler.AuthMiddleware(apiHandler.ToggleAlarmHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/alarms/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteAlarmHandler)).Methods(http.MethodDelete)

	// 社区
	router.HandleFunc("/api/posts", apiHandler.ListPostsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/posts", apiHandler.AuthMiddleware(apiHandler.CreatePostHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/posts/{id}", apiHandler.GetPostHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/posts/{id}", apiHandler.AuthMiddleware(apiHandler.UpdatePostHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/posts/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePostHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/posts/{id}/like", apiHandler.AuthMiddleware(apiHandler.LikePostHandler)).Methods(http.MethodPost)

	// 搜索历史
	router.HandleFunc("/api/search-history", apiHandler.AuthMiddleware(apiHandler.ListSearchHistoryHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/search-history", apiHandler.AuthMiddleware(apiHandler.AddSearchHistoryHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/search-history", apiHandler.AuthMiddleware(apiHandler.DeleteSearchHistoryHandler)).Methods(http.MethodDelete)

	// 上传
	router.HandleFunc("/api/uploads", apiHandler.AuthMiddleware(apiHandler.UploadHandler)).Methods(http.MethodPost)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}
