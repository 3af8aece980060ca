package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/user/anitrack/internal/cache"
	"github.com/user/anitrack/internal/config"
	"github.com/user/anitrack/internal/handler"
	"github.com/user/anitrack/internal/repository"
	"github.com/user/anitrack/internal/router"
	"github.com/user/anitrack/internal/service"
)

func main() {
	// 加载 .env，生产环境直接用环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	cfg := config.Load()

	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}
	repos := repository.NewRepositories(db)

	// 配置了 Redis 就用 Redis，否则走进程内缓存
	var store cache.Store
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Redis 初始化失败: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
		log.Println("[Cache] 使用 Redis 缓存")
	} else {
		store = cache.NewMemory()
		log.Println("[Cache] 使用进程内缓存")
	}

	// 服务层
	catalog := service.NewAniListClient(cfg.AniListAPIURL, store)
	animeService := service.NewAnimeService(catalog, repos.Anime, repos.Episode)
	fillerClient := service.NewFillerListClient(cfg.FillerListURL, store)
	episodeService := service.NewEpisodeService(repos.Episode, repos.Anime, catalog, fillerClient)
	listService := service.NewListService(repos.List, repos.Activity, animeService, store)
	recommendationService := service.NewRecommendationService(repos.List, repos.Anime, store)
	reviewService := service.NewReviewService(repos.Review, repos.Activity, animeService)
	clubService := service.NewClubService(repos.Club, repos.Activity)
	activityService := service.NewActivityService(repos.Activity)
	userService := service.NewUserService(repos.User, repos.List, repos.Review, repos.Club)

	// 后台定时同步
	if cfg.SyncEnabled {
		syncService := service.NewSyncService(repos.Anime, episodeService, store, cfg.SyncInterval)
		syncService.Start()
		defer syncService.Stop()
	}

	handler.RegisterValidations()

	handlers := &router.Handlers{
		Auth:           handler.NewAuthHandler(repos.User, cfg),
		Anime:          handler.NewAnimeHandler(catalog, animeService),
		Episode:        handler.NewEpisodeHandler(episodeService),
		List:           handler.NewListHandler(listService),
		Recommendation: handler.NewRecommendationHandler(recommendationService),
		Review:         handler.NewReviewHandler(reviewService),
		Club:           handler.NewClubHandler(clubService),
		Activity:       handler.NewActivityHandler(activityService),
		User:           handler.NewUserHandler(userService),
		Admin:          handler.NewAdminHandler(episodeService, repos.Anime, store),
	}

	r := router.Setup(cfg, handlers)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("服务启动，监听端口 %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到退出信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("服务关闭出错: %v", err)
	}
	log.Println("服务已退出")
}
