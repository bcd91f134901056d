package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TIANLI0/MatteKit/config"
	"github.com/TIANLI0/MatteKit/handler"
	"github.com/TIANLI0/MatteKit/middleware"
	"github.com/TIANLI0/MatteKit/service"
	"github.com/TIANLI0/MatteKit/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	BuildID   = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	// 加载配置
	cfg := config.New()

	// 初始化日志
	if err := utils.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	utils.Logger.Info("starting MatteKit server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("git_branch", GitBranch))

	if err := cfg.Validate(); err != nil {
		utils.Logger.Fatal("invalid config", zap.Error(err))
	}

	cache := newCache(cfg)
	defer cache.Close()

	// 加载分割模型，失败时仍可使用上传的掩码
	var segmenter service.Segmenter
	gocvSegmenter, err := service.NewGoCVSegmenter(cfg.Model.ONNXPath, cfg.Model.InputSize)
	if err != nil {
		utils.Logger.Warn("segmentation model unavailable, only supplied masks will work",
			zap.String("path", cfg.Model.ONNXPath), zap.Error(err))
	} else {
		segmenter = gocvSegmenter
		defer gocvSegmenter.Close()
	}

	cutoutService, err := service.NewCutoutService(cfg, segmenter, cache)
	if err != nil {
		utils.Logger.Fatal("failed to create cutout service", zap.Error(err))
	}

	// 初始化Handler
	cutoutHandler := handler.NewCutoutHandler(cfg, cutoutService)

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 创建路由
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// 健康检查和版本信息
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"version": Version,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"build_id":   BuildID,
			"git_commit": GitCommit,
			"git_branch": GitBranch,
		})
	})

	// API路由
	api := r.Group("/api/v1")
	{
		api.POST("/cutout", cutoutHandler.Create)
		api.GET("/cutout/:key", cutoutHandler.Get)
		api.GET("/cutout/:key/png", cutoutHandler.Download)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Error("server forced to shutdown", zap.Error(err))
	}
}

// newCache Redis 可用时使用 Redis，否则退回内存缓存
func newCache(cfg *config.Config) service.ResultCache {
	if cfg.Redis.Enabled {
		redisCache := service.NewRedisCache(&cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		err := redisCache.Ping(ctx)
		if err == nil {
			utils.Logger.Info("redis connected successfully")
			return redisCache
		}
		utils.Logger.Warn("redis connection failed, falling back to memory cache", zap.Error(err))
		_ = redisCache.Close()
	}

	memoryCache, err := service.NewMemoryCache(cfg.Redis.TTL, cfg.Cache.SweepSpec)
	if err != nil {
		utils.Logger.Fatal("failed to create memory cache", zap.Error(err))
	}
	return memoryCache
}
