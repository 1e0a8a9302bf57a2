package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LJTian/RubberWatch/internal/api"
	"github.com/LJTian/RubberWatch/internal/collector"
	"github.com/LJTian/RubberWatch/internal/config"
	"github.com/LJTian/RubberWatch/internal/logger"
	"github.com/LJTian/RubberWatch/internal/processor"
	"github.com/LJTian/RubberWatch/internal/scheduler"
	"github.com/LJTian/RubberWatch/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("load config failed: %v", err)
	}
	logger.Init(cfg.Debug)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Redis 与 PostgreSQL 都是可选的，未配置时只用进程内缓存
	var mirror storage.Mirror
	if cfg.RedisAddr != "" {
		rdb := storage.DialRedis(cfg.RedisAddr)
		defer rdb.Close()
		mirror = storage.NewRedisMirror(rdb, "")
	}

	var archive *storage.Archive
	if cfg.PostgresDSN != "" {
		archive, err = storage.NewArchive(cfg.PostgresDSN)
		if err != nil {
			logger.Log.Fatalf("init archive failed: %v", err)
		}
	}

	fetcher := collector.NewGoogleNewsFetcher(cfg.FeedURL(), cfg.FeedTimeout)
	pipeline := processor.NewPipeline(fetcher, nil)
	cache := storage.NewBatchCache(cfg.CacheTTL, storage.WithArchive(pipeline.Load, archive, cfg.FeedQuery), mirror)

	if cfg.RefreshCron != "" {
		s, err := scheduler.New(cfg.RefreshCron, func(ctx context.Context, now time.Time) {
			cache.Refresh(ctx, now)
		})
		if err != nil {
			logger.Log.Fatalf("init scheduler failed: %v", err)
		}
		s.Start()
		defer s.Stop()
	}

	srv := api.NewServer(cache, archive, cfg.FeedQuery, cfg.CacheTTL)
	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           srv.NewEngine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithField("addr", server.Addr).Info("starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("server exit: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Errorf("forced shutdown: %v", err)
	}
}
