package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/LJTian/RubberWatch/internal/collector"
	"github.com/LJTian/RubberWatch/internal/config"
	"github.com/LJTian/RubberWatch/internal/dashboard"
	"github.com/LJTian/RubberWatch/internal/logger"
	"github.com/LJTian/RubberWatch/internal/processor"
	"github.com/LJTian/RubberWatch/internal/report"
	"github.com/LJTian/RubberWatch/internal/storage"
)

// 只拉取一次并在终端输出报告，适合手动检查数据源；配置了 POSTGRES_DSN 时同时归档
func main() {
	risk := flag.String("risk", dashboard.All, "risk filter (All, High, Normal)")
	country := flag.String("country", dashboard.All, "country filter")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("load config failed: %v", err)
	}
	logger.Init(cfg.Debug)

	var archive *storage.Archive
	if cfg.PostgresDSN != "" {
		archive, err = storage.NewArchive(cfg.PostgresDSN)
		if err != nil {
			logger.Log.Fatalf("init archive failed: %v", err)
		}
	}

	fetcher := collector.NewGoogleNewsFetcher(cfg.FeedURL(), cfg.FeedTimeout)
	load := storage.WithArchive(processor.NewPipeline(fetcher, nil).Load, archive, cfg.FeedQuery)

	b := load(context.Background(), time.Now())
	fmt.Print(report.Render(dashboard.Build(b, dashboard.ParseFilter(*risk, *country))))
}
