package collector

import (
	"context"
	"time"
)

// FeedEntry 是上游 feed 中的一条原始新闻，未经分类
type FeedEntry struct {
	Title string
	Link  string
	// Published 保留源中的原始时间文本，缺失时为空
	Published   string
	PublishedAt *time.Time
	Summary     string
	Source      string
}

// Fetcher 抽象一个 feed 数据源
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]FeedEntry, error)
}
