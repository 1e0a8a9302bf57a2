package processor

import (
	"context"
	"strings"
	"time"

	"github.com/LJTian/RubberWatch/internal/collector"
	"github.com/LJTian/RubberWatch/internal/logger"
)

// NewsItem 是分类后的新闻，生成后不再修改
type NewsItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Published   string     `json:"published,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Source      string     `json:"source,omitempty"`
	Risk        Risk       `json:"risk"`
	Country     string     `json:"country"`
	Region      Region     `json:"region"`
}

// Batch 是一次刷新得到的全部新闻；每次刷新整体替换
type Batch struct {
	Items     []NewsItem `json:"items"`
	FetchedAt time.Time  `json:"fetchedAt"`
	// FetchError 非空表示本次拉取失败，Items 为空
	FetchError string `json:"fetchError,omitempty"`
}

func (b Batch) Failed() bool {
	return b.FetchError != ""
}

// Processor 对原始条目逐条分类
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

func (p *Processor) Process(entries []collector.FeedEntry) []NewsItem {
	out := make([]NewsItem, 0, len(entries))
	for _, e := range entries {
		title := strings.TrimSpace(e.Title)
		risk, country, region := Classify(title, e.Link)
		out = append(out, NewsItem{
			Title:       title,
			Link:        e.Link,
			Published:   e.Published,
			PublishedAt: e.PublishedAt,
			Source:      e.Source,
			Risk:        risk,
			Country:     country,
			Region:      region,
		})
	}
	return out
}

// Pipeline 串起拉取与分类，输出一个完整 Batch
type Pipeline struct {
	fetcher   collector.Fetcher
	processor *Processor
}

func NewPipeline(f collector.Fetcher, p *Processor) *Pipeline {
	if p == nil {
		p = NewProcessor()
	}
	return &Pipeline{fetcher: f, processor: p}
}

// Load 拉取失败时返回空 Batch 并带上错误信息，由展示层呈现“无数据”
func (pl *Pipeline) Load(ctx context.Context, now time.Time) Batch {
	log := logger.Component("processor").WithField("source", pl.fetcher.Name())

	entries, err := pl.fetcher.Fetch(ctx)
	if err != nil {
		log.WithError(err).Warn("fetch failed, using empty batch")
		return Batch{Items: []NewsItem{}, FetchedAt: now, FetchError: err.Error()}
	}

	items := pl.processor.Process(entries)
	log.WithField("items_count", len(items)).Info("batch classified")
	return Batch{Items: items, FetchedAt: now}
}
