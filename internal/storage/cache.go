package storage

import (
	"context"
	"sync"
	"time"

	"github.com/LJTian/RubberWatch/internal/logger"
	"github.com/LJTian/RubberWatch/internal/metrics"
	"github.com/LJTian/RubberWatch/internal/processor"
)

// LoadFunc 产出一个新的 Batch，通常是 processor.Pipeline.Load
type LoadFunc func(ctx context.Context, now time.Time) processor.Batch

// Mirror 是可选的二级缓存（例如 Redis），供多个实例共享同一批数据
type Mirror interface {
	Load(ctx context.Context) (processor.Batch, bool)
	Save(ctx context.Context, b processor.Batch, ttl time.Duration) error
}

// BatchCache 保存最近一次刷新的 Batch 及其时间戳，过期后由下一次请求触发刷新。
// 时间由调用方传入，便于测试刷新策略。
type BatchCache struct {
	ttl    time.Duration
	load   LoadFunc
	mirror Mirror

	mu    sync.Mutex
	batch *processor.Batch
}

func NewBatchCache(ttl time.Duration, load LoadFunc, mirror Mirror) *BatchCache {
	return &BatchCache{ttl: ttl, load: load, mirror: mirror}
}

func (c *BatchCache) TTL() time.Duration {
	return c.ttl
}

// fresh 判断 b 在 now 时刻是否仍在缓存窗口内
func (c *BatchCache) fresh(b *processor.Batch, now time.Time) bool {
	if b == nil {
		return false
	}
	age := now.Sub(b.FetchedAt)
	return age >= 0 && age < c.ttl
}

// GetOrRefresh 命中则直接返回；否则先查 Mirror，再重新拉取。
// 拉取失败的 Batch 会返回给调用方但不会写入缓存，下一次请求会重试。
func (c *BatchCache) GetOrRefresh(ctx context.Context, now time.Time) processor.Batch {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fresh(c.batch, now) {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return *c.batch
	}

	if c.mirror != nil {
		if b, ok := c.mirror.Load(ctx); ok && c.fresh(&b, now) {
			metrics.CacheLookups.WithLabelValues("mirror").Inc()
			c.batch = &b
			return b
		}
	}

	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return c.refreshLocked(ctx, now)
}

// Refresh 无视过期时间强制拉取
func (c *BatchCache) Refresh(ctx context.Context, now time.Time) processor.Batch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx, now)
}

func (c *BatchCache) refreshLocked(ctx context.Context, now time.Time) processor.Batch {
	log := logger.Component("cache")

	b := c.load(ctx, now)
	if b.Failed() {
		metrics.Refreshes.WithLabelValues("error").Inc()
		return b
	}

	metrics.Refreshes.WithLabelValues("ok").Inc()
	metrics.BatchSize.Set(float64(len(b.Items)))
	c.batch = &b

	if c.mirror != nil {
		if err := c.mirror.Save(ctx, b, c.ttl); err != nil {
			log.WithError(err).Warn("mirror save failed")
		}
	}
	log.WithField("items_count", len(b.Items)).Debug("batch refreshed")
	return b
}

// Peek 返回当前缓存的 Batch（不触发刷新）
func (c *BatchCache) Peek() (processor.Batch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.batch == nil {
		return processor.Batch{}, false
	}
	return *c.batch, true
}
