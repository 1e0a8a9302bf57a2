package storage

import (
	"context"
	"testing"
	"time"

	"github.com/LJTian/RubberWatch/internal/processor"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// 指向一个不可达地址，验证 Redis 不可用时只是退化为未命中
func unreachableMirror() *RedisMirror {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewRedisMirror(client, "")
}

func TestRedisMirrorDefaultsKey(t *testing.T) {
	m := unreachableMirror()
	require.Equal(t, defaultBatchKey, m.key)
	require.Equal(t, "custom", NewRedisMirror(nil, "custom").key)
}

func TestRedisMirrorUnavailable(t *testing.T) {
	m := unreachableMirror()
	ctx := context.Background()

	_, ok := m.Load(ctx)
	require.False(t, ok)

	err := m.Save(ctx, processor.Batch{FetchedAt: t0}, time.Minute)
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage: redis set")
}

func TestBatchCacheWithUnavailableRedis(t *testing.T) {
	l := &countingLoader{}
	c := NewBatchCache(30*time.Minute, l.load, unreachableMirror())

	b := c.GetOrRefresh(context.Background(), t0)
	require.False(t, b.Failed())
	require.Equal(t, 1, l.count())
}
