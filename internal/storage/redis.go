package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LJTian/RubberWatch/internal/logger"
	"github.com/LJTian/RubberWatch/internal/processor"
	"github.com/redis/go-redis/v9"
)

const defaultBatchKey = "rubberwatch:batch"

// RedisMirror 把整个 Batch 以 JSON 存在一个 key 下，过期时间与缓存窗口一致
type RedisMirror struct {
	client *redis.Client
	key    string
}

func NewRedisMirror(client *redis.Client, key string) *RedisMirror {
	if key == "" {
		key = defaultBatchKey
	}
	return &RedisMirror{client: client, key: key}
}

// DialRedis 创建客户端并 ping 一次；ping 失败只记录告警，与启动流程解耦
func DialRedis(addr string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Component("storage").WithError(err).WithField("addr", addr).Warn("redis ping failed")
	}
	return rdb
}

func (m *RedisMirror) Load(ctx context.Context) (processor.Batch, bool) {
	bs, err := m.client.Get(ctx, m.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Component("storage").WithError(err).Debug("redis get failed")
		}
		return processor.Batch{}, false
	}
	var b processor.Batch
	if err := json.Unmarshal(bs, &b); err != nil {
		return processor.Batch{}, false
	}
	return b, true
}

func (m *RedisMirror) Save(ctx context.Context, b processor.Batch, ttl time.Duration) error {
	bs, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("storage: marshal batch: %w", err)
	}
	if err := m.client.Set(ctx, m.key, bs, ttl).Err(); err != nil {
		return fmt.Errorf("storage: redis set %s: %w", m.key, err)
	}
	return nil
}
