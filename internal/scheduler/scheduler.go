package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/LJTian/RubberWatch/internal/logger"
	"github.com/robfig/cron/v3"
)

// Job 是一次刷新任务，参数为触发时刻
type Job func(ctx context.Context, now time.Time)

// Scheduler 按 cron 表达式在请求路径之外刷新缓存；不配置表达式时完全依赖请求触发
type Scheduler struct {
	cron *cron.Cron
	job  Job

	mu      sync.Mutex
	running bool
}

func New(spec string, job Job) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, job: job}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Cron 暴露底层 cron，便于追加其它定时任务
func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

// RunOnce 对外暴露的单次执行入口，方便手动触发
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	// 上一轮尚未结束时跳过，避免重复拉取
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Component("scheduler").Warn("previous refresh still running, skip")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log := logger.Component("scheduler")
	log.Info("start refresh job...")
	start := time.Now()
	s.job(context.Background(), start)
	log.WithField("duration", time.Since(start).String()).Info("refresh job done")
}
