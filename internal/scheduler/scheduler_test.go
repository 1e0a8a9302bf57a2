package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidSpec(t *testing.T) {
	_, err := New("not a cron spec", func(context.Context, time.Time) {})
	require.Error(t, err)
}

func TestRunOnceInvokesJob(t *testing.T) {
	var calls int32
	s, err := New("*/30 * * * *", func(ctx context.Context, now time.Time) {
		require.False(t, now.IsZero())
		atomic.AddInt32(&calls, 1)
	})
	require.NoError(t, err)

	s.RunOnce()
	s.RunOnce()
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
	require.Len(t, s.Cron().Entries(), 1)
}

func TestRunOnceSkipsOverlappingRuns(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32

	s, err := New("@every 1h", func(ctx context.Context, now time.Time) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.RunOnce()
	}()
	<-started

	s.RunOnce()
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))

	close(release)
	wg.Wait()

	s.RunOnce()
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestStartStop(t *testing.T) {
	s, err := New("@every 1h", func(context.Context, time.Time) {})
	require.NoError(t, err)
	s.Start()
	<-s.Stop().Done()
}
