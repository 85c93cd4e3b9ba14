package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
	"fortune_shop/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWorkerPoolRunsTasks(t *testing.T) {
	pool := NewWorkerPool(2, 10)
	pool.Start()

	var done int32
	for i := 0; i < 5; i++ {
		ok := pool.AddTask(Task{Name: "count", Run: func(ctx context.Context) error {
			atomic.AddInt32(&done, 1)
			return nil
		}})
		require.True(t, ok)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))
	assert.Equal(t, int32(5), atomic.LoadInt32(&done))
}

func TestWorkerPoolRetriesFailedTask(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	pool.RetryDelay = time.Millisecond
	pool.Start()

	var attempts int32
	pool.AddTask(Task{Name: "flaky", Run: func(ctx context.Context) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("temporary")
		}
		return nil
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestWorkerPoolGivesUpAfterMaxRetry(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	pool.RetryDelay = time.Millisecond
	pool.MaxRetry = 2
	pool.Start()

	var attempts int32
	pool.AddTask(Task{Name: "broken", Run: func(ctx context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("permanent")
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))
	// 首次执行 + 2 次重试
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestWorkerPoolCallsOnDroppedOnce(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	pool.RetryDelay = time.Millisecond
	pool.MaxRetry = 1
	pool.Start()

	var dropped int32
	var lastErr atomic.Value
	ok := pool.AddTask(Task{
		Name: "broken",
		Run:  func(ctx context.Context) error { return errors.New("permanent") },
		OnDropped: func(err error) {
			atomic.AddInt32(&dropped, 1)
			lastErr.Store(err)
		},
	})
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))
	assert.Equal(t, int32(1), atomic.LoadInt32(&dropped))
	assert.EqualError(t, lastErr.Load().(error), "permanent")
}

func TestOnDroppedNotCalledOnSuccess(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	pool.Start()

	var dropped int32
	pool.AddTask(Task{
		Name:      "fine",
		Run:       func(ctx context.Context) error { return nil },
		OnDropped: func(err error) { atomic.AddInt32(&dropped, 1) },
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))
	assert.Zero(t, atomic.LoadInt32(&dropped))
}

func TestAddTaskAfterStop(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	pool.Start()
	require.NoError(t, pool.Stop(context.Background()))

	assert.False(t, pool.AddTask(Task{Name: "late", Run: func(ctx context.Context) error { return nil }}))
}

func TestTickerJobStops(t *testing.T) {
	var runs int32
	job := NewTickerJob("tick", 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})
	assert.Equal(t, "tick", job.Name())

	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		job.Run(stop)
		close(finished)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, time.Second, 5*time.Millisecond)
	close(stop)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}
}

func TestTickerJobLogsLifecycleOnce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	job := NewTickerJob("cleanup", time.Hour, func(ctx context.Context) error { return nil })
	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		job.Run(stop)
		close(finished)
	}()

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("background job started").Len() == 1
	}, time.Second, 5*time.Millisecond)
	close(stop)
	<-finished

	started := logs.FilterMessage("background job started").All()
	require.Len(t, started, 1)
	assert.Equal(t, "cleanup", started[0].ContextMap()["job"])
	assert.Equal(t, 1, logs.FilterMessage("background job stopped").Len())
}
