package worker

import (
	"context"
	"time"
	"fortune_shop/pkg/logger"

	"go.uber.org/zap"
)

// TickerJob 按固定间隔执行的后台任务
type TickerJob struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	fn       func(ctx context.Context) error
}

func NewTickerJob(name string, interval time.Duration, fn func(ctx context.Context) error) *TickerJob {
	return &TickerJob{
		name:     name,
		interval: interval,
		timeout:  interval,
		fn:       fn,
	}
}

func (j *TickerJob) Name() string {
	return j.name
}

// Run 阻塞直到 stop 关闭
func (j *TickerJob) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logger.Log.Info("background job started", zap.String("job", j.name), zap.Duration("interval", j.interval))
	for {
		select {
		case <-stop:
			logger.Log.Info("background job stopped", zap.String("job", j.name))
			return
		case <-ticker.C:
			j.runOnce()
		}
	}
}

func (j *TickerJob) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.fn(ctx); err != nil {
		logger.Log.Error("background job failed", zap.String("job", j.name), zap.Error(err))
		return
	}
	logger.Log.Debug("background job done", zap.String("job", j.name), zap.Duration("cost", time.Since(start)))
}
