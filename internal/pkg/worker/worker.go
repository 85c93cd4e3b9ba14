package worker

import (
	"context"
	"errors"
	"sync"
	"time"
	"fortune_shop/pkg/logger"

	"go.uber.org/zap"
)

var errQueueFull = errors.New("task queue full")

// Task 异步任务
type Task struct {
	Name  string
	Run   func(ctx context.Context) error
	Retry int // 已重试次数
	// OnDropped 已入队的任务最终放弃时调用，用于回滚任务之外的副作用
	OnDropped func(err error)
}

type WorkerPool struct {
	TaskQueue  chan Task
	RetryQueue chan Task // 重试队列
	WorkerNum  int
	MaxRetry   int // 最大重试次数
	RetryDelay time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	workers   sync.WaitGroup
	retryDone chan struct{}
	stopOnce  sync.Once
	mu        sync.RWMutex
	stopped   bool
}

func NewWorkerPool(workerNum int, bufferSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		TaskQueue:  make(chan Task, bufferSize),
		RetryQueue: make(chan Task, bufferSize/2+1),
		WorkerNum:  workerNum,
		MaxRetry:   3,
		RetryDelay: time.Second,
		ctx:        ctx,
		cancel:     cancel,
		retryDone:  make(chan struct{}),
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.workers.Add(1)
		go p.worker(i)
	}
	go p.retryWorker()

	// 所有 worker 退出后关闭重试队列
	go func() {
		p.workers.Wait()
		close(p.RetryQueue)
	}()
	logger.Log.Info("worker pool started", zap.Int("workers", p.WorkerNum))
}

// Stop 停止接收新任务并等待已入队任务处理完，超时则取消正在执行的任务
func (p *WorkerPool) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.TaskQueue)
		p.mu.Unlock()
	})

	select {
	case <-p.retryDone:
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.workers.Done()
	for task := range p.TaskQueue {
		err := task.Run(p.ctx)
		if err == nil {
			continue
		}
		logger.Log.Warn("task failed",
			zap.Int("worker", id), zap.String("task", task.Name), zap.Int("retry", task.Retry), zap.Error(err))

		if task.Retry >= p.MaxRetry {
			p.drop(task, err)
			continue
		}
		task.Retry++
		select {
		case p.RetryQueue <- task:
		default:
			p.drop(task, err)
		}
	}
}

// retryWorker 退避后直接执行，直到成功或超过最大次数
func (p *WorkerPool) retryWorker() {
	defer close(p.retryDone)
	for task := range p.RetryQueue {
		for {
			select {
			case <-time.After(time.Duration(task.Retry) * p.RetryDelay):
			case <-p.ctx.Done():
			}
			err := task.Run(p.ctx)
			if err == nil {
				break
			}
			if task.Retry >= p.MaxRetry || p.ctx.Err() != nil {
				p.drop(task, err)
				break
			}
			task.Retry++
		}
	}
}

func (p *WorkerPool) logFailedTask(task Task, err error) {
	logger.Log.Error("task dropped", zap.String("task", task.Name), zap.Int("retry", task.Retry), zap.Error(err))
}

func (p *WorkerPool) drop(task Task, err error) {
	p.logFailedTask(task, err)
	if task.OnDropped != nil {
		task.OnDropped(err)
	}
}

// AddTask 入队，队列满或已停止时丢弃并记录
func (p *WorkerPool) AddTask(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.logFailedTask(task, errors.New("worker pool stopped"))
		return false
	}

	select {
	case p.TaskQueue <- task:
		return true
	default:
		p.logFailedTask(task, errQueueFull)
		return false
	}
}
