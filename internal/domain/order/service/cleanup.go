package service

import (
	"context"
	"fmt"
	"time"
	"fortune_shop/internal/domain/order/repository"
	"fortune_shop/internal/pkg/uploader"
	"fortune_shop/pkg/logger"
	"fortune_shop/pkg/metrics"

	"go.uber.org/zap"
)

const cleanupBatchSize = 500

// CleanupResult 清理结果
type CleanupResult struct {
	DeletedCount int      `json:"deletedCount"`
	DeletedFiles []string `json:"deletedFiles"`
	Errors       []string `json:"errors"`
}

// FileCleaner 删除超过保存期限的结果文件
type FileCleaner interface {
	CleanupExpired(ctx context.Context) (*CleanupResult, error)
}

type fileCleaner struct {
	repo      repository.OrderRepository
	storage   uploader.ObjectStorage
	bucket    string
	retention time.Duration
	metrics   *metrics.MetricsCollector
	now       func() time.Time
}

func NewFileCleaner(repo repository.OrderRepository, storage uploader.ObjectStorage, bucket string,
	retention time.Duration, collector *metrics.MetricsCollector) FileCleaner {
	return &fileCleaner{
		repo:      repo,
		storage:   storage,
		bucket:    bucket,
		retention: retention,
		metrics:   collector,
		now:       time.Now,
	}
}

// CleanupExpired 单条失败只记录，不中断整批
func (c *fileCleaner) CleanupExpired(ctx context.Context) (*CleanupResult, error) {
	cutoff := c.now().Add(-c.retention)
	orders, err := c.repo.FindExpiredFiles(ctx, cutoff, cleanupBatchSize)
	if err != nil {
		return nil, fmt.Errorf("find expired files: %w", err)
	}

	result := &CleanupResult{DeletedFiles: []string{}, Errors: []string{}}
	for _, o := range orders {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", o.OrderNumber, ctx.Err()))
			break
		}
		if !o.HasResultFile() {
			continue
		}
		key := *o.ResultFileKey

		if err := c.storage.Delete(ctx, c.bucket, key); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: delete object: %v", o.OrderNumber, err))
			continue
		}
		cleared, err := c.repo.ClearResultFile(ctx, o.ID, key)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: clear fields: %v", o.OrderNumber, err))
			continue
		}
		if !cleared {
			// 期间被重新上传，新文件保留
			logger.Log.Warn("result file replaced during cleanup", zap.String("order_number", o.OrderNumber))
			continue
		}

		result.DeletedCount++
		result.DeletedFiles = append(result.DeletedFiles, key)
	}

	c.metrics.RecordCleanup(result.DeletedCount, len(result.Errors))
	logger.Log.Info("expired result files cleaned",
		zap.Time("cutoff", cutoff),
		zap.Int("deleted", result.DeletedCount),
		zap.Int("failed", len(result.Errors)))
	return result, nil
}
