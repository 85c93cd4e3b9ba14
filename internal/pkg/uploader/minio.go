package uploader

import (
	"context"
	"fmt"
	"net/url"
	"time"
	"fortune_shop/internal/pkg/config"
	"fortune_shop/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinIOStorage S3 兼容存储
type MinIOStorage struct {
	client  *minio.Client
	baseURL string
}

func NewMinIOStorage(cfg config.StorageConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.AccessKeySecret, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	s := &MinIOStorage{client: client, baseURL: baseURL}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, bucket := range []string{cfg.ResultBucket, cfg.ReviewBucket} {
		if err := s.ensureBucket(ctx, bucket); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ensureBucket 不存在则创建
func (s *MinIOStorage) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	logger.Log.Info("bucket created", zap.String("bucket", bucket))
	return nil
}

func (s *MinIOStorage) Put(ctx context.Context, obj Object) (*StoredObject, error) {
	_, err := s.client.PutObject(ctx, obj.Bucket, obj.Key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType: obj.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s/%s: %w", obj.Bucket, obj.Key, err)
	}

	return &StoredObject{
		Bucket: obj.Bucket,
		Key:    obj.Key,
		URL:    publicURL(s.baseURL, obj.Bucket, obj.Key),
	}, nil
}

func (s *MinIOStorage) Delete(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *MinIOStorage) PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}
