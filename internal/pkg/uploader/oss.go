package uploader

import (
	"context"
	"fmt"
	"time"
	"fortune_shop/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// AliyunOSSStorage 阿里云 OSS 实现
type AliyunOSSStorage struct {
	client  *oss.Client
	baseURL string
}

func NewAliyunOSSStorage(cfg config.StorageConfig) (*AliyunOSSStorage, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("create oss client: %w", err)
	}
	return &AliyunOSSStorage{
		client:  client,
		baseURL: cfg.PublicBaseURL,
	}, nil
}

func (s *AliyunOSSStorage) Put(ctx context.Context, obj Object) (*StoredObject, error) {
	bucket, err := s.client.Bucket(obj.Bucket)
	if err != nil {
		return nil, err
	}

	opts := []oss.Option{oss.WithContext(ctx)}
	if obj.ContentType != "" {
		opts = append(opts, oss.ContentType(obj.ContentType))
	}
	if err := bucket.PutObject(obj.Key, obj.Body, opts...); err != nil {
		return nil, fmt.Errorf("put object %s/%s: %w", obj.Bucket, obj.Key, err)
	}

	// 未配置 CDN 时使用 bucket 默认域名
	url := fmt.Sprintf("https://%s.%s/%s", obj.Bucket, s.client.Config.Endpoint, obj.Key)
	if s.baseURL != "" {
		url = publicURL(s.baseURL, obj.Bucket, obj.Key)
	}
	return &StoredObject{Bucket: obj.Bucket, Key: obj.Key, URL: url}, nil
}

func (s *AliyunOSSStorage) Delete(ctx context.Context, bucket, key string) error {
	b, err := s.client.Bucket(bucket)
	if err != nil {
		return err
	}
	if err := b.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete object %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *AliyunOSSStorage) PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	b, err := s.client.Bucket(bucket)
	if err != nil {
		return "", err
	}
	return b.SignURL(key, oss.HTTPGet, int64(expiry.Seconds()))
}
