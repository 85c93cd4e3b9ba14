package uploader

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"fortune_shop/internal/pkg/config"

	"github.com/google/uuid"
)

// Object 待上传对象
type Object struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// StoredObject 上传结果
type StoredObject struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}

// ObjectStorage 对象存储接口（MinIO / 阿里云 OSS）
type ObjectStorage interface {
	Put(ctx context.Context, obj Object) (*StoredObject, error)
	Delete(ctx context.Context, bucket, key string) error
	PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// NewObjectStorage 根据配置选择实现
func NewObjectStorage(cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Provider {
	case "minio":
		return NewMinIOStorage(cfg)
	case "oss":
		return NewAliyunOSSStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}

// GenerateKey 生成对象路径: <prefix>/YYYYMMDD/<uuid><ext>
func GenerateKey(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	name := uuid.New().String() + ext
	return path.Join(prefix, now.Format("20060102"), name)
}

// publicURL 拼接公开访问地址
func publicURL(baseURL, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), bucket, key)
}
