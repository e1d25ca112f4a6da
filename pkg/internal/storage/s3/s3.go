// Package s3 提供对象存储抽象，驱动包括 MinIO、AWS SDK 与进程内内存实现.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/yeisme/projecthub/pkg/configs"
)

// ErrObjectNotFound 对象不存在.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo 对象元信息.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// PutOptions 上传选项.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// ObjectStore 统一的对象存储接口.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) (ObjectInfo, error)
	GetObject(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	RemoveObject(ctx context.Context, key string) error
	// ObjectURL 返回对象的展示地址，不保证匿名可读.
	ObjectURL(key string) string
	Bucket() string
	HealthCheck(ctx context.Context) error
	Close() error
}

// Factory 按配置创建对象存储.
type Factory func(ctx context.Context, cfg *configs.S3Config) (ObjectStore, error)

var factories = map[configs.S3Driver]Factory{}

// RegisterFactory 注册对象存储驱动.
func RegisterFactory(driver configs.S3Driver, f Factory) {
	factories[driver] = f
}

// Drivers 返回已注册驱动.
func Drivers() []configs.S3Driver {
	out := make([]configs.S3Driver, 0, len(factories))
	for d := range factories {
		out = append(out, d)
	}

	slices.Sort(out)

	return out
}

// New 根据 cfg.Driver 创建对象存储.
func New(ctx context.Context, cfg *configs.S3Config) (ObjectStore, error) {
	f, ok := factories[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported s3 driver: %s", cfg.Driver)
	}

	return f(ctx, cfg)
}
