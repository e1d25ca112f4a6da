package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/projecthub/pkg/configs"
	nlog "github.com/yeisme/projecthub/pkg/log"
)

func init() {
	RegisterFactory(configs.S3DriverMinio, func(ctx context.Context, cfg *configs.S3Config) (ObjectStore, error) {
		return NewMinio(ctx, cfg)
	})
}

// MinioStore 基于 minio-go 的对象存储.
type MinioStore struct {
	cli *minio.Client
	cfg configs.S3Config
}

// NewMinio 初始化 MinIO 客户端，bucket 不存在时创建.
func NewMinio(ctx context.Context, cfg *configs.S3Config) (*MinioStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	// 允许传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("projecthub", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	c := *cfg
	c.UseSSL = useSSL
	c.Endpoint = endpoint

	return &MinioStore{cli: cli, cfg: c}, nil
}

func (s *MinioStore) PutObject(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) (ObjectInfo, error) {
	info, err := s.cli.PutObject(ctx, s.cfg.BucketName, key, r, size, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opts.ContentType,
		LastModified: info.LastModified,
	}, nil
}

func (s *MinioStore) GetObject(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.cli.GetObject(ctx, s.cfg.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("get object %s: %w", key, err)
	}

	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()

		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}

		return nil, ObjectInfo{}, fmt.Errorf("stat object %s: %w", key, err)
	}

	return obj, ObjectInfo{
		Key:          st.Key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
	}, nil
}

func (s *MinioStore) RemoveObject(ctx context.Context, key string) error {
	return s.cli.RemoveObject(ctx, s.cfg.BucketName, key, minio.RemoveObjectOptions{})
}

// ObjectURL 配置了 PublicBaseURL 时使用它，否则返回 path-style 地址.
func (s *MinioStore) ObjectURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return s.cfg.ObjectURL(key)
	}

	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}

	escaped := strings.TrimLeft((&url.URL{Path: key}).EscapedPath(), "/")

	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.BucketName, escaped)
}

func (s *MinioStore) Bucket() string {
	return s.cfg.BucketName
}

// HealthCheck 通过检查 bucket 验证连接.
func (s *MinioStore) HealthCheck(ctx context.Context) error {
	_, err := s.cli.BucketExists(ctx, s.cfg.BucketName)

	return err
}

// Close 无实际操作，接口兼容.
func (s *MinioStore) Close() error {
	return nil
}
