package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/yeisme/projecthub/pkg/configs"
	nlog "github.com/yeisme/projecthub/pkg/log"
)

func init() {
	RegisterFactory(configs.S3DriverAWS, func(ctx context.Context, cfg *configs.S3Config) (ObjectStore, error) {
		return NewAWS(ctx, cfg)
	})
}

// AWSStore 基于 aws-sdk-go-v2 的对象存储，也可指向兼容 S3 的自定义端点.
type AWSStore struct {
	cli *awss3.Client
	cfg configs.S3Config
}

// NewAWS 创建 AWS S3 客户端；未配置访问密钥时使用默认凭证链.
func NewAWS(ctx context.Context, cfg *configs.S3Config) (*AWSStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	cli := awss3.NewFromConfig(sdkCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.GetEndpointURL())
			o.UsePathStyle = cfg.UsePathStyle
		}
	})

	nlog.Logger().Info().Str("region", cfg.Region).Str("bucket", cfg.BucketName).Msg("aws s3 client ready")

	return &AWSStore{cli: cli, cfg: *cfg}, nil
}

func (s *AWSStore) PutObject(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) (ObjectInfo, error) {
	in := &awss3.PutObjectInput{
		Bucket:        aws.String(s.cfg.BucketName),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		Metadata:      opts.Metadata,
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}

	out, err := s.cli.PutObject(ctx, in)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return ObjectInfo{
		Key:         key,
		Size:        size,
		ETag:        strings.Trim(aws.ToString(out.ETag), `"`),
		ContentType: opts.ContentType,
	}, nil
}

func (s *AWSStore) GetObject(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	out, err := s.cli.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.cfg.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}

		return nil, ObjectInfo{}, fmt.Errorf("get object %s: %w", key, err)
	}

	info := ObjectInfo{
		Key:         key,
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        strings.Trim(aws.ToString(out.ETag), `"`),
		ContentType: aws.ToString(out.ContentType),
	}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}

	return out.Body, info, nil
}

func (s *AWSStore) RemoveObject(ctx context.Context, key string) error {
	_, err := s.cli.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.BucketName),
		Key:    aws.String(key),
	})

	return err
}

// ObjectURL 未配置自定义端点时返回 AWS 虚拟主机地址.
func (s *AWSStore) ObjectURL(key string) string {
	if s.cfg.PublicBaseURL != "" || s.cfg.Endpoint == "" {
		return s.cfg.ObjectURL(key)
	}

	escaped := strings.TrimLeft((&url.URL{Path: key}).EscapedPath(), "/")

	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.GetEndpointURL(), "/"), s.cfg.BucketName, escaped)
}

func (s *AWSStore) Bucket() string {
	return s.cfg.BucketName
}

func (s *AWSStore) HealthCheck(ctx context.Context) error {
	_, err := s.cli.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(s.cfg.BucketName)})

	return err
}

func (s *AWSStore) Close() error {
	return nil
}
