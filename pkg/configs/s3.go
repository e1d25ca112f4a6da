package configs

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// S3Driver 对象存储驱动.
type S3Driver string

const (
	S3DriverMinio  S3Driver = "minio"
	S3DriverAWS    S3Driver = "aws"
	S3DriverMemory S3Driver = "memory"
)

// S3Config 对象存储配置.
type S3Config struct {
	Driver          S3Driver `mapstructure:"driver"            rule:"oneof=minio aws memory"`
	Endpoint        string   `mapstructure:"endpoint"`
	AccessKeyID     string   `mapstructure:"access_key_id"`
	SecretAccessKey string   `mapstructure:"secret_access_key"`
	UseSSL          bool     `mapstructure:"use_ssl"`
	BucketName      string   `mapstructure:"bucket_name"       rule:"required"`
	Region          string   `mapstructure:"region"            rule:"required"`
	// PublicBaseURL 对外可访问的对象地址前缀，为空时按 bucket 与 region 推导 AWS 虚拟主机地址.
	PublicBaseURL string `mapstructure:"public_base_url"`
	UsePathStyle  bool   `mapstructure:"use_path_style"`
}

const (
	DefaultS3Driver     = S3DriverMemory // 默认使用内存存储，生产环境需显式配置
	DefaultS3Endpoint   = "localhost:9000"
	DefaultS3UseSSL     = false
	DefaultS3BucketName = "projecthub-files"
	DefaultS3Region     = "us-east-1"
)

// GetEndpointURL 获取完整的端点URL.
func (c *S3Config) GetEndpointURL() string {
	if strings.Contains(c.Endpoint, "://") {
		return c.Endpoint
	}

	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// ObjectURL 返回对象的公开地址.
func (c *S3Config) ObjectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/") + "/" + strings.TrimLeft(escaped, "/")
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.BucketName, c.Region, strings.TrimLeft(escaped, "/"))
}

// setDefaults 设置 S3 配置的默认值.
func (c *S3Config) setDefaults(v *viper.Viper) {
	v.SetDefault("s3.driver", DefaultS3Driver)
	v.SetDefault("s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.use_ssl", DefaultS3UseSSL)
	v.SetDefault("s3.bucket_name", DefaultS3BucketName)
	v.SetDefault("s3.region", DefaultS3Region)
	v.SetDefault("s3.public_base_url", "")
	v.SetDefault("s3.use_path_style", true)
}
