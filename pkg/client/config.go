package client

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultUploadConcurrency  = 4
	DefaultPreviewSettleDelay = 500 * time.Millisecond
	DefaultTimeout            = 60 * time.Second
)

// Config SDK 配置.
type Config struct {
	BaseURL      string // 服务地址，例如 http://localhost:8080
	AdminAPIKey  string // 管理端 X-API-Key
	PublicAPIKey string // 公共访问端 X-API-Key

	// 对象存储位置，用于从 storageKey 推导展示地址
	Bucket   string
	Region   string
	Endpoint string // 自定义端点（MinIO 等），设置后使用 {endpoint}/{bucket}/{key}

	UploadConcurrency  int           // 批量上传并发数
	PreviewSettleDelay time.Duration // 预览加载的展示延迟，负数表示不等待
	Timeout            time.Duration // HTTPClient 为空时使用的请求超时

	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.UploadConcurrency <= 0 {
		c.UploadConcurrency = DefaultUploadConcurrency
	}

	if c.PreviewSettleDelay == 0 {
		c.PreviewSettleDelay = DefaultPreviewSettleDelay
	}

	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}

	return c
}
