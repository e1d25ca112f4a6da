package configs

import "github.com/spf13/viper"

const (
	DefaultUploadMaxBytes    = 50 << 20 // 单文件 50MB
	DefaultUploadConcurrency = 4
)

// UploadConfig 上传限制.
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" rule:"min=1"`
	// Concurrency 命令行批量上传时的并发上限.
	Concurrency int `mapstructure:"concurrency" rule:"min=1,max=64"`
	// AllowedMimePrefixes 为空表示不限制.
	AllowedMimePrefixes []string `mapstructure:"allowed_mime_prefixes"`
}

func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.max_bytes", DefaultUploadMaxBytes)
	v.SetDefault("upload.concurrency", DefaultUploadConcurrency)
	v.SetDefault("upload.allowed_mime_prefixes", []string{})
}
