package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultSharePINLength = 6
	DefaultShareTTL       = 30 * 24 * time.Hour
	DefaultShareMaxTTL    = 0 // 不限制，调用方指定的过期时间原样生效
	DefaultShareCacheTTL  = 10 * time.Minute
)

// ShareConfig 分享链接策略.
type ShareConfig struct {
	PINLength     int           `mapstructure:"pin_length"      rule:"min=4,max=12"`
	DefaultTTL    time.Duration `mapstructure:"default_ttl"`     // 未指定过期时间时使用
	MaxTTL        time.Duration `mapstructure:"max_ttl"`         // 0 表示不限制
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`       // KV 中缓存分享记录的最长时间
	PublicBaseURL string        `mapstructure:"public_base_url"` // 分享链接前缀，例如 https://portal.example.com
}

func (c *ShareConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("share.pin_length", DefaultSharePINLength)
	v.SetDefault("share.default_ttl", DefaultShareTTL)
	v.SetDefault("share.max_ttl", DefaultShareMaxTTL)
	v.SetDefault("share.cache_ttl", DefaultShareCacheTTL)
	v.SetDefault("share.public_base_url", "http://localhost:8080")
}
