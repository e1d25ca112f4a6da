package configs

import "github.com/spf13/viper"

const (
	// 默认速率限制配置，仅作用于公共访问接口.
	DefaultRateLimitEnabled = true
	DefaultRateLimitRPS     = 5.0
	DefaultRateLimitBurst   = 20
	DefaultRateLimitKey     = "ip"
	DefaultRateLimitMaxKeys = 10000
	DefaultRateLimitIdleTTL = 600
)

// RateLimitConfig 速率限制配置.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"      rule:"gt=0"` // 每秒允许的请求数
	Burst   int     `mapstructure:"burst"    rule:"min=1"` // 突发容量
	// Key 选择限流维度：global（全局）、ip（按客户端IP）、header:Header-Name（按请求头）
	Key string `mapstructure:"key"`
	// MaxKeys 同时跟踪的限流键上限，超出后淘汰最久未使用的键.
	MaxKeys int `mapstructure:"max_keys" rule:"min=1"`
	// IdleTTLSeconds 限流键闲置多久后过期.
	IdleTTLSeconds int `mapstructure:"idle_ttl_seconds" rule:"min=1"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
	v.SetDefault("rate_limit.max_keys", DefaultRateLimitMaxKeys)
	v.SetDefault("rate_limit.idle_ttl_seconds", DefaultRateLimitIdleTTL)
}
