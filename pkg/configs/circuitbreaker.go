package configs

import (
	"time"

	"github.com/spf13/viper"
)

// CircuitBreakerConfig 熔断器配置，只统计 5xx 响应.
type CircuitBreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	FailureRate float64       `mapstructure:"failure_rate"  rule:"min=0,max=1"` // 窗口内失败比例阈值
	MinRequests uint32        `mapstructure:"min_requests"`                     // 窗口内请求数达到后才判断
	Interval    time.Duration `mapstructure:"interval"`                         // 统计窗口，0 表示闭合期间不清零
	OpenTimeout time.Duration `mapstructure:"open_timeout"`                     // 打开后多久进入半开
	HalfOpenMax uint32        `mapstructure:"half_open_max"`                    // 半开状态放行的请求数
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.failure_rate", 0.5)
	v.SetDefault("circuit_breaker.min_requests", 20)
	v.SetDefault("circuit_breaker.interval", "1m")
	v.SetDefault("circuit_breaker.open_timeout", "30s")
	v.SetDefault("circuit_breaker.half_open_max", 5)
}
