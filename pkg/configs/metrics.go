package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Metrics相关配置.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`  // 是否启用Metrics
	Path    string `mapstructure:"path"`     // 主服务上暴露的路径
	Addr    string `mapstructure:"addr"`     // 独立指标服务地址，为空时只挂在主服务上
	Pprof   bool   `mapstructure:"pprof"`    // 独立指标服务上是否挂载 pprof
	DBStats bool   `mapstructure:"db_stats"` // 是否采集 gorm 连接池指标
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.pprof", false)
	v.SetDefault("metrics.db_stats", true)
}
