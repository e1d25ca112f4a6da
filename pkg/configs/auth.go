package configs

import "github.com/spf13/viper"

// AuthConfig API Key 认证配置.
// 管理端使用 AdminAPIKey 或其 bcrypt 哈希，公共访问端使用 PublicAPIKey 加分享 PIN.
type AuthConfig struct {
	Enabled         bool     `mapstructure:"enabled"`             // 开启认证校验
	AdminAPIKey     string   `mapstructure:"admin_api_key"`       // 明文管理密钥
	AdminAPIKeyHash string   `mapstructure:"admin_api_key_hash"`  // bcrypt 哈希，与明文二选一
	PublicAPIKey    string   `mapstructure:"public_api_key"`      // 公共访问端密钥
	SkipPaths       []string `mapstructure:"skip_paths"`          // 跳过认证的路径前缀
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.admin_api_key", "")
	v.SetDefault("auth.admin_api_key_hash", "")
	v.SetDefault("auth.public_api_key", "")
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/health",
		"/swagger",
	})
}
