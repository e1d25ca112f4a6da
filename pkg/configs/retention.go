package configs

import "github.com/spf13/viper"

// RetentionConfig 软删除文件与过期分享的保留策略.
type RetentionConfig struct {
	DeletedFileDays   int    `mapstructure:"deleted_file_days"   rule:"min=0"` // 0 表示不自动清理
	ExpiredShareDays  int    `mapstructure:"expired_share_days"  rule:"min=0"`
	GCCron            string `mapstructure:"gc_cron"`
	ShareSweepCron    string `mapstructure:"share_sweep_cron"`
	SchedulerDisabled bool   `mapstructure:"scheduler_disabled"`
}

func (c *RetentionConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("retention.deleted_file_days", 30)
	v.SetDefault("retention.expired_share_days", 90)
	v.SetDefault("retention.gc_cron", "30 3 * * *")
	v.SetDefault("retention.share_sweep_cron", "*/15 * * * *")
	v.SetDefault("retention.scheduler_disabled", false)
}
