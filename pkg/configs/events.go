package configs

import "github.com/spf13/viper"

// EventsConfig 控制领域事件发布的开关（全局与分主题）.
type EventsConfig struct {
	Enabled  bool                 `mapstructure:"enabled"` // 总开关
	File     FileEventsConfig     `mapstructure:"file"`
	Share    ShareEventsConfig    `mapstructure:"share"`
	Document DocumentEventsConfig `mapstructure:"document"`
}

// FileEventsConfig 文件生命周期事件开关.
type FileEventsConfig struct {
	Uploaded bool `mapstructure:"uploaded"`
	Deleted  bool `mapstructure:"deleted"`
	Restored bool `mapstructure:"restored"`
	Purged   bool `mapstructure:"purged"`
}

// ShareEventsConfig 分享链接事件开关.
type ShareEventsConfig struct {
	Issued bool `mapstructure:"issued"`
}

// DocumentEventsConfig 文档审批事件开关.
type DocumentEventsConfig struct {
	StatusChanged bool `mapstructure:"status_changed"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.file.uploaded", true)
	v.SetDefault("events.file.deleted", true)
	v.SetDefault("events.file.restored", false)
	v.SetDefault("events.file.purged", true)

	// 通知发件箱依赖此事件
	v.SetDefault("events.share.issued", true)

	v.SetDefault("events.document.status_changed", true)
}
