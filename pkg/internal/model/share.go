package model

import (
	"time"

	"gorm.io/gorm"
)

// ShareGrant 项目分享授权：令牌 + PIN，在 ExpiresAt 之前有效.
// 同一项目可有多条历史授权，未过期的都可使用.
type ShareGrant struct {
	Token          string         `gorm:"primaryKey;size:64"  json:"token"`
	ProjectID      string         `gorm:"size:128;index"      json:"project_id"`
	PIN            string         `gorm:"column:pin;size:16"  json:"-"`
	NotifyEmail    string         `gorm:"size:320"            json:"notify_email,omitempty"`
	NotifyLanguage string         `gorm:"size:16"             json:"notify_language,omitempty"`
	ExpiresAt      time.Time      `gorm:"index"               json:"expires_at"`
	CreatedAt      time.Time      `gorm:"index"               json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index"               json:"-"`
}

// Expired 判断授权在 now 时刻是否已过期.
func (g *ShareGrant) Expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}
