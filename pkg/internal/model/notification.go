package model

import "time"

// Notification 通知发件箱，分享签发带 notifyEmail 时写入，由外部投递程序发送.
type Notification struct {
	ID         string    `gorm:"primaryKey;size:64"      json:"id"`
	Channel    string    `gorm:"size:16"                 json:"channel"`
	Recipient  string    `gorm:"size:320"                json:"recipient"`
	Language   string    `gorm:"size:16"                 json:"language"`
	ProjectID  string    `gorm:"size:128;index"          json:"project_id"`
	ShareToken string    `gorm:"size:64;uniqueIndex"     json:"share_token"`
	Status     string    `gorm:"size:16;index"           json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// 通知取值.
const (
	NotificationChannelEmail = "email"
	NotificationStatusQueued = "queued"
)

// All 返回需要迁移的全部模型.
func All() []any {
	return []any{
		&Project{},
		&File{},
		&ShareGrant{},
		&Document{},
		&Comment{},
		&Notification{},
	}
}
