package model

import "time"

// Comment 项目评论，只有一层回复.
type Comment struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	ProjectID      string    `gorm:"size:128;index"     json:"project_id"`
	Author         string    `gorm:"size:255"           json:"author"`
	Text           string    `gorm:"type:text"          json:"text"`
	IsAdminComment bool      `json:"is_admin_comment"`
	ReplyTo        *string   `gorm:"size:64"            json:"reply_to,omitempty"`
	CreatedAt      time.Time `gorm:"index"              json:"created_at"`
}
