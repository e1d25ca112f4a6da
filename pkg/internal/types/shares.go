package types

import "time"

// IssueShareRequest 签发分享链接，expiresAt 缺省时使用 share.default_ttl.
type IssueShareRequest struct {
	ExpiresAt      *time.Time `json:"expiresAt"`
	NotifyEmail    string     `json:"notifyEmail"    rule:"omitempty,email"`
	NotifyLanguage string     `json:"notifyLanguage" rule:"omitempty,max=16"`
}

// ShareGrant 分享授权，只在管理端返回 PIN.
type ShareGrant struct {
	Token          string    `json:"token"`
	ProjectID      string    `json:"projectId"`
	ShareLink      string    `json:"shareLink"`
	PIN            string    `json:"pin"`
	ExpiresAt      time.Time `json:"expiresAt"`
	CreatedAt      time.Time `json:"createdAt"`
	NotifyEmail    string    `json:"notifyEmail,omitempty"`
	NotifyLanguage string    `json:"notifyLanguage,omitempty"`
}
