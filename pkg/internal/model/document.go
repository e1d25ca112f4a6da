package model

import "time"

// 客户审批状态.
const (
	ClientStatusPending  = "pending"
	ClientStatusApproved = "approved"
	ClientStatusRejected = "rejected"
)

// Document 需要客户审批的项目文档，PDF 存放在对象存储.
type Document struct {
	ID              string     `gorm:"primaryKey;size:64" json:"id"`
	ProjectID       string     `gorm:"size:128;index"     json:"project_id"`
	Title           string     `gorm:"size:512"           json:"title"`
	PDFKey          string     `gorm:"column:pdf_key;size:1024" json:"pdf_key"`
	ClientStatus    string     `gorm:"size:16;index"      json:"client_status"`
	ClientComment   string     `gorm:"type:text"          json:"client_comment"`
	ClientID        string     `gorm:"size:128"           json:"client_id"`
	StatusUpdatedAt *time.Time `json:"status_updated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
