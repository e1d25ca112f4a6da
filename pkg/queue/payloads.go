package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// ID 事件唯一标识，与 watermill 消息 ID 一致.
	ID string `json:"id"`
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 文件领域 --------------------------

// FileRef 标识一个项目文件及其对象.
type FileRef struct {
	FileID     string `json:"file_id"`
	ProjectID  string `json:"project_id,omitempty"`
	Name       string `json:"name"`
	Bucket     string `json:"bucket,omitempty"`
	ObjectKey  string `json:"object_key,omitempty"`
	Size       int64  `json:"size,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
	UploadedBy string `json:"uploaded_by,omitempty"`
}

// FileUploadedPayload 文件已写入对象存储且元数据落库.
type FileUploadedPayload struct {
	File FileRef `json:"file"`
	ETag string  `json:"etag,omitempty"`
	MD5  string  `json:"md5,omitempty"`
}

// FileDeletedPayload 文件被软删除.
type FileDeletedPayload struct {
	File      FileRef   `json:"file"`
	DeletedAt time.Time `json:"deleted_at"`
}

// FileRestoredPayload 文件从回收站恢复.
type FileRestoredPayload struct {
	File FileRef `json:"file"`
}

// FilePurgedPayload 文件与对象被彻底删除.
type FilePurgedPayload struct {
	File      FileRef   `json:"file"`
	DeletedAt time.Time `json:"deleted_at"`
	Reason    string    `json:"reason,omitempty"` // retention / manual
}

// -------------------------- 分享领域 --------------------------

// ShareIssuedPayload 新分享链接已签发.PIN 不进入事件.
type ShareIssuedPayload struct {
	ProjectID      string    `json:"project_id"`
	Token          string    `json:"token"`
	ShareLink      string    `json:"share_link"`
	ExpiresAt      time.Time `json:"expires_at"`
	NotifyEmail    string    `json:"notify_email,omitempty"`
	NotifyLanguage string    `json:"notify_language,omitempty"`
}

// -------------------------- 文档领域 --------------------------

// DocumentStatusChangedPayload 客户更新了文档审批状态.
type DocumentStatusChangedPayload struct {
	DocumentID string `json:"document_id"`
	ProjectID  string `json:"project_id"`
	ClientID   string `json:"client_id,omitempty"`
	Status     string `json:"status"`
	Previous   string `json:"previous,omitempty"`
	Comment    string `json:"comment,omitempty"`
}
