package client

import "time"

// 上传方.
const (
	UploadedByAdmin  = "Admin"
	UploadedByClient = "Client"
)

// FileRecord 文件记录.
// Content 为本地内容，只在上传前或上传失败后存在，不参与 JSON 编码.
type FileRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
	UploadedBy string    `json:"uploadedBy"`
	ProjectID  string    `json:"projectId,omitempty"`
	StorageURL string    `json:"storageUrl,omitempty"`
	StorageKey string    `json:"storageKey,omitempty"`
	IsDeleted  bool      `json:"isDeleted"`

	Content []byte `json:"-"`
	// LocalOnly 上传失败、只存在于本地的记录
	LocalOnly bool `json:"-"`
}

// ShareGrant 分享授权.
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

// Expired 报告授权在 now 时刻是否已过期.
func (g *ShareGrant) Expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

// Project 公共访问端看到的项目.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ClientID    string    `json:"clientId,omitempty"`
	ClientName  string    `json:"clientName,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Document 项目文档.
type Document struct {
	ID              string     `json:"id"`
	ProjectID       string     `json:"projectId"`
	Title           string     `json:"title"`
	ClientStatus    string     `json:"clientStatus"`
	ClientComment   string     `json:"clientComment,omitempty"`
	ClientID        string     `json:"clientId,omitempty"`
	StatusUpdatedAt *time.Time `json:"statusUpdatedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// 客户审批状态.
const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// StatusUpdate 客户对文档的审批.
type StatusUpdate struct {
	DocumentID string `json:"-"`
	Status     string `json:"status"`
	Comment    string `json:"comment,omitempty"`
	ProjectID  string `json:"projectId"`
	ClientID   string `json:"clientId,omitempty"`
}

// 上传响应的类型标记.
const (
	uploadKindURL   = "url"
	uploadKindFiles = "files"
)

type uploadRequest struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
	UploadedBy string    `json:"uploadedBy"`
	ProjectID  string    `json:"projectId,omitempty"`
	Content    string    `json:"content,omitempty"`
	StorageKey string    `json:"storageKey,omitempty"`
	StorageURL string    `json:"storageUrl,omitempty"`
}

type uploadResponse struct {
	Kind  string       `json:"kind"`
	URL   string       `json:"url"`
	Key   string       `json:"key"`
	File  *FileRecord  `json:"file"`
	Files []FileRecord `json:"files"`
}

type listFilesResponse struct {
	Files []FileRecord `json:"files"`
}

type listDocumentsResponse struct {
	Documents []Document `json:"documents"`
}

type issueShareRequest struct {
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	NotifyEmail    string     `json:"notifyEmail,omitempty"`
	NotifyLanguage string     `json:"notifyLanguage,omitempty"`
}
