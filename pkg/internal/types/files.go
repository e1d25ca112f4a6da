// Package types 定义 HTTP 接口的请求与响应结构.
package types

import "time"

// 上传响应的类型标记.
const (
	UploadKindURL   = "url"
	UploadKindFiles = "files"
)

// FileRecord 对外的文件记录.
type FileRecord struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Size       int64      `json:"size"`
	MimeType   string     `json:"mimeType"`
	UploadedAt time.Time  `json:"uploadedAt"`
	UploadedBy string     `json:"uploadedBy"`
	ProjectID  string     `json:"projectId,omitempty"`
	StorageURL string     `json:"storageUrl,omitempty"`
	StorageKey string     `json:"storageKey,omitempty"`
	IsDeleted  bool       `json:"isDeleted"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
}

// UploadFileRequest 上传请求，content 为 data URI（或裸 base64）.
// 只带 storageKey/storageUrl 时视为登记已有对象，不写对象存储.
type UploadFileRequest struct {
	ID         string     `json:"id"         rule:"omitempty,max=128"`
	Name       string     `json:"name"       rule:"required,max=512"`
	Size       int64      `json:"size"       rule:"min=0"`
	MimeType   string     `json:"mimeType"   rule:"omitempty,max=255"`
	UploadedAt *time.Time `json:"uploadedAt"`
	UploadedBy string     `json:"uploadedBy" rule:"omitempty,uploaded_by"`
	ProjectID  string     `json:"projectId"  rule:"omitempty,max=128"`
	Content    string     `json:"content"`
	StorageKey string     `json:"storageKey" rule:"omitempty,max=1024"`
	StorageURL string     `json:"storageUrl" rule:"omitempty,url"`
}

// HasContent 请求是否携带内容.
func (r *UploadFileRequest) HasContent() bool {
	return r.Content != ""
}

// UploadResponse 上传结果，按 kind 区分：
//   - url: 通用上传，返回 url/key 与记录
//   - files: 项目上传，返回项目当前的文件列表
type UploadResponse struct {
	Kind  string       `json:"kind"`
	URL   string       `json:"url,omitempty"`
	Key   string       `json:"key,omitempty"`
	File  *FileRecord  `json:"file,omitempty"`
	Files []FileRecord `json:"files,omitempty"`
}

// ListFilesResponse 文件列表.
type ListFilesResponse struct {
	Files []FileRecord `json:"files"`
}

// ErrorResponse 错误响应.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
