// Package model 定义数据库模型.
package model

import (
	"time"

	"gorm.io/gorm"
)

// 上传方取值.
const (
	UploadedByAdmin  = "Admin"
	UploadedByClient = "Client"
)

// File 项目文件元数据；对象本身在对象存储中.
// ID 由客户端生成，在项目内唯一，因此主键为 (project_id, id).
type File struct {
	ProjectID  string `gorm:"primaryKey;size:128"    json:"project_id"`
	ID         string `gorm:"primaryKey;size:128"    json:"id"`
	Name       string `gorm:"size:512;index"         json:"name"`
	Size       int64  `json:"size"`
	MimeType   string `gorm:"size:255;index"         json:"mime_type"`
	UploadedBy string `gorm:"size:16"                json:"uploaded_by"`
	Bucket     string `gorm:"size:255"               json:"bucket"`
	StorageKey string `gorm:"size:1024;index"        json:"storage_key"`
	StorageURL string `gorm:"size:2048"              json:"storage_url"`
	ETag       string `gorm:"size:128"               json:"etag"`
	MD5        string `gorm:"column:md5;size:32"     json:"md5"`
	// UploadedAt 为客户端声明的上传时间，缺省为服务端时间
	UploadedAt time.Time `gorm:"index" json:"uploaded_at"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	// 软删除：Active -> Deleted{deletedAt}，保留期后由 files.retention_gc 彻底删除
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
