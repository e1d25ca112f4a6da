package types

import "time"

// CreateDocumentRequest 创建文档，pdf 为 data URI 或裸 base64.
type CreateDocumentRequest struct {
	Title    string `json:"title"    rule:"required,max=512"`
	ClientID string `json:"clientId" rule:"omitempty,max=128"`
	PDF      string `json:"pdf"      rule:"required"`
}

// Document 文档视图.
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

// ListDocumentsResponse 文档列表.
type ListDocumentsResponse struct {
	Documents []Document `json:"documents"`
}

// UpdateClientStatusRequest 客户更新文档审批状态.
type UpdateClientStatusRequest struct {
	Status    string `json:"status"    rule:"required,client_status"`
	Comment   string `json:"comment"   rule:"omitempty,max=4000"`
	ProjectID string `json:"projectId" rule:"required,max=128"`
	ClientID  string `json:"clientId"  rule:"omitempty,max=128"`
}
