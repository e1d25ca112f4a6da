package types

import "time"

// CreateProjectRequest 创建项目.
type CreateProjectRequest struct {
	ID          string `json:"id"          rule:"omitempty,max=128"`
	Name        string `json:"name"        rule:"required,max=255"`
	ClientID    string `json:"clientId"    rule:"omitempty,max=128"`
	ClientName  string `json:"clientName"  rule:"omitempty,max=255"`
	Description string `json:"description"`
	Status      string `json:"status"      rule:"omitempty,max=32"`
}

// Project 项目视图，公共访问端也返回该结构.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ClientID    string    `json:"clientId,omitempty"`
	ClientName  string    `json:"clientName,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
