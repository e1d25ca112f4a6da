package model

import "time"

// Project 项目，公共访问端只暴露其受限视图.
type Project struct {
	ID          string    `gorm:"primaryKey;size:128" json:"id"`
	Name        string    `gorm:"size:255"            json:"name"`
	ClientID    string    `gorm:"size:128;index"      json:"client_id"`
	ClientName  string    `gorm:"size:255"            json:"client_name"`
	Description string    `gorm:"type:text"           json:"description"`
	Status      string    `gorm:"size:32"             json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
