package types

import "time"

// CreateCommentRequest 新增评论.
type CreateCommentRequest struct {
	Author  string `json:"author"  rule:"required,max=255"`
	Text    string `json:"text"    rule:"required,max=4000"`
	ReplyTo string `json:"replyTo" rule:"omitempty,max=64"`
}

// Comment 评论视图.
type Comment struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	Author         string    `json:"author"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
	IsAdminComment bool      `json:"isAdminComment"`
	ReplyTo        string    `json:"replyTo,omitempty"`
}

// ListCommentsResponse 评论列表，按时间升序.
type ListCommentsResponse struct {
	Comments []Comment `json:"comments"`
}
