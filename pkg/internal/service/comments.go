package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/types"
)

// CommentService 项目评论.
type CommentService struct {
	deps
}

func NewCommentService(c context.Context) *CommentService {
	return &CommentService{deps: depsFrom(c)}
}

// Create 新增评论；replyTo 必须指向同一项目的评论.
func (s *CommentService) Create(ctx context.Context, projectID string, req *types.CreateCommentRequest, isAdmin bool) (*types.Comment, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	if projectID == "" {
		return nil, invalidf("projectId is required")
	}

	c := model.Comment{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		Author:         req.Author,
		Text:           req.Text,
		IsAdminComment: isAdmin,
		CreatedAt:      time.Now().UTC(),
	}

	if req.ReplyTo != "" {
		var n int64
		if err := orm.Model(&model.Comment{}).
			Where("id = ? AND project_id = ?", req.ReplyTo, projectID).
			Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check reply target: %w", err)
		}

		if n == 0 {
			return nil, invalidf("replyTo %s is not a comment of project %s", req.ReplyTo, projectID)
		}

		replyTo := req.ReplyTo
		c.ReplyTo = &replyTo
	}

	if err := orm.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	out := toComment(&c)

	return &out, nil
}

// List 返回项目评论，按时间升序.
func (s *CommentService) List(ctx context.Context, projectID string) ([]types.Comment, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Comment
	if err := orm.Where("project_id = ?", projectID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	out := make([]types.Comment, 0, len(rows))
	for i := range rows {
		out = append(out, toComment(&rows[i]))
	}

	return out, nil
}

func toComment(c *model.Comment) types.Comment {
	out := types.Comment{
		ID:             c.ID,
		ProjectID:      c.ProjectID,
		Author:         c.Author,
		Text:           c.Text,
		Timestamp:      c.CreatedAt,
		IsAdminComment: c.IsAdminComment,
	}

	if c.ReplyTo != nil {
		out.ReplyTo = *c.ReplyTo
	}

	return out
}
