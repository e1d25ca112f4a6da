package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yeisme/projecthub/pkg/filename"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/types"
)

const defaultProjectStatus = "active"

// ProjectService 最小的项目管理，仅供分享与公共访问使用.
type ProjectService struct {
	deps
}

func NewProjectService(c context.Context) *ProjectService {
	return &ProjectService{deps: depsFrom(c)}
}

// Create 创建项目；未指定 ID 时生成 UUID.
func (s *ProjectService) Create(ctx context.Context, req *types.CreateProjectRequest) (*types.Project, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	p := model.Project{
		ID:          req.ID,
		Name:        req.Name,
		ClientID:    req.ClientID,
		ClientName:  req.ClientName,
		Description: req.Description,
		Status:      firstNonEmpty(req.Status, defaultProjectStatus),
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if !filename.IsSanitized(p.ID) {
		return nil, invalidf("project id %q contains unsupported characters", p.ID)
	}

	if err := orm.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	out := toProject(&p)

	return &out, nil
}

// Get 按 ID 查询项目.
func (s *ProjectService) Get(ctx context.Context, id string) (*types.Project, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	var p model.Project
	if err := orm.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err, "project %s", id)
	}

	out := toProject(&p)

	return &out, nil
}

func toProject(p *model.Project) types.Project {
	return types.Project{
		ID:          p.ID,
		Name:        p.Name,
		ClientID:    p.ClientID,
		ClientName:  p.ClientName,
		Description: p.Description,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
	}
}
