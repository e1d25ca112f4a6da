package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/types"
	"github.com/yeisme/projecthub/pkg/metrics"
	"github.com/yeisme/projecthub/pkg/queue"
)

// 公共访问操作名，用作指标标签.
const (
	OpGetProject    = "get_project"
	OpListDocuments = "list_documents"
	OpUpdateStatus  = "update_status"
	OpDownloadPDF   = "download_pdf"
	OpUploadFile    = "upload_file"
	OpComments      = "comments"
)

// PublicService 以分享令牌/PIN 代替登录会话的公共访问.
// 未知令牌、未知项目与错误 PIN 都返回 ErrAccessDenied，只有过期单独返回 ErrGrantExpired.
type PublicService struct {
	deps
	shares    *ShareService
	projects  *ProjectService
	documents *DocumentService
	files     *FileService
	comments  *CommentService
}

func NewPublicService(c context.Context) *PublicService {
	return &PublicService{
		deps:      depsFrom(c),
		shares:    NewShareService(c),
		projects:  NewProjectService(c),
		documents: NewDocumentService(c),
		files:     NewFileService(c),
		comments:  NewCommentService(c),
	}
}

// GetProject 返回项目受限视图；id 为 sh_ 开头的令牌或项目 ID.
func (s *PublicService) GetProject(ctx context.Context, id, pin string) (_ *types.Project, err error) {
	ctx, span := startSpan(ctx, "PublicService.GetProject")
	defer span.End()
	defer s.observe(OpGetProject, &err)

	projectID, err := s.authorize(ctx, id, pin)
	if err != nil {
		return nil, err
	}

	p, err := s.projects.Get(ctx, projectID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAccessDenied
	}

	return p, err
}

// ListDocuments 返回项目文档.
func (s *PublicService) ListDocuments(ctx context.Context, id, pin string) (_ []types.Document, err error) {
	defer s.observe(OpListDocuments, &err)

	projectID, err := s.authorize(ctx, id, pin)
	if err != nil {
		return nil, err
	}

	return s.documents.List(ctx, projectID)
}

// UpdateDocumentStatus 记录客户审批结果；带评论时同时写入一条客户评论.
func (s *PublicService) UpdateDocumentStatus(ctx context.Context, documentID string, req *types.UpdateClientStatusRequest, pin string) (_ *types.Document, err error) {
	ctx, span := startSpan(ctx, "PublicService.UpdateDocumentStatus", attribute.String("document_id", documentID))
	defer span.End()
	defer s.observe(OpUpdateStatus, &err)

	d, err := s.authorizeDocument(ctx, documentID, pin)
	if err != nil {
		return nil, err
	}

	if req.ProjectID != d.ProjectID {
		return nil, ErrAccessDenied
	}

	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	previous := d.ClientStatus
	now := time.Now().UTC()

	updates := map[string]any{
		"client_status":     req.Status,
		"client_comment":    req.Comment,
		"status_updated_at": now,
	}
	if req.ClientID != "" {
		updates["client_id"] = req.ClientID
	}

	if err := orm.Model(d).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update document status: %w", err)
	}

	d.ClientStatus = req.Status
	d.ClientComment = req.Comment
	d.StatusUpdatedAt = &now

	if req.ClientID != "" {
		d.ClientID = req.ClientID
	}

	if strings.TrimSpace(req.Comment) != "" {
		if _, err := s.comments.Create(ctx, d.ProjectID, &types.CreateCommentRequest{
			Author: firstNonEmpty(d.ClientID, model.UploadedByClient),
			Text:   req.Comment,
		}, false); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, s.cfg.Events.Document.StatusChanged, queue.TopicDocumentStatusChanged, func(p queue.Publisher) error {
		return queue.PublishDocumentStatusChanged(ctx, p, queue.DocumentStatusChangedPayload{
			DocumentID: d.ID,
			ProjectID:  d.ProjectID,
			ClientID:   d.ClientID,
			Status:     d.ClientStatus,
			Previous:   previous,
			Comment:    d.ClientComment,
		}, eventOpts(ctx)...)
	})

	out := toDocument(d)

	return &out, nil
}

// OpenDocumentPDF 打开文档 PDF，调用方负责关闭.
func (s *PublicService) OpenDocumentPDF(ctx context.Context, documentID, pin string) (_ io.ReadCloser, _ int64, err error) {
	defer s.observe(OpDownloadPDF, &err)

	d, err := s.authorizeDocument(ctx, documentID, pin)
	if err != nil {
		return nil, 0, err
	}

	return s.documents.OpenPDF(ctx, d)
}

// AuthorizeDocument 校验 PIN 对文档所在项目仍然有效.
// 响应缓存挂在它之后，缓存命中同样要求授权未过期.
func (s *PublicService) AuthorizeDocument(ctx context.Context, documentID, pin string) (err error) {
	defer func() {
		if err != nil {
			s.observe(OpDownloadPDF, &err)
		}
	}()

	_, err = s.authorizeDocument(ctx, documentID, pin)

	return err
}

// UploadFile 客户上传文件，上传方固定为 Client.
func (s *PublicService) UploadFile(ctx context.Context, id string, req *types.UploadFileRequest, pin string) (_ *types.FileRecord, err error) {
	defer s.observe(OpUploadFile, &err)

	projectID, err := s.authorize(ctx, id, pin)
	if err != nil {
		return nil, err
	}

	req.ProjectID = projectID

	return s.files.Upload(ctx, req, model.UploadedByClient)
}

// ListComments 返回项目评论.
func (s *PublicService) ListComments(ctx context.Context, id, pin string) (_ []types.Comment, err error) {
	defer s.observe(OpComments, &err)

	projectID, err := s.authorize(ctx, id, pin)
	if err != nil {
		return nil, err
	}

	return s.comments.List(ctx, projectID)
}

// CreateComment 新增客户评论.
func (s *PublicService) CreateComment(ctx context.Context, id string, req *types.CreateCommentRequest, pin string) (_ *types.Comment, err error) {
	defer s.observe(OpComments, &err)

	projectID, err := s.authorize(ctx, id, pin)
	if err != nil {
		return nil, err
	}

	return s.comments.Create(ctx, projectID, req, false)
}

// authorize 校验令牌或项目 ID 与 PIN，返回项目 ID.
func (s *PublicService) authorize(ctx context.Context, id, pin string) (string, error) {
	if pin == "" || id == "" {
		return "", ErrAccessDenied
	}

	if strings.HasPrefix(id, ShareTokenPrefix) {
		return s.shares.VerifyToken(ctx, id, pin)
	}

	if err := s.shares.VerifyProject(ctx, id, pin); err != nil {
		return "", err
	}

	return id, nil
}

// authorizeDocument 文档不存在与无权访问不作区分.
func (s *PublicService) authorizeDocument(ctx context.Context, documentID, pin string) (*model.Document, error) {
	if pin == "" {
		return nil, ErrAccessDenied
	}

	d, err := s.documents.get(ctx, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAccessDenied
		}

		return nil, err
	}

	if err := s.shares.VerifyProject(ctx, d.ProjectID, pin); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *PublicService) observe(op string, errp *error) {
	result := metrics.ResultOK

	switch err := *errp; {
	case err == nil:
	case errors.Is(err, ErrGrantExpired):
		result = metrics.ResultExpire
	case errors.Is(err, ErrAccessDenied):
		result = metrics.ResultDenied
	default:
		result = metrics.ResultError
	}

	metrics.PublicAccess.WithLabelValues(op, result).Inc()
}
