package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/storage/s3"
	"github.com/yeisme/projecthub/pkg/internal/types"
)

const pdfMimeType = "application/pdf"

// DocumentService 需要客户审批的项目文档.
type DocumentService struct {
	deps
}

func NewDocumentService(c context.Context) *DocumentService {
	return &DocumentService{deps: depsFrom(c)}
}

// Create 保存 PDF 到对象存储并创建待审批文档.
func (s *DocumentService) Create(ctx context.Context, projectID string, req *types.CreateDocumentRequest) (*types.Document, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	if s.s3c == nil {
		return nil, ErrNotInitialized
	}

	if projectID == "" {
		return nil, invalidf("projectId is required")
	}

	data, mimeType, err := decodeContent(req.PDF)
	if err != nil {
		return nil, err
	}

	if limit := s.cfg.Upload.MaxBytes; limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, limit)
	}

	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}

	if mimeType != pdfMimeType {
		return nil, fmt.Errorf("%w: %s, expected %s", ErrUnsupportedMedia, mimeType, pdfMimeType)
	}

	d := model.Document{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		Title:        req.Title,
		ClientID:     req.ClientID,
		ClientStatus: model.ClientStatusPending,
	}
	d.PDFKey = fmt.Sprintf("projects/%s/documents/%s.pdf", projectID, d.ID)

	if _, err := s.s3c.PutObject(ctx, d.PDFKey, bytes.NewReader(data), int64(len(data)), s3.PutOptions{
		ContentType: pdfMimeType,
		Metadata:    map[string]string{"document-id": d.ID, "project-id": projectID},
	}); err != nil {
		return nil, fmt.Errorf("put document pdf: %w", err)
	}

	if err := orm.Create(&d).Error; err != nil {
		_ = s.s3c.RemoveObject(context.WithoutCancel(ctx), d.PDFKey)

		return nil, fmt.Errorf("create document: %w", err)
	}

	out := toDocument(&d)

	return &out, nil
}

// List 返回项目文档，按创建时间倒序.
func (s *DocumentService) List(ctx context.Context, projectID string) ([]types.Document, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	var docs []model.Document
	if err := orm.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	out := make([]types.Document, 0, len(docs))
	for i := range docs {
		out = append(out, toDocument(&docs[i]))
	}

	return out, nil
}

func (s *DocumentService) get(ctx context.Context, id string) (*model.Document, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	var d model.Document
	if err := orm.Where("id = ?", id).First(&d).Error; err != nil {
		return nil, notFound(err, "document %s", id)
	}

	return &d, nil
}

// OpenPDF 打开文档 PDF，调用方负责关闭.
func (s *DocumentService) OpenPDF(ctx context.Context, d *model.Document) (io.ReadCloser, int64, error) {
	if s.s3c == nil {
		return nil, 0, ErrNotInitialized
	}

	rc, info, err := s.s3c.GetObject(ctx, d.PDFKey)
	if err != nil {
		if errors.Is(err, s3.ErrObjectNotFound) {
			return nil, 0, fmt.Errorf("%w: pdf of document %s", ErrNotFound, d.ID)
		}

		return nil, 0, err
	}

	return rc, info.Size, nil
}

func toDocument(d *model.Document) types.Document {
	return types.Document{
		ID:              d.ID,
		ProjectID:       d.ProjectID,
		Title:           d.Title,
		ClientStatus:    d.ClientStatus,
		ClientComment:   d.ClientComment,
		ClientID:        d.ClientID,
		StatusUpdatedAt: d.StatusUpdatedAt,
		CreatedAt:       d.CreatedAt,
	}
}
