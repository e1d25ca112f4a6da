package service

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // 内容校验，不用于安全场景
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/projecthub/pkg/filename"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/storage/s3"
	"github.com/yeisme/projecthub/pkg/internal/types"
	"github.com/yeisme/projecthub/pkg/metrics"
	"github.com/yeisme/projecthub/pkg/queue"
)

const (
	defaultMimeType = "application/octet-stream"
	fallbackName    = "file"
	purgeBatchSize  = 200
)

// FileService 项目文件的上传、列表、软删除、恢复与清理.
type FileService struct {
	deps
}

// NewFileService 从 context 中的存储管理器创建 FileService.
func NewFileService(c context.Context) *FileService {
	return &FileService{deps: depsFrom(c)}
}

// Upload 执行上传流水线：解码内容、校验大小、规范文件名、探测 MIME、写对象存储、落库并发布事件.
// uploadedBy 由调用方按认证角色给出，为空时取请求中的值，再缺省为 Admin.
func (s *FileService) Upload(ctx context.Context, req *types.UploadFileRequest, uploadedBy string) (*types.FileRecord, error) {
	ctx, span := startSpan(ctx, "FileService.Upload", attribute.String("project_id", req.ProjectID))
	defer span.End()

	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	if req.ProjectID != "" && !filename.IsSanitized(req.ProjectID) {
		return nil, invalidf("projectId %q contains unsupported characters", req.ProjectID)
	}

	now := time.Now().UTC()

	f := model.File{
		ProjectID:  req.ProjectID,
		ID:         req.ID,
		Name:       filename.Sanitize(req.Name),
		UploadedBy: firstNonEmpty(uploadedBy, req.UploadedBy, model.UploadedByAdmin),
		UploadedAt: now,
	}

	if f.ID == "" {
		f.ID = filename.NewIDAt(now)
	} else if !filename.IsSanitized(f.ID) {
		return nil, invalidf("file id %q contains unsupported characters", f.ID)
	}

	if f.Name == "" {
		f.Name = fallbackName
	}

	if req.UploadedAt != nil && !req.UploadedAt.IsZero() {
		f.UploadedAt = req.UploadedAt.UTC()
	}

	var stored bool

	switch {
	case req.HasContent():
		if err := s.storeContent(ctx, req, &f); err != nil {
			return nil, err
		}

		stored = true
	case req.StorageKey != "" || req.StorageURL != "":
		f.Size = req.Size
		f.MimeType = firstNonEmpty(req.MimeType, defaultMimeType)
		f.StorageKey = req.StorageKey
		f.StorageURL = req.StorageURL

		if f.StorageURL == "" && s.s3c != nil {
			f.StorageURL = s.s3c.ObjectURL(f.StorageKey)
		}
	default:
		return nil, invalidf("content or storageKey/storageUrl is required")
	}

	// 同一项目内重复的 ID 视为覆盖上传
	if err := orm.Clauses(clause.OnConflict{UpdateAll: true}).Create(&f).Error; err != nil {
		if stored {
			_ = s.s3c.RemoveObject(context.WithoutCancel(ctx), f.StorageKey)
		}

		return nil, fmt.Errorf("save file metadata: %w", err)
	}

	s.publish(ctx, s.cfg.Events.File.Uploaded, queue.TopicFileUploaded, func(p queue.Publisher) error {
		return queue.PublishFileUploaded(ctx, p, queue.FileUploadedPayload{
			File: fileRef(&f),
			ETag: f.ETag,
			MD5:  f.MD5,
		}, eventOpts(ctx)...)
	})

	l := s.logger(ctx, "files")
	l.Info().
		Str("project_id", f.ProjectID).
		Str("file_id", f.ID).
		Str("key", f.StorageKey).
		Int64("size", f.Size).
		Str("uploaded_by", f.UploadedBy).
		Msg("file uploaded")

	rec := toFileRecord(&f)

	return &rec, nil
}

// storeContent 解码请求内容并写入对象存储，填充 f 的存储相关字段.
func (s *FileService) storeContent(ctx context.Context, req *types.UploadFileRequest, f *model.File) error {
	if s.s3c == nil {
		return ErrNotInitialized
	}

	limit := s.cfg.Upload.MaxBytes
	if limit > 0 && encodedLen(req.Content) > limit+3 {
		return fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, limit)
	}

	data, uriMime, err := decodeContent(req.Content)
	if err != nil {
		return err
	}

	if limit > 0 && int64(len(data)) > limit {
		return fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, limit)
	}

	mimeType := firstNonEmpty(req.MimeType, uriMime)
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}

	mimeType, _, _ = strings.Cut(mimeType, ";")
	mimeType = strings.TrimSpace(mimeType)

	if !s.mimeAllowed(mimeType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedMedia, mimeType)
	}

	sum := md5.Sum(data) //nolint:gosec // 内容校验
	f.MD5 = hex.EncodeToString(sum[:])
	f.Size = int64(len(data))
	f.MimeType = mimeType
	f.StorageKey = objectKey(f.ProjectID, f.ID, f.Name, f.UploadedAt)

	info, err := s.s3c.PutObject(ctx, f.StorageKey, bytes.NewReader(data), f.Size, s3.PutOptions{
		ContentType: mimeType,
		Metadata: map[string]string{
			"file-id":    f.ID,
			"project-id": f.ProjectID,
			"md5":        f.MD5,
		},
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}

	f.Bucket = s.s3c.Bucket()
	f.ETag = info.ETag
	f.StorageURL = s.s3c.ObjectURL(f.StorageKey)

	metrics.UploadBytes.Add(float64(f.Size))

	return nil
}

func (s *FileService) mimeAllowed(mimeType string) bool {
	prefixes := s.cfg.Upload.AllowedMimePrefixes
	if len(prefixes) == 0 {
		return true
	}

	for _, p := range prefixes {
		if strings.HasPrefix(mimeType, p) {
			return true
		}
	}

	return false
}

// List 返回项目中未删除的文件，按上传时间倒序.
func (s *FileService) List(ctx context.Context, projectID string) ([]types.FileRecord, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	var files []model.File
	if err := orm.Where("project_id = ?", projectID).
		Order("uploaded_at DESC").Order("id DESC").
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return toFileRecords(files), nil
}

// ListTrash 返回项目中已软删除、尚未被清理的文件.
func (s *FileService) ListTrash(ctx context.Context, projectID string) ([]types.FileRecord, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	var files []model.File
	if err := orm.Unscoped().
		Where("project_id = ? AND deleted_at IS NOT NULL", projectID).
		Order("deleted_at DESC").
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}

	return toFileRecords(files), nil
}

// Delete 软删除文件，对象保留到保留期结束.
func (s *FileService) Delete(ctx context.Context, projectID, fileID string) error {
	orm, err := s.orm(ctx)
	if err != nil {
		return err
	}

	var f model.File
	if err := orm.Where("project_id = ? AND id = ?", projectID, fileID).First(&f).Error; err != nil {
		return notFound(err, "file %s", fileID)
	}

	if err := orm.Delete(&f).Error; err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	s.publish(ctx, s.cfg.Events.File.Deleted, queue.TopicFileDeleted, func(p queue.Publisher) error {
		return queue.PublishFileDeleted(ctx, p, queue.FileDeletedPayload{
			File:      fileRef(&f),
			DeletedAt: time.Now().UTC(),
		}, eventOpts(ctx)...)
	})

	return nil
}

// Restore 将回收站中的文件恢复为可见.
func (s *FileService) Restore(ctx context.Context, projectID, fileID string) (*types.FileRecord, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, err
	}

	var f model.File
	if err := orm.Unscoped().
		Where("project_id = ? AND id = ? AND deleted_at IS NOT NULL", projectID, fileID).
		First(&f).Error; err != nil {
		return nil, notFound(err, "deleted file %s", fileID)
	}

	if err := orm.Unscoped().Model(&f).Update("deleted_at", nil).Error; err != nil {
		return nil, fmt.Errorf("restore file: %w", err)
	}

	f.DeletedAt = gorm.DeletedAt{}

	s.publish(ctx, s.cfg.Events.File.Restored, queue.TopicFileRestored, func(p queue.Publisher) error {
		return queue.PublishFileRestored(ctx, p, queue.FileRestoredPayload{File: fileRef(&f)}, eventOpts(ctx)...)
	})

	rec := toFileRecord(&f)

	return &rec, nil
}

// OpenContent 打开未删除文件的对象内容，调用方负责关闭.
// projectID 为空时按文件 ID 查找第一条记录.
func (s *FileService) OpenContent(ctx context.Context, projectID, fileID string) (io.ReadCloser, *types.FileRecord, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return nil, nil, err
	}

	if s.s3c == nil {
		return nil, nil, ErrNotInitialized
	}

	q := orm.Where("id = ?", fileID)
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}

	var f model.File
	if err := q.First(&f).Error; err != nil {
		return nil, nil, notFound(err, "file %s", fileID)
	}

	if f.StorageKey == "" {
		return nil, nil, fmt.Errorf("%w: file %s has no stored object", ErrNotFound, fileID)
	}

	rc, _, err := s.s3c.GetObject(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, s3.ErrObjectNotFound) {
			return nil, nil, fmt.Errorf("%w: object %s", ErrNotFound, f.StorageKey)
		}

		return nil, nil, err
	}

	rec := toFileRecord(&f)

	return rc, &rec, nil
}

// PurgeDeleted 彻底删除 before 之前软删除的文件及其对象，返回删除条数.
// 对象删除失败的记录保留，等待下一轮.
func (s *FileService) PurgeDeleted(ctx context.Context, before time.Time) (int, error) {
	orm, err := s.orm(ctx)
	if err != nil {
		return 0, err
	}

	l := s.logger(ctx, "files")
	purged := 0

	for {
		var files []model.File
		if err := orm.Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", before).
			Order("deleted_at").Limit(purgeBatchSize).
			Find(&files).Error; err != nil {
			return purged, fmt.Errorf("find expired files: %w", err)
		}

		batchPurged := 0

		for i := range files {
			f := &files[i]

			if f.StorageKey != "" && s.s3c != nil {
				if err := s.s3c.RemoveObject(ctx, f.StorageKey); err != nil && !errors.Is(err, s3.ErrObjectNotFound) {
					l.Warn().Err(err).Str("key", f.StorageKey).Msg("remove object failed, keep row for next run")

					continue
				}
			}

			if err := orm.Unscoped().Delete(f).Error; err != nil {
				return purged, fmt.Errorf("purge file %s: %w", f.ID, err)
			}

			purged++
			batchPurged++

			metrics.FilesPurged.Inc()

			s.publish(ctx, s.cfg.Events.File.Purged, queue.TopicFilePurged, func(p queue.Publisher) error {
				return queue.PublishFilePurged(ctx, p, queue.FilePurgedPayload{
					File:      fileRef(f),
					DeletedAt: f.DeletedAt.Time,
					Reason:    "retention",
				}, eventOpts(ctx)...)
			})
		}

		if len(files) < purgeBatchSize || batchPurged == 0 {
			return purged, nil
		}
	}
}

// objectKey 生成对象键：projects/{projectId}/{YYYY}/{MM}/{id}_{name}，无项目时以 uploads/ 开头.
func objectKey(projectID, id, name string, at time.Time) string {
	prefix := "uploads"
	if projectID != "" {
		prefix = "projects/" + projectID
	}

	return fmt.Sprintf("%s/%04d/%02d/%s_%s", prefix, at.Year(), int(at.Month()), id, name)
}

func fileRef(f *model.File) queue.FileRef {
	return queue.FileRef{
		FileID:     f.ID,
		ProjectID:  f.ProjectID,
		Name:       f.Name,
		Bucket:     f.Bucket,
		ObjectKey:  f.StorageKey,
		Size:       f.Size,
		MimeType:   f.MimeType,
		UploadedBy: f.UploadedBy,
	}
}

func toFileRecord(f *model.File) types.FileRecord {
	rec := types.FileRecord{
		ID:         f.ID,
		Name:       f.Name,
		Size:       f.Size,
		MimeType:   f.MimeType,
		UploadedAt: f.UploadedAt,
		UploadedBy: f.UploadedBy,
		ProjectID:  f.ProjectID,
		StorageURL: f.StorageURL,
		StorageKey: f.StorageKey,
	}

	if f.DeletedAt.Valid {
		t := f.DeletedAt.Time
		rec.IsDeleted = true
		rec.DeletedAt = &t
	}

	return rec
}

func toFileRecords(files []model.File) []types.FileRecord {
	out := make([]types.FileRecord, 0, len(files))
	for i := range files {
		out = append(out, toFileRecord(&files[i]))
	}

	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}

// notFound 将 gorm.ErrRecordNotFound 转为 ErrNotFound.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}

	return err
}
