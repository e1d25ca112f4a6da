package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yeisme/projecthub/pkg/filename"
)

const (
	routeGenericUpload = "/api/files/upload"
	fallbackName       = "file"
)

// Gateway 存储网关：上传、列表、软删除与展示地址解析.
type Gateway struct {
	c *Client
}

// UploadResult 上传结果.
type UploadResult struct {
	Record   FileRecord
	Key      string
	URL      string
	Duration time.Duration
}

// Upload 规范化文件名、补全 ID 后上传，不做重试.
// 带 ProjectID 时走项目上传接口，否则走通用上传接口.
// 非 2xx 响应返回 *StorageUploadError.
func (g *Gateway) Upload(ctx context.Context, rec FileRecord) (*UploadResult, error) {
	start := time.Now()

	rec.Name = filename.Sanitize(rec.Name)
	if rec.Name == "" {
		rec.Name = fallbackName
	}

	if rec.ID == "" {
		rec.ID = filename.NewClientID(start)
	}

	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = start
	}

	if rec.UploadedBy == "" {
		rec.UploadedBy = UploadedByAdmin
	}

	if rec.Size == 0 && len(rec.Content) > 0 {
		rec.Size = int64(len(rec.Content))
	}

	body := uploadRequest{
		ID:         rec.ID,
		Name:       rec.Name,
		Size:       rec.Size,
		MimeType:   rec.MimeType,
		UploadedAt: rec.UploadedAt,
		UploadedBy: rec.UploadedBy,
		ProjectID:  rec.ProjectID,
		StorageKey: rec.StorageKey,
		StorageURL: rec.StorageURL,
	}

	if len(rec.Content) > 0 {
		body.Content = dataURI(rec.MimeType, rec.Content)
	}

	path := routeGenericUpload
	if rec.ProjectID != "" {
		path = "/api/projects/" + url.PathEscape(rec.ProjectID) + "/files"
	}

	var resp uploadResponse

	_, err := g.c.do(ctx, request{method: http.MethodPost, path: path, headers: g.c.adminHeaders(), body: body}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, &StorageUploadError{Status: apiErr.Status, Message: apiErr.Message}
		}

		return nil, &StorageUploadError{Message: err.Error()}
	}

	res := resolveUpload(rec, &resp)
	res.Duration = time.Since(start)

	g.c.logger.Debug().
		Str("file_id", res.Record.ID).
		Str("key", res.Key).
		Int64("upload_duration_ms", res.Duration.Milliseconds()).
		Msg("file uploaded")

	return res, nil
}

// resolveUpload 按优先级选出引用：直接 url、files 中同 id 的记录、files 中最新上传的记录、原始内容.
// kind 为 files 时忽略 url 字段；缺少 kind 的旧响应按字段推断.
func resolveUpload(rec FileRecord, resp *uploadResponse) *UploadResult {
	if resp.URL != "" && resp.Kind != uploadKindFiles {
		out := rec
		if resp.File != nil {
			out = *resp.File
		}

		out.StorageURL = resp.URL
		if resp.Key != "" {
			out.StorageKey = resp.Key
		}

		return &UploadResult{Record: out, Key: out.StorageKey, URL: resp.URL}
	}

	if resp.Kind == uploadKindURL {
		return rawUpload(rec)
	}

	if match := findByID(resp.Files, rec.ID); match != nil {
		return &UploadResult{Record: *match, Key: match.StorageKey, URL: match.StorageURL}
	}

	if latest := mostRecent(resp.Files); latest != nil {
		return &UploadResult{Record: *latest, Key: latest.StorageKey, URL: latest.StorageURL}
	}

	return rawUpload(rec)
}

func rawUpload(rec FileRecord) *UploadResult {
	var raw string
	if len(rec.Content) > 0 {
		raw = dataURI(rec.MimeType, rec.Content)
	}

	return &UploadResult{Record: rec, Key: rec.StorageKey, URL: firstNonEmpty(rec.StorageURL, raw)}
}

func findByID(files []FileRecord, id string) *FileRecord {
	for i := range files {
		if files[i].ID == id {
			return &files[i]
		}
	}

	return nil
}

func mostRecent(files []FileRecord) *FileRecord {
	var latest *FileRecord

	for i := range files {
		if latest == nil || files[i].UploadedAt.After(latest.UploadedAt) {
			latest = &files[i]
		}
	}

	return latest
}

// ResolveDisplayURL 返回文件的展示地址：
// storageUrl > 由 storageKey 推导的对象地址 > 原始内容的 data URI > "".
func (g *Gateway) ResolveDisplayURL(rec FileRecord) string {
	if rec.StorageURL != "" {
		return rec.StorageURL
	}

	if rec.StorageKey != "" {
		if u := g.objectURL(rec.StorageKey); u != "" {
			return u
		}
	}

	if len(rec.Content) > 0 {
		return dataURI(rec.MimeType, rec.Content)
	}

	g.c.logger.Warn().Str("file_id", rec.ID).Str("name", rec.Name).Msg("no display source for file")

	return ""
}

func (g *Gateway) objectURL(key string) string {
	cfg := g.c.cfg
	if cfg.Bucket == "" {
		return ""
	}

	escaped := strings.TrimLeft((&url.URL{Path: key}).EscapedPath(), "/")

	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket + "/" + escaped
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, cfg.Region, escaped)
}

// SoftDelete 软删除项目文件.
func (g *Gateway) SoftDelete(ctx context.Context, projectID, fileID string) error {
	if projectID == "" {
		return ErrProjectIDRequired
	}

	path := "/api/projects/" + url.PathEscape(projectID) + "/files/" + url.PathEscape(fileID)

	_, err := g.c.do(ctx, request{method: http.MethodDelete, path: path, headers: g.c.adminHeaders()}, nil)

	return err
}

// List 返回项目中未删除的文件.
func (g *Gateway) List(ctx context.Context, projectID string) ([]FileRecord, error) {
	if projectID == "" {
		return nil, ErrProjectIDRequired
	}

	var resp listFilesResponse

	path := "/api/projects/" + url.PathEscape(projectID) + "/files"
	if _, err := g.c.do(ctx, request{method: http.MethodGet, path: path, headers: g.c.adminHeaders()}, &resp); err != nil {
		return nil, err
	}

	return resp.Files, nil
}

func dataURI(mimeType string, b []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(b)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}
