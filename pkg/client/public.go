package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// PublicGate 公共访问端，每个请求携带公共 API Key 与 Bearer PIN.
// 非 2xx 响应一律返回 *PublicAccessError.
type PublicGate struct {
	c *Client
}

// GetProject 以分享令牌（或项目 ID）和 PIN 读取项目.
func (p *PublicGate) GetProject(ctx context.Context, token, pin string) (*Project, error) {
	var out Project

	_, err := p.c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/public/projects/" + url.PathEscape(token),
		headers: p.c.publicHeaders(pin),
	}, &out)
	if err != nil {
		return nil, publicError(err)
	}

	return &out, nil
}

// GetDocuments 列出项目文档.
func (p *PublicGate) GetDocuments(ctx context.Context, projectID, pin string) ([]Document, error) {
	var out listDocumentsResponse

	_, err := p.c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/public/projects/" + url.PathEscape(projectID) + "/documents",
		headers: p.c.publicHeaders(pin),
	}, &out)
	if err != nil {
		return nil, publicError(err)
	}

	return out.Documents, nil
}

// UpdateDocumentStatus 提交客户审批结果，返回更新后的文档.
func (p *PublicGate) UpdateDocumentStatus(ctx context.Context, u StatusUpdate, pin string) (*Document, error) {
	var out Document

	_, err := p.c.do(ctx, request{
		method:  http.MethodPut,
		path:    "/api/public/documents/" + url.PathEscape(u.DocumentID) + "/client-status",
		headers: p.c.publicHeaders(pin),
		body:    u,
	}, &out)
	if err != nil {
		return nil, publicError(err)
	}

	return &out, nil
}

// DownloadDocumentPDF 下载文档 PDF.
func (p *PublicGate) DownloadDocumentPDF(ctx context.Context, documentID, pin string) ([]byte, error) {
	path := "/api/public/documents/" + url.PathEscape(documentID) + "/pdf"

	resp, err := p.c.send(ctx, request{method: http.MethodGet, path: path, headers: p.c.publicHeaders(pin)})
	if err != nil {
		return nil, publicError(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read pdf %s: %w", documentID, err)
	}

	return b, nil
}
