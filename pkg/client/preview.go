package client

import (
	"context"
	"strings"
	"sync"
	"time"
)

// PreviewKind 预览方式.
type PreviewKind int

const (
	PreviewDownload PreviewKind = iota
	PreviewImage
	PreviewPDF
)

func (k PreviewKind) String() string {
	switch k {
	case PreviewImage:
		return "image"
	case PreviewPDF:
		return "pdf"
	default:
		return "download"
	}
}

// Preview 单个文件的预览状态.
type Preview struct {
	rec    FileRecord
	url    string
	settle time.Duration

	mu        sync.Mutex
	loading   bool
	loadError bool
}

// NewPreview 解析展示地址并创建处于加载中的预览.
func NewPreview(gw *Gateway, rec FileRecord) *Preview {
	return &Preview{
		rec:     rec,
		url:     gw.ResolveDisplayURL(rec),
		settle:  gw.c.cfg.PreviewSettleDelay,
		loading: true,
	}
}

// Kind 按 MIME 选择预览方式，加载出错后一律为下载.
func (p *Preview) Kind() PreviewKind {
	p.mu.Lock()
	failed := p.loadError
	p.mu.Unlock()

	if failed {
		return PreviewDownload
	}

	m := strings.ToLower(p.rec.MimeType)

	switch {
	case strings.HasPrefix(m, "image/"):
		return PreviewImage
	case m == "application/pdf":
		return PreviewPDF
	default:
		return PreviewDownload
	}
}

// Load 等待展示延迟后结束加载状态；ctx 取消时保持加载中并返回其错误.
func (p *Preview) Load(ctx context.Context) error {
	if p.settle > 0 {
		t := time.NewTimer(p.settle)
		defer t.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	p.mu.Lock()
	p.loading = false
	p.mu.Unlock()

	return nil
}

// Loading 是否仍在加载.
func (p *Preview) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.loading
}

// MarkLoadError 记录内容加载失败，此后 Kind 返回 PreviewDownload.
func (p *Preview) MarkLoadError() {
	p.mu.Lock()
	p.loadError = true
	p.loading = false
	p.mu.Unlock()
}

// DownloadURL 返回解析后的地址，与预览方式无关.
func (p *Preview) DownloadURL() string {
	return p.url
}

// Record 预览的文件记录.
func (p *Preview) Record() FileRecord {
	return p.rec
}
