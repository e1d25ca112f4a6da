package client

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/projecthub/pkg/filename"
)

// PanelState 面板加载状态.
type PanelState int

const (
	StateIdle PanelState = iota
	StateLoading
	StateReady
)

func (s PanelState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "idle"
	}
}

// NoticeLevel 通知级别.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice 面板向调用方发出的提示.
type Notice struct {
	Level   NoticeLevel
	FileID  string
	Message string
}

// Selection 待上传的本地文件.
type Selection struct {
	Name     string
	MimeType string // 为空时按内容识别
	Open     func() (io.ReadCloser, error)
}

// SelectionFromPath 以本地路径构造 Selection.
func SelectionFromPath(path string) Selection {
	return Selection{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BatchResult 批量上传统计.
type BatchResult struct {
	Uploaded int
	Failed   int
	Skipped  int
}

// PanelOptions 面板回调与初始数据.
type PanelOptions struct {
	Initial    []FileRecord              // 列表加载失败时的回退数据
	OnProgress func(percent int)         // 每个文件处理结束后调用
	OnNotice   func(Notice)              // 删除结果等提示
	Confirm    func(rec FileRecord) bool // 删除确认，为空时删除一律取消
}

// Panel 单个项目的文件面板.
// Uploading 与 Deleting 只是标记，不阻塞 View.
type Panel struct {
	gw        *Gateway
	projectID string
	opts      PanelOptions
	limit     int

	mu        sync.RWMutex
	state     PanelState
	files     []FileRecord
	local     map[string]FileRecord
	uploading bool
	deleting  bool
}

// NewPanel 创建项目文件面板，初始状态为 Idle.
func (c *Client) NewPanel(projectID string, opts PanelOptions) *Panel {
	return &Panel{
		gw:        c.Gateway(),
		projectID: projectID,
		opts:      opts,
		limit:     c.cfg.UploadConcurrency,
		files:     visible(opts.Initial),
		local:     map[string]FileRecord{},
	}
}

// State 当前加载状态.
func (p *Panel) State() PanelState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.state
}

// Uploading 是否有批量上传在进行.
func (p *Panel) Uploading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.uploading
}

// Deleting 是否有删除在进行.
func (p *Panel) Deleting() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.deleting
}

// Files 返回当前全部文件的副本.
func (p *Panel) Files() []FileRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return append([]FileRecord(nil), p.files...)
}

// View 按查询条件返回文件视图.
func (p *Panel) View(q Query) []FileRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Filter(p.files, q)
}

// Refresh 重新拉取文件列表并去掉已删除记录，失败时回退到初始列表.
// 未上传成功的本地记录会合并回视图.
func (p *Panel) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.state = StateLoading
	p.mu.Unlock()

	files, err := p.gw.List(ctx, p.projectID)
	if err != nil {
		p.gw.c.logger.Warn().Err(err).Str("project_id", p.projectID).Msg("file list refresh failed, using initial list")

		files = p.opts.Initial
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.files = mergeLocal(visible(files), p.local)
	p.state = StateReady

	return err
}

// UploadBatch 读取并上传一批文件，并发数受 Config.UploadConcurrency 限制.
// 读取失败的文件被跳过；上传失败的文件以本地内容保留在面板中.
// 全部结束后执行一次 Refresh.
func (p *Panel) UploadBatch(ctx context.Context, selections []Selection) (BatchResult, error) {
	var (
		res       BatchResult
		processed int
		mu        sync.Mutex
		g         errgroup.Group
	)

	total := len(selections)
	if total == 0 {
		return res, nil
	}

	p.setUploading(true)
	defer p.setUploading(false)

	g.SetLimit(p.limit)

	settle := func(update func()) {
		mu.Lock()
		defer mu.Unlock()

		update()
		processed++

		if p.opts.OnProgress != nil {
			p.opts.OnProgress(processed * 100 / total)
		}
	}

	for _, sel := range selections {
		g.Go(func() error {
			rec, err := p.readSelection(sel)
			if err != nil {
				p.gw.c.logger.Warn().Err(err).Str("name", sel.Name).Msg("skip unreadable file")
				settle(func() { res.Skipped++ })

				return nil
			}

			if _, err := p.gw.Upload(ctx, rec); err != nil {
				p.gw.c.logger.Warn().Err(err).Str("name", rec.Name).Msg("upload failed, keeping local copy")

				rec.LocalOnly = true
				p.keepLocal(rec)
				settle(func() { res.Failed++ })

				return nil
			}

			settle(func() { res.Uploaded++ })

			return nil
		})
	}

	_ = g.Wait()

	return res, p.Refresh(ctx)
}

// readSelection 把选中的文件读入内存并构造记录.
func (p *Panel) readSelection(sel Selection) (FileRecord, error) {
	if sel.Open == nil {
		return FileRecord{}, fmt.Errorf("selection %q has no reader", sel.Name)
	}

	r, err := sel.Open()
	if err != nil {
		return FileRecord{}, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return FileRecord{}, err
	}

	mimeType := sel.MimeType
	if mimeType == "" {
		mimeType, _, _ = strings.Cut(mimetype.Detect(data).String(), ";")
	}

	now := time.Now()

	return FileRecord{
		ID:         filename.NewClientID(now),
		Name:       sel.Name,
		Size:       int64(len(data)),
		MimeType:   mimeType,
		UploadedAt: now,
		UploadedBy: UploadedByAdmin,
		ProjectID:  p.projectID,
		Content:    data,
	}, nil
}

// Delete 经确认后软删除文件.
// 未确认返回 ErrDeleteCancelled；失败时保留记录并发出错误提示.
func (p *Panel) Delete(ctx context.Context, fileID string) error {
	rec, ok := p.find(fileID)
	if !ok {
		return fmt.Errorf("client: file %s is not in the panel: %w", fileID, ErrNotFound)
	}

	if p.opts.Confirm == nil || !p.opts.Confirm(rec) {
		return ErrDeleteCancelled
	}

	p.setDeleting(true)
	defer p.setDeleting(false)

	if !rec.LocalOnly {
		if err := p.gw.SoftDelete(ctx, p.projectID, fileID); err != nil {
			p.notify(Notice{Level: NoticeError, FileID: fileID, Message: "delete failed: " + err.Error()})

			return err
		}
	}

	p.mu.Lock()
	p.files = removeByID(p.files, fileID)
	delete(p.local, fileID)
	p.mu.Unlock()

	p.notify(Notice{Level: NoticeSuccess, FileID: fileID, Message: "file deleted"})

	return nil
}

func (p *Panel) find(fileID string) (FileRecord, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, f := range p.files {
		if f.ID == fileID {
			return f, true
		}
	}

	return FileRecord{}, false
}

func (p *Panel) keepLocal(rec FileRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.local[rec.ID] = rec
}

func (p *Panel) notify(n Notice) {
	if p.opts.OnNotice != nil {
		p.opts.OnNotice(n)
	}
}

func (p *Panel) setUploading(v bool) {
	p.mu.Lock()
	p.uploading = v
	p.mu.Unlock()
}

func (p *Panel) setDeleting(v bool) {
	p.mu.Lock()
	p.deleting = v
	p.mu.Unlock()
}

func visible(files []FileRecord) []FileRecord {
	out := make([]FileRecord, 0, len(files))

	for _, f := range files {
		if !f.IsDeleted {
			out = append(out, f)
		}
	}

	return out
}

func mergeLocal(files []FileRecord, local map[string]FileRecord) []FileRecord {
	pending := make([]FileRecord, 0, len(local))

	for id, rec := range local {
		if findByID(files, id) == nil {
			pending = append(pending, rec)
		}
	}

	slices.SortFunc(pending, func(a, b FileRecord) int { return cmp.Compare(a.ID, b.ID) })

	return append(files, pending...)
}

func removeByID(files []FileRecord, id string) []FileRecord {
	out := files[:0]

	for _, f := range files {
		if f.ID != id {
			out = append(out, f)
		}
	}

	return out
}
