package client

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// IssueOptions 签发选项，ExpiresAt 为空时由服务端使用默认有效期.
type IssueOptions struct {
	ExpiresAt      *time.Time
	NotifyEmail    string
	NotifyLanguage string
}

// ShareIssuer 签发与查询分享链接，并在内存中按项目保留最近一次结果.
type ShareIssuer struct {
	c *Client

	mu     sync.RWMutex
	grants map[string]ShareGrant
}

func newShareIssuer(c *Client) *ShareIssuer {
	return &ShareIssuer{c: c, grants: map[string]ShareGrant{}}
}

func sharePath(projectID string) string {
	return "/api/projects/" + url.PathEscape(projectID) + "/share"
}

// Issue 为项目签发新的分享授权，替换该项目在内存中的授权.
// projectID 为空时不发起请求.
func (s *ShareIssuer) Issue(ctx context.Context, projectID string, opts IssueOptions) (*ShareGrant, error) {
	if projectID == "" {
		return nil, ErrProjectIDRequired
	}

	body := issueShareRequest{
		ExpiresAt:      opts.ExpiresAt,
		NotifyEmail:    opts.NotifyEmail,
		NotifyLanguage: opts.NotifyLanguage,
	}

	var g ShareGrant
	if _, err := s.c.do(ctx, request{
		method:  http.MethodPost,
		path:    sharePath(projectID),
		headers: s.c.adminHeaders(),
		body:    body,
	}, &g); err != nil {
		return nil, err
	}

	s.remember(projectID, g)

	return &g, nil
}

// FetchActive 返回项目最新的未过期授权；没有时返回 (nil, nil).
func (s *ShareIssuer) FetchActive(ctx context.Context, projectID string) (*ShareGrant, error) {
	if projectID == "" {
		return nil, ErrProjectIDRequired
	}

	var g ShareGrant

	status, err := s.c.do(ctx, request{method: http.MethodGet, path: sharePath(projectID), headers: s.c.adminHeaders()}, &g)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNoContent || g.Token == "" {
		return nil, nil
	}

	s.remember(projectID, g)

	return &g, nil
}

// Current 返回内存中该项目的授权.
func (s *ShareIssuer) Current(projectID string) (*ShareGrant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.grants[projectID]
	if !ok {
		return nil, false
	}

	return &g, true
}

func (s *ShareIssuer) remember(projectID string, g ShareGrant) {
	s.mu.Lock()
	s.grants[projectID] = g
	s.mu.Unlock()
}
