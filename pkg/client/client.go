// Package client 是 projecthub 的 Go SDK：存储网关、文件面板、预览、分享签发与公共访问.
//
// Example:
//
//	c, err := client.New(client.Config{
//		BaseURL:     "http://localhost:8080",
//		AdminAPIKey: os.Getenv("PROJECTHUB_AUTH_ADMIN_API_KEY"),
//	})
//	if err != nil {
//		return err
//	}
//
//	res, err := c.Gateway().Upload(ctx, client.FileRecord{
//		Name:      "Tétel #1.docx",
//		MimeType:  "application/msword",
//		ProjectID: "proj-1",
//		Content:   data,
//	})
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
)

const (
	headerAPIKey        = "X-API-Key"
	headerAuthorization = "Authorization"
)

// Client 持有连接配置与 HTTP 客户端，各功能对象共享同一个 Client.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger

	shares *ShareIssuer
}

// New 创建 SDK 客户端.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	if cfg.BaseURL == "" {
		return nil, errors.New("client: base url is required")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		cfg:    cfg,
		http:   hc,
		logger: cfg.Logger.With().Str("component", "projecthub-client").Logger(),
	}
	c.shares = newShareIssuer(c)

	return c, nil
}

// Gateway 返回存储网关.
func (c *Client) Gateway() *Gateway { return &Gateway{c: c} }

// Shares 返回分享签发器，同一 Client 上多次调用得到同一实例.
func (c *Client) Shares() *ShareIssuer { return c.shares }

// Public 返回公共访问端.
func (c *Client) Public() *PublicGate { return &PublicGate{c: c} }

// request 描述一次 API 调用.
type request struct {
	method  string
	path    string
	headers map[string]string
	body    any // 非 nil 时以 JSON 发送
}

func (c *Client) adminHeaders() map[string]string {
	if c.cfg.AdminAPIKey == "" {
		return nil
	}

	return map[string]string{headerAPIKey: c.cfg.AdminAPIKey}
}

func (c *Client) publicHeaders(pin string) map[string]string {
	h := map[string]string{headerAuthorization: "Bearer " + pin}
	if c.cfg.PublicAPIKey != "" {
		h[headerAPIKey] = c.cfg.PublicAPIKey
	}

	return h
}

// send 发送请求并返回响应，非 2xx 时读取错误体并返回 *APIError.
// 成功时调用方负责关闭响应体.
func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	var body io.Reader = http.NoBody

	if r.body != nil {
		b, err := sonic.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("client: encode %s %s: %w", r.method, r.path, err)
		}

		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, strings.TrimRight(c.cfg.BaseURL, "/")+r.path, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}

	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", r.method, r.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		return nil, decodeAPIError(resp)
	}

	return resp, nil
}

// do 发送请求并把 JSON 响应解码到 out，204 或 out 为 nil 时忽略响应体.
// 返回响应状态码.
func (c *Client) do(ctx context.Context, r request, out any) (int, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)

		return resp.StatusCode, nil
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("client: read %s %s: %w", r.method, r.path, err)
	}

	if err := sonic.Unmarshal(b, out); err != nil {
		return resp.StatusCode, fmt.Errorf("client: decode %s %s: %w", r.method, r.path, err)
	}

	return resp.StatusCode, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	e := &APIError{Status: resp.StatusCode}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}

	if err := sonic.Unmarshal(b, &body); err == nil {
		e.Code = body.Code
		e.Message = body.Error
	}

	if e.Message == "" {
		e.Message = strings.TrimSpace(string(b))
	}

	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}

	return e
}
