package middleware

import (
	"bytes"
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/projecthub/pkg/cache"
)

const (
	DefaultMaxBodyBytes = 1 << 20
	defaultCacheTTL     = 30 * time.Second

	headerCacheStatus = "X-Cache"
	headerBypass      = "X-Cache-Bypass"
)

// CacheConfig 响应缓存配置.
type CacheConfig struct {
	Cache *appcache.Cache
	TTL   time.Duration

	// VaryHeaders 参与缓存键的请求头，凭据头必须列在这里
	VaryHeaders []string

	// RespectCacheControl 为 true 时 no-store/private 响应不缓存，max-age 覆盖 TTL
	RespectCacheControl bool

	// MaxBodyBytes 超过该大小的响应不缓存，0 表示不限制
	MaxBodyBytes int
}

// DefaultCacheConfig 返回一份默认配置.
func DefaultCacheConfig(c *appcache.Cache) CacheConfig {
	return CacheConfig{
		Cache:               c,
		TTL:                 defaultCacheTTL,
		MaxBodyBytes:        DefaultMaxBodyBytes,
		RespectCacheControl: true,
	}
}

// cachedResponse 写入 KV 的响应快照.
type cachedResponse struct {
	Status   int               `json:"s"`
	Header   map[string]string `json:"h,omitempty"`
	Body     []byte            `json:"b,omitempty"`
	ETag     string            `json:"e"`
	StoredAt time.Time         `json:"t"`
}

// CacheMiddleware 缓存 GET/HEAD 的 200 响应，用于公共访问端的 PDF 下载.
// 命中时带上 ETag 与 Age，If-None-Match 一致时返回 304.
// 缓存读写失败只会退化为未命中.
//
//	cc := middleware.DefaultCacheConfig(cache.NewCache(kvClient, "rc"))
//	cc.VaryHeaders = []string{"X-API-Key", "Authorization"}
//	group.GET("/documents/:documentId/pdf", middleware.CacheMiddleware(cc), handler)
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	vary := slices.Sorted(slices.Values(cfg.VaryHeaders))

	return func(c *gin.Context) {
		m := c.Request.Method
		if (m != http.MethodGet && m != http.MethodHead) || c.GetHeader(headerBypass) != "" {
			c.Next()

			return
		}

		key := cacheKey(c, vary)

		if hit, err := appcache.Get[cachedResponse](c.Request.Context(), cfg.Cache, key); err == nil {
			replay(c, hit)

			return
		}

		c.Header(headerCacheStatus, "MISS")

		w := &captureWriter{ResponseWriter: c.Writer, limit: cfg.MaxBodyBytes}
		c.Writer = w
		c.Next()

		if entry, ttl, ok := snapshotResponse(c, cfg, w); ok {
			// 响应已经写出，异步落缓存
			go func(ctx context.Context) {
				_ = appcache.Set(ctx, cfg.Cache, key, entry, ttl)
			}(context.WithoutCancel(c.Request.Context()))
		}
	}
}

// cacheKey 由方法、路由模板、实际路径、排序后的查询参数与 vary 头组成，取 xxhash.
func cacheKey(c *gin.Context, vary []string) string {
	var b strings.Builder

	b.WriteString(c.Request.Method)
	b.WriteByte(' ')
	b.WriteString(c.Request.URL.Path)

	if q := c.Request.URL.Query(); len(q) > 0 {
		b.WriteByte('?')
		b.WriteString(q.Encode()) // Encode 按键排序
	}

	for _, h := range vary {
		b.WriteByte('|')
		b.WriteString(h)
		b.WriteByte('=')
		b.WriteString(c.GetHeader(h))
	}

	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

func replay(c *gin.Context, hit cachedResponse) {
	h := c.Writer.Header()
	for k, v := range hit.Header {
		h.Set(k, v)
	}

	h.Set("ETag", hit.ETag)
	h.Set("Age", strconv.Itoa(int(time.Since(hit.StoredAt).Seconds())))
	h.Set(headerCacheStatus, "HIT")

	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == hit.ETag {
		c.AbortWithStatus(http.StatusNotModified)

		return
	}

	c.Status(hit.Status)

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(hit.Body)
	}

	c.Abort()
}

func snapshotResponse(c *gin.Context, cfg CacheConfig, w *captureWriter) (cachedResponse, time.Duration, bool) {
	if c.Writer.Status() != http.StatusOK || w.overflow {
		return cachedResponse{}, 0, false
	}

	ttl := cfg.TTL
	if cfg.RespectCacheControl {
		maxAge, cacheable := cacheControlTTL(c.Writer.Header().Get("Cache-Control"))
		if !cacheable {
			return cachedResponse{}, 0, false
		}

		if maxAge > 0 {
			ttl = maxAge
		}
	}

	if ttl <= 0 {
		return cachedResponse{}, 0, false
	}

	hdr := make(map[string]string, len(c.Writer.Header()))
	for k, v := range c.Writer.Header() {
		if len(v) > 0 && k != headerCacheStatus {
			hdr[k] = v[0]
		}
	}

	body := bytes.Clone(w.buf.Bytes())

	etag := hdr["Etag"]
	if etag == "" {
		etag = `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
	}

	return cachedResponse{
		Status:   http.StatusOK,
		Header:   hdr,
		Body:     body,
		ETag:     etag,
		StoredAt: time.Now(),
	}, ttl, true
}

// cacheControlTTL 返回 max-age 与是否允许缓存.
func cacheControlTTL(v string) (time.Duration, bool) {
	var maxAge time.Duration

	for _, d := range strings.Split(strings.ToLower(v), ",") {
		d = strings.TrimSpace(d)

		switch {
		case d == "no-store" || d == "private":
			return 0, false
		case strings.HasPrefix(d, "max-age="):
			if n, err := strconv.Atoi(strings.TrimPrefix(d, "max-age=")); err == nil && n > 0 {
				maxAge = time.Duration(n) * time.Second
			}
		}
	}

	return maxAge, true
}

// captureWriter 在写出响应的同时保留一份响应体，超过上限后停止保留.
type captureWriter struct {
	gin.ResponseWriter

	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}

	return w.ResponseWriter.Write(b)
}
