package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/cache"
	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/storage/kv"
	"github.com/yeisme/projecthub/pkg/middleware"
)

func newCachedEngine(t *testing.T, cacheControl string) (*gin.Engine, *atomic.Int32) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	store, err := kv.NewMemoryKV(context.Background(), nil)
	require.NoError(t, err)

	cc := middleware.DefaultCacheConfig(cache.NewCache(store, "rc"))
	cc.VaryHeaders = []string{"Authorization"}
	cc.TTL = time.Minute

	var calls atomic.Int32

	e := gin.New()
	e.GET("/doc", middleware.CacheMiddleware(cc), func(c *gin.Context) {
		calls.Add(1)

		if cacheControl != "" {
			c.Header("Cache-Control", cacheControl)
		}

		c.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.4 "+c.GetHeader("Authorization")))
	})

	return e, &calls
}

func get(e *gin.Engine, auth, ifNoneMatch string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/doc", nil)
	req.Header.Set("Authorization", auth)

	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}

	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	return w
}

func TestCacheMiddlewareServesHitsPerCredential(t *testing.T) {
	e, calls := newCachedEngine(t, "")

	first := get(e, "Bearer 111111", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	var hit *httptest.ResponseRecorder

	require.Eventually(t, func() bool {
		hit = get(e, "Bearer 111111", "")

		return hit.Header().Get("X-Cache") == "HIT"
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, first.Body.String(), hit.Body.String())
	assert.Equal(t, "application/pdf", hit.Header().Get("Content-Type"))
	assert.NotEmpty(t, hit.Header().Get("ETag"))

	before := calls.Load()

	other := get(e, "Bearer 222222", "")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Contains(t, other.Body.String(), "222222")
	assert.Equal(t, before+1, calls.Load())

	notModified := get(e, "Bearer 111111", hit.Header().Get("ETag"))
	assert.Equal(t, http.StatusNotModified, notModified.Code)
	assert.Empty(t, notModified.Body.String())
}

func TestCacheMiddlewareHonoursNoStore(t *testing.T) {
	e, calls := newCachedEngine(t, "no-store")

	for range 3 {
		w := get(e, "Bearer 111111", "")
		assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Equal(t, int32(3), calls.Load())
}

func TestAuthMiddlewares(t *testing.T) {
	gin.SetMode(gin.TestMode)

	conf := configs.AuthConfig{Enabled: true, AdminAPIKey: "admin", PublicAPIKey: "public"}

	e := gin.New()
	e.GET("/admin", middleware.AdminAuthMiddleware(conf), middleware.RequireMinRole(middleware.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRole(c).String())
	})
	e.GET("/public", middleware.PublicAuthMiddleware(conf), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRole(c).String()+":"+middleware.GetSharePIN(c))
	})

	cases := []struct {
		name    string
		path    string
		headers map[string]string
		code    int
		body    string
	}{
		{"admin ok", "/admin", map[string]string{"X-API-Key": "admin"}, http.StatusOK, "Admin"},
		{"admin wrong key", "/admin", map[string]string{"X-API-Key": "public"}, http.StatusUnauthorized, `"access_denied"`},
		{"public ok", "/public", map[string]string{"X-API-Key": "public", "Authorization": "Bearer 123456"}, http.StatusOK, "Client:123456"},
		{"public without pin", "/public", map[string]string{"X-API-Key": "public"}, http.StatusUnauthorized, `"access_denied"`},
		{"public wrong key", "/public", map[string]string{"X-API-Key": "admin", "Authorization": "Bearer 123456"}, http.StatusUnauthorized, `"access_denied"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}
