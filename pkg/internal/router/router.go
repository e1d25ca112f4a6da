// Package router 管理 HTTP 路由，按管理端与公共访问端分组并挂载各自的认证中间件.
package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/cache"
	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/storage/kv"
	"github.com/yeisme/projecthub/pkg/middleware"
)

const (
	// ResponseCacheNamespace 公共 PDF 响应缓存的 KV 命名空间.
	ResponseCacheNamespace = "rc"
	pdfCacheTTL            = time.Minute
)

// Register 在 /api 下注册全部路由.
// kvStore 为 nil 时公共 PDF 下载不走响应缓存.
func Register(e *gin.Engine, cfg *configs.AppConfig, kvStore kv.KVStore) {
	api := e.Group("/api")

	RegisterHealthCheckRoute(api)

	admin := api.Group("", middleware.AdminAuthMiddleware(cfg.Auth), middleware.RequireMinRole(middleware.RoleAdmin))
	RegisterProjectRoutes(admin)
	RegisterFilesRoutes(admin)
	RegisterShareRoutes(admin)
	RegisterSchedulerRoutes(admin)

	public := api.Group("/public",
		middleware.RateLimitMiddleware(cfg.RateLimit),
		middleware.PublicAuthMiddleware(cfg.Auth),
	)
	RegisterPublicRoutes(public, pdfCache(kvStore))
}

// pdfCache 构造 PDF 下载的响应缓存，凭据头参与缓存键.
func pdfCache(kvStore kv.KVStore) gin.HandlerFunc {
	if kvStore == nil {
		return func(c *gin.Context) { c.Next() }
	}

	cc := middleware.DefaultCacheConfig(cache.NewCache(kvStore, ResponseCacheNamespace))
	cc.TTL = pdfCacheTTL
	cc.VaryHeaders = []string{middleware.HeaderAPIKey, "Authorization"}
	// 处理器为浏览器设置 private，服务端按凭据分键缓存
	cc.RespectCacheControl = false
	cc.MaxBodyBytes = 8 << 20

	return middleware.CacheMiddleware(cc)
}
