// Package api 组装 HTTP 引擎：全局中间件、存储注入与全部路由.
// 服务进程与客户端 SDK 的集成测试共用这一入口.
package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/router"
	"github.com/yeisme/projecthub/pkg/internal/storage"
	"github.com/yeisme/projecthub/pkg/internal/storage/kv"
	"github.com/yeisme/projecthub/pkg/middleware"
	"github.com/yeisme/projecthub/pkg/scheduler"
)

// Options 构建引擎的依赖.
type Options struct {
	Config    *configs.AppConfig
	Storage   *storage.Manager
	Scheduler *scheduler.Scheduler // 可为 nil，此时调度接口返回 503
	// Observability 为 false 时不挂载日志、追踪与指标中间件，测试中使用
	Observability bool
}

// NewEngine 创建注册了全部路由的 gin 引擎.
func NewEngine(opts Options) *gin.Engine {
	cfg := opts.Config
	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(cfg.Server),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedExtensions([]string{".pdf", ".png", ".jpg", ".zip"})),
	)

	if opts.Observability {
		engine.Use(
			middleware.GinLoggerMiddleware(),
			middleware.TracingMiddleware(),
			middleware.PrometheusMiddleware(),
		)
	}

	engine.Use(
		middleware.CircuitBreakerMiddleware("projecthub-http", cfg.CircuitBreaker),
		middleware.InjectDependencies(opts.Storage, opts.Scheduler),
	)

	var kvStore kv.KVStore
	if opts.Storage != nil && opts.Storage.KV != nil {
		kvStore = opts.Storage.KV
	}

	router.Register(engine, cfg, kvStore)
	router.RegisterSwaggerRoute(engine, cfg)

	return engine
}
