package middleware

import (
	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/projecthub/pkg/context"
	"github.com/yeisme/projecthub/pkg/internal/storage"
	"github.com/yeisme/projecthub/pkg/scheduler"
)

// InjectDependencies 把存储管理器与调度器写入请求上下文.
// sched 为 nil 时调度器相关接口返回 503.
func InjectDependencies(mgr *storage.Manager, sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxPkg.WithStorageManager(c.Request.Context(), mgr)
		ctx = ctxPkg.WithScheduler(ctx, sched)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
