package handle

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	ctxPkg "github.com/yeisme/projecthub/pkg/context"
)

const timeout = 2 * time.Second

// healthChecker 组件的连通性检查.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func respondHealth(c *gin.Context, component string, hc healthChecker, ok bool) {
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": component + " client not initialized"})

		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := hc.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}

// HealthDB 数据库健康检查.
//
//	@Summary	数据库健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health/db [get]
func HealthDB(c *gin.Context) {
	dbc := ctxPkg.GetDBClient(c.Request.Context())
	respondHealth(c, "db", dbc, dbc != nil && dbc.DB != nil)
}

// HealthS3 对象存储健康检查.
//
//	@Summary	对象存储健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health/s3 [get]
func HealthS3(c *gin.Context) {
	s3c := ctxPkg.GetS3Client(c.Request.Context())
	respondHealth(c, "s3", s3c, s3c != nil)
}

// HealthMQ 消息队列健康检查.
//
//	@Summary	消息队列健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health/mq [get]
func HealthMQ(c *gin.Context) {
	mqc := ctxPkg.GetMQClient(c.Request.Context())
	respondHealth(c, "mq", mqc, mqc != nil)
}

type kvProbe struct{ exists func(ctx context.Context, key string) (bool, error) }

func (p kvProbe) HealthCheck(ctx context.Context) error {
	_, err := p.exists(ctx, "health.probe")

	return err
}

// HealthReady 并发检查所有组件，任一不可用返回 503.
//
//	@Summary	就绪检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health [get]
func HealthReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	checks := map[string]healthChecker{}
	if dbc := ctxPkg.GetDBClient(ctx); dbc != nil && dbc.DB != nil {
		checks["db"] = dbc
	}

	if s3c := ctxPkg.GetS3Client(ctx); s3c != nil {
		checks["s3"] = s3c
	}

	if mqc := ctxPkg.GetMQClient(ctx); mqc != nil {
		checks["mq"] = mqc
	}

	if kvc := ctxPkg.GetKVClient(ctx); kvc != nil {
		checks["kv"] = kvProbe{exists: kvc.Exists}
	}

	var (
		g      errgroup.Group
		mu     sync.Mutex
		status = gin.H{}
		failed bool
	)

	for name, hc := range checks {
		g.Go(func() error {
			err := hc.HealthCheck(ctx)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				failed = true
				status[name] = err.Error()

				return nil
			}

			status[name] = "ok"

			return nil
		})
	}

	_ = g.Wait()

	if len(checks) == 0 {
		failed = true
		status["storage"] = "not initialized"
	}

	if failed {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "components": status})

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "components": status})
}
