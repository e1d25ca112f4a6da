package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册健康检查路由，不需要认证.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	health := g.Group("/health")
	{
		health.GET("", handle.HealthReady)
		health.GET("/db", handle.HealthDB)
		health.GET("/s3", handle.HealthS3)
		health.GET("/mq", handle.HealthMQ)
	}
}
