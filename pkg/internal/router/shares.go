package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/internal/handle"
)

// RegisterShareRoutes 注册分享链接路由.
func RegisterShareRoutes(g *gin.RouterGroup) {
	g.POST("/projects/:projectId/share", handle.IssueShare)
	g.GET("/projects/:projectId/share", handle.GetActiveShare)
}
