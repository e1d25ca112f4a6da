package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/internal/handle"
)

// RegisterProjectRoutes 注册项目、文档与评论路由.
func RegisterProjectRoutes(g *gin.RouterGroup) {
	g.POST("/projects", handle.CreateProject)

	project := g.Group("/projects/:projectId")
	{
		project.GET("", handle.GetProject)
		project.POST("/documents", handle.CreateDocument)
		project.GET("/documents", handle.ListDocuments)
		project.POST("/comments", handle.CreateComment)
		project.GET("/comments", handle.ListComments)
	}
}
