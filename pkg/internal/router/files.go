package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件上传、列表、回收站与内容路由.
func RegisterFilesRoutes(g *gin.RouterGroup) {
	projectFiles := g.Group("/projects/:projectId")
	{
		projectFiles.GET("/files", handle.ListFiles)
		projectFiles.POST("/files", handle.UploadProjectFile)
		projectFiles.DELETE("/files/:fileId", handle.DeleteFile)
		projectFiles.GET("/trash", handle.ListTrash)
		projectFiles.POST("/trash/:fileId/restore", handle.RestoreFile)
	}

	files := g.Group("/files")
	{
		files.POST("/upload", handle.UploadFile)
		files.GET("/:fileId/content", handle.FileContent)
	}
}
