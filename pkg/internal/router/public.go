package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/internal/handle"
)

// RegisterPublicRoutes 注册公共访问路由，调用方负责挂载 API Key 与 PIN 校验.
// PDF 下载先校验授权再查响应缓存.
func RegisterPublicRoutes(g *gin.RouterGroup, pdfCache gin.HandlerFunc) {
	projects := g.Group("/projects/:id")
	{
		projects.GET("", handle.PublicGetProject)
		projects.GET("/documents", handle.PublicListDocuments)
		projects.POST("/files", handle.PublicUploadFile)
		projects.GET("/comments", handle.PublicListComments)
		projects.POST("/comments", handle.PublicCreateComment)
	}

	documents := g.Group("/documents/:documentId")
	{
		documents.PUT("/client-status", handle.PublicUpdateDocumentStatus)
		documents.GET("/pdf", handle.PublicDocumentGate, pdfCache, handle.PublicDocumentPDF)
	}
}
