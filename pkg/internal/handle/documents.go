package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/types"
)

// CreateDocument 创建待客户审批的文档.
//
//	@Summary	创建文档
//	@Tags		文档
//	@Accept		json
//	@Produce	json
//	@Param		projectId	path		string						true	"项目 ID"
//	@Param		body		body		types.CreateDocumentRequest	true	"文档，pdf 为 data URI"
//	@Success	201			{object}	types.Document
//	@Failure	400			{object}	types.ErrorResponse
//	@Failure	415			{object}	types.ErrorResponse
//	@Security	AdminKey
//	@Router		/api/projects/{projectId}/documents [post]
func CreateDocument(c *gin.Context) {
	var req types.CreateDocumentRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	d, err := service.NewDocumentService(ctx).Create(ctx, c.Param("projectId"), &req)
	if err != nil {
		writeError(c, err, "create document failed")

		return
	}

	c.JSON(http.StatusCreated, d)
}

// ListDocuments 列出项目文档.
//
//	@Summary	文档列表
//	@Tags		文档
//	@Produce	json
//	@Param		projectId	path		string	true	"项目 ID"
//	@Success	200			{object}	types.ListDocumentsResponse
//	@Security	AdminKey
//	@Router		/api/projects/{projectId}/documents [get]
func ListDocuments(c *gin.Context) {
	ctx := c.Request.Context()

	docs, err := service.NewDocumentService(ctx).List(ctx, c.Param("projectId"))
	if err != nil {
		writeError(c, err, "list documents failed")

		return
	}

	c.JSON(http.StatusOK, types.ListDocumentsResponse{Documents: docs})
}
