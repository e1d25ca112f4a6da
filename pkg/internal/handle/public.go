package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/types"
	"github.com/yeisme/projecthub/pkg/middleware"
)

// PublicGetProject 通过分享令牌查看项目.
//
//	@Summary		公共访问：项目
//	@Description	id 为分享令牌（sh_ 前缀）或项目 ID；PIN 通过 Authorization: Bearer 传递
//	@Tags			公共访问
//	@Produce		json
//	@Param			id	path		string	true	"分享令牌或项目 ID"
//	@Success		200	{object}	types.Project
//	@Failure		401	{object}	types.ErrorResponse
//	@Failure		410	{object}	types.ErrorResponse
//	@Security		PublicKey
//	@Security		SharePIN
//	@Router			/api/public/projects/{id} [get]
func PublicGetProject(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := service.NewPublicService(ctx).GetProject(ctx, c.Param("id"), middleware.GetSharePIN(c))
	if err != nil {
		writeError(c, err, "public get project failed")

		return
	}

	c.JSON(http.StatusOK, p)
}

// PublicListDocuments 列出项目文档.
//
//	@Summary	公共访问：文档列表
//	@Tags		公共访问
//	@Produce	json
//	@Param		id	path		string	true	"项目 ID"
//	@Success	200	{object}	types.ListDocumentsResponse
//	@Failure	401	{object}	types.ErrorResponse
//	@Failure	410	{object}	types.ErrorResponse
//	@Security	PublicKey
//	@Router		/api/public/projects/{id}/documents [get]
func PublicListDocuments(c *gin.Context) {
	ctx := c.Request.Context()

	docs, err := service.NewPublicService(ctx).ListDocuments(ctx, c.Param("id"), middleware.GetSharePIN(c))
	if err != nil {
		writeError(c, err, "public list documents failed")

		return
	}

	c.JSON(http.StatusOK, types.ListDocumentsResponse{Documents: docs})
}

// PublicUploadFile 客户上传文件.
//
//	@Summary	公共访问：上传文件
//	@Tags		公共访问
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"项目 ID"
//	@Param		body	body		types.UploadFileRequest	true	"文件"
//	@Success	200		{object}	types.UploadResponse
//	@Failure	401		{object}	types.ErrorResponse
//	@Security	PublicKey
//	@Router		/api/public/projects/{id}/files [post]
func PublicUploadFile(c *gin.Context) {
	var req types.UploadFileRequest
	if !bindJSON(c, &req) {
		observeUpload(uploadRoutePublic, service.ErrInvalidArgument)

		return
	}

	ctx := c.Request.Context()

	rec, err := service.NewPublicService(ctx).UploadFile(ctx, c.Param("id"), &req, middleware.GetSharePIN(c))
	observeUpload(uploadRoutePublic, err)

	if err != nil {
		writeError(c, err, "public upload failed")

		return
	}

	c.JSON(http.StatusOK, types.UploadResponse{
		Kind: types.UploadKindURL,
		URL:  rec.StorageURL,
		Key:  rec.StorageKey,
		File: rec,
	})
}

// PublicListComments 列出项目评论.
//
//	@Summary	公共访问：评论列表
//	@Tags		公共访问
//	@Produce	json
//	@Param		id	path		string	true	"项目 ID"
//	@Success	200	{object}	types.ListCommentsResponse
//	@Security	PublicKey
//	@Router		/api/public/projects/{id}/comments [get]
func PublicListComments(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := service.NewPublicService(ctx).ListComments(ctx, c.Param("id"), middleware.GetSharePIN(c))
	if err != nil {
		writeError(c, err, "public list comments failed")

		return
	}

	c.JSON(http.StatusOK, types.ListCommentsResponse{Comments: list})
}

// PublicCreateComment 客户评论.
//
//	@Summary	公共访问：新增评论
//	@Tags		公共访问
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"项目 ID"
//	@Param		body	body		types.CreateCommentRequest	true	"评论"
//	@Success	201		{object}	types.Comment
//	@Security	PublicKey
//	@Router		/api/public/projects/{id}/comments [post]
func PublicCreateComment(c *gin.Context) {
	var req types.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	cm, err := service.NewPublicService(ctx).CreateComment(ctx, c.Param("id"), &req, middleware.GetSharePIN(c))
	if err != nil {
		writeError(c, err, "public create comment failed")

		return
	}

	c.JSON(http.StatusCreated, cm)
}

// PublicUpdateDocumentStatus 客户更新文档审批状态.
//
//	@Summary	公共访问：审批文档
//	@Tags		公共访问
//	@Accept		json
//	@Produce	json
//	@Param		documentId	path		string							true	"文档 ID"
//	@Param		body		body		types.UpdateClientStatusRequest	true	"审批结果"
//	@Success	200			{object}	types.Document
//	@Failure	400			{object}	types.ErrorResponse
//	@Failure	401			{object}	types.ErrorResponse
//	@Failure	410			{object}	types.ErrorResponse
//	@Security	PublicKey
//	@Router		/api/public/documents/{documentId}/client-status [put]
func PublicUpdateDocumentStatus(c *gin.Context) {
	var req types.UpdateClientStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	d, err := service.NewPublicService(ctx).UpdateDocumentStatus(ctx, c.Param("documentId"), &req, middleware.GetSharePIN(c))
	if err != nil {
		writeError(c, err, "public update document status failed")

		return
	}

	c.JSON(http.StatusOK, d)
}

// PublicDocumentGate 在 PDF 响应缓存之前校验分享授权，未通过时中止请求.
func PublicDocumentGate(c *gin.Context) {
	ctx := c.Request.Context()

	if err := service.NewPublicService(ctx).AuthorizeDocument(ctx, c.Param("documentId"), middleware.GetSharePIN(c)); err != nil {
		writeError(c, err, "public document gate failed")
		c.Abort()

		return
	}

	c.Next()
}

// PublicDocumentPDF 下载文档 PDF.
//
//	@Summary	公共访问：下载 PDF
//	@Tags		公共访问
//	@Produce	application/pdf
//	@Param		documentId	path	string	true	"文档 ID"
//	@Success	200
//	@Failure	401	{object}	types.ErrorResponse
//	@Failure	410	{object}	types.ErrorResponse
//	@Security	PublicKey
//	@Router		/api/public/documents/{documentId}/pdf [get]
func PublicDocumentPDF(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("documentId")

	rc, size, err := service.NewPublicService(ctx).OpenDocumentPDF(ctx, id, middleware.GetSharePIN(c))
	if err != nil {
		writeError(c, err, "public download pdf failed")

		return
	}
	defer rc.Close()

	streamBody(c, rc, size, "application/pdf", map[string]string{
		"Content-Disposition": `inline; filename="` + id + `.pdf"`,
		"Cache-Control":       "private, max-age=300",
	})
}
