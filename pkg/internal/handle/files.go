package handle

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/types"
	"github.com/yeisme/projecthub/pkg/metrics"
	"github.com/yeisme/projecthub/pkg/middleware"
)

// 上传指标的 route 标签.
const (
	uploadRouteProject = "project"
	uploadRouteGeneric = "generic"
	uploadRoutePublic  = "public"
)

func observeUpload(route string, err error) {
	result := metrics.ResultOK

	switch {
	case err == nil:
	case errors.Is(err, service.ErrAccessDenied), errors.Is(err, service.ErrGrantExpired):
		result = metrics.ResultDenied
	default:
		result = metrics.ResultError
	}

	metrics.UploadsTotal.WithLabelValues(route, result).Inc()
}

// UploadProjectFile 上传项目文件，返回项目当前文件列表.
//
//	@Summary		上传项目文件
//	@Description	content 为 data URI；只带 storageKey/storageUrl 时仅登记元数据
//	@Tags			文件
//	@Accept			json
//	@Produce		json
//	@Param			projectId	path		string					true	"项目 ID"
//	@Param			body		body		types.UploadFileRequest	true	"文件"
//	@Success		200			{object}	types.UploadResponse
//	@Failure		400			{object}	types.ErrorResponse
//	@Failure		413			{object}	types.ErrorResponse
//	@Failure		415			{object}	types.ErrorResponse
//	@Security		AdminKey
//	@Router			/api/projects/{projectId}/files [post]
func UploadProjectFile(c *gin.Context) {
	var req types.UploadFileRequest
	if !bindJSON(c, &req) {
		observeUpload(uploadRouteProject, service.ErrInvalidArgument)

		return
	}

	req.ProjectID = c.Param("projectId")

	ctx := c.Request.Context()
	svc := service.NewFileService(ctx)

	_, err := svc.Upload(ctx, &req, middleware.GetRole(c).String())
	observeUpload(uploadRouteProject, err)

	if err != nil {
		writeError(c, err, "upload project file failed")

		return
	}

	files, err := svc.List(ctx, req.ProjectID)
	if err != nil {
		writeError(c, err, "list files after upload failed")

		return
	}

	c.JSON(http.StatusOK, types.UploadResponse{Kind: types.UploadKindFiles, Files: files})
}

// UploadFile 通用上传，返回对象地址.
//
//	@Summary	通用上传
//	@Tags		文件
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.UploadFileRequest	true	"文件"
//	@Success	200		{object}	types.UploadResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	413		{object}	types.ErrorResponse
//	@Security	AdminKey
//	@Router		/api/files/upload [post]
func UploadFile(c *gin.Context) {
	var req types.UploadFileRequest
	if !bindJSON(c, &req) {
		observeUpload(uploadRouteGeneric, service.ErrInvalidArgument)

		return
	}

	ctx := c.Request.Context()

	rec, err := service.NewFileService(ctx).Upload(ctx, &req, middleware.GetRole(c).String())
	observeUpload(uploadRouteGeneric, err)

	if err != nil {
		writeError(c, err, "upload file failed")

		return
	}

	c.JSON(http.StatusOK, types.UploadResponse{
		Kind: types.UploadKindURL,
		URL:  rec.StorageURL,
		Key:  rec.StorageKey,
		File: rec,
	})
}

// ListFiles 列出项目中未删除的文件.
//
//	@Summary	文件列表
//	@Tags		文件
//	@Produce	json
//	@Param		projectId	path		string	true	"项目 ID"
//	@Success	200			{object}	types.ListFilesResponse
//	@Security	AdminKey
//	@Router		/api/projects/{projectId}/files [get]
func ListFiles(c *gin.Context) {
	ctx := c.Request.Context()

	files, err := service.NewFileService(ctx).List(ctx, c.Param("projectId"))
	if err != nil {
		writeError(c, err, "list files failed")

		return
	}

	c.JSON(http.StatusOK, types.ListFilesResponse{Files: files})
}

// DeleteFile 软删除文件.
//
//	@Summary	删除文件
//	@Tags		文件
//	@Param		projectId	path	string	true	"项目 ID"
//	@Param		fileId		path	string	true	"文件 ID"
//	@Success	204
//	@Failure	404	{object}	types.ErrorResponse
//	@Security	AdminKey
//	@Router		/api/projects/{projectId}/files/{fileId} [delete]
func DeleteFile(c *gin.Context) {
	ctx := c.Request.Context()

	if err := service.NewFileService(ctx).Delete(ctx, c.Param("projectId"), c.Param("fileId")); err != nil {
		writeError(c, err, "delete file failed")

		return
	}

	c.Status(http.StatusNoContent)
}

// ListTrash 列出回收站.
//
//	@Summary	回收站
//	@Tags		文件
//	@Produce	json
//	@Param		projectId	path		string	true	"项目 ID"
//	@Success	200			{object}	types.ListFilesResponse
//	@Security	AdminKey
//	@Router		/api/projects/{projectId}/trash [get]
func ListTrash(c *gin.Context) {
	ctx := c.Request.Context()

	files, err := service.NewFileService(ctx).ListTrash(ctx, c.Param("projectId"))
	if err != nil {
		writeError(c, err, "list trash failed")

		return
	}

	c.JSON(http.StatusOK, types.ListFilesResponse{Files: files})
}

// RestoreFile 从回收站恢复文件.
//
//	@Summary	恢复文件
//	@Tags		文件
//	@Produce	json
//	@Param		projectId	path		string	true	"项目 ID"
//	@Param		fileId		path		string	true	"文件 ID"
//	@Success	200			{object}	types.FileRecord
//	@Failure	404			{object}	types.ErrorResponse
//	@Security	AdminKey
//	@Router		/api/projects/{projectId}/trash/{fileId}/restore [post]
func RestoreFile(c *gin.Context) {
	ctx := c.Request.Context()

	rec, err := service.NewFileService(ctx).Restore(ctx, c.Param("projectId"), c.Param("fileId"))
	if err != nil {
		writeError(c, err, "restore file failed")

		return
	}

	c.JSON(http.StatusOK, rec)
}

// FileContent 输出文件内容.
//
//	@Summary	文件内容
//	@Tags		文件
//	@Produce	octet-stream
//	@Param		fileId		path	string	true	"文件 ID"
//	@Param		projectId	query	string	false	"项目 ID"
//	@Success	200
//	@Failure	404	{object}	types.ErrorResponse
//	@Security	AdminKey
//	@Router		/api/files/{fileId}/content [get]
func FileContent(c *gin.Context) {
	ctx := c.Request.Context()

	rc, rec, err := service.NewFileService(ctx).OpenContent(ctx, c.Query("projectId"), c.Param("fileId"))
	if err != nil {
		writeError(c, err, "open file content failed")

		return
	}
	defer rc.Close()

	streamBody(c, rc, rec.Size, rec.MimeType, map[string]string{
		"Content-Disposition": `inline; filename="` + rec.Name + `"`,
	})
}

// streamBody 输出对象内容，size 未知时不设置 Content-Length.
func streamBody(c *gin.Context, r io.Reader, size int64, contentType string, headers map[string]string) {
	if size <= 0 {
		size = -1
	}

	c.DataFromReader(http.StatusOK, size, contentType, r, headers)
}
