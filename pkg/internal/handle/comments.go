package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/types"
)

// CreateComment 管理端评论.
//
//	@Summary	新增评论
//	@Tags		评论
//	@Accept		json
//	@Produce	json
//	@Param		projectId	path		string						true	"项目 ID"
//	@Param		body		body		types.CreateCommentRequest	true	"评论"
//	@Success	201			{object}	types.Comment
//	@Failure	400			{object}	types.ErrorResponse
//	@Security	AdminKey
//	@Router		/api/projects/{projectId}/comments [post]
func CreateComment(c *gin.Context) {
	var req types.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	cm, err := service.NewCommentService(ctx).Create(ctx, c.Param("projectId"), &req, true)
	if err != nil {
		writeError(c, err, "create comment failed")

		return
	}

	c.JSON(http.StatusCreated, cm)
}

// ListComments 列出项目评论.
//
//	@Summary	评论列表
//	@Tags		评论
//	@Produce	json
//	@Param		projectId	path		string	true	"项目 ID"
//	@Success	200			{object}	types.ListCommentsResponse
//	@Security	AdminKey
//	@Router		/api/projects/{projectId}/comments [get]
func ListComments(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := service.NewCommentService(ctx).List(ctx, c.Param("projectId"))
	if err != nil {
		writeError(c, err, "list comments failed")

		return
	}

	c.JSON(http.StatusOK, types.ListCommentsResponse{Comments: list})
}
