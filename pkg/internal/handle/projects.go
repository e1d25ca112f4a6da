package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/types"
)

// CreateProject 创建项目.
//
//	@Summary	创建项目
//	@Tags		项目
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.CreateProjectRequest	true	"项目"
//	@Success	201		{object}	types.Project
//	@Failure	400		{object}	types.ErrorResponse
//	@Security	AdminKey
//	@Router		/api/projects [post]
func CreateProject(c *gin.Context) {
	var req types.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	p, err := service.NewProjectService(ctx).Create(ctx, &req)
	if err != nil {
		writeError(c, err, "create project failed")

		return
	}

	c.JSON(http.StatusCreated, p)
}

// GetProject 查询项目.
//
//	@Summary	项目详情
//	@Tags		项目
//	@Produce	json
//	@Param		projectId	path		string	true	"项目 ID"
//	@Success	200			{object}	types.Project
//	@Failure	404			{object}	types.ErrorResponse
//	@Security	AdminKey
//	@Router		/api/projects/{projectId} [get]
func GetProject(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := service.NewProjectService(ctx).Get(ctx, c.Param("projectId"))
	if err != nil {
		writeError(c, err, "get project failed")

		return
	}

	c.JSON(http.StatusOK, p)
}
