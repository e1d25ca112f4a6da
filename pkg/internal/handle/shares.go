package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/types"
)

// IssueShare 为项目签发分享链接与 PIN.
//
//	@Summary		签发分享链接
//	@Description	expiresAt 缺省时使用 share.default_ttl；带 notifyEmail 时写入通知发件箱
//	@Tags			分享
//	@Accept			json
//	@Produce		json
//	@Param			projectId	path		string					true	"项目 ID"
//	@Param			body		body		types.IssueShareRequest	false	"签发参数"
//	@Success		201			{object}	types.ShareGrant
//	@Failure		400			{object}	types.ErrorResponse
//	@Security		AdminKey
//	@Router			/api/projects/{projectId}/share [post]
func IssueShare(c *gin.Context) {
	var req types.IssueShareRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	g, err := service.NewShareService(ctx).Issue(ctx, c.Param("projectId"), &req)
	if err != nil {
		writeError(c, err, "issue share failed")

		return
	}

	c.JSON(http.StatusCreated, g)
}

// GetActiveShare 返回项目最新的未过期分享，没有时返回 204.
//
//	@Summary	当前分享
//	@Tags		分享
//	@Produce	json
//	@Param		projectId	path		string	true	"项目 ID"
//	@Success	200			{object}	types.ShareGrant
//	@Success	204
//	@Security	AdminKey
//	@Router		/api/projects/{projectId}/share [get]
func GetActiveShare(c *gin.Context) {
	ctx := c.Request.Context()

	g, err := service.NewShareService(ctx).FetchActive(ctx, c.Param("projectId"))
	if err != nil {
		writeError(c, err, "fetch active share failed")

		return
	}

	if g == nil {
		c.Status(http.StatusNoContent)

		return
	}

	c.JSON(http.StatusOK, g)
}
