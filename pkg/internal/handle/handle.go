// Package handle 提供 HTTP 请求处理器，负责参数绑定、调用 service 并映射错误码.
package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/types"
	"github.com/yeisme/projecthub/pkg/log"
	"github.com/yeisme/projecthub/pkg/rule"
)

// 错误码，与 HTTP 状态一同返回.
const (
	CodeInvalidArgument  = "invalid_argument"
	CodeNotFound         = "not_found"
	CodeAccessDenied     = "access_denied"
	CodeGrantExpired     = "grant_expired"
	CodeTooLarge         = "payload_too_large"
	CodeUnsupportedMedia = "unsupported_media_type"
	CodeUnavailable      = "unavailable"
	CodeInternal         = "internal"
)

func logger(c *gin.Context) zerolog.Logger {
	return log.Component("handle").With().
		Str("method", c.Request.Method).
		Str("route", c.FullPath()).
		Logger()
}

// bindJSON 绑定并按 rule 标签校验请求体，失败时直接写 400.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		err = rule.ValidateStruct(obj)
	}

	if err == nil {
		return true
	}

	resp := gin.H{"error": err.Error(), "code": CodeInvalidArgument}
	if fields := rule.Errors(err); fields != nil {
		resp["fields"] = fields
	}

	c.JSON(http.StatusBadRequest, resp)

	return false
}

// statusOf 将 service 错误映射为 HTTP 状态与错误码.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, CodeInvalidArgument
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, service.ErrGrantExpired):
		return http.StatusGone, CodeGrantExpired
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusUnauthorized, CodeAccessDenied
	case errors.Is(err, service.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, CodeTooLarge
	case errors.Is(err, service.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, CodeUnsupportedMedia
	case errors.Is(err, service.ErrNotInitialized):
		return http.StatusServiceUnavailable, CodeUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// writeError 写错误响应；5xx 记 Error，其余记 Warn.
// 访问被拒与过期只返回固定文案，避免泄露令牌是否存在.
func writeError(c *gin.Context, err error, msg string) {
	status, code := statusOf(err)
	l := logger(c)

	text := err.Error()

	switch code {
	case CodeAccessDenied:
		text = "access denied"
	case CodeGrantExpired:
		text = "share link expired"
	}

	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Msg(msg)

		if code == CodeInternal {
			text = "internal error"
		}
	} else {
		l.Warn().Err(err).Msg(msg)
	}

	c.JSON(status, types.ErrorResponse{Error: text, Code: code})
}
