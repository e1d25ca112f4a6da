package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Role 表示请求方的角色，数值越大权限越高.
type Role int

const (
	RoleAnonymous Role = iota
	RoleClient
	RoleAdmin
)

// String 返回角色的字符串表示，与文件记录的 uploadedBy 取值一致.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleClient:
		return "Client"
	default:
		return "Anonymous"
	}
}

type roleKey struct{}

func setRole(c *gin.Context, r Role) {
	c.Set("role", r)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), roleKey{}, r))
}

// GetRole 从 gin.Context 获取当前请求角色.
func GetRole(c *gin.Context) Role {
	if v, ok := c.Get("role"); ok {
		if r, ok2 := v.(Role); ok2 {
			return r
		}
	}

	return RoleFromContext(c.Request.Context())
}

// RoleFromContext 从 request context 获取角色，供 service 使用.
func RoleFromContext(ctx context.Context) Role {
	if r, ok := ctx.Value(roleKey{}).(Role); ok {
		return r
	}

	return RoleAnonymous
}

// RequireMinRole 要求最小角色，不满足则返回 403.
func RequireMinRole(minRole Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) < minRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role", "code": "forbidden"})

			return
		}

		c.Next()
	}
}
