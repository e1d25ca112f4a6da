package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yeisme/projecthub/pkg/configs"
)

const (
	// HeaderAPIKey 管理端与公共访问端共用的 API Key 请求头.
	HeaderAPIKey = "X-API-Key"

	pinKey = "share_pin"
)

// AdminAuthMiddleware 校验管理端 X-API-Key，通过后注入 Admin 角色.
// 配置了 admin_api_key_hash 时按 bcrypt 校验，否则与明文常量时间比较；两者都未配置时拒绝所有请求.
func AdminAuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	verify := newKeyVerifier(conf.AdminAPIKey, conf.AdminAPIKeyHash)

	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			setRole(c, RoleAdmin)
			c.Next()

			return
		}

		if !verify(c.GetHeader(HeaderAPIKey)) {
			abortUnauthorized(c)

			return
		}

		setRole(c, RoleAdmin)
		c.Next()
	}
}

// PublicAuthMiddleware 校验公共访问端 X-API-Key 并提取 Authorization: Bearer {pin}.
// PIN 与分享记录的匹配由 service 完成，这里只保证凭据齐全.
func PublicAuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	verify := newKeyVerifier(conf.PublicAPIKey, "")

	return func(c *gin.Context) {
		if conf.Enabled && !verify(c.GetHeader(HeaderAPIKey)) {
			abortUnauthorized(c)

			return
		}

		pin, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)

			return
		}

		c.Set(pinKey, pin)
		setRole(c, RoleClient)
		c.Next()
	}
}

// GetSharePIN 返回公共访问请求携带的 PIN.
func GetSharePIN(c *gin.Context) string {
	return c.GetString(pinKey)
}

// HashAPIKey 生成可写入 auth.admin_api_key_hash 的 bcrypt 哈希.
func HashAPIKey(key string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// newKeyVerifier 返回密钥校验函数；bcrypt 校验成功的密钥按 sha256 摘要记住，避免每个请求都做 bcrypt.
func newKeyVerifier(plain, hash string) func(string) bool {
	var verified sync.Map

	return func(got string) bool {
		if got == "" {
			return false
		}

		if hash != "" {
			sum := sha256.Sum256([]byte(got))
			if _, ok := verified.Load(sum); ok {
				return true
			}

			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(got)) != nil {
				return false
			}

			verified.Store(sum, struct{}{})

			return true
		}

		if plain == "" {
			return false
		}

		return subtle.ConstantTimeCompare([]byte(plain), []byte(got)) == 1
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access denied", "code": "access_denied"})
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
