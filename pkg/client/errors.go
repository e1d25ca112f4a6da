package client

import (
	"errors"
	"fmt"
	"net/http"
)

// 服务端错误码.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
	CodeAccessDenied    = "access_denied"
	CodeGrantExpired    = "grant_expired"
	CodeUnavailable     = "unavailable"
	CodeInternal        = "internal"
)

var (
	// ErrGrantExpired 分享授权已过期，可用 errors.Is 从 *PublicAccessError 判断.
	ErrGrantExpired = errors.New("client: share grant expired")
	// ErrAccessDenied 凭据错误、令牌或项目不存在.
	ErrAccessDenied = errors.New("client: access denied")
	// ErrNotFound 资源不存在.
	ErrNotFound = errors.New("client: not found")
	// ErrDeleteCancelled 删除未获确认.
	ErrDeleteCancelled = errors.New("client: delete cancelled")
	// ErrProjectIDRequired 需要项目 ID 的操作收到空值.
	ErrProjectIDRequired = errors.New("client: project id is required")
)

// APIError 管理端接口的非 2xx 响应.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("projecthub: %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && (e.Code == CodeNotFound || e.Status == http.StatusNotFound)
}

// StorageUploadError 上传失败，不做重试.
type StorageUploadError struct {
	Status  int
	Message string
}

func (e *StorageUploadError) Error() string {
	return fmt.Sprintf("storage upload failed: status %d: %s", e.Status, e.Message)
}

// PublicAccessError 公共访问端的非 2xx 响应.
// 服务端只区分过期（410 grant_expired），PIN 错误与令牌不存在都是 401 access_denied.
type PublicAccessError struct {
	Status  int
	Code    string
	Message string
}

func (e *PublicAccessError) Error() string {
	return fmt.Sprintf("public access failed: status %d (%s): %s", e.Status, e.Code, e.Message)
}

func (e *PublicAccessError) Is(target error) bool {
	switch target {
	case ErrGrantExpired:
		return e.Code == CodeGrantExpired || e.Status == http.StatusGone
	case ErrAccessDenied:
		return e.Code == CodeAccessDenied || e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Code == CodeNotFound || e.Status == http.StatusNotFound
	}

	return false
}

func publicError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &PublicAccessError{Status: apiErr.Status, Code: apiErr.Code, Message: apiErr.Message}
	}

	return err
}
