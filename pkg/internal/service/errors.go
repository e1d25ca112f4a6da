package service

import (
	"errors"
	"fmt"
)

// 业务错误，handler 通过 errors.Is 映射为 HTTP 状态码.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrAccessDenied     = errors.New("access denied")
	ErrGrantExpired     = errors.New("share grant expired")
	ErrTooLarge         = errors.New("payload too large")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrNotInitialized   = errors.New("storage not initialized")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
