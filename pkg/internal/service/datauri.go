package service

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// decodeContent 解析 data URI（data:[<mime>][;base64],<data>），不带 data: 前缀时按 base64 解码.
// 返回内容与 URI 中声明的 MIME.
func decodeContent(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		b, err := decodeBase64(s)
		if err != nil {
			return nil, "", invalidf("content is neither a data URI nor base64")
		}

		return b, "", nil
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", invalidf("malformed data URI")
	}

	params := strings.Split(meta, ";")
	mimeType := strings.TrimSpace(params[0])
	isBase64 := false

	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	if isBase64 {
		b, err := decodeBase64(payload)
		if err != nil {
			return nil, "", invalidf("data URI payload is not valid base64")
		}

		return b, mimeType, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", invalidf("data URI payload is not valid percent-encoding")
	}

	return []byte(text), mimeType, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	b, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return b, nil
	}

	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// encodedLen 估算 data URI 解码后的字节数，用于在解码前拒绝超限内容.
func encodedLen(s string) int64 {
	if _, payload, ok := strings.Cut(s, ","); ok && strings.HasPrefix(s, "data:") {
		s = payload
	}

	return int64(base64.StdEncoding.DecodedLen(len(s)))
}
