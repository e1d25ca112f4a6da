// Package filename 规范化上传文件名并生成客户端文件 ID，服务端与 SDK 共用同一套规则.
package filename

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sanitize 去掉变音符号并把 [A-Za-z0-9._-] 之外的字符替换为 '_'.
// 变音字母按基本字母保留，例如 "Szerződés é.pdf" 得到 "Szerzodes_e.pdf".
func Sanitize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder

	b.Grow(len(stripped))

	for _, r := range stripped {
		if isAllowed(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	return b.String()
}

func isAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	}

	return false
}

// IsSanitized 报告 name 是否只包含允许的字符.
func IsSanitized(name string) bool {
	for _, r := range name {
		if !isAllowed(r) {
			return false
		}
	}

	return true
}
