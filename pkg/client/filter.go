package client

import (
	"cmp"
	"slices"
	"strings"
)

// Category 文件分类.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryImages    Category = "images"
	CategoryDocuments Category = "documents"
	CategoryOther     Category = "other"
)

// SortKey 排序字段.
type SortKey string

const (
	SortByName SortKey = "name"
	SortBySize SortKey = "size"
	SortByDate SortKey = "date"
)

// SortOrder 排序方向.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Query 面板视图条件，零值表示全部文件、保持原顺序.
type Query struct {
	Search   string
	Category Category
	Sort     SortKey
	Order    SortOrder
}

// documentMarkers 文档类 MIME 片段；msword、ms-excel、ms-powerpoint 等旧式类型不含扩展名缩写，按族名匹配.
var documentMarkers = []string{
	"pdf", "doc", "xls", "ppt", "txt",
	"word", "excel", "spreadsheet", "powerpoint", "presentation", "text/plain",
}

// CategoryOf 按 MIME 归类.
func CategoryOf(mimeType string) Category {
	m := strings.ToLower(mimeType)

	if strings.HasPrefix(m, "image/") {
		return CategoryImages
	}

	for _, marker := range documentMarkers {
		if strings.Contains(m, marker) {
			return CategoryDocuments
		}
	}

	return CategoryOther
}

// Filter 返回同时满足搜索与分类条件的文件，并按 q 排序；不修改 files.
func Filter(files []FileRecord, q Query) []FileRecord {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]FileRecord, 0, len(files))

	for _, f := range files {
		if search != "" && !strings.Contains(strings.ToLower(f.Name), search) {
			continue
		}

		if q.Category != "" && q.Category != CategoryAll && CategoryOf(f.MimeType) != q.Category {
			continue
		}

		out = append(out, f)
	}

	if q.Sort == "" {
		return out
	}

	compare := func(a, b FileRecord) int {
		switch q.Sort {
		case SortByName:
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case SortBySize:
			return cmp.Compare(a.Size, b.Size)
		default:
			return a.UploadedAt.Compare(b.UploadedAt)
		}
	}

	slices.SortStableFunc(out, func(a, b FileRecord) int {
		if q.Order == Desc {
			return compare(b, a)
		}

		return compare(a, b)
	})

	return out
}
