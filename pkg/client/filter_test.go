package client_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yeisme/projecthub/pkg/client"
)

func sampleFiles() []client.FileRecord {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	return []client.FileRecord{
		{ID: "1", Name: "Floor plan.png", MimeType: "image/png", Size: 300, UploadedAt: base},
		{ID: "2", Name: "offer.pdf", MimeType: "application/pdf", Size: 100, UploadedAt: base.Add(time.Hour)},
		{ID: "3", Name: "budget.xlsx", MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Size: 50, UploadedAt: base.Add(2 * time.Hour)},
		{ID: "4", Name: "site photo.JPG", MimeType: "image/jpeg", Size: 900, UploadedAt: base.Add(3 * time.Hour)},
		{ID: "5", Name: "archive.zip", MimeType: "application/zip", Size: 10, UploadedAt: base.Add(4 * time.Hour)},
		{ID: "6", Name: "readme.txt", MimeType: "text/txt", Size: 5, UploadedAt: base.Add(5 * time.Hour)},
	}
}

func ids(files []client.FileRecord) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.ID)
	}

	return out
}

func TestCategoryOf(t *testing.T) {
	cases := map[string]client.Category{
		"image/png":                     client.CategoryImages,
		"application/pdf":               client.CategoryDocuments,
		"application/msword":            client.CategoryDocuments,
		"application/vnd.ms-powerpoint": client.CategoryDocuments,
		"application/vnd.ms-excel":      client.CategoryDocuments,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": client.CategoryDocuments,
		"application/vnd.oasis.opendocument.presentation":                   client.CategoryDocuments,
		"text/plain":                    client.CategoryDocuments,
		"text/txt":                      client.CategoryDocuments,
		"application/zip":               client.CategoryOther,
		"":                              client.CategoryOther,
	}

	for mime, want := range cases {
		if got := client.CategoryOf(mime); got != want {
			t.Errorf("CategoryOf(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestFilter(t *testing.T) {
	files := sampleFiles()

	cases := []struct {
		name string
		q    client.Query
		want []string
	}{
		{"zero query keeps order", client.Query{}, []string{"1", "2", "3", "4", "5", "6"}},
		{"images only", client.Query{Category: client.CategoryImages}, []string{"1", "4"}},
		{"images with search", client.Query{Category: client.CategoryImages, Search: "PHOTO"}, []string{"4"}},
		{"documents", client.Query{Category: client.CategoryDocuments}, []string{"2", "3", "6"}},
		{"other", client.Query{Category: client.CategoryOther}, []string{"5"}},
		{"search across all", client.Query{Category: client.CategoryAll, Search: "e"}, []string{"2", "3", "4", "5", "6"}},
		{"size asc", client.Query{Sort: client.SortBySize, Order: client.Asc}, []string{"6", "5", "3", "2", "1", "4"}},
		{"size desc", client.Query{Sort: client.SortBySize, Order: client.Desc}, []string{"4", "1", "2", "3", "5", "6"}},
		{"name asc", client.Query{Sort: client.SortByName}, []string{"5", "3", "1", "2", "6", "4"}},
		{"date desc", client.Query{Sort: client.SortByDate, Order: client.Desc}, []string{"6", "5", "4", "3", "2", "1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(client.Filter(files, tc.q)))
		})
	}

	assert.Equal(t, "1", files[0].ID, "Filter must not reorder its input")
}

func TestImagesFilterIsExactlyImageSubset(t *testing.T) {
	files := sampleFiles()

	for _, f := range client.Filter(files, client.Query{Category: client.CategoryImages}) {
		assert.Contains(t, f.MimeType, "image/")
	}

	var want int
	for _, f := range files {
		if len(f.MimeType) > 6 && f.MimeType[:6] == "image/" {
			want++
		}
	}

	assert.Len(t, client.Filter(files, client.Query{Category: client.CategoryImages}), want)
}
