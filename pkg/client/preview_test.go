package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/client"
)

func TestPreviewKind(t *testing.T) {
	gw := newOfflineClient(t, client.Config{PreviewSettleDelay: -1}).Gateway()

	cases := []struct {
		mime string
		want client.PreviewKind
	}{
		{"image/png", client.PreviewImage},
		{"IMAGE/JPEG", client.PreviewImage},
		{"application/pdf", client.PreviewPDF},
		{"application/msword", client.PreviewDownload},
		{"", client.PreviewDownload},
	}

	for _, tc := range cases {
		p := client.NewPreview(gw, client.FileRecord{MimeType: tc.mime, StorageURL: "https://x/f"})
		if got := p.Kind(); got != tc.want {
			t.Errorf("Kind(%q) = %s, want %s", tc.mime, got, tc.want)
		}
	}
}

func TestPreviewLoadErrorForcesDownload(t *testing.T) {
	gw := newOfflineClient(t, client.Config{PreviewSettleDelay: -1}).Gateway()
	p := client.NewPreview(gw, client.FileRecord{MimeType: "image/png", StorageURL: "https://x/broken.png"})

	assert.True(t, p.Loading())
	require.NoError(t, p.Load(context.Background()))
	assert.False(t, p.Loading())
	assert.Equal(t, client.PreviewImage, p.Kind())

	p.MarkLoadError()
	assert.Equal(t, client.PreviewDownload, p.Kind())
	assert.Equal(t, "https://x/broken.png", p.DownloadURL())
}

func TestPreviewLoadWaitsAndHonoursCancel(t *testing.T) {
	gw := newOfflineClient(t, client.Config{PreviewSettleDelay: 50 * time.Millisecond}).Gateway()
	rec := client.FileRecord{MimeType: "application/pdf", StorageKey: "k.pdf"}

	p := client.NewPreview(gw, rec)
	start := time.Now()
	require.NoError(t, p.Load(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p2 := client.NewPreview(gw, rec)
	assert.ErrorIs(t, p2.Load(ctx), context.Canceled)
	assert.True(t, p2.Loading())
}

func TestPreviewDownloadURLUsesResolvedURL(t *testing.T) {
	gw := newOfflineClient(t, client.Config{Bucket: "b", Region: "us-east-1", PreviewSettleDelay: -1}).Gateway()
	rec := client.FileRecord{MimeType: "application/zip", StorageKey: "uploads/a.zip"}

	p := client.NewPreview(gw, rec)

	assert.Equal(t, gw.ResolveDisplayURL(rec), p.DownloadURL())
	assert.Equal(t, "https://b.s3.us-east-1.amazonaws.com/uploads/a.zip", p.DownloadURL())
}
