package service_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/storage/s3"
	"github.com/yeisme/projecthub/pkg/internal/types"
)

func TestUploadSanitizesNameAndStoresObject(t *testing.T) {
	ctx, mgr := newTestContext(t)
	svc := service.NewFileService(ctx)

	content := bytes.Repeat([]byte{0x5a}, 20000)

	rec, err := svc.Upload(ctx, &types.UploadFileRequest{
		Name:      "Tétel #1.docx",
		MimeType:  "application/msword",
		ProjectID: "proj-1",
		Content:   dataURI("application/msword", content),
	}, model.UploadedByAdmin)
	require.NoError(t, err)

	assert.Equal(t, "Tetel__1.docx", rec.Name)
	assert.Equal(t, int64(20000), rec.Size)
	assert.Equal(t, "proj-1", rec.ProjectID)
	assert.Equal(t, "Admin", rec.UploadedBy)
	assert.NotEmpty(t, rec.ID)
	assert.True(t, strings.HasPrefix(rec.StorageKey, "projects/proj-1/"), rec.StorageKey)
	assert.True(t, strings.HasSuffix(rec.StorageKey, "_Tetel__1.docx"), rec.StorageKey)
	assert.NotEmpty(t, rec.StorageURL)

	rc, info, err := mgr.S3.GetObject(ctx, rec.StorageKey)
	require.NoError(t, err)

	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "application/msword", info.ContentType)

	files, err := svc.List(ctx, "proj-1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, rec.ID, files[0].ID)
}

func TestUploadSniffsMimeAndKeepsClientID(t *testing.T) {
	ctx, _ := newTestContext(t)
	svc := service.NewFileService(ctx)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	rec, err := svc.Upload(ctx, &types.UploadFileRequest{
		ID:        "1700000000000-abc123",
		Name:      "logo.png",
		ProjectID: "p",
		Content:   base64Std(png),
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "1700000000000-abc123", rec.ID)
	assert.Equal(t, "image/png", rec.MimeType)
	assert.Equal(t, model.UploadedByAdmin, rec.UploadedBy)
}

func TestUploadGenericRouteUsesUploadsPrefix(t *testing.T) {
	ctx, _ := newTestContext(t)

	rec, err := service.NewFileService(ctx).Upload(ctx, &types.UploadFileRequest{
		Name:    "note.txt",
		Content: "data:text/plain,hello%20world",
	}, model.UploadedByAdmin)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.StorageKey, "uploads/"), rec.StorageKey)
	assert.Equal(t, int64(len("hello world")), rec.Size)
	assert.Equal(t, "text/plain", rec.MimeType)
}

func TestUploadRejections(t *testing.T) {
	ctx, _ := newTestContext(t, func(c *configs.AppConfig) {
		c.Upload.MaxBytes = 16
		c.Upload.AllowedMimePrefixes = []string{"image/", "application/pdf"}
	})
	svc := service.NewFileService(ctx)

	cases := []struct {
		name string
		req  types.UploadFileRequest
		want error
	}{
		{
			name: "too large",
			req:  types.UploadFileRequest{Name: "a.png", MimeType: "image/png", Content: dataURI("image/png", make([]byte, 64))},
			want: service.ErrTooLarge,
		},
		{
			name: "unsupported media",
			req:  types.UploadFileRequest{Name: "a.txt", Content: dataURI("text/plain", []byte("hi"))},
			want: service.ErrUnsupportedMedia,
		},
		{
			name: "no content",
			req:  types.UploadFileRequest{Name: "a.txt"},
			want: service.ErrInvalidArgument,
		},
		{
			name: "bad id",
			req:  types.UploadFileRequest{ID: "../x", Name: "a.png", Content: dataURI("image/png", []byte("x"))},
			want: service.ErrInvalidArgument,
		},
		{
			name: "not base64",
			req:  types.UploadFileRequest{Name: "a.png", Content: "%%%"},
			want: service.ErrInvalidArgument,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, &c.req, model.UploadedByAdmin)
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestUploadReferenceOnly(t *testing.T) {
	ctx, mgr := newTestContext(t)

	rec, err := service.NewFileService(ctx).Upload(ctx, &types.UploadFileRequest{
		Name:       "existing.pdf",
		Size:       42,
		ProjectID:  "p",
		StorageKey: "external/existing.pdf",
	}, model.UploadedByAdmin)
	require.NoError(t, err)

	assert.Equal(t, "external/existing.pdf", rec.StorageKey)
	assert.Equal(t, mgr.S3.ObjectURL("external/existing.pdf"), rec.StorageURL)
	assert.Equal(t, int64(42), rec.Size)
}

func TestSoftDeleteRestoreAndTrash(t *testing.T) {
	ctx, _ := newTestContext(t)
	svc := service.NewFileService(ctx)

	rec, err := svc.Upload(ctx, &types.UploadFileRequest{
		Name: "a.txt", ProjectID: "p", Content: dataURI("text/plain", []byte("a")),
	}, model.UploadedByAdmin)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "p", rec.ID))

	active, err := svc.List(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, active)

	trash, err := svc.ListTrash(ctx, "p")
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.True(t, trash[0].IsDeleted)
	assert.NotNil(t, trash[0].DeletedAt)

	assert.ErrorIs(t, svc.Delete(ctx, "p", rec.ID), service.ErrNotFound)

	restored, err := svc.Restore(ctx, "p", rec.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)

	active, err = svc.List(ctx, "p")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = svc.Restore(ctx, "p", rec.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestOpenContent(t *testing.T) {
	ctx, _ := newTestContext(t)
	svc := service.NewFileService(ctx)

	rec, err := svc.Upload(ctx, &types.UploadFileRequest{
		Name: "a.txt", ProjectID: "p", Content: dataURI("text/plain", []byte("payload")),
	}, model.UploadedByClient)
	require.NoError(t, err)

	rc, got, err := svc.OpenContent(ctx, "", rec.ID)
	require.NoError(t, err)

	b, _ := io.ReadAll(rc)
	_ = rc.Close()

	assert.Equal(t, "payload", string(b))
	assert.Equal(t, model.UploadedByClient, got.UploadedBy)

	_, _, err = svc.OpenContent(ctx, "p", "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestPurgeDeletedRemovesRowsAndObjects(t *testing.T) {
	ctx, mgr := newTestContext(t)
	svc := service.NewFileService(ctx)

	keep, err := svc.Upload(ctx, &types.UploadFileRequest{
		Name: "keep.txt", ProjectID: "p", Content: dataURI("text/plain", []byte("k")),
	}, model.UploadedByAdmin)
	require.NoError(t, err)

	gone, err := svc.Upload(ctx, &types.UploadFileRequest{
		Name: "gone.txt", ProjectID: "p", Content: dataURI("text/plain", []byte("g")),
	}, model.UploadedByAdmin)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "p", gone.ID))

	n, err := svc.PurgeDeleted(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n, "recently deleted files stay in the trash")

	n, err = svc.PurgeDeleted(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	trash, err := svc.ListTrash(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, trash)

	_, _, err = mgr.S3.GetObject(ctx, gone.StorageKey)
	assert.ErrorIs(t, err, s3.ErrObjectNotFound)

	_, _, err = mgr.S3.GetObject(ctx, keep.StorageKey)
	assert.NoError(t, err)
}
