package s3_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/storage/s3"
)

func newMemory(t *testing.T) s3.ObjectStore {
	t.Helper()

	cfg := configs.Defaults().S3
	cfg.Driver = configs.S3DriverMemory

	store, err := s3.New(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}

	return store
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)
	body := []byte("hello projecthub")

	info, err := store.PutObject(ctx, "projects/p1/a.txt", bytes.NewReader(body), int64(len(body)), s3.PutOptions{ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}

	if info.ETag == "" || info.Size != int64(len(body)) {
		t.Fatalf("unexpected info: %+v", info)
	}

	rc, got, err := store.GetObject(ctx, "projects/p1/a.txt")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if !bytes.Equal(data, body) || got.ContentType != "text/plain" {
		t.Errorf("GetObject returned %q (%s)", data, got.ContentType)
	}

	if err := store.RemoveObject(ctx, "projects/p1/a.txt"); err != nil {
		t.Fatalf("RemoveObject: %v", err)
	}

	if _, _, err := store.GetObject(ctx, "projects/p1/a.txt"); !errors.Is(err, s3.ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestMemoryStoreSizeMismatch(t *testing.T) {
	store := newMemory(t)

	_, err := store.PutObject(context.Background(), "k", bytes.NewReader([]byte("abc")), 10, s3.PutOptions{})
	if err == nil {
		t.Fatal("expected size mismatch error")
	}
}

func TestMemoryStoreObjectURL(t *testing.T) {
	store := newMemory(t)

	want := "https://projecthub-files.s3.us-east-1.amazonaws.com/projects/p1/x.pdf"
	if got := store.ObjectURL("projects/p1/x.pdf"); got != want {
		t.Errorf("ObjectURL = %q, want %q", got, want)
	}
}

func TestUnknownDriver(t *testing.T) {
	cfg := configs.Defaults().S3
	cfg.Driver = "ftp"

	if _, err := s3.New(context.Background(), &cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
