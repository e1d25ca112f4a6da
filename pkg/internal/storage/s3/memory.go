package s3

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/yeisme/projecthub/pkg/configs"
)

func init() {
	RegisterFactory(configs.S3DriverMemory, func(_ context.Context, cfg *configs.S3Config) (ObjectStore, error) {
		return NewMemory(cfg), nil
	})
}

type memObject struct {
	data []byte
	info ObjectInfo
}

// MemoryStore 进程内对象存储，用于单机开发与测试.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
	cfg     configs.S3Config
}

// NewMemory 创建内存对象存储.
func NewMemory(cfg *configs.S3Config) *MemoryStore {
	return &MemoryStore{objects: map[string]memObject{}, cfg: *cfg}
}

func (s *MemoryStore) PutObject(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) (ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("read object body: %w", err)
	}

	if size >= 0 && int64(len(data)) != size {
		return ObjectInfo{}, fmt.Errorf("size mismatch for %s: declared %d, got %d", key, size, len(data))
	}

	sum := md5.Sum(data)
	info := ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		ETag:         hex.EncodeToString(sum[:]),
		ContentType:  opts.ContentType,
		LastModified: time.Now().UTC(),
	}

	s.mu.Lock()
	s.objects[key] = memObject{data: data, info: info}
	s.mu.Unlock()

	return info, nil
}

func (s *MemoryStore) GetObject(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

func (s *MemoryStore) RemoveObject(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) ObjectURL(key string) string {
	return s.cfg.ObjectURL(key)
}

func (s *MemoryStore) Bucket() string {
	return s.cfg.BucketName
}

func (s *MemoryStore) HealthCheck(context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Len 返回当前对象数量.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}
