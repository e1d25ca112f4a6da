package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/projecthub/pkg/cache"
	"github.com/yeisme/projecthub/pkg/internal/storage/kv"
)

type grant struct {
	Token     string    `json:"token"`
	ProjectID string    `json:"projectId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newStore(t *testing.T) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("new memory kv: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestCacheSetGetWithNamespace(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	c := cache.NewCache(store, "share.v1")

	want := grant{Token: "sh_01", ProjectID: "proj-1", ExpiresAt: time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := cache.Set(ctx, c, want.Token, want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	if ok, _ := store.Exists(ctx, "share.v1.sh_01"); !ok {
		t.Fatal("expected namespaced key in the underlying store")
	}

	got, err := cache.Get[grant](ctx, c, want.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.ProjectID != want.ProjectID || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCacheMissIsNotFound(t *testing.T) {
	c := cache.NewCache(newStore(t), "share.v1")

	_, err := cache.Get[grant](context.Background(), c, "missing")
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected kv.ErrNotFound, got %v", err)
	}

	if err := c.Delete(context.Background(), "missing"); err != nil {
		t.Errorf("deleting a missing key should be a no-op, got %v", err)
	}
}

func TestGetOrSet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newStore(t), "")

	calls := 0
	getter := func() (int, error) {
		calls++

		return 42, nil
	}

	for range 3 {
		v, err := cache.GetOrSet(ctx, c, "answer", getter, time.Minute)
		if err != nil || v != 42 {
			t.Fatalf("GetOrSet = %d, %v", v, err)
		}
	}

	if calls != 1 {
		t.Errorf("getter called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := cache.GetOrSet(ctx, c, "other", func() (int, error) { return 0, boom }, time.Minute); !errors.Is(err, boom) {
		t.Errorf("expected getter error, got %v", err)
	}
}

func TestKeysAndClearStayInNamespace(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	shares := cache.NewCache(store, "share.v1")
	other := cache.NewCache(store, "rc")

	for _, k := range []string{"a", "b"} {
		if err := cache.Set(ctx, shares, k, k, 0); err != nil {
			t.Fatal(err)
		}
	}

	if err := cache.Set(ctx, other, "x", "x", 0); err != nil {
		t.Fatal(err)
	}

	keys, err := shares.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(keys) != 2 {
		t.Fatalf("keys = %v, want 2 entries", keys)
	}

	if err := shares.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	if ok, _ := other.Exists(ctx, "x"); !ok {
		t.Error("Clear removed a key outside its namespace")
	}
}
