package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/storage"
)

func TestInitUsesGlobalConfigOnce(t *testing.T) {
	cfg := configs.Defaults()
	cfg.DB.Type = configs.SQLite
	cfg.DB.Database = filepath.Join(t.TempDir(), "storage")
	cfg.DB.MaxOpenConns = 1
	cfg.Metrics.DBStats = false
	configs.SetConfig(cfg)

	ctx := context.Background()

	mgr, err := storage.Init(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	again, err := storage.Init(ctx)
	require.NoError(t, err)
	assert.Same(t, mgr, again)

	require.NotNil(t, mgr.GetDBClient())
	require.NotNil(t, mgr.GetKVClient())
	require.NotNil(t, mgr.GetMQClient())
	require.NotNil(t, mgr.GetS3Client())

	assert.NoError(t, mgr.GetDBClient().HealthCheck(ctx))
	assert.Equal(t, cfg.MQ.Type, mgr.GetMQClient().Type())
}
