package service_test

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/configs"
	ctxPkg "github.com/yeisme/projecthub/pkg/context"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/storage"
)

// newTestContext 使用 sqlite 文件库与内存存储创建带存储管理器的 context.
func newTestContext(t *testing.T, tweak ...func(*configs.AppConfig)) (context.Context, *storage.Manager) {
	t.Helper()

	cfg := configs.Defaults()
	cfg.DB.Type = configs.SQLite
	cfg.DB.Database = filepath.Join(t.TempDir(), "projecthub")
	cfg.DB.MaxOpenConns = 1
	cfg.Metrics.DBStats = false
	cfg.Share.PublicBaseURL = "https://portal.example.com"

	for _, f := range tweak {
		f(&cfg)
	}

	configs.SetConfig(cfg)

	ctx := context.Background()

	mgr, err := storage.NewManager(ctx, &cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	require.NoError(t, mgr.DB.Migrate(ctx, model.All()...))

	return ctxPkg.WithStorageManager(ctx, mgr), mgr
}

func dataURI(mime string, b []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b)
}

func base64Std(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
