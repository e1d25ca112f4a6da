package client_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/api"
	"github.com/yeisme/projecthub/pkg/client"
	"github.com/yeisme/projecthub/pkg/configs"
	ctxPkg "github.com/yeisme/projecthub/pkg/context"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/storage"
)

const (
	adminKey  = "admin-secret"
	publicKey = "public-secret"
)

// testServer 运行完整路由的进程内服务，存储全部使用 sqlite 与内存实现.
type testServer struct {
	URL    string
	Config configs.AppConfig
	Ctx    context.Context // 携带存储管理器，用于直接准备数据
	Client *client.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := configs.Defaults()
	cfg.DB.Type = configs.SQLite
	cfg.DB.Database = filepath.Join(t.TempDir(), "projecthub")
	cfg.DB.MaxOpenConns = 1
	cfg.Metrics.DBStats = false
	cfg.RateLimit.Enabled = false
	cfg.Auth.AdminAPIKey = adminKey
	cfg.Auth.PublicAPIKey = publicKey
	cfg.Share.PublicBaseURL = "https://portal.example.com"
	configs.SetConfig(cfg)

	ctx := context.Background()

	mgr, err := storage.NewManager(ctx, &cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	require.NoError(t, mgr.DB.Migrate(ctx, model.All()...))

	srv := httptest.NewServer(api.NewEngine(api.Options{Config: &cfg, Storage: mgr}))
	t.Cleanup(srv.Close)

	c, err := client.New(client.Config{
		BaseURL:            srv.URL,
		AdminAPIKey:        adminKey,
		PublicAPIKey:       publicKey,
		Bucket:             cfg.S3.BucketName,
		Region:             cfg.S3.Region,
		PreviewSettleDelay: -1,
	})
	require.NoError(t, err)

	return &testServer{
		URL:    srv.URL,
		Config: cfg,
		Ctx:    ctxPkg.WithStorageManager(ctx, mgr),
		Client: c,
	}
}

// newOfflineClient 创建不会被请求的客户端，用于纯函数测试.
func newOfflineClient(t *testing.T, cfg client.Config) *client.Client {
	t.Helper()

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:0"
	}

	c, err := client.New(cfg)
	require.NoError(t, err)

	return c
}
