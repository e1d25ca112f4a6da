package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/api"
	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/storage"
	"github.com/yeisme/projecthub/pkg/scheduler"
)

const adminKey = "admin-secret"

func newEngine(t *testing.T, sched *scheduler.Scheduler) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := configs.Defaults()
	cfg.DB.Type = configs.SQLite
	cfg.DB.Database = filepath.Join(t.TempDir(), "api")
	cfg.DB.MaxOpenConns = 1
	cfg.Metrics.DBStats = false
	cfg.RateLimit.Enabled = false
	cfg.Auth.AdminAPIKey = adminKey
	configs.SetConfig(cfg)

	mgr, err := storage.NewManager(context.Background(), &cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	return api.NewEngine(api.Options{Config: &cfg, Storage: mgr, Scheduler: sched})
}

func do(e *gin.Engine, method, path string, admin bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if admin {
		req.Header.Set("X-API-Key", adminKey)
	}

	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	return w
}

func TestHealthReadyReportsEveryComponent(t *testing.T) {
	w := do(newEngine(t, nil), http.MethodGet, "/api/health", false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "ok", body.Status)

	for _, name := range []string{"db", "s3", "mq", "kv"} {
		assert.Equal(t, "ok", body.Components[name], name)
	}
}

func TestSchedulerRoutes(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		w := do(newEngine(t, nil), http.MethodGet, "/api/scheduler/jobs", true)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Shutdown() })

	require.NoError(t, sched.AddCron(context.Background(), "noop", "0 0 1 1 *", func(context.Context) error { return nil }))
	sched.Start()

	e := newEngine(t, sched)

	cases := []struct {
		name   string
		method string
		path   string
		admin  bool
		want   int
	}{
		{"needs admin key", http.MethodGet, "/api/scheduler/jobs", false, http.StatusUnauthorized},
		{"list", http.MethodGet, "/api/scheduler/jobs", true, http.StatusOK},
		{"run", http.MethodPost, "/api/scheduler/jobs/noop/run", true, http.StatusAccepted},
		{"run unknown", http.MethodPost, "/api/scheduler/jobs/nope/run", true, http.StatusNotFound},
		{"remove unknown", http.MethodDelete, "/api/scheduler/jobs/nope", true, http.StatusNotFound},
		{"remove", http.MethodDelete, "/api/scheduler/jobs/noop", true, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(e, tc.method, tc.path, tc.admin)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}
