package jobs_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/configs"
	ctxPkg "github.com/yeisme/projecthub/pkg/context"
	"github.com/yeisme/projecthub/pkg/internal/jobs"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/storage"
	"github.com/yeisme/projecthub/pkg/internal/types"
	"github.com/yeisme/projecthub/pkg/scheduler"
)

func newManager(t *testing.T) (*storage.Manager, *configs.AppConfig) {
	t.Helper()

	cfg := configs.Defaults()
	cfg.DB.Type = configs.SQLite
	cfg.DB.Database = filepath.Join(t.TempDir(), "jobs")
	cfg.DB.MaxOpenConns = 1
	cfg.Metrics.DBStats = false
	configs.SetConfig(cfg)

	mgr, err := storage.NewManager(context.Background(), &cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	require.NoError(t, mgr.DB.Migrate(context.Background(), model.All()...))

	return mgr, &cfg
}

func TestRegisterAddsConfiguredJobs(t *testing.T) {
	mgr, cfg := newManager(t)

	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Shutdown() })

	require.NoError(t, jobs.Register(context.Background(), sched, mgr, &cfg.Retention))

	names := map[string]bool{}
	for _, info := range sched.GetJobInfos() {
		names[info.Name] = true
	}

	assert.True(t, names[jobs.NameShareSweep])
	assert.True(t, names[jobs.NameRetentionGC])
}

func TestRegisterSkipsGCWhenRetentionDisabled(t *testing.T) {
	mgr, cfg := newManager(t)
	cfg.Retention.DeletedFileDays = 0

	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Shutdown() })

	require.NoError(t, jobs.Register(context.Background(), sched, mgr, &cfg.Retention))

	_, err = sched.GetJobInfoByName(jobs.NameRetentionGC)
	assert.Error(t, err)
}

func TestRetentionGCPurgesOnlyOldTrash(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := ctxPkg.WithStorageManager(context.Background(), mgr)

	files := service.NewFileService(ctx)

	rec, err := files.Upload(ctx, &types.UploadFileRequest{
		Name: "old.txt", ProjectID: "p", Content: "data:text/plain,old",
	}, model.UploadedByAdmin)
	require.NoError(t, err)
	require.NoError(t, files.Delete(ctx, "p", rec.ID))

	// 把删除时间推到保留期之前
	require.NoError(t, mgr.DB.WithContext(ctx).Unscoped().Model(&model.File{}).
		Where("project_id = ? AND id = ?", "p", rec.ID).
		Update("deleted_at", time.Now().Add(-40*24*time.Hour)).Error)

	require.NoError(t, jobs.RetentionGC(ctx, 30*24*time.Hour))

	trash, err := files.ListTrash(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, trash)
}

func TestShareSweep(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := ctxPkg.WithStorageManager(context.Background(), mgr)

	require.NoError(t, mgr.DB.WithContext(ctx).Create(&model.ShareGrant{
		Token: "sh_old", ProjectID: "p", PIN: "123456", ExpiresAt: time.Now().Add(-200 * 24 * time.Hour),
	}).Error)

	require.NoError(t, jobs.ShareSweep(ctx, 90*24*time.Hour))

	var n int64
	require.NoError(t, mgr.DB.WithContext(ctx).Model(&model.ShareGrant{}).Count(&n).Error)
	assert.Zero(t, n)
}
