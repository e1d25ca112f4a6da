// Package jobs 定义定时任务：过期分享清理与回收站保留期清理.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/projecthub/pkg/configs"
	ctxPkg "github.com/yeisme/projecthub/pkg/context"
	"github.com/yeisme/projecthub/pkg/internal/service"
	"github.com/yeisme/projecthub/pkg/internal/storage"
	nlog "github.com/yeisme/projecthub/pkg/log"
	"github.com/yeisme/projecthub/pkg/scheduler"
)

// 任务名称.
const (
	NameShareSweep  = "share.sweep"
	NameRetentionGC = "files.retention_gc"
)

const day = 24 * time.Hour

// Register 按保留策略向调度器注册任务.
// deleted_file_days 为 0 时不注册回收站清理.
func Register(ctx context.Context, sched *scheduler.Scheduler, mgr *storage.Manager, cfg *configs.RetentionConfig) error {
	ctx = ctxPkg.WithStorageManager(ctx, mgr)

	if cfg.ShareSweepCron != "" {
		olderThan := time.Duration(cfg.ExpiredShareDays) * day
		if err := sched.AddCron(ctx, NameShareSweep, cfg.ShareSweepCron, func(ctx context.Context) error {
			return ShareSweep(ctx, olderThan)
		}); err != nil {
			return fmt.Errorf("register %s: %w", NameShareSweep, err)
		}
	}

	if cfg.GCCron != "" && cfg.DeletedFileDays > 0 {
		keep := time.Duration(cfg.DeletedFileDays) * day
		if err := sched.AddCron(ctx, NameRetentionGC, cfg.GCCron, func(ctx context.Context) error {
			return RetentionGC(ctx, keep)
		}); err != nil {
			return fmt.Errorf("register %s: %w", NameRetentionGC, err)
		}
	}

	return nil
}

// ShareSweep 清除过期授权的缓存并软删除过期超过 olderThan 的授权.
func ShareSweep(ctx context.Context, olderThan time.Duration) error {
	l := nlog.Component("jobs")

	evicted, swept, err := service.NewShareService(ctx).Sweep(ctx, olderThan)
	if err != nil {
		l.Error().Err(err).Str("job", NameShareSweep).Msg("share sweep failed")

		return err
	}

	l.Info().Str("job", NameShareSweep).Int("cache_evicted", evicted).Int64("grants_removed", swept).Msg("share sweep done")

	return nil
}

// RetentionGC 彻底删除软删除超过 keep 的文件.
func RetentionGC(ctx context.Context, keep time.Duration) error {
	l := nlog.Component("jobs")

	n, err := service.NewFileService(ctx).PurgeDeleted(ctx, time.Now().Add(-keep))
	if err != nil {
		l.Error().Err(err).Str("job", NameRetentionGC).Int("purged", n).Msg("retention gc failed")

		return err
	}

	l.Info().Str("job", NameRetentionGC).Int("purged", n).Msg("retention gc done")

	return nil
}
