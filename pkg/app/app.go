// Package app 提供应用程序的初始化、运行与优雅退出.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/projecthub/pkg/api"
	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/jobs"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/notify"
	"github.com/yeisme/projecthub/pkg/internal/storage"
	"github.com/yeisme/projecthub/pkg/log"
	"github.com/yeisme/projecthub/pkg/metrics"
	"github.com/yeisme/projecthub/pkg/scheduler"
	"github.com/yeisme/projecthub/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Engine *gin.Engine
	config *configs.AppConfig

	storage   *storage.Manager
	scheduler *scheduler.Scheduler
	metrics   *http.Server
}

// NewApp 基于已加载的全局配置初始化追踪、指标、存储、消息消费者与定时任务.
func NewApp(ctx context.Context) (*App, error) {
	config := configs.GetConfig()
	log.Init()

	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &App{config: config, storage: manager}

	if config.DB.AutoMigrate {
		if err := manager.DB.Migrate(ctx, model.All()...); err != nil {
			_ = a.close(ctx)

			return nil, err
		}
	}

	notify.NewOutbox(manager.DB.GetDB()).Register(manager.MQ)

	if err := manager.MQ.Start(ctx); err != nil {
		_ = a.close(ctx)

		return nil, fmt.Errorf("start consumers: %w", err)
	}

	if !config.Retention.SchedulerDisabled {
		if a.scheduler, err = scheduler.NewScheduler(); err != nil {
			_ = a.close(ctx)

			return nil, fmt.Errorf("init scheduler: %w", err)
		}

		if err := jobs.Register(ctx, a.scheduler, manager, &config.Retention); err != nil {
			_ = a.close(ctx)

			return nil, err
		}
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	a.Engine = api.NewEngine(api.Options{
		Config:        config,
		Storage:       manager,
		Scheduler:     a.scheduler,
		Observability: true,
	})

	if config.Metrics.Addr == "" {
		_ = metrics.StartMetricsServer(config.Metrics, a.Engine)
	} else if config.Metrics.Enabled {
		a.metrics = newMetricsServer(config.Metrics)
	}

	return a, nil
}

// newMetricsServer 在独立地址上暴露指标，可选挂载 pprof.
func newMetricsServer(cfg configs.MetricsConfig) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	e := gin.New()
	_ = metrics.StartMetricsServer(cfg, e)

	return &http.Server{Addr: cfg.Addr, Handler: e, ReadHeaderTimeout: 5 * time.Second}
}

// Run 启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := log.Component("app")

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	errCh := make(chan error, 2)

	go func() {
		l.Info().Str("addr", srv.Addr).Str("version", configs.AppVersion).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if a.metrics != nil {
		go func() {
			l.Info().Str("addr", a.metrics.Addr).Msg("metrics server listening")

			if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	var runErr error

	select {
	case <-ctx.Done():
		l.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		l.Error().Err(runErr).Msg("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Warn().Err(err).Msg("http server shutdown")
	}

	if a.metrics != nil {
		_ = a.metrics.Shutdown(shutdownCtx)
	}

	return errors.Join(runErr, a.close(shutdownCtx))
}

// close 停止调度器、关闭存储并刷新追踪数据.
func (a *App) close(ctx context.Context) error {
	var errs []error

	if a.scheduler != nil {
		errs = append(errs, a.scheduler.Shutdown())
	}

	if a.storage != nil {
		errs = append(errs, a.storage.Close())
	}

	errs = append(errs, tracing.ShutdownTracer(ctx))

	return errors.Join(errs...)
}
