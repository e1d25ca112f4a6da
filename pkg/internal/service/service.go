// Package service 实现文件、分享、公共访问、文档与评论业务.
// service 从 context 中取出存储客户端（见 pkg/context），handler 与定时任务共用同一套实现.
package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yeisme/projecthub/pkg/configs"
	ctxPkg "github.com/yeisme/projecthub/pkg/context"
	"github.com/yeisme/projecthub/pkg/internal/storage/db"
	"github.com/yeisme/projecthub/pkg/internal/storage/kv"
	"github.com/yeisme/projecthub/pkg/internal/storage/mq"
	"github.com/yeisme/projecthub/pkg/internal/storage/s3"
	nlog "github.com/yeisme/projecthub/pkg/log"
	"github.com/yeisme/projecthub/pkg/queue"
	"github.com/yeisme/projecthub/pkg/tracing"
)

const producerName = "projecthub"

// deps service 共用的依赖.
type deps struct {
	dbc *db.Client
	kvc *kv.Client
	s3c s3.ObjectStore
	mqc *mq.Client
	cfg *configs.AppConfig
}

func depsFrom(ctx context.Context) deps {
	return deps{
		dbc: ctxPkg.GetDBClient(ctx),
		kvc: ctxPkg.GetKVClient(ctx),
		s3c: ctxPkg.GetS3Client(ctx),
		mqc: ctxPkg.GetMQClient(ctx),
		cfg: configs.GetConfig(),
	}
}

// orm 返回绑定 ctx 的 gorm 会话.
func (d *deps) orm(ctx context.Context) (*gorm.DB, error) {
	if d.dbc == nil || d.dbc.GetDB() == nil {
		return nil, ErrNotInitialized
	}

	return d.dbc.GetDB().WithContext(ctx), nil
}

func (d *deps) logger(ctx context.Context, component string) zerolog.Logger {
	return ctxPkg.WithTraceContext(ctx, nlog.Component(component))
}

// eventOpts 为事件头附带 trace id 与生产者.
func eventOpts(ctx context.Context) []queue.HeaderOption {
	opts := []queue.HeaderOption{queue.WithProducer(producerName)}

	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, queue.WithTraceID(sc.TraceID().String()))
	}

	return opts
}

// publish 发布事件；MQ 未初始化或发布失败只记录日志.
func (d *deps) publish(ctx context.Context, enabled bool, topic string, fn func(queue.Publisher) error) {
	if !enabled || !d.cfg.Events.Enabled || d.mqc == nil {
		return
	}

	if err := fn(d.mqc); err != nil {
		l := d.logger(ctx, "events")
		l.Warn().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracing.StartSpan(ctx, name, trace.WithAttributes(attrs...))
}
