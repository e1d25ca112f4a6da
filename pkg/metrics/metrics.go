// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP 与上传、分享、公共访问等业务指标.
//
// Example:
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		return err
//	}
//
//	metrics.UploadsTotal.WithLabelValues("project", metrics.ResultOK).Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/projecthub/pkg/configs"
)

// 结果标签取值.
const (
	ResultOK     = "ok"
	ResultError  = "error"
	ResultDenied = "denied"
	ResultExpire = "expired"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// UploadsTotal 上传次数，route 为 project/generic/public.
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_uploads_total",
			Help: "Total number of file uploads",
		},
		[]string{"route", "result"},
	)

	// UploadBytes 成功写入对象存储的字节数.
	UploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "projecthub_upload_bytes_total",
			Help: "Total bytes written to object storage by uploads",
		},
	)

	// SharesIssued 签发的分享链接数.
	SharesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "projecthub_shares_issued_total",
			Help: "Total number of share grants issued",
		},
	)

	// PublicAccess 公共访问端请求，按操作与结果统计.
	PublicAccess = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_public_access_total",
			Help: "Public access gate requests by operation and result",
		},
		[]string{"operation", "result"},
	)

	// FilesPurged 保留期清理删除的文件数.
	FilesPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "projecthub_files_purged_total",
			Help: "Total number of files purged by retention",
		},
	)

	// JobRuns 定时任务执行次数.
	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_job_runs_total",
			Help: "Total number of scheduled job runs",
		},
		[]string{"job", "result"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()

	initOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	var err error

	initOnce.Do(func() {
		err = registerAll(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			RequestCounter, RequestDuration,
			UploadsTotal, UploadBytes, SharesIssued, PublicAccess, FilesPurged, JobRuns,
		)
	})

	return err
}

func registerAll(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := registry.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// Handler 返回注册表的 HTTP 处理器.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// StartMetricsServer 在给定引擎上挂载指标端点.
func StartMetricsServer(config configs.MetricsConfig, engine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	engine.GET(path, gin.WrapH(Handler()))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
