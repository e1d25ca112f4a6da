// Package scheduler 基于 gocron/v2 封装后台维护任务的调度.
// 每个任务按名称登记，执行结果写回 JobInfo 并计入 projecthub_job_runs_total.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/yeisme/projecthub/pkg/log"
	"github.com/yeisme/projecthub/pkg/metrics"
)

// ErrJobNotFound 任务不存在.
var ErrJobNotFound = errors.New("job not found")

// JobStatus 表示任务的状态类型.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled" // 等待下一次触发
	StatusRunning   JobStatus = "running"   // 正在执行
	StatusError     JobStatus = "error"     // 上一次执行失败
)

// Task 任务函数，返回的错误会记录到任务状态.
type Task func(ctx context.Context) error

// JobInfo 任务快照，供 /api/scheduler/jobs 展示.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CronExpr    string    `json:"cron_expr"`
	NextRun     time.Time `json:"next_run"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	Runs        int       `json:"runs"`
	Failures    int       `json:"failures"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
}

type entry struct {
	job  gocron.Job
	info JobInfo
}

// Scheduler 按名称管理的 cron 调度器.
type Scheduler struct {
	scheduler gocron.Scheduler
	mu        sync.RWMutex
	entries   map[string]*entry
	logger    *zerolog.Logger
}

// NewScheduler 创建调度器，需要调用 Start 后才会触发任务.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler: s,
		entries:   make(map[string]*entry),
		logger:    log.Logger(),
	}, nil
}

// AddCron 注册一个 cron 任务，同名任务只能注册一次.
// 上一次执行未结束时跳过本次触发.
func (s *Scheduler) AddCron(ctx context.Context, name, cronExpr string, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	j, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func(ctx context.Context) { s.run(ctx, name, task) }, ctx),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}

	e := &entry{job: j, info: JobInfo{
		ID:       j.ID().String(),
		Name:     name,
		CronExpr: cronExpr,
		Status:   StatusScheduled,
	}}
	s.entries[name] = e

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("added cron job")

	return nil
}

func (s *Scheduler) run(ctx context.Context, name string, task Task) {
	s.setRunning(name)

	start := time.Now()
	err := safeRun(ctx, task)

	s.mu.Lock()
	if e, ok := s.entries[name]; ok {
		e.info.Runs++
		e.info.LastRun = start

		if err != nil {
			e.info.Failures++
			e.info.Status = StatusError
			e.info.Error = err.Error()
		} else {
			e.info.Status = StatusScheduled
			e.info.Error = ""
			e.info.LastSuccess = time.Now()
		}
	}
	s.mu.Unlock()

	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError

		s.logger.Error().Err(err).Str("job", name).Dur("took", time.Since(start)).Msg("job failed")
	}

	metrics.JobRuns.WithLabelValues(name, result).Inc()
}

func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job: %v", r)
		}
	}()

	return task(ctx)
}

func (s *Scheduler) setRunning(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[name]; ok {
		e.info.Status = StatusRunning
	}
}

// RunNow 立即触发一次指定任务，不影响其 cron 计划.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	return e.job.RunNow()
}

// RemoveJob 按名称移除任务，进程重启后按配置恢复.
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	if err := s.scheduler.RemoveJob(e.job.ID()); err != nil {
		return err
	}

	delete(s.entries, name)
	s.logger.Info().Str("job", name).Msg("removed job")

	return nil
}

// GetJobInfoByName 返回指定任务的快照.
func (s *Scheduler) GetJobInfoByName(name string) (JobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return JobInfo{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	return snapshot(e), nil
}

// GetJobInfos 返回所有任务快照，按名称排序.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, snapshot(e))
	}

	slices.SortFunc(out, func(a, b JobInfo) int { return strings.Compare(a.Name, b.Name) })

	return out
}

func snapshot(e *entry) JobInfo {
	info := e.info
	if next, err := e.job.NextRun(); err == nil {
		info.NextRun = next
	}

	return info
}

// JobsWaitingInQueue 等待执行的任务数.
func (s *Scheduler) JobsWaitingInQueue() int {
	return s.scheduler.JobsWaitingInQueue()
}

// Start 启动调度器.
func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.GetJobInfos())).Msg("starting scheduler")
	s.scheduler.Start()
}

// Shutdown 停止调度器并等待正在执行的任务结束.
func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}
