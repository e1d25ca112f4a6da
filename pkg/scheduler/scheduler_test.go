package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/scheduler"
)

// 每年一次，测试期间不会自然触发.
const yearly = "0 0 1 1 *"

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()

	s, err := scheduler.NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

func TestAddCronRejectsDuplicateName(t *testing.T) {
	s := newScheduler(t)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.AddCron(context.Background(), "a", yearly, noop))
	assert.Error(t, s.AddCron(context.Background(), "a", yearly, noop))
	assert.Error(t, s.AddCron(context.Background(), "b", "not a cron", noop))
}

func TestRunNowRecordsResult(t *testing.T) {
	s := newScheduler(t)

	var calls atomic.Int32

	require.NoError(t, s.AddCron(context.Background(), "ok", yearly, func(context.Context) error {
		calls.Add(1)

		return nil
	}))
	require.NoError(t, s.AddCron(context.Background(), "broken", yearly, func(context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, s.AddCron(context.Background(), "panics", yearly, func(context.Context) error {
		panic("bad")
	}))

	s.Start()

	for _, name := range []string{"ok", "broken", "panics"} {
		require.NoError(t, s.RunNow(name))
	}

	require.Eventually(t, func() bool {
		for _, info := range s.GetJobInfos() {
			if info.Runs != 1 {
				return false
			}
		}

		return true
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, int32(1), calls.Load())

	ok, err := s.GetJobInfoByName("ok")
	require.NoError(t, err)
	assert.Equal(t, scheduler.StatusScheduled, ok.Status)
	assert.False(t, ok.LastSuccess.IsZero())
	assert.False(t, ok.NextRun.IsZero())

	broken, err := s.GetJobInfoByName("broken")
	require.NoError(t, err)
	assert.Equal(t, scheduler.StatusError, broken.Status)
	assert.Equal(t, "boom", broken.Error)
	assert.Equal(t, 1, broken.Failures)

	panicked, err := s.GetJobInfoByName("panics")
	require.NoError(t, err)
	assert.Equal(t, scheduler.StatusError, panicked.Status)
	assert.Contains(t, panicked.Error, "panic")
}

func TestRemoveJob(t *testing.T) {
	s := newScheduler(t)

	require.NoError(t, s.AddCron(context.Background(), "gone", yearly, func(context.Context) error { return nil }))
	require.NoError(t, s.RemoveJob("gone"))

	assert.Empty(t, s.GetJobInfos())
	assert.ErrorIs(t, s.RemoveJob("gone"), scheduler.ErrJobNotFound)
	assert.ErrorIs(t, s.RunNow("gone"), scheduler.ErrJobNotFound)
}
