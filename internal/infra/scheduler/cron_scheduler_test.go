package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestScheduler() *CronScheduler {
	return NewCronScheduler(time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestScheduleRejectsDuplicatesAndBadSpecs(t *testing.T) {
	s := newTestScheduler()
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Schedule("refresh", "@every 30m", noop))
	require.Error(t, s.Schedule("refresh", "@every 1h", noop))
	require.Error(t, s.Schedule("broken", "not a spec", noop))
	require.NoError(t, s.Schedule("five-field", "*/15 * * * *", noop))
	require.NoError(t, s.Schedule("six-field", "0 */15 * * * *", noop))
	require.Len(t, s.Jobs(), 3)
}

func TestScheduledJobFires(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int32
	require.NoError(t, s.Schedule("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return errors.New("logged, not fatal")
	}))
	s.Start()
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestRunNowAppliesTimeout(t *testing.T) {
	s := newTestScheduler()
	err := s.RunNow(context.Background(), "refresh", func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		require.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
		return nil
	})
	require.NoError(t, err)
}
