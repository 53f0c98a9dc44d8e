package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is a unit of scheduled work.
type Task func(ctx context.Context) error

// CronScheduler runs named tasks on cron expressions. Specs accept an optional
// leading seconds field and descriptors such as "@every 30m".
type CronScheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.RWMutex
	jobs map[string]cron.EntryID
}

// NewCronScheduler constructs a stopped scheduler; call Start to begin firing.
func NewCronScheduler(timeout time.Duration, logger *slog.Logger) *CronScheduler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		timeout: timeout,
		logger:  logger.With("component", "scheduler.cron"),
		jobs:    make(map[string]cron.EntryID),
	}
}

// Schedule registers task under name. Overlapping runs of one job are skipped.
func (s *CronScheduler) Schedule(name, spec string, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already scheduled", name)
	}
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		s.run(name, task)
	}))
	entryID, err := s.cron.AddJob(spec, job)
	if err != nil {
		return fmt.Errorf("schedule job %q: %w", name, err)
	}
	s.jobs[name] = entryID
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// RunNow executes task synchronously, outside the cron cadence.
func (s *CronScheduler) RunNow(ctx context.Context, name string, task Task) error {
	taskCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.logger.Info("job triggered", "job", name)
	return task(taskCtx)
}

// Start begins firing scheduled jobs.
func (s *CronScheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron scheduler started", "jobs", len(s.Jobs()))
}

// Stop halts the scheduler and waits for running jobs to finish or ctx to expire.
func (s *CronScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("cron scheduler stop timed out")
	}
	s.logger.Info("cron scheduler stopped")
}

// Jobs lists registered job names with their next activation.
func (s *CronScheduler) Jobs() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]time.Time, len(s.jobs))
	for name, id := range s.jobs {
		out[name] = s.cron.Entry(id).Next
	}
	return out
}

func (s *CronScheduler) run(name string, task Task) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := task(ctx); err != nil {
		s.logger.Error("job failed", "job", name, "elapsed", time.Since(start), "error", err)
		return
	}
	s.logger.Info("job completed", "job", name, "elapsed", time.Since(start))
}
