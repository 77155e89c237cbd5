// Package jobs runs the periodic maintenance tasks of the server on cron
// schedules: refresh token purge, activity log purge and sqlite backups.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultTimeout bounds a single job run / Durée maximale d'une exécution
const DefaultTimeout = 10 * time.Minute

// Func is a job body / Corps d'une tâche
type Func func(ctx context.Context) error

// Recorder receives job metrics / Reçoit les métriques des tâches
type Recorder interface {
	SetBackgroundTaskStatus(taskName string, running bool)
	RecordJobRun(job string, err error)
}

// Scheduler wraps a cron runner. Jobs never overlap with themselves and a
// panicking job is recovered.
type Scheduler struct {
	cron    *cron.Cron
	metrics Recorder
	timeout time.Duration

	mu     sync.Mutex
	names  []string
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler evaluating schedules in UTC.
func NewScheduler(metrics Recorder) *Scheduler {
	logger := slogLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		metrics: metrics,
		timeout: DefaultTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers fn under name on a standard 5-field schedule or a
// descriptor such as "@daily". An empty schedule disables the job.
func (s *Scheduler) Add(name, schedule string, fn Func) error {
	if schedule == "" {
		slog.Info("job disabled", "job", name)
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.run(name, fn) }); err != nil {
		return fmt.Errorf("job %s: invalid schedule %q: %w", name, schedule, err)
	}

	s.mu.Lock()
	s.names = append(s.names, name)
	s.mu.Unlock()
	slog.Info("job scheduled", "job", name, "schedule", schedule)
	return nil
}

// Jobs returns the names of the registered jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

// run executes one job with a timeout and records the outcome.
func (s *Scheduler) run(name string, fn Func) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordJobRun(name, err)
	if err != nil {
		slog.Error("job failed", "job", name, "duration", time.Since(start), "err", err)
		return
	}
	slog.Info("job completed", "job", name, "duration", time.Since(start))
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	for _, name := range s.Jobs() {
		s.metrics.SetBackgroundTaskStatus(name, true)
	}
	s.cron.Start()
}

// Stop cancels running jobs and waits for them until ctx expires.
// Arrête les tâches en cours et les attend jusqu'à l'expiration de ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()

	var err error
	select {
	case <-done.Done():
	case <-ctx.Done():
		err = ctx.Err()
	}
	for _, name := range s.Jobs() {
		s.metrics.SetBackgroundTaskStatus(name, false)
	}
	return err
}

// slogLogger routes cron's own messages to slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
