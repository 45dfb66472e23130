package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"calendar-sync/feature/calsync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("scheduler already started")

// RunFunc performs one sync pass.
type RunFunc func(ctx context.Context, opts calsync.Options) (*calsync.RunReport, error)

// Status describes the runner state.
type Status struct {
	Running   bool               `json:"running"`
	Schedule  string             `json:"schedule,omitempty"`
	NextRun   *time.Time         `json:"next_run,omitempty"`
	LastRun   *calsync.RunReport `json:"last_run,omitempty"`
	LastError string             `json:"last_error,omitempty"`
}

// Runner triggers sync passes.
type Runner struct {
	run    RunFunc
	logger *zap.Logger

	group   singleflight.Group
	running atomic.Int32

	mu       sync.RWMutex
	cron     *cron.Cron
	entry    cron.EntryID
	schedule string
	last     *calsync.RunReport
	lastErr  error
}

// NewRunner creates a runner around run.
func NewRunner(run RunFunc, logger *zap.Logger) *Runner {
	return &Runner{run: run, logger: logger}
}

// Trigger runs a pass, or joins the one already in flight with the same
// options. The pass is detached from ctx cancellation so a caller giving up
// does not abort it for the others. The error is the run error or, when the
// run completed, the report's failure.
func (r *Runner) Trigger(ctx context.Context, opts calsync.Options) (*calsync.RunReport, error) {
	key := "run"
	if opts.DryRun {
		key = "dry-run"
	}

	v, err, shared := r.group.Do(key, func() (any, error) {
		r.running.Add(1)
		defer r.running.Add(-1)

		report, err := r.run(context.WithoutCancel(ctx), opts)
		if err == nil {
			err = report.Err()
		}
		if !opts.DryRun {
			r.mu.Lock()
			r.last, r.lastErr = report, err
			r.mu.Unlock()
		}
		return report, err
	})
	if shared {
		r.logger.Debug("Joined in-flight sync run", zap.String("kind", key))
	}

	report, _ := v.(*calsync.RunReport)
	return report, err
}

// Start schedules a pass on the cron expression (standard five fields).
func (r *Runner) Start(schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil {
		return ErrAlreadyStarted
	}

	c := cron.New()
	id, err := c.AddFunc(schedule, func() {
		report, err := r.Trigger(context.Background(), calsync.Options{})
		if err != nil {
			r.logger.Error("Scheduled sync failed", zap.Error(err))
			return
		}
		r.logger.Info("Scheduled sync finished",
			zap.String("run_id", report.RunID),
			zap.Int("attempted", report.Attempted),
		)
	})
	if err != nil {
		return err
	}

	c.Start()
	r.cron, r.entry, r.schedule = c, id, schedule
	r.logger.Info("Scheduler started", zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running scheduled pass to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	r.logger.Info("Scheduler stopped")
}

// Last returns the report and error of the most recent non-dry run.
func (r *Runner) Last() (*calsync.RunReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.lastErr
}

// Status returns a snapshot of the runner state.
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Status{
		Running:  r.running.Load() > 0,
		Schedule: r.schedule,
		LastRun:  r.last,
	}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}
	if r.cron != nil {
		if next := r.cron.Entry(r.entry).Next; !next.IsZero() {
			s.NextRun = &next
		}
	}
	return s
}
