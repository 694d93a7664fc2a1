// Package scheduler runs a task periodically on a single loop.
//
// A Job ticks once immediately and then on every interval. Ticks never
// overlap. Stop lets an in-flight tick finish within a grace period before
// cancelling its context.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const defaultStopGrace = 60 * time.Second

var (
	// ErrForceStopped is returned by Stop when the in-flight tick outlived the grace period.
	ErrForceStopped = errors.New("scheduler: job force-stopped")

	// ErrTickInProgress is returned by RunOnce while another tick is running.
	ErrTickInProgress = errors.New("scheduler: tick already in progress")

	// ErrAlreadyStarted is returned by Run when the job loop is already running.
	ErrAlreadyStarted = errors.New("scheduler: job already started")
)

// Task is the unit of work executed on each tick.
type Task func(ctx context.Context) error

// Option customizes a Job.
type Option func(*Job)

// WithStopGrace sets how long Stop waits for an in-flight tick.
func WithStopGrace(d time.Duration) Option {
	return func(j *Job) {
		if d > 0 {
			j.grace = d
		}
	}
}

// Job is a periodic, non-reentrant task runner.
type Job struct {
	name     string
	interval time.Duration
	grace    time.Duration
	task     Task

	running  atomic.Bool
	ticks    atomic.Int64
	failures atomic.Int64
	skipped  atomic.Int64

	mu       sync.Mutex
	started  bool
	stopped  bool
	stopErr  error
	stop     chan struct{}
	done     chan struct{}
	cancelFn context.CancelFunc
}

// NewJob creates a job named name that runs task every interval.
func NewJob(name string, interval time.Duration, task Task, opts ...Option) *Job {
	j := &Job{
		name:     name,
		interval: interval,
		grace:    defaultStopGrace,
		task:     task,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Name returns the job name.
func (j *Job) Name() string { return j.name }

// Ticks returns how many ticks have executed.
func (j *Job) Ticks() int64 { return j.ticks.Load() }

// Failures returns how many ticks returned an error.
func (j *Job) Failures() int64 { return j.failures.Load() }

// Skipped returns how many ticks were dropped because one was still running.
func (j *Job) Skipped() int64 { return j.skipped.Load() }

// Run blocks, ticking immediately and then every interval, until ctx is done
// or Stop is called. Tick contexts survive ctx cancellation so a tick in
// flight at shutdown can finish. Only Stop cancels them.
func (j *Job) Run(ctx context.Context) error {
	j.mu.Lock()
	if j.started {
		j.mu.Unlock()
		return ErrAlreadyStarted
	}
	j.started = true
	if j.stopped {
		j.mu.Unlock()
		close(j.done)
		return nil
	}
	tickCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	j.cancelFn = cancel
	j.mu.Unlock()

	defer close(j.done)
	defer cancel()

	slog.InfoContext(ctx, "scheduler job started", "job", j.name, "interval", j.interval.String())

	j.tick(tickCtx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "scheduler job context done", "job", j.name)
			return nil
		case <-j.stop:
			slog.InfoContext(ctx, "scheduler job stopped", "job", j.name)
			return nil
		case <-ticker.C:
			select {
			case <-j.stop:
				return nil
			default:
			}
			j.tick(tickCtx)
		}
	}
}

func (j *Job) tick(ctx context.Context) {
	err := j.RunOnce(ctx)
	if errors.Is(err, ErrTickInProgress) {
		j.skipped.Inc()
		slog.WarnContext(ctx, "scheduler tick skipped, previous tick still running", "job", j.name)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "scheduler tick failed", "job", j.name, "error", err)
	}
}

// RunOnce executes a single tick unless one is already running.
func (j *Job) RunOnce(ctx context.Context) error {
	if !j.running.CompareAndSwap(false, true) {
		return ErrTickInProgress
	}
	defer j.running.Store(false)

	j.ticks.Inc()
	if err := j.task(ctx); err != nil {
		j.failures.Inc()
		return err
	}
	return nil
}

// Stop stops scheduling new ticks and waits for the loop to exit.
//
// An in-flight tick gets the grace period (bounded by ctx) to finish; after
// that its context is cancelled and ErrForceStopped is returned. Calling Stop
// again returns the first result.
func (j *Job) Stop(ctx context.Context) error {
	j.mu.Lock()
	if j.stopped {
		err := j.stopErr
		j.mu.Unlock()
		return err
	}
	j.stopped = true
	close(j.stop)
	started := j.started
	cancel := j.cancelFn
	j.mu.Unlock()

	if !started {
		return nil
	}

	timer := time.NewTimer(j.grace)
	defer timer.Stop()

	var err error
	select {
	case <-j.done:
	case <-timer.C:
		err = ErrForceStopped
	case <-ctx.Done():
		err = ErrForceStopped
	}

	if err != nil {
		cancel()
		slog.WarnContext(ctx, "scheduler job force-stopped", "job", j.name, "grace", j.grace.String())
	}

	j.mu.Lock()
	j.stopErr = err
	j.mu.Unlock()

	return err
}
