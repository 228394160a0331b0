// Package scheduler runs a function on a fixed interval with start/stop lifecycle and health status.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/logging"
)

const defaultInterval = 2 * time.Minute

// Func is one scheduled run.
type Func func(ctx context.Context) error

// Status describes the recent health of a task.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the task has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// Task runs fn once at start and then on every tick until stopped.
type Task struct {
	name     string
	fn       Func
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	doneOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// New constructs a Task. A non-positive interval uses the default.
func New(name string, interval time.Duration, fn Func, logger *slog.Logger) *Task {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Task{
		name:     name,
		fn:       fn,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Interval returns the tick interval.
func (t *Task) Interval() time.Duration {
	return t.interval
}

// Start begins the loop until the context is cancelled or Stop is called. Repeated calls are no-ops.
func (t *Task) Start(ctx context.Context) {
	t.startMu.Lock()
	if t.started {
		t.startMu.Unlock()
		return
	}
	t.started = true
	t.ticker = time.NewTicker(t.interval)
	t.startMu.Unlock()

	go func() {
		defer t.markDone()
		t.logInfo("task started", slog.Int64(logging.FieldDurationMS, t.interval.Milliseconds()))
		t.RunOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				t.stopTicker()
				t.logInfo("task stopped")
				return
			case <-t.stop:
				t.stopTicker()
				t.logInfo("task stopped")
				return
			case <-t.ticker.C:
				t.RunOnce(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight run to finish or ctx to expire.
func (t *Task) Stop(ctx context.Context) error {
	t.stopOnce.Do(func() {
		close(t.stop)
	})

	t.startMu.Lock()
	started := t.started
	t.startMu.Unlock()
	if !started {
		t.markDone()
		return nil
	}

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the loop has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// RunOnce executes fn once and records the outcome in Status.
func (t *Task) RunOnce(ctx context.Context) error {
	start := t.now()
	t.recordAttempt(start)
	err := t.fn(ctx)
	if err != nil {
		t.logError("task run failed", err, slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()))
		t.recordFailure(err, start)
		return err
	}
	t.recordSuccess(start)
	return nil
}

// Status returns a snapshot of the task's recent health.
func (t *Task) Status() Status {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}

func (t *Task) markDone() {
	t.doneOnce.Do(func() {
		close(t.done)
	})
}

func (t *Task) stopTicker() {
	if t.ticker != nil {
		t.ticker.Stop()
	}
}

func (t *Task) logInfo(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Info(msg, append(args, "task", t.name)...)
	}
}

func (t *Task) logError(msg string, err error, attrs ...any) {
	if t.logger != nil {
		t.logger.Error(msg, append(attrs, "task", t.name, "error", err)...)
	}
}

func (t *Task) recordAttempt(at time.Time) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	t.status.LastAttempt = at
}

func (t *Task) recordSuccess(at time.Time) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	t.status.ConsecutiveFailures = 0
	t.status.LastError = ""
	t.status.LastSuccess = at
}

func (t *Task) recordFailure(err error, at time.Time) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	t.status.ConsecutiveFailures++
	if err != nil {
		t.status.LastError = err.Error()
	}
	t.status.LastAttempt = at
}
