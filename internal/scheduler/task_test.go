package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

type countingFunc struct {
	calls  atomic.Int32
	mu     sync.Mutex
	err    error
	notify chan struct{}
}

func (c *countingFunc) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *countingFunc) run(ctx context.Context) error {
	c.calls.Add(1)
	if c.notify != nil {
		select {
		case c.notify <- struct{}{}:
		default:
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func TestTaskRunsImmediatelyAndOnTick(t *testing.T) {
	fn := &countingFunc{notify: make(chan struct{}, 1)}
	task := New("test", 5*time.Millisecond, fn.run, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	task.Start(ctx)

	select {
	case <-fn.notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial run")
	}

	deadline := time.After(time.Second)
	for fn.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected a ticked run, got %d calls", fn.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := task.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestTaskStopsOnContextCancel(t *testing.T) {
	fn := &countingFunc{notify: make(chan struct{}, 1)}
	task := New("test", 5*time.Millisecond, fn.run, nil)
	ctx, cancel := context.WithCancel(context.Background())

	task.Start(ctx)
	select {
	case <-fn.notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial run")
	}

	cancel()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("expected done after cancel")
	}

	callsAfterStop := fn.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if fn.calls.Load() != callsAfterStop {
		t.Fatalf("expected no runs after stop; before=%d after=%d", callsAfterStop, fn.calls.Load())
	}
}

func TestTaskStopIsIdempotent(t *testing.T) {
	task := New("test", time.Hour, func(context.Context) error { return nil }, nil)

	if err := task.Stop(context.Background()); err != nil {
		t.Fatalf("first stop returned error: %v", err)
	}
	if err := task.Stop(context.Background()); err != nil {
		t.Fatalf("second stop returned error: %v", err)
	}
	select {
	case <-task.Done():
	default:
		t.Fatalf("expected done closed after stopping an unstarted task")
	}
}

func TestTaskStartIsIdempotent(t *testing.T) {
	fn := &countingFunc{}
	task := New("test", time.Hour, fn.run, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	task.Start(ctx)
	task.Start(ctx)

	if err := task.Stop(context.Background()); err != nil {
		t.Fatalf("stop returned error: %v", err)
	}
	if got := fn.calls.Load(); got != 1 {
		t.Fatalf("expected a single initial run, got %d", got)
	}
}

func TestTaskStopHonorsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	task := New("slow", time.Hour, func(context.Context) error {
		close(started)
		<-release
		return nil
	}, nil)
	task.Start(context.Background())
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := task.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(release)
	<-task.Done()
}

func TestTaskDefaultsInterval(t *testing.T) {
	task := New("test", 0, func(context.Context) error { return nil }, nil)
	if task.Interval() != defaultInterval {
		t.Fatalf("expected default interval %s, got %s", defaultInterval, task.Interval())
	}
}

func TestTaskStatusTracksFailuresAndSuccess(t *testing.T) {
	fn := &countingFunc{}
	fn.setErr(errors.New("boom"))
	task := New("test", time.Hour, fn.run, nil)
	ctx := context.Background()

	_ = task.RunOnce(ctx)
	status := task.Status()
	if status.ConsecutiveFailures != 1 {
		t.Fatalf("expected 1 failure, got %d", status.ConsecutiveFailures)
	}
	if status.LastError == "" {
		t.Fatalf("expected last error recorded")
	}
	if !status.LastSuccess.IsZero() {
		t.Fatalf("expected no success recorded yet")
	}
	if status.IsReady() {
		t.Fatalf("expected not ready after failure")
	}

	fn.setErr(nil)
	_ = task.RunOnce(ctx)
	status = task.Status()
	if status.ConsecutiveFailures != 0 || status.LastError != "" {
		t.Fatalf("expected failures reset, got %+v", status)
	}
	if !status.IsReady() {
		t.Fatalf("expected ready after success")
	}
}

func TestStatusNotReadyAfterRepeatedFailures(t *testing.T) {
	s := Status{LastSuccess: time.Now(), ConsecutiveFailures: 3}
	if s.IsReady() {
		t.Fatalf("expected not ready after 3 failures")
	}
}
