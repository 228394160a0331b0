package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/config"
	domainfixtures "github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/metrics"
	"github.com/preston-bernstein/fixture-data-service/internal/reconciler"
	"github.com/preston-bernstein/fixture-data-service/internal/teststubs"
	"github.com/preston-bernstein/fixture-data-service/internal/testutil"
)

type stubReconciler struct {
	mu         sync.Mutex
	startCalls int
	stopCalls  int
	err        error
	status     reconciler.Status
}

func (p *stubReconciler) Start(ctx context.Context) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startCalls++
}

func (p *stubReconciler) Stop(ctx context.Context) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopCalls++
	return p.err
}

func (p *stubReconciler) Status() reconciler.Status {
	return p.status
}

func (p *stubReconciler) calls() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startCalls, p.stopCalls
}

type stubWarmer struct {
	ran chan struct{}
}

func (w *stubWarmer) Run(ctx context.Context) {
	close(w.ran)
	<-ctx.Done()
}

func testConfig() config.Config {
	return config.Config{
		Port:      "0",
		Timezone:  "UTC",
		Reconcile: config.ReconcileConfig{Interval: time.Hour, DriftTolerance: 3, DriftInclusive: true},
		Metrics:   config.MetricsConfig{Enabled: false},
	}
}

func newTestServer(t *testing.T, provider *teststubs.StubProvider) *Server {
	t.Helper()
	logger, _ := testutil.NewBufferLogger()
	srv, err := newServerWithProvider(testConfig(), logger, provider, metrics.NewRecorder())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() {
		_ = srv.reconciler.Stop(context.Background())
		_ = srv.components.Close()
	})
	return srv
}

func TestServerServesHealthAndFixtures(t *testing.T) {
	kickoff := time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC)
	provider := &teststubs.StubProvider{
		ByDate: map[string][]domainfixtures.Fixture{
			"2025-06-15": {testutil.SampleFixture(101, kickoff, domainfixtures.CodeNotStarted)},
		},
	}
	router := newTestServer(t, provider).Handler()

	rr := testutil.Serve(router, http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.Serve(router, http.MethodGet, "/fixtures/date/2025-06-15", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var body struct {
		Source   string `json:"source"`
		Fixtures []struct {
			ID int64 `json:"id"`
		} `json:"fixtures"`
	}
	testutil.DecodeJSON(t, rr, &body)
	if body.Source != "fresh" || len(body.Fixtures) != 1 || body.Fixtures[0].ID != 101 {
		t.Fatalf("unexpected body %+v", body)
	}

	rr = testutil.Serve(router, http.MethodGet, "/fixtures/101", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestServerReadyAfterFirstReconcile(t *testing.T) {
	srv := newTestServer(t, &teststubs.StubProvider{})
	router := srv.Handler()

	rr := testutil.Serve(router, http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.reconciler.Start(ctx)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		rr = testutil.Serve(router, http.MethodGet, "/ready", nil)
		if rr.Code == http.StatusOK {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected ready after first reconcile, last status %d", rr.Code)
}

func TestServerHandlesProviderErrorGracefully(t *testing.T) {
	router := newTestServer(t, &teststubs.StubProvider{Err: context.DeadlineExceeded}).Handler()

	rr := testutil.Serve(router, http.MethodGet, "/fixtures/date/2025-06-15", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var body struct {
		Source   string            `json:"source"`
		Fixtures []json.RawMessage `json:"fixtures"`
	}
	testutil.DecodeJSON(t, rr, &body)
	if body.Source != "empty" || len(body.Fixtures) != 0 {
		t.Fatalf("expected empty fallback, got %+v", body)
	}
}

func TestNewConstructsServer(t *testing.T) {
	cfg := testConfig()
	cfg.Providers = []string{config.ProviderFixture}
	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer srv.components.Close()
	if srv.Handler() == nil || srv.Components().Service == nil {
		t.Fatalf("expected server with handler and service")
	}
}

func TestNewFailsOnUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Cache = config.CacheConfig{Backend: config.BackendRedis, RedisAddr: "127.0.0.1:1"}
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("expected error for unreachable redis")
	}
}

func TestGracefulShutdownCallsStopAndShutdown(t *testing.T) {
	p := &stubReconciler{}
	httpSrv := &testutil.StubHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, httpSrv, p, nil)
	srv.gracefulShutdown()

	if _, stops := p.calls(); stops != 1 {
		t.Fatalf("expected reconciler Stop to be called once, got %d", stops)
	}
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", httpSrv.ShutdownCalls)
	}
}

func TestGracefulShutdownTimesOutLongRunningShutdown(t *testing.T) {
	p := &stubReconciler{}
	blocking := &testutil.BlockingHTTPServer{
		AddrVal:    ":0",
		HandlerVal: http.NewServeMux(),
		Unblock:    make(chan struct{}),
	}

	original := shutdownTimeout
	shutdownTimeout = 5 * time.Millisecond
	defer func() { shutdownTimeout = original }()

	srv := newServerWithDeps(config.Config{}, nil, blocking, p, nil)

	start := time.Now()
	srv.gracefulShutdown()
	elapsed := time.Since(start)

	if blocking.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", blocking.ShutdownCalls)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("shutdown took too long: %s", elapsed)
	}
}

func TestGracefulShutdownContinuesWhenReconcilerStopErrors(t *testing.T) {
	p := &stubReconciler{err: errors.New("stop failure")}
	httpSrv := &testutil.StubHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, httpSrv, p, nil)
	srv.gracefulShutdown()

	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", httpSrv.ShutdownCalls)
	}
}

func TestServerStartHandlesListenErrorAndStops(t *testing.T) {
	srv := newServerWithDeps(config.Config{}, nil, &testutil.ErrHTTPServer{}, &stubReconciler{}, nil)

	stopCalled := make(chan struct{})
	srv.startServer(func() { close(stopCalled) })

	select {
	case <-stopCalled:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected stop to be called on listen failure")
	}
}

func TestRunCancelsAndStopsComponents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &stubReconciler{}
	w := &stubWarmer{ran: make(chan struct{})}
	httpSrv := &testutil.CloseableHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, httpSrv, p, w)

	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	select {
	case <-w.ran:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("warmer was not started")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("run did not return after cancel")
	}

	starts, stops := p.calls()
	if starts != 1 || stops != 1 {
		t.Fatalf("expected reconciler start/stop once, got %d/%d", starts, stops)
	}
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown called once, got %d", httpSrv.ShutdownCalls)
	}
}
