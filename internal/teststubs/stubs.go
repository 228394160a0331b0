package teststubs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
)

// StubProvider is a scriptable test double for providers.FixtureProvider.
// It is safe for concurrent use.
type StubProvider struct {
	ByDate   map[string][]fixtures.Fixture
	DateErrs map[string]error
	Live     []fixtures.Fixture
	LiveErr  error
	ByID     map[int64]fixtures.Fixture
	IDErr    error
	// Err, when set, is returned from every call.
	Err   error
	Delay time.Duration

	Calls     atomic.Int32
	DateCalls atomic.Int32
	LiveCalls atomic.Int32
	IDCalls   atomic.Int32
	Notify    chan struct{}

	mu         sync.Mutex
	notifyOnce sync.Once
	dates      []string
}

func (s *StubProvider) enter(ctx context.Context) error {
	s.Calls.Add(1)
	if s.Notify != nil {
		s.notifyOnce.Do(func() { close(s.Notify) })
	}
	if s.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.Delay):
		}
	}
	return s.Err
}

// FetchByDate returns the fixtures scripted for the date.
func (s *StubProvider) FetchByDate(ctx context.Context, date string) ([]fixtures.Fixture, error) {
	s.DateCalls.Add(1)
	s.mu.Lock()
	s.dates = append(s.dates, date)
	s.mu.Unlock()
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	if err, ok := s.DateErrs[date]; ok && err != nil {
		return nil, err
	}
	return clone(s.ByDate[date]), nil
}

// FetchLive returns the scripted live list.
func (s *StubProvider) FetchLive(ctx context.Context) ([]fixtures.Fixture, error) {
	s.LiveCalls.Add(1)
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	if s.LiveErr != nil {
		return nil, s.LiveErr
	}
	return clone(s.Live), nil
}

// FetchByID returns the scripted fixture for id.
func (s *StubProvider) FetchByID(ctx context.Context, id int64) (fixtures.Fixture, bool, error) {
	s.IDCalls.Add(1)
	if err := s.enter(ctx); err != nil {
		return fixtures.Fixture{}, false, err
	}
	if s.IDErr != nil {
		return fixtures.Fixture{}, false, s.IDErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.ByID[id]
	return f, ok, nil
}

// SetByID replaces the scripted fixture for id while the stub is in use.
func (s *StubProvider) SetByID(f fixtures.Fixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ByID == nil {
		s.ByID = make(map[int64]fixtures.Fixture)
	}
	s.ByID[f.ID] = f
}

// Dates returns the dates requested so far, in call order.
func (s *StubProvider) Dates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dates...)
}

func clone(in []fixtures.Fixture) []fixtures.Fixture {
	if in == nil {
		return nil
	}
	return append([]fixtures.Fixture(nil), in...)
}
