package signal

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"daytrade_go/internal/domain"
	"daytrade_go/internal/event"
)

// stubSource is a scriptable Source for tests.
type stubSource struct {
	name  string
	fetch func(ctx context.Context, symbol string) (domain.TradingSignal, error)
	calls atomic.Int32
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context, symbol string) (domain.TradingSignal, error) {
	s.calls.Add(1)
	return s.fetch(ctx, symbol)
}

func fixedSignal(name string, dir domain.SignalType) func(context.Context, string) (domain.TradingSignal, error) {
	return func(_ context.Context, symbol string) (domain.TradingSignal, error) {
		return domain.TradingSignal{
			Source:     name,
			Symbol:     symbol,
			Signal:     dir,
			Confidence: 80,
			Timestamp:  time.Now(),
		}, nil
	}
}

func fastResilient(t *testing.T, inner Source, bus *event.Bus) *ResilientSource {
	t.Helper()
	rs, err := NewResilientSource(inner, ResilientConfig{
		CacheTTL: 300 * time.Second,
		Spacing:  time.Millisecond,
		Cooldown: time.Hour,
	}, bus)
	if err != nil {
		t.Fatal(err)
	}
	return rs
}

func TestResilientSource_CacheHitBypassesFetch(t *testing.T) {
	src := &stubSource{name: "stub", fetch: fixedSignal("stub", domain.SignalBuy)}
	rs := fastResilient(t, src, nil)

	ctx := context.Background()
	first, err := rs.GetSignal(ctx, "7203")
	if err != nil {
		t.Fatal(err)
	}
	second, err := rs.GetSignal(ctx, "7203")
	if err != nil {
		t.Fatal(err)
	}

	if src.calls.Load() != 1 {
		t.Errorf("underlying fetch called %d times, want 1 (cache hit)", src.calls.Load())
	}
	if first.Signal != second.Signal || first.Source != second.Source {
		t.Error("cached signal differs from original")
	}
}

func TestResilientSource_CacheKeyedPerSymbol(t *testing.T) {
	src := &stubSource{name: "stub", fetch: fixedSignal("stub", domain.SignalBuy)}
	rs := fastResilient(t, src, nil)

	ctx := context.Background()
	if _, err := rs.GetSignal(ctx, "7203"); err != nil {
		t.Fatal(err)
	}
	if _, err := rs.GetSignal(ctx, "6758"); err != nil {
		t.Fatal(err)
	}

	if src.calls.Load() != 2 {
		t.Errorf("fetch called %d times, want 2 (distinct symbols)", src.calls.Load())
	}
}

func TestResilientSource_ErrorsPropagate(t *testing.T) {
	boom := errors.New("feed down")
	src := &stubSource{name: "stub", fetch: func(context.Context, string) (domain.TradingSignal, error) {
		return domain.TradingSignal{}, boom
	}}
	rs := fastResilient(t, src, nil)

	_, err := rs.GetSignal(context.Background(), "7203")
	if !errors.Is(err, boom) {
		t.Fatalf("expected underlying error to propagate, got %v", err)
	}
}

func TestResilientSource_BreakerDisablesAfterThreeFailures(t *testing.T) {
	bus := event.NewBus()
	events := bus.Subscribe(8)

	src := &stubSource{name: "flaky", fetch: func(context.Context, string) (domain.TradingSignal, error) {
		return domain.TradingSignal{}, errors.New("boom")
	}}
	rs, err := NewResilientSource(src, ResilientConfig{
		Spacing:  time.Millisecond,
		Cooldown: 80 * time.Millisecond,
	}, bus)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := rs.GetSignal(ctx, "7203"); err == nil {
			t.Fatal("expected fetch error")
		}
	}

	if rs.Available() {
		t.Error("source should be unavailable after 3 consecutive failures")
	}
	if _, err := rs.GetSignal(ctx, "7203"); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != event.EvSourceDisabled || ev.Source != "flaky" {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no source_disabled event published")
	}

	// Cooldown elapses: the source participates again.
	time.Sleep(100 * time.Millisecond)
	if !rs.Available() {
		t.Error("source should re-enable after cooldown")
	}

	select {
	case ev := <-events:
		if ev.Type != event.EvSourceEnabled {
			t.Errorf("expected source_enabled, got %s", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no source_enabled event published")
	}

	// Fetch is attempted again after re-enable.
	before := src.calls.Load()
	rs.GetSignal(ctx, "7203")
	if src.calls.Load() != before+1 {
		t.Error("fetch not attempted after re-enable")
	}
}
