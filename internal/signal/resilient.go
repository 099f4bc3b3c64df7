package signal

import (
	"context"
	"fmt"
	"time"

	"daytrade_go/internal/domain"
	"daytrade_go/internal/event"
	"daytrade_go/internal/infra"

	"github.com/dgraph-io/ristretto"
)

// ResilientSource wraps a Source with a TTL cache, a pacing rate
// limiter and a circuit breaker. A cache hit bypasses the underlying
// fetch entirely; errors propagate to the caller after being counted —
// the wrapper never substitutes a default signal.
type ResilientSource struct {
	inner   Source
	cache   *ristretto.Cache
	ttl     time.Duration
	limiter *infra.RateLimiter
	breaker *infra.CircuitBreaker
}

// ResilientConfig tunes the wrapper. Zero values fall back to the
// production defaults (300s TTL, 200ms spacing, 3 strikes / 24h).
type ResilientConfig struct {
	CacheTTL         time.Duration
	Spacing          time.Duration
	FailureThreshold int
	Cooldown         time.Duration
}

// NewResilientSource wraps inner. Breaker transitions are published on
// bus as source_disabled / source_enabled events (bus may be nil).
func NewResilientSource(inner Source, cfg ResilientConfig, bus *event.Bus) (*ResilientSource, error) {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 300 * time.Second
	}
	if cfg.Spacing <= 0 {
		cfg.Spacing = 200 * time.Millisecond
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("signal cache: %w", err)
	}

	breaker := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		Name:             inner.Name(),
		FailureThreshold: cfg.FailureThreshold,
		Cooldown:         cfg.Cooldown,
		OnChange: func(name string, from, to infra.State) {
			if bus == nil {
				return
			}
			ev := event.NewEvent(event.EvSourceEnabled)
			if to == infra.StateOpen {
				ev = event.NewEvent(event.EvSourceDisabled)
			}
			ev.Source = name
			bus.Publish(ev)
		},
	})

	return &ResilientSource{
		inner:   inner,
		cache:   cache,
		ttl:     cfg.CacheTTL,
		limiter: infra.NewRateLimiter(cfg.Spacing),
		breaker: breaker,
	}, nil
}

// Name returns the wrapped source name.
func (r *ResilientSource) Name() string { return r.inner.Name() }

// Available reports whether the source participates in aggregation.
// An expired cooldown re-enables the source here.
func (r *ResilientSource) Available() bool {
	return r.breaker.Allow()
}

// GetSignal returns the cached or freshly fetched signal for symbol.
func (r *ResilientSource) GetSignal(ctx context.Context, symbol string) (domain.TradingSignal, error) {
	key := r.inner.Name() + ":" + symbol
	if v, ok := r.cache.Get(key); ok {
		if sig, ok := v.(domain.TradingSignal); ok {
			return sig, nil
		}
	}

	if !r.breaker.Allow() {
		return domain.TradingSignal{}, fmt.Errorf("%w: %s: %w",
			ErrSourceUnavailable, r.inner.Name(), infra.ErrCircuitOpen)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return domain.TradingSignal{}, err
	}

	sig, err := r.inner.Fetch(ctx, symbol)
	if err != nil {
		r.breaker.RecordFailure()
		return domain.TradingSignal{}, fmt.Errorf("source %s: %w", r.inner.Name(), err)
	}

	r.breaker.RecordSuccess()
	r.cache.SetWithTTL(key, sig, 1, r.ttl)
	// Ristretto admits asynchronously; wait so the next call hits.
	r.cache.Wait()
	return sig, nil
}
