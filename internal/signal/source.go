package signal

import (
	"context"
	"errors"

	"daytrade_go/internal/domain"
)

// Taxonomy of aggregation-level faults. Per-source faults are absorbed
// by the aggregator; these are the ones callers see.
var (
	// ErrInsufficientSources means fewer than minSources sources
	// produced a valid response. Recoverable: the caller skips the
	// symbol for this round.
	ErrInsufficientSources = errors.New("insufficient signal sources")

	// ErrSourceUnavailable means the source is currently disabled by
	// its circuit breaker.
	ErrSourceUnavailable = errors.New("signal source unavailable")
)

// Source is one independent opinion provider. Implementations are
// unreliable by assumption: they may be slow, error, or disappear, and
// the resilience wrapper deals with that.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (domain.TradingSignal, error)
}
