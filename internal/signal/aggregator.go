package signal

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"daytrade_go/internal/domain"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// quorumRatios maps an exact participating-source count to the minimum
// agreement fraction. Counts not listed fall back to defaultQuorumRatio.
// The table is load-bearing: requiredVotes = ceil(total * ratio(total))
// gates both buy and sell consensus with the same bar.
var quorumRatios = map[int]float64{
	3: 0.67,
	4: 0.75,
	5: 0.80,
	6: 0.67,
}

const defaultQuorumRatio = 0.67

// QuorumRatio returns the agreement fraction for a total source count.
func QuorumRatio(total int) float64 {
	if r, ok := quorumRatios[total]; ok {
		return r
	}
	return defaultQuorumRatio
}

// RequiredVotes returns the vote count needed for consensus among
// total sources.
func RequiredVotes(total int) int {
	return int(math.Ceil(float64(total) * QuorumRatio(total)))
}

// Aggregator fans out to the registered resilient sources and computes
// a quorum consensus per symbol.
type Aggregator struct {
	sources    []*ResilientSource
	minSources int
	timeout    time.Duration
}

// NewAggregator creates an aggregator. minSources is the minimum count
// of valid responses per round; timeout is shared by all sources within
// one aggregation call (default 30s).
func NewAggregator(sources []*ResilientSource, minSources int, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if minSources < 1 {
		minSources = 1
	}
	return &Aggregator{sources: sources, minSources: minSources, timeout: timeout}
}

// Aggregate queries every available source in parallel and tallies the
// round. A source that errors or exceeds the shared timeout contributes
// nothing to this round; there is no in-round retry. Fails with
// ErrInsufficientSources when fewer than minSources respond.
func (a *Aggregator) Aggregate(ctx context.Context, symbol string) (domain.AggregatedSignal, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		signals []domain.TradingSignal
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range a.sources {
		src := src
		if !src.Available() {
			slog.Debug("skipping unavailable source",
				slog.String("source", src.Name()),
				slog.String("symbol", symbol))
			continue
		}
		g.Go(func() error {
			sig, err := src.GetSignal(gctx, symbol)
			if err != nil {
				// Absorbed: the source is simply missing from
				// this round's tally.
				slog.Warn("signal source failed",
					slog.String("source", src.Name()),
					slog.String("symbol", symbol),
					slog.Any("error", err))
				return nil
			}
			mu.Lock()
			signals = append(signals, sig)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; faults are absorbed

	if len(signals) < a.minSources {
		return domain.AggregatedSignal{}, fmt.Errorf(
			"%w: %d valid of %d required for %s",
			ErrInsufficientSources, len(signals), a.minSources, symbol)
	}

	return Tally(symbol, signals), nil
}

// Tally folds a round of individual votes into the consensus result.
// Shared with the offline replay so live and backtest runs agree.
func Tally(symbol string, signals []domain.TradingSignal) domain.AggregatedSignal {
	agg := domain.AggregatedSignal{
		Symbol:       symbol,
		TotalSources: len(signals),
		Signals:      signals,
		Timestamp:    time.Now(),
	}
	for _, sig := range signals {
		switch sig.Signal {
		case domain.SignalBuy:
			agg.BuySignals++
		case domain.SignalSell:
			agg.SellSignals++
		default:
			agg.HoldSignals++
		}
	}

	agg.BuyPercentage = float64(agg.BuySignals) / float64(agg.TotalSources) * 100
	required := RequiredVotes(agg.TotalSources)
	agg.ShouldBuy = agg.BuySignals >= required
	agg.ShouldSell = agg.SellSignals >= required
	return agg
}

// AggregateMany runs Aggregate per symbol, silently omitting symbols
// whose aggregation failed (logged, not returned).
func (a *Aggregator) AggregateMany(ctx context.Context, symbols []string) []domain.AggregatedSignal {
	results := make([]domain.AggregatedSignal, 0, len(symbols))
	for _, symbol := range symbols {
		agg, err := a.Aggregate(ctx, symbol)
		if err != nil {
			slog.Warn("aggregation skipped",
				slog.String("symbol", symbol),
				slog.Any("error", err))
			continue
		}
		results = append(results, agg)
	}
	return results
}

// SelectBestBuy filters to consensus buys and returns the one with the
// highest buy percentage, or nil when none qualifies.
func SelectBestBuy(list []domain.AggregatedSignal) *domain.AggregatedSignal {
	buys := lo.Filter(list, func(s domain.AggregatedSignal, _ int) bool {
		return s.ShouldBuy
	})
	if len(buys) == 0 {
		return nil
	}
	best := lo.MaxBy(buys, func(a, b domain.AggregatedSignal) bool {
		return a.BuyPercentage > b.BuyPercentage
	})
	return &best
}
