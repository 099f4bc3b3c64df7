package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"daytrade_go/internal/domain"
	"daytrade_go/internal/signal"

	"github.com/samber/lo"
)

// histProvider serves a moving window of the replayed bar series
// through the market.Provider surface, so the live indicator sources
// run unmodified over historical data.
type histProvider struct {
	bars []domain.Candle
}

func (h *histProvider) Quote(_ context.Context, symbol string) (domain.Quote, error) {
	if len(h.bars) == 0 {
		return domain.Quote{}, ErrNoData
	}
	last := h.bars[len(h.bars)-1]
	return domain.Quote{
		Symbol:    symbol,
		Price:     last.Close,
		Volume:    last.Volume,
		High:      last.High,
		Low:       last.Low,
		Timestamp: last.Ts,
	}, nil
}

func (h *histProvider) Candles(_ context.Context, _ string, n int) ([]domain.Candle, error) {
	if len(h.bars) == 0 {
		return nil, ErrNoData
	}
	if n > len(h.bars) {
		n = len(h.bars)
	}
	return h.bars[len(h.bars)-n:], nil
}

func (h *histProvider) Screen(_ context.Context, _ domain.ScreenCriteria) ([]string, error) {
	if len(h.bars) == 0 {
		return nil, nil
	}
	return []string{h.bars[len(h.bars)-1].Symbol}, nil
}

// ConsensusStrategy replays the live decision path: the same indicator
// sources vote per bar, the same quorum tally gates entries and
// take-profit exits, and the same risk thresholds order the exit
// checks.
type ConsensusStrategy struct {
	params     Params
	hist       *histProvider
	sources    []signal.Source
	minSources int
}

// NewConsensusStrategy builds the strategy with the three live
// indicator sources over the replay window.
func NewConsensusStrategy(params Params, minSources int) *ConsensusStrategy {
	if minSources < 1 {
		minSources = 1
	}
	h := &histProvider{}
	return &ConsensusStrategy{
		params: params,
		hist:   h,
		sources: []signal.Source{
			signal.NewRSISource(h),
			signal.NewMACDSource(h),
			signal.NewTrendSource(h),
		},
		minSources: minSources,
	}
}

// consensus runs one offline voting round. Sources are queried in
// order; offline there are no timeouts or breakers, only insufficient
// history, which drops a source from the round like a live fault would.
func (s *ConsensusStrategy) consensus(ctx context.Context, symbol string) (domain.AggregatedSignal, error) {
	signals := make([]domain.TradingSignal, 0, len(s.sources))
	for _, src := range s.sources {
		sig, err := src.Fetch(ctx, symbol)
		if err != nil {
			continue
		}
		signals = append(signals, sig)
	}
	if len(signals) < s.minSources {
		return domain.AggregatedSignal{}, fmt.Errorf(
			"%w: %d valid of %d required for %s",
			signal.ErrInsufficientSources, len(signals), s.minSources, symbol)
	}
	return signal.Tally(symbol, signals), nil
}

// GenerateSignals proposes an entry when flat and the round reaches buy
// quorum.
func (s *ConsensusStrategy) GenerateSignals(ctx context.Context, history []domain.Candle, pf *Portfolio) []OrderIntent {
	s.hist.bars = history
	if pf.Position != nil {
		return nil
	}

	bar := history[len(history)-1]
	agg, err := s.consensus(ctx, bar.Symbol)
	if err != nil {
		return nil
	}
	if !agg.ShouldBuy {
		return nil
	}
	return []OrderIntent{{
		Symbol: bar.Symbol,
		Side:   domain.ActionBuy,
		Reason: fmt.Sprintf("quorum buy (%.0f%% of %d sources)", agg.BuyPercentage, agg.TotalSources),
	}}
}

// ExecuteOrders sizes entries against the position cap and fills them
// on the portfolio.
func (s *ConsensusStrategy) ExecuteOrders(_ context.Context, pf *Portfolio, intents []OrderIntent, bar domain.Candle) {
	buys := lo.Filter(intents, func(i OrderIntent, _ int) bool { return i.Side == domain.ActionBuy })
	for range buys {
		fill := bar.Close * (1 + s.params.Slippage)
		if fill <= 0 {
			continue
		}
		quantity := int64(math.Floor(s.params.MaxPositionSize / fill))
		pf.Buy(bar, quantity)
	}
}

// Rebalance applies the exit ladder to the open position, most severe
// first. Between the stop and the target the position is held
// regardless of votes.
func (s *ConsensusStrategy) Rebalance(ctx context.Context, pf *Portfolio, bar domain.Candle) {
	if pf.Position == nil {
		return
	}
	rate := pf.Position.ProfitRate(bar.Close)

	switch {
	case rate <= s.params.EmergencyStopLoss:
		pf.Sell(bar, "emergency stop loss")

	case rate <= s.params.StopLoss:
		pf.Sell(bar, "stop loss")

	case rate >= s.params.TakeProfit:
		if rate >= s.params.HardTakeProfit {
			pf.Sell(bar, "take profit (hard ceiling)")
			return
		}
		agg, err := s.consensus(ctx, bar.Symbol)
		if err == nil && agg.ShouldSell {
			pf.Sell(bar, "take profit")
		}
	}
}

// SyntheticBars generates a deterministic daily bar series for offline
// runs without a data file. drift is the per-bar relative change; vol
// scales a seeded pseudo-random walk around it. A zero drift, zero vol
// call yields a perfectly flat series.
func SyntheticBars(symbol string, n int, start float64, drift, vol float64, seed int64) []domain.Candle {
	bars := make([]domain.Candle, 0, n)
	price := start
	state := uint64(seed)
	day := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		// xorshift keeps runs reproducible without pulling in a RNG.
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		noise := (float64(state%2000)/1000.0 - 1.0) * vol

		open := price
		price *= 1 + drift + noise
		high := math.Max(open, price) * (1 + vol/2)
		low := math.Min(open, price) * (1 - vol/2)

		bars = append(bars, domain.Candle{
			Symbol: symbol,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 1_000_000,
			Ts:     day.AddDate(0, 0, i),
		})
	}
	return bars
}
