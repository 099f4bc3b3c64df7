package backtest

import (
	"context"
	"errors"
	"log/slog"

	"daytrade_go/internal/domain"
)

// ErrNoData is returned when a run is attempted over an empty or
// too-short bar series.
var ErrNoData = errors.New("not enough historical bars")

// Strategy is the per-bar decision hook. The engine drives it
// day-by-day over the historical range instead of by clock.
type Strategy interface {
	// GenerateSignals inspects history up to and including the current
	// bar and proposes entries.
	GenerateSignals(ctx context.Context, history []domain.Candle, pf *Portfolio) []OrderIntent
	// ExecuteOrders sizes and fills the proposed entries against the
	// portfolio at the current bar.
	ExecuteOrders(ctx context.Context, pf *Portfolio, intents []OrderIntent, bar domain.Candle)
	// Rebalance runs after entries, applying exit rules to whatever is
	// held at the current bar.
	Rebalance(ctx context.Context, pf *Portfolio, bar domain.Candle)
}

// Portfolio is the synthetic book a run trades against. Fills are
// synchronous at the referenced price with slippage and commission
// applied per side.
type Portfolio struct {
	Cash     float64
	Position *OpenPosition
	Trades   []Trade

	commission float64
	slippage   float64
}

func NewPortfolio(p Params) *Portfolio {
	return &Portfolio{
		Cash:       p.InitialCash,
		commission: p.Commission,
		slippage:   p.Slippage,
	}
}

// Buy opens the single position. Rejected silently when one is already
// open, the quantity is non-positive, or cash is short.
func (pf *Portfolio) Buy(bar domain.Candle, quantity int64) bool {
	if pf.Position != nil || quantity <= 0 {
		return false
	}
	fill := bar.Close * (1 + pf.slippage)
	cost := fill * float64(quantity)
	cost += cost * pf.commission
	if cost > pf.Cash {
		return false
	}
	pf.Cash -= cost
	pf.Position = &OpenPosition{
		Symbol:     bar.Symbol,
		Quantity:   quantity,
		EntryPrice: fill,
		EntryTime:  bar.Ts,
	}
	return true
}

// Sell closes the open position at the bar and records the round trip.
// A no-op without a position.
func (pf *Portfolio) Sell(bar domain.Candle, reason string) {
	if pf.Position == nil {
		return
	}
	pos := pf.Position
	fill := bar.Close * (1 - pf.slippage)
	proceeds := fill * float64(pos.Quantity)
	proceeds -= proceeds * pf.commission
	pf.Cash += proceeds

	pnl := (fill - pos.EntryPrice) * float64(pos.Quantity)
	pf.Trades = append(pf.Trades, Trade{
		Symbol:     pos.Symbol,
		EntryTime:  pos.EntryTime,
		ExitTime:   bar.Ts,
		Quantity:   pos.Quantity,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  fill,
		PnL:        pnl,
		ProfitRate: pos.ProfitRate(fill),
		Reason:     reason,
	})
	pf.Position = nil
}

// Equity marks the book at the given price.
func (pf *Portfolio) Equity(mark float64) float64 {
	eq := pf.Cash
	if pf.Position != nil {
		eq += mark * float64(pf.Position.Quantity)
	}
	return eq
}

// Engine replays a strategy over historical bars with the same decision
// rules the live scheduler applies.
type Engine struct {
	params   Params
	strategy Strategy
	warmup   int
}

// NewEngine builds a run. warmup bars are consumed before the first
// decision so indicator windows are populated.
func NewEngine(params Params, strategy Strategy, warmup int) *Engine {
	if warmup < 1 {
		warmup = 1
	}
	return &Engine{params: params, strategy: strategy, warmup: warmup}
}

// Run drives the strategy over the bar series, oldest first, and
// computes the performance report. Any position still open at the last
// bar is force-closed.
func (e *Engine) Run(ctx context.Context, bars []domain.Candle) (*Result, error) {
	if len(bars) <= e.warmup {
		return nil, ErrNoData
	}

	pf := NewPortfolio(e.params)
	curve := make([]EquityPoint, 0, len(bars)-e.warmup)

	for i := e.warmup; i < len(bars); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bar := bars[i]
		history := bars[:i+1]

		intents := e.strategy.GenerateSignals(ctx, history, pf)
		e.strategy.ExecuteOrders(ctx, pf, intents, bar)
		e.strategy.Rebalance(ctx, pf, bar)

		curve = append(curve, EquityPoint{Ts: bar.Ts, Equity: pf.Equity(bar.Close)})
	}

	if pf.Position != nil {
		last := bars[len(bars)-1]
		pf.Sell(last, "end of range")
		curve[len(curve)-1] = EquityPoint{Ts: last.Ts, Equity: pf.Equity(last.Close)}
	}

	returns := dailyReturns(curve)
	result := &Result{
		Params:       e.params,
		Trades:       pf.Trades,
		EquityCurve:  curve,
		DailyReturns: returns,
		Stats:        ComputeStats(e.params.InitialCash, curve, returns, pf.Trades),
	}
	slog.Debug("run complete",
		slog.Int("bars", len(bars)),
		slog.Int("trades", len(pf.Trades)),
		slog.Float64("total_return", result.Stats.TotalReturn))
	return result, nil
}

func dailyReturns(curve []EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (curve[i].Equity-prev)/prev)
	}
	return out
}
