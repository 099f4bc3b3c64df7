package backtest

import (
	"context"
	"testing"

	"daytrade_go/internal/domain"
)

// paramSensitive wins only under one take-profit setting, so the sweep
// has an unambiguous best.
type paramSensitive struct {
	params  Params
	entered bool
}

func (s *paramSensitive) GenerateSignals(_ context.Context, history []domain.Candle, pf *Portfolio) []OrderIntent {
	if s.entered || pf.Position != nil || s.params.TakeProfit != 0.05 {
		return nil
	}
	return []OrderIntent{{Symbol: history[len(history)-1].Symbol, Side: domain.ActionBuy}}
}

func (s *paramSensitive) ExecuteOrders(_ context.Context, pf *Portfolio, intents []OrderIntent, bar domain.Candle) {
	if len(intents) == 0 {
		return
	}
	if pf.Buy(bar, 100) {
		s.entered = true
	}
}

func (s *paramSensitive) Rebalance(_ context.Context, _ *Portfolio, _ domain.Candle) {}

func TestOptimize_FullSweepAndBest(t *testing.T) {
	bars := SyntheticBars("7203", 30, 100, 0.01, 0, 1)
	base := frictionlessParams()
	grid := ParamGrid{
		StopLoss:   []float64{-0.02, -0.03},
		TakeProfit: []float64{0.03, 0.05, 0.08},
	}

	sweep, err := Optimize(context.Background(), base, grid, bars,
		func(p Params) Strategy { return &paramSensitive{params: p} }, 5)
	if err != nil {
		t.Fatal(err)
	}

	if got := len(sweep.Candidates); got != 6 {
		t.Fatalf("candidates = %d, want 6", got)
	}
	if sweep.Best.Result == nil {
		t.Fatal("no best candidate")
	}
	if sweep.Best.Params.TakeProfit != 0.05 {
		t.Errorf("best take profit = %v, want 0.05", sweep.Best.Params.TakeProfit)
	}
	if sweep.Best.Result.Stats.TotalReturn <= 0 {
		t.Errorf("best total return = %v, want > 0", sweep.Best.Result.Stats.TotalReturn)
	}

	// Every candidate carries its own full run.
	for _, c := range sweep.Candidates {
		if c.Result == nil {
			t.Error("candidate missing its result")
		}
	}
}

func TestParamGrid_EmptyAxesUseBase(t *testing.T) {
	base := DefaultParams()
	sets := ParamGrid{}.expand(base)
	if len(sets) != 1 {
		t.Fatalf("sets = %d, want 1", len(sets))
	}
	if sets[0].StopLoss != base.StopLoss || sets[0].TakeProfit != base.TakeProfit {
		t.Errorf("base params not preserved: %+v", sets[0])
	}
}
