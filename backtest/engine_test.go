package backtest

import (
	"context"
	"errors"
	"math"
	"testing"

	"daytrade_go/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// buyAndHold enters on the first decision bar and never exits; the
// engine's end-of-range close realizes the trade.
type buyAndHold struct {
	quantity int64
	entered  bool
}

func (s *buyAndHold) GenerateSignals(_ context.Context, history []domain.Candle, pf *Portfolio) []OrderIntent {
	if s.entered || pf.Position != nil {
		return nil
	}
	return []OrderIntent{{Symbol: history[len(history)-1].Symbol, Side: domain.ActionBuy}}
}

func (s *buyAndHold) ExecuteOrders(_ context.Context, pf *Portfolio, intents []OrderIntent, bar domain.Candle) {
	if len(intents) == 0 {
		return
	}
	if pf.Buy(bar, s.quantity) {
		s.entered = true
	}
}

func (s *buyAndHold) Rebalance(_ context.Context, _ *Portfolio, _ domain.Candle) {}

func frictionlessParams() Params {
	p := DefaultParams()
	p.Commission = 0
	p.Slippage = 0
	return p
}

func TestPortfolio_BuySellWithCosts(t *testing.T) {
	p := DefaultParams()
	p.InitialCash = 100000
	p.Commission = 0.001
	p.Slippage = 0.0005
	pf := NewPortfolio(p)

	entry := domain.Candle{Symbol: "7203", Close: 100}
	if !pf.Buy(entry, 10) {
		t.Fatal("buy rejected")
	}
	// fill 100.05, cost 1000.5 * 1.001
	wantCash := 100000 - 1000.5*1.001
	if !almostEqual(pf.Cash, wantCash) {
		t.Errorf("cash after buy = %v, want %v", pf.Cash, wantCash)
	}
	if pf.Position == nil || pf.Position.EntryPrice != 100.05 {
		t.Fatalf("position = %+v", pf.Position)
	}

	// Only one position at a time.
	if pf.Buy(entry, 1) {
		t.Error("second buy accepted with a position open")
	}

	exit := domain.Candle{Symbol: "7203", Close: 110}
	pf.Sell(exit, "take profit")
	if pf.Position != nil {
		t.Error("position survived the sell")
	}
	if len(pf.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(pf.Trades))
	}
	tr := pf.Trades[0]
	if !almostEqual(tr.ExitPrice, 110*(1-0.0005)) {
		t.Errorf("exit price = %v", tr.ExitPrice)
	}
	if !almostEqual(tr.PnL, (tr.ExitPrice-100.05)*10) {
		t.Errorf("pnl = %v", tr.PnL)
	}
	if tr.Reason != "take profit" {
		t.Errorf("reason = %q", tr.Reason)
	}
}

func TestPortfolio_Rejections(t *testing.T) {
	p := frictionlessParams()
	p.InitialCash = 100
	pf := NewPortfolio(p)
	bar := domain.Candle{Symbol: "7203", Close: 100}

	if pf.Buy(bar, 0) {
		t.Error("zero quantity accepted")
	}
	if pf.Buy(bar, 5) {
		t.Error("buy beyond cash accepted")
	}
	pf.Sell(bar, "stop loss")
	if len(pf.Trades) != 0 {
		t.Error("sell without position recorded a trade")
	}
}

func TestEngine_EndOfRangeClose(t *testing.T) {
	bars := SyntheticBars("7203", 20, 100, 0.01, 0, 1) // steady climb
	params := frictionlessParams()
	strat := &buyAndHold{quantity: 100}

	result, err := NewEngine(params, strat, 5).Run(context.Background(), bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(result.Trades))
	}
	if result.Trades[0].Reason != "end of range" {
		t.Errorf("reason = %q, want end of range", result.Trades[0].Reason)
	}
	if result.Trades[0].PnL <= 0 {
		t.Errorf("rising series produced pnl %v", result.Trades[0].PnL)
	}
	if result.Stats.TotalReturn <= 0 {
		t.Errorf("total return = %v, want > 0", result.Stats.TotalReturn)
	}
	if len(result.EquityCurve) != len(bars)-5 {
		t.Errorf("equity points = %d, want %d", len(result.EquityCurve), len(bars)-5)
	}
}

func TestEngine_TooFewBars(t *testing.T) {
	bars := SyntheticBars("7203", 3, 100, 0, 0, 1)
	_, err := NewEngine(frictionlessParams(), &buyAndHold{quantity: 1}, 10).Run(context.Background(), bars)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestConsensusStrategy_FlatSeriesIsSilent(t *testing.T) {
	bars := SyntheticBars("7203", 80, 1000, 0, 0, 1)
	params := frictionlessParams()
	strat := NewConsensusStrategy(params, 3)

	result, err := NewEngine(params, strat, 40).Run(context.Background(), bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Trades) != 0 {
		t.Errorf("flat series traded %d times", len(result.Trades))
	}
	if result.Stats.TotalReturn != 0 {
		t.Errorf("total return = %v, want 0", result.Stats.TotalReturn)
	}
	if result.Stats.Sharpe != 0 {
		t.Errorf("sharpe = %v, want exactly 0", result.Stats.Sharpe)
	}
	if math.IsNaN(result.Stats.Sharpe) || math.IsNaN(result.Stats.Sortino) {
		t.Error("zero-variance ratios must not be NaN")
	}
	if result.Stats.FinalEquity != params.InitialCash {
		t.Errorf("final equity = %v, want %v", result.Stats.FinalEquity, params.InitialCash)
	}
}

func TestConsensusStrategy_RespectsPositionCap(t *testing.T) {
	params := frictionlessParams()
	params.MaxPositionSize = 10000
	strat := NewConsensusStrategy(params, 3)
	pf := NewPortfolio(params)
	bar := domain.Candle{Symbol: "7203", Close: 300}

	strat.ExecuteOrders(context.Background(), pf,
		[]OrderIntent{{Symbol: "7203", Side: domain.ActionBuy}}, bar)

	if pf.Position == nil {
		t.Fatal("no position opened")
	}
	notional := float64(pf.Position.Quantity) * pf.Position.EntryPrice
	if notional > params.MaxPositionSize {
		t.Errorf("notional %v exceeds cap %v", notional, params.MaxPositionSize)
	}
	if pf.Position.Quantity != 33 { // floor(10000/300)
		t.Errorf("quantity = %d, want 33", pf.Position.Quantity)
	}
}

func TestConsensusStrategy_ExitLadder(t *testing.T) {
	tests := []struct {
		name       string
		exitClose  float64
		wantReason string
	}{
		{"emergency stop loss", 91, "emergency stop loss"},
		{"stop loss", 96.5, "stop loss"},
		{"hard ceiling", 108, "take profit (hard ceiling)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := frictionlessParams()
			strat := NewConsensusStrategy(params, 3)
			pf := NewPortfolio(params)
			pf.Position = &OpenPosition{Symbol: "7203", Quantity: 100, EntryPrice: 100}

			strat.Rebalance(context.Background(), pf,
				domain.Candle{Symbol: "7203", Close: tt.exitClose})

			if pf.Position != nil {
				t.Fatal("position not closed")
			}
			if got := pf.Trades[0].Reason; got != tt.wantReason {
				t.Errorf("reason = %q, want %q", got, tt.wantReason)
			}
		})
	}
}

func TestConsensusStrategy_HoldBandKeepsPosition(t *testing.T) {
	params := frictionlessParams()
	strat := NewConsensusStrategy(params, 3)
	pf := NewPortfolio(params)
	pf.Position = &OpenPosition{Symbol: "7203", Quantity: 100, EntryPrice: 100}

	strat.Rebalance(context.Background(), pf,
		domain.Candle{Symbol: "7203", Close: 101})

	if pf.Position == nil {
		t.Error("position in the hold band was closed")
	}
}
