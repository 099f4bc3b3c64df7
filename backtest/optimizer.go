package backtest

import (
	"context"
	"log/slog"

	"daytrade_go/internal/domain"
)

// ParamGrid spans the parameter sets a sweep evaluates. Empty axes
// fall back to the base value.
type ParamGrid struct {
	StopLoss   []float64
	TakeProfit []float64
	Slippage   []float64
}

// Candidate pairs one parameter set with its full run result.
type Candidate struct {
	Params Params
	Result *Result
}

// Sweep is the outcome of a grid search: every evaluated candidate
// plus the best one by total return.
type Sweep struct {
	Candidates []Candidate
	Best       Candidate
}

func (g ParamGrid) axis(values []float64, base float64) []float64 {
	if len(values) == 0 {
		return []float64{base}
	}
	return values
}

// expand enumerates the cartesian product of the grid over the base
// parameter set.
func (g ParamGrid) expand(base Params) []Params {
	var out []Params
	for _, sl := range g.axis(g.StopLoss, base.StopLoss) {
		for _, tp := range g.axis(g.TakeProfit, base.TakeProfit) {
			for _, slip := range g.axis(g.Slippage, base.Slippage) {
				p := base
				p.StopLoss = sl
				p.TakeProfit = tp
				p.Slippage = slip
				if p.HardTakeProfit <= p.TakeProfit {
					p.HardTakeProfit = p.TakeProfit + 0.02
				}
				out = append(out, p)
			}
		}
	}
	return out
}

// Optimize reruns the full backtest per candidate parameter set and
// returns the whole sweep with the best candidate by total return.
// Each candidate gets a fresh strategy so no indicator state leaks
// between runs.
func Optimize(ctx context.Context, base Params, grid ParamGrid, bars []domain.Candle,
	newStrategy func(Params) Strategy, warmup int) (*Sweep, error) {

	sets := grid.expand(base)
	sweep := &Sweep{Candidates: make([]Candidate, 0, len(sets))}

	for _, p := range sets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		engine := NewEngine(p, newStrategy(p), warmup)
		result, err := engine.Run(ctx, bars)
		if err != nil {
			return nil, err
		}
		cand := Candidate{Params: p, Result: result}
		sweep.Candidates = append(sweep.Candidates, cand)

		if sweep.Best.Result == nil ||
			result.Stats.TotalReturn > sweep.Best.Result.Stats.TotalReturn {
			sweep.Best = cand
		}
		slog.Debug("candidate evaluated",
			slog.Float64("stop_loss", p.StopLoss),
			slog.Float64("take_profit", p.TakeProfit),
			slog.Float64("total_return", result.Stats.TotalReturn))
	}
	return sweep, nil
}
