package backtest

import (
	"fmt"
	"math"
	"strings"

	"daytrade_go/pkg/quant"
)

// tradingDaysPerYear annualizes daily-return statistics.
const tradingDaysPerYear = 252

// Stats is the performance report of one run. Ratio denominators of
// zero (no variance, no drawdown, no losses) yield 0 explicitly,
// never NaN or Inf.
type Stats struct {
	TotalReturn      float64
	AnnualizedReturn float64
	Sharpe           float64
	Sortino          float64
	Calmar           float64
	MaxDrawdown      float64
	MaxDrawdownPct   float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	ProfitFactor  float64
	AvgWin        float64
	AvgLoss       float64
	LargestWin    float64
	LargestLoss   float64

	VaR95  float64
	VaR99  float64
	CVaR95 float64
	CVaR99 float64

	FinalEquity float64
}

// ComputeStats derives the full report from one run's raw outputs.
func ComputeStats(initialCash float64, curve []EquityPoint, returns []float64, trades []Trade) Stats {
	st := Stats{TotalTrades: len(trades)}

	if len(curve) > 0 {
		st.FinalEquity = curve[len(curve)-1].Equity
	} else {
		st.FinalEquity = initialCash
	}
	if initialCash > 0 {
		st.TotalReturn = (st.FinalEquity - initialCash) / initialCash
	}

	if n := len(returns); n > 0 && 1+st.TotalReturn > 0 {
		st.AnnualizedReturn = math.Pow(1+st.TotalReturn, tradingDaysPerYear/float64(n)) - 1
	} else if 1+st.TotalReturn <= 0 {
		st.AnnualizedReturn = -1
	}

	mean := quant.Mean(returns)
	if sd := quant.StdDev(returns); sd > 0 {
		st.Sharpe = mean / sd * math.Sqrt(tradingDaysPerYear)
	}
	if dd := quant.DownsideDev(returns, 0); dd > 0 {
		st.Sortino = mean / dd * math.Sqrt(tradingDaysPerYear)
	}

	equities := make([]float64, len(curve))
	for i, p := range curve {
		equities[i] = p.Equity
	}
	st.MaxDrawdown, st.MaxDrawdownPct = quant.MaxDrawdown(equities)
	if st.MaxDrawdownPct > 0 {
		st.Calmar = st.AnnualizedReturn / st.MaxDrawdownPct
	}

	st.VaR95, st.CVaR95 = valueAtRisk(returns, 0.95)
	st.VaR99, st.CVaR99 = valueAtRisk(returns, 0.99)

	var grossWin, grossLoss float64
	for _, t := range trades {
		switch {
		case t.PnL > 0:
			st.WinningTrades++
			grossWin += t.PnL
			if t.PnL > st.LargestWin {
				st.LargestWin = t.PnL
			}
		case t.PnL < 0:
			st.LosingTrades++
			grossLoss += -t.PnL
			if t.PnL < st.LargestLoss {
				st.LargestLoss = t.PnL
			}
		}
	}
	if st.TotalTrades > 0 {
		st.WinRate = float64(st.WinningTrades) / float64(st.TotalTrades)
	}
	if st.WinningTrades > 0 {
		st.AvgWin = grossWin / float64(st.WinningTrades)
	}
	if st.LosingTrades > 0 {
		st.AvgLoss = -grossLoss / float64(st.LosingTrades)
	}
	if grossLoss > 0 {
		st.ProfitFactor = grossWin / grossLoss
	}
	return st
}

// valueAtRisk returns the empirical VaR and CVaR at the given
// confidence as positive loss fractions.
func valueAtRisk(returns []float64, confidence float64) (vaR, cvaR float64) {
	if len(returns) == 0 {
		return 0, 0
	}
	q := quant.Quantile(returns, 1-confidence)
	vaR = -q

	var tailSum float64
	var tailN int
	for _, r := range returns {
		if r <= q {
			tailSum += r
			tailN++
		}
	}
	if tailN > 0 {
		cvaR = -tailSum / float64(tailN)
	}
	return vaR, cvaR
}

// String renders a human-readable report.
func (st Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total return:       %8.2f%%\n", st.TotalReturn*100)
	fmt.Fprintf(&b, "Annualized return:  %8.2f%%\n", st.AnnualizedReturn*100)
	fmt.Fprintf(&b, "Sharpe:             %8.2f\n", st.Sharpe)
	fmt.Fprintf(&b, "Sortino:            %8.2f\n", st.Sortino)
	fmt.Fprintf(&b, "Calmar:             %8.2f\n", st.Calmar)
	fmt.Fprintf(&b, "Max drawdown:       %8.0f (%.2f%%)\n", st.MaxDrawdown, st.MaxDrawdownPct*100)
	fmt.Fprintf(&b, "Trades:             %8d (win rate %.1f%%)\n", st.TotalTrades, st.WinRate*100)
	fmt.Fprintf(&b, "Profit factor:      %8.2f\n", st.ProfitFactor)
	fmt.Fprintf(&b, "Avg win / loss:     %8.0f / %.0f\n", st.AvgWin, st.AvgLoss)
	fmt.Fprintf(&b, "Largest win / loss: %8.0f / %.0f\n", st.LargestWin, st.LargestLoss)
	fmt.Fprintf(&b, "VaR 95/99:          %8.4f / %.4f\n", st.VaR95, st.VaR99)
	fmt.Fprintf(&b, "CVaR 95/99:         %8.4f / %.4f\n", st.CVaR95, st.CVaR99)
	fmt.Fprintf(&b, "Final equity:       %8.0f\n", st.FinalEquity)
	return b.String()
}
