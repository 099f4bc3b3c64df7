package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"daytrade_go/backtest"
	"daytrade_go/internal/domain"
)

func main() {
	var (
		optimize = flag.Bool("optimize", false, "run the grid-search parameter sweep")
		csvPath  = flag.String("csv", "", "CSV bar file (date,open,high,low,close,volume); synthetic series when empty")
		symbol   = flag.String("symbol", "7203", "symbol label for the series")
		bars     = flag.Int("bars", 252, "number of daily bars to generate")
		start    = flag.Float64("start", 1000, "starting price")
		drift    = flag.Float64("drift", 0.0005, "per-bar relative drift")
		vol      = flag.Float64("vol", 0.015, "per-bar volatility")
		seed     = flag.Int64("seed", 42, "random walk seed")
	)
	flag.Parse()

	ctx := context.Background()
	params := backtest.DefaultParams()

	var series []domain.Candle
	if *csvPath != "" {
		var err error
		series, err = backtest.LoadCandlesCSV(*csvPath, *symbol)
		if err != nil {
			slog.Error("failed to load bars", slog.String("path", *csvPath), slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		series = backtest.SyntheticBars(*symbol, *bars, *start, *drift, *vol, *seed)
	}

	if *optimize {
		runSweep(ctx, params, series)
		return
	}

	strat := backtest.NewConsensusStrategy(params, 3)
	result, err := backtest.NewEngine(params, strat, 40).Run(ctx, series)
	if err != nil {
		slog.Error("backtest failed", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Printf("=== Backtest: %s over %d bars ===\n\n", *symbol, len(series))
	fmt.Print(result.Stats.String())
	fmt.Printf("\nTrades:\n")
	for _, t := range result.Trades {
		fmt.Printf("  %s  %s -> %s  x%d  %.2f -> %.2f  pnl %+.0f  (%s)\n",
			t.Symbol, t.EntryTime.Format("2006-01-02"), t.ExitTime.Format("2006-01-02"),
			t.Quantity, t.EntryPrice, t.ExitPrice, t.PnL, t.Reason)
	}
}

func runSweep(ctx context.Context, base backtest.Params, series []domain.Candle) {
	grid := backtest.ParamGrid{
		StopLoss:   []float64{-0.02, -0.03, -0.04},
		TakeProfit: []float64{0.03, 0.05, 0.08},
		Slippage:   []float64{0.0005, 0.001},
	}
	sweep, err := backtest.Optimize(ctx, base, grid, series,
		func(p backtest.Params) backtest.Strategy {
			return backtest.NewConsensusStrategy(p, 3)
		}, 40)
	if err != nil {
		slog.Error("optimization failed", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Printf("=== Grid sweep: %d candidates ===\n\n", len(sweep.Candidates))
	fmt.Printf("%-10s %-10s %-10s %10s %8s %8s\n",
		"stop", "target", "slippage", "return", "sharpe", "trades")
	for _, c := range sweep.Candidates {
		st := c.Result.Stats
		fmt.Printf("%-10.3f %-10.3f %-10.4f %9.2f%% %8.2f %8d\n",
			c.Params.StopLoss, c.Params.TakeProfit, c.Params.Slippage,
			st.TotalReturn*100, st.Sharpe, st.TotalTrades)
	}

	fmt.Printf("\n=== Best by total return ===\n")
	fmt.Printf("stop %.3f / target %.3f / slippage %.4f\n\n",
		sweep.Best.Params.StopLoss, sweep.Best.Params.TakeProfit, sweep.Best.Params.Slippage)
	fmt.Print(sweep.Best.Result.Stats.String())
}
