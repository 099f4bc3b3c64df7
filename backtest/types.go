package backtest

import (
	"time"

	"daytrade_go/internal/domain"
)

// Params are the strategy and cost knobs a single run is evaluated
// with. The optimizer sweeps over these.
type Params struct {
	StopLoss          float64 `yaml:"stop_loss"`
	EmergencyStopLoss float64 `yaml:"emergency_stop_loss"`
	TakeProfit        float64 `yaml:"take_profit"`
	HardTakeProfit    float64 `yaml:"hard_take_profit"`
	MaxPositionSize   float64 `yaml:"max_position_size"`
	Commission        float64 `yaml:"commission"` // fraction per side
	Slippage          float64 `yaml:"slippage"`   // fraction of price per fill
	InitialCash       float64 `yaml:"initial_cash"`
}

// DefaultParams mirrors the live risk defaults with typical retail
// costs.
func DefaultParams() Params {
	return Params{
		StopLoss:          -0.03,
		EmergencyStopLoss: -0.08,
		TakeProfit:        0.05,
		HardTakeProfit:    0.07,
		MaxPositionSize:   500000,
		Commission:        0.001,
		Slippage:          0.0005,
		InitialCash:       1000000,
	}
}

// Trade is one completed round trip. Immutable once recorded.
type Trade struct {
	Symbol     string
	EntryTime  time.Time
	ExitTime   time.Time
	Quantity   int64
	EntryPrice float64
	ExitPrice  float64
	PnL        float64
	ProfitRate float64
	Reason     string
}

// EquityPoint is one mark of the portfolio value over time.
type EquityPoint struct {
	Ts     time.Time
	Equity float64
}

// Result is the aggregate outcome of one run. Immutable once the run
// completes.
type Result struct {
	Params       Params
	Trades       []Trade
	EquityCurve  []EquityPoint
	DailyReturns []float64
	Stats        Stats
}

// OpenPosition is the single in-flight holding during a run.
type OpenPosition struct {
	Symbol     string
	Quantity   int64
	EntryPrice float64
	EntryTime  time.Time
}

// ProfitRate is the unrealized return at the given mark.
func (p *OpenPosition) ProfitRate(mark float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	return (mark - p.EntryPrice) / p.EntryPrice
}

// OrderIntent is a strategy's request to the portfolio for the current
// bar.
type OrderIntent struct {
	Symbol string
	Side   domain.TradeAction
	Reason string
}
