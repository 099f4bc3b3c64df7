package domain

import "time"

// SignalType is the direction of a single source opinion.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalHold SignalType = "HOLD"
	SignalSell SignalType = "SELL"
)

// TradingSignal is one source's opinion for one symbol.
// Immutable once returned by a source.
type TradingSignal struct {
	Source     string     `json:"source"`
	Symbol     string     `json:"symbol"`
	Signal     SignalType `json:"signal"`
	Confidence float64    `json:"confidence"` // 0..100
	Reason     string     `json:"reason"`
	Timestamp  time.Time  `json:"timestamp"`
}

// AggregatedSignal is the quorum consensus over all responding sources
// for one symbol. It is recomputed on every aggregation call and never
// persisted as ongoing state.
type AggregatedSignal struct {
	Symbol        string          `json:"symbol"`
	BuySignals    int             `json:"buy_signals"`
	HoldSignals   int             `json:"hold_signals"`
	SellSignals   int             `json:"sell_signals"`
	TotalSources  int             `json:"total_sources"`
	BuyPercentage float64         `json:"buy_percentage"`
	ShouldBuy     bool            `json:"should_buy"`
	ShouldSell    bool            `json:"should_sell"`
	Signals       []TradingSignal `json:"signals"`
	Timestamp     time.Time       `json:"timestamp"`
}
