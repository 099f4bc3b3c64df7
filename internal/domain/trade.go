package domain

import "time"

// TradeAction is the executed side of a trade history record.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// TradeHistoryRecord is one executed order in the append-only trade log.
// ProfitRate/ProfitAmount are only meaningful for SELL records.
type TradeHistoryRecord struct {
	Date         time.Time   `json:"date"`
	Symbol       string      `json:"symbol"`
	Action       TradeAction `json:"action"`
	Quantity     int64       `json:"quantity"`
	Price        float64     `json:"price"`
	ProfitRate   float64     `json:"profit_rate,omitempty"`
	ProfitAmount float64     `json:"profit_amount,omitempty"`
	Reason       string      `json:"reason"`
}
