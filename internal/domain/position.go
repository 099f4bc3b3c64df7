package domain

import "time"

// Position is the single open position. At most one instance exists at
// any time: created by a confirmed buy, updated every monitoring tick,
// destroyed by a confirmed sell.
type Position struct {
	Symbol       string    `json:"symbol"`
	Quantity     int64     `json:"quantity"`
	EntryPrice   float64   `json:"entry_price"`
	EntryTime    time.Time `json:"entry_time"`
	CurrentPrice float64   `json:"current_price"`
	ProfitRate   float64   `json:"profit_rate"`
	ProfitAmount float64   `json:"profit_amount"`
}

// UpdatePrice recomputes the unrealized profit figures for a new mark.
func (p *Position) UpdatePrice(price float64) {
	p.CurrentPrice = price
	p.ProfitRate = (price - p.EntryPrice) / p.EntryPrice
	p.ProfitAmount = (price - p.EntryPrice) * float64(p.Quantity)
}

// Notional returns the entry value of the position.
func (p *Position) Notional() float64 {
	return p.EntryPrice * float64(p.Quantity)
}
