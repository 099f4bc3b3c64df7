package domain

import "time"

// Quote is a point-in-time market snapshot for one symbol.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Volume    int64     `json:"volume"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Timestamp time.Time `json:"timestamp"`
}

// Candle is one OHLCV bar.
type Candle struct {
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
	Ts     time.Time `json:"ts"`
}

// ScreenCriteria bounds the tradable universe for the screening phase.
type ScreenCriteria struct {
	MinPrice  float64 `yaml:"min_price" json:"min_price"`
	MaxPrice  float64 `yaml:"max_price" json:"max_price"`
	MinVolume int64   `yaml:"min_volume" json:"min_volume"`
}

// Matches reports whether a quote passes the screen.
func (c ScreenCriteria) Matches(q Quote) bool {
	if q.Price < c.MinPrice || q.Price > c.MaxPrice {
		return false
	}
	return q.Volume >= c.MinVolume
}
