package event

import (
	"time"

	"daytrade_go/internal/domain"
)

// Type identifies an engine event.
type Type string

const (
	EvStarted            Type = "started"
	EvStopped            Type = "stopped"
	EvBuySignalGenerated Type = "buy_signal_generated"
	EvBuyExecuted        Type = "buy_executed"
	EvSellExecuted       Type = "sell_executed"
	EvSourceDisabled     Type = "source_disabled"
	EvSourceEnabled      Type = "source_enabled"
	EvError              Type = "error"
)

// Event is one observable engine occurrence. Exactly one of the
// optional payloads is set depending on Type.
type Event struct {
	Type   Type      `json:"type"`
	Symbol string    `json:"symbol,omitempty"`
	Source string    `json:"source,omitempty"`
	Detail string    `json:"detail,omitempty"`
	Ts     time.Time `json:"ts"`

	Trade  *domain.TradeHistoryRecord `json:"trade,omitempty"`
	Signal *domain.AggregatedSignal   `json:"signal,omitempty"`
	Err    string                     `json:"error,omitempty"`
}

// NewEvent builds an event stamped with the current time.
func NewEvent(t Type) Event {
	return Event{Type: t, Ts: time.Now()}
}
