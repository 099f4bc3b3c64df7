package execution

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrOrderRejected is returned when the gateway refuses an order
// (insufficient cash, missing position, bad parameters).
var ErrOrderRejected = errors.New("order rejected")

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Order is a request to the broker gateway. Only market orders exist in
// this engine; Price carries the reference quote used for the
// synchronous fill.
type Order struct {
	ID       string
	Symbol   string
	Side     Side
	Type     string // "MARKET"
	Quantity int64
	Price    float64
}

// Fill is the synchronous result of a placed market order.
type Fill struct {
	OrderID  string
	Symbol   string
	Side     Side
	Quantity int64
	Price    float64
	Ts       time.Time
}

// NewMarketOrder builds a market order with a fresh ID.
func NewMarketOrder(symbol string, side Side, quantity int64, refPrice float64) Order {
	return Order{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Side:     side,
		Type:     "MARKET",
		Quantity: quantity,
		Price:    refPrice,
	}
}

// Gateway places orders with a broker. Market orders are assumed to
// fill synchronously; a returned error means nothing was executed.
type Gateway interface {
	PlaceOrder(ctx context.Context, order Order) (Fill, error)
}
