package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// PaperGateway simulates order execution against a virtual cash book.
// Exact decimal arithmetic for the cash leg keeps simulated accounting
// free of float drift over long sessions.
type PaperGateway struct {
	mu       sync.Mutex
	cash     decimal.Decimal
	holdings map[string]int64
	fills    []Fill
}

// NewPaperGateway creates a paper gateway with the given starting cash.
func NewPaperGateway(initialCash float64) *PaperGateway {
	return &PaperGateway{
		cash:     decimal.NewFromFloat(initialCash),
		holdings: make(map[string]int64),
	}
}

// PlaceOrder fills a market order immediately at the reference price.
func (p *PaperGateway) PlaceOrder(ctx context.Context, order Order) (Fill, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if order.Quantity <= 0 {
		return Fill{}, fmt.Errorf("%w: non-positive quantity %d", ErrOrderRejected, order.Quantity)
	}
	if order.Price <= 0 {
		return Fill{}, fmt.Errorf("%w: no reference price for %s", ErrOrderRejected, order.Symbol)
	}

	price := decimal.NewFromFloat(order.Price)
	notional := price.Mul(decimal.NewFromInt(order.Quantity))

	switch order.Side {
	case SideBuy:
		if p.cash.LessThan(notional) {
			return Fill{}, fmt.Errorf("%w: insufficient cash: need %s, have %s",
				ErrOrderRejected, notional, p.cash)
		}
		p.cash = p.cash.Sub(notional)
		p.holdings[order.Symbol] += order.Quantity

	case SideSell:
		if p.holdings[order.Symbol] < order.Quantity {
			return Fill{}, fmt.Errorf("%w: insufficient position: need %d, have %d",
				ErrOrderRejected, order.Quantity, p.holdings[order.Symbol])
		}
		p.holdings[order.Symbol] -= order.Quantity
		p.cash = p.cash.Add(notional)

	default:
		return Fill{}, fmt.Errorf("%w: unknown side %q", ErrOrderRejected, order.Side)
	}

	fill := Fill{
		OrderID:  order.ID,
		Symbol:   order.Symbol,
		Side:     order.Side,
		Quantity: order.Quantity,
		Price:    order.Price,
		Ts:       time.Now(),
	}
	p.fills = append(p.fills, fill)

	slog.Info("paper fill",
		slog.String("id", order.ID),
		slog.String("symbol", order.Symbol),
		slog.String("side", string(order.Side)),
		slog.Float64("price", order.Price),
		slog.Int64("qty", order.Quantity))
	return fill, nil
}

// Cash returns the current virtual cash balance.
func (p *PaperGateway) Cash() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, _ := p.cash.Float64()
	return f
}

// Holding returns the held quantity for a symbol.
func (p *PaperGateway) Holding(symbol string) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.holdings[symbol]
}

// Fills returns a copy of all executed fills.
func (p *PaperGateway) Fills() []Fill {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Fill, len(p.fills))
	copy(out, p.fills)
	return out
}
