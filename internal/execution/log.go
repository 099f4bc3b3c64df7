package execution

import (
	"context"
	"log/slog"
	"time"
)

// LogGateway only logs orders and reports them filled at the reference
// price. Useful for dry runs where even virtual accounting is unwanted.
type LogGateway struct{}

func NewLogGateway() *LogGateway { return &LogGateway{} }

func (g *LogGateway) PlaceOrder(ctx context.Context, order Order) (Fill, error) {
	slog.Info("LOG EXECUTION: order",
		slog.String("id", order.ID),
		slog.String("symbol", order.Symbol),
		slog.String("side", string(order.Side)),
		slog.Float64("price", order.Price),
		slog.Int64("qty", order.Quantity))
	return Fill{
		OrderID:  order.ID,
		Symbol:   order.Symbol,
		Side:     order.Side,
		Quantity: order.Quantity,
		Price:    order.Price,
		Ts:       time.Now(),
	}, nil
}
