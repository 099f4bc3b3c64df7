package execution

import (
	"context"
	"errors"
	"testing"
)

func TestPaperGateway_BuyThenSell(t *testing.T) {
	g := NewPaperGateway(100000)
	ctx := context.Background()

	buy := NewMarketOrder("7203", SideBuy, 100, 500)
	fill, err := g.PlaceOrder(ctx, buy)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if fill.Price != 500 || fill.Quantity != 100 {
		t.Errorf("unexpected fill %+v", fill)
	}
	if got := g.Cash(); got != 50000 {
		t.Errorf("cash after buy = %v, want 50000", got)
	}
	if got := g.Holding("7203"); got != 100 {
		t.Errorf("holding = %d, want 100", got)
	}

	sell := NewMarketOrder("7203", SideSell, 100, 520)
	if _, err := g.PlaceOrder(ctx, sell); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if got := g.Cash(); got != 102000 {
		t.Errorf("cash after round trip = %v, want 102000", got)
	}
	if got := g.Holding("7203"); got != 0 {
		t.Errorf("holding after sell = %d, want 0", got)
	}
	if got := len(g.Fills()); got != 2 {
		t.Errorf("fills = %d, want 2", got)
	}
}

func TestPaperGateway_Rejections(t *testing.T) {
	g := NewPaperGateway(1000)
	ctx := context.Background()

	tests := []struct {
		name  string
		order Order
	}{
		{"insufficient cash", NewMarketOrder("7203", SideBuy, 100, 500)},
		{"no position to sell", NewMarketOrder("7203", SideSell, 1, 500)},
		{"zero quantity", NewMarketOrder("7203", SideBuy, 0, 500)},
		{"no reference price", NewMarketOrder("7203", SideBuy, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.PlaceOrder(ctx, tt.order)
			if !errors.Is(err, ErrOrderRejected) {
				t.Errorf("expected ErrOrderRejected, got %v", err)
			}
		})
	}

	// A rejected order must not touch the book.
	if g.Cash() != 1000 {
		t.Errorf("cash changed by rejected orders: %v", g.Cash())
	}
	if len(g.Fills()) != 0 {
		t.Errorf("rejected orders produced fills: %d", len(g.Fills()))
	}
}
