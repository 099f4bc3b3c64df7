package market

import (
	"context"
	"testing"

	"daytrade_go/internal/domain"
)

func TestSimProvider_Deterministic(t *testing.T) {
	a := NewSimProvider([]string{"7203", "6758"}, 42)
	b := NewSimProvider([]string{"7203", "6758"}, 42)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		qa, err := a.Quote(ctx, "7203")
		if err != nil {
			t.Fatal(err)
		}
		qb, err := b.Quote(ctx, "7203")
		if err != nil {
			t.Fatal(err)
		}
		if qa.Price != qb.Price {
			t.Fatalf("same seed diverged at step %d: %v vs %v", i, qa.Price, qb.Price)
		}
	}
}

func TestSimProvider_UnknownSymbol(t *testing.T) {
	p := NewSimProvider([]string{"7203"}, 1)
	if _, err := p.Quote(context.Background(), "0000"); err == nil {
		t.Error("expected error for unknown symbol")
	}
	if _, err := p.Candles(context.Background(), "0000", 10); err == nil {
		t.Error("expected error for unknown symbol")
	}
}

func TestSimProvider_Candles(t *testing.T) {
	p := NewSimProvider([]string{"7203"}, 1)
	bars, err := p.Candles(context.Background(), "7203", 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 30 {
		t.Fatalf("got %d bars, want 30", len(bars))
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].Ts.Before(bars[i-1].Ts) {
			t.Fatal("bars not in chronological order")
		}
	}
}

func TestSimProvider_Screen(t *testing.T) {
	p := NewSimProvider([]string{"7203", "6758", "9984"}, 7)

	all, err := p.Screen(context.Background(), domain.ScreenCriteria{MinPrice: 0, MaxPrice: 1e9, MinVolume: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("unbounded screen returned %d symbols, want 3", len(all))
	}

	none, err := p.Screen(context.Background(), domain.ScreenCriteria{MinPrice: 1e8, MaxPrice: 1e9, MinVolume: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("impossible screen returned %d symbols, want 0", len(none))
	}
}
