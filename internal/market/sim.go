package market

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"daytrade_go/internal/domain"
)

// SimProvider is a deterministic random-walk market simulator. It backs
// paper trading and tests; every symbol walks from a seeded base price,
// so a given (seed, universe) always produces the same series.
type SimProvider struct {
	mu       sync.Mutex
	rng      *rand.Rand
	universe []string
	prices   map[string]float64
	volumes  map[string]int64
	history  map[string][]domain.Candle
	drift    float64
	vol      float64
}

// NewSimProvider creates a simulator over the given universe.
func NewSimProvider(universe []string, seed int64) *SimProvider {
	p := &SimProvider{
		rng:      rand.New(rand.NewSource(seed)),
		universe: append([]string(nil), universe...),
		prices:   make(map[string]float64, len(universe)),
		volumes:  make(map[string]int64, len(universe)),
		history:  make(map[string][]domain.Candle, len(universe)),
		drift:    0.0001,
		vol:      0.01,
	}
	for i, sym := range p.universe {
		base := 200 + float64(i)*150
		p.prices[sym] = base
		p.volumes[sym] = 150000 + int64(i)*50000
		p.seedHistory(sym, base, 120)
	}
	return p
}

func (p *SimProvider) seedHistory(symbol string, base float64, n int) {
	bars := make([]domain.Candle, 0, n)
	price := base
	ts := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		next := price * math.Exp(p.drift+p.vol*p.rng.NormFloat64())
		high := math.Max(price, next) * (1 + 0.002*p.rng.Float64())
		low := math.Min(price, next) * (1 - 0.002*p.rng.Float64())
		bars = append(bars, domain.Candle{
			Symbol: symbol,
			Open:   price,
			High:   high,
			Low:    low,
			Close:  next,
			Volume: p.volumes[symbol] / int64(n),
			Ts:     ts.Add(time.Duration(i) * time.Minute),
		})
		price = next
	}
	p.history[symbol] = bars
	p.prices[symbol] = price
}

// Quote returns the current simulated snapshot, advancing the walk one
// step.
func (p *SimProvider) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	price, ok := p.prices[symbol]
	if !ok {
		return domain.Quote{}, fmt.Errorf("unknown symbol %q", symbol)
	}

	next := price * math.Exp(p.drift+p.vol*p.rng.NormFloat64())
	p.prices[symbol] = next

	spread := next * 0.0005
	return domain.Quote{
		Symbol:    symbol,
		Price:     next,
		Bid:       next - spread,
		Ask:       next + spread,
		Volume:    p.volumes[symbol],
		High:      next * 1.01,
		Low:       next * 0.99,
		Timestamp: time.Now(),
	}, nil
}

// Candles returns the most recent n bars, oldest first.
func (p *SimProvider) Candles(ctx context.Context, symbol string, n int) ([]domain.Candle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bars, ok := p.history[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown symbol %q", symbol)
	}
	if n > len(bars) {
		n = len(bars)
	}
	out := make([]domain.Candle, n)
	copy(out, bars[len(bars)-n:])
	return out, nil
}

// Screen filters the universe by price/volume bounds.
func (p *SimProvider) Screen(ctx context.Context, criteria domain.ScreenCriteria) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []string
	for _, sym := range p.universe {
		q := domain.Quote{Symbol: sym, Price: p.prices[sym], Volume: p.volumes[sym]}
		if criteria.Matches(q) {
			matched = append(matched, sym)
		}
	}
	return matched, nil
}

// SetPrice pins a symbol's price. Test hook.
func (p *SimProvider) SetPrice(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[symbol] = price
	// Freeze the walk so the pinned price sticks.
	p.vol = 0
	p.drift = 0
}
