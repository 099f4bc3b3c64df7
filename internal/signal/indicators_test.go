package signal

import (
	"context"
	"testing"
	"time"

	"daytrade_go/internal/domain"
)

// barProvider serves a fixed close series as candles.
type barProvider struct {
	closes []float64
}

func (p *barProvider) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	last := p.closes[len(p.closes)-1]
	return domain.Quote{Symbol: symbol, Price: last, Volume: 1e6}, nil
}

func (p *barProvider) Candles(ctx context.Context, symbol string, n int) ([]domain.Candle, error) {
	if n > len(p.closes) {
		n = len(p.closes)
	}
	start := len(p.closes) - n
	bars := make([]domain.Candle, 0, n)
	for i, c := range p.closes[start:] {
		bars = append(bars, domain.Candle{
			Symbol: symbol,
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
			Ts:     time.Now().Add(time.Duration(i-n) * time.Minute),
		})
	}
	return bars, nil
}

func (p *barProvider) Screen(ctx context.Context, c domain.ScreenCriteria) ([]string, error) {
	return nil, nil
}

func rampDown(n int) []float64 {
	out := make([]float64, n)
	price := 200.0
	for i := range out {
		price *= 0.99
		out[i] = price
	}
	return out
}

func rampUp(n int) []float64 {
	out := make([]float64, n)
	price := 200.0
	for i := range out {
		price *= 1.01
		out[i] = price
	}
	return out
}

func TestRSISource_Votes(t *testing.T) {
	down := NewRSISource(&barProvider{closes: rampDown(60)})
	sig, err := down.Fetch(context.Background(), "7203")
	if err != nil {
		t.Fatal(err)
	}
	if sig.Signal != domain.SignalBuy {
		t.Errorf("steady decline should read oversold BUY, got %s (%s)", sig.Signal, sig.Reason)
	}
	if sig.Confidence < 0 || sig.Confidence > 100 {
		t.Errorf("confidence %v outside [0,100]", sig.Confidence)
	}

	up := NewRSISource(&barProvider{closes: rampUp(60)})
	sig, err = up.Fetch(context.Background(), "7203")
	if err != nil {
		t.Fatal(err)
	}
	if sig.Signal != domain.SignalSell {
		t.Errorf("steady rally should read overbought SELL, got %s (%s)", sig.Signal, sig.Reason)
	}
}

func TestTrendSource_Votes(t *testing.T) {
	up := NewTrendSource(&barProvider{closes: rampUp(60)})
	sig, err := up.Fetch(context.Background(), "7203")
	if err != nil {
		t.Fatal(err)
	}
	if sig.Signal != domain.SignalBuy {
		t.Errorf("uptrend should vote BUY, got %s (%s)", sig.Signal, sig.Reason)
	}

	down := NewTrendSource(&barProvider{closes: rampDown(60)})
	sig, err = down.Fetch(context.Background(), "7203")
	if err != nil {
		t.Fatal(err)
	}
	if sig.Signal != domain.SignalSell {
		t.Errorf("downtrend should vote SELL, got %s (%s)", sig.Signal, sig.Reason)
	}
}

func TestMACDSource_Votes(t *testing.T) {
	up := NewMACDSource(&barProvider{closes: rampUp(60)})
	sig, err := up.Fetch(context.Background(), "7203")
	if err != nil {
		t.Fatal(err)
	}
	if sig.Signal != domain.SignalBuy {
		t.Errorf("accelerating rally should vote BUY, got %s (%s)", sig.Signal, sig.Reason)
	}
}

func TestIndicatorSources_InsufficientHistory(t *testing.T) {
	short := &barProvider{closes: rampUp(5)}
	for _, src := range []Source{NewRSISource(short), NewMACDSource(short), NewTrendSource(short)} {
		if _, err := src.Fetch(context.Background(), "7203"); err == nil {
			t.Errorf("%s should fail on 5 bars of history", src.Name())
		}
	}
}
