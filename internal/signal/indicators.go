package signal

import (
	"context"
	"fmt"
	"math"
	"time"

	"daytrade_go/internal/domain"
	"daytrade_go/internal/market"

	"github.com/cinar/indicator"
	"github.com/samber/lo"
)

// Indicator-backed opinion providers. Each computes one technical view
// over recent candles and votes independently; the aggregator treats
// them as unreliable peers like any external feed.

const indicatorBars = 60

func closesOf(bars []domain.Candle) []float64 {
	return lo.Map(bars, func(c domain.Candle, _ int) float64 { return c.Close })
}

func clampConfidence(c float64) float64 {
	return math.Max(0, math.Min(100, c))
}

// RSISource votes on the 14-period relative strength index:
// oversold (<30) is a buy, overbought (>70) a sell.
type RSISource struct {
	provider market.Provider
}

func NewRSISource(p market.Provider) *RSISource { return &RSISource{provider: p} }

func (s *RSISource) Name() string { return "rsi" }

func (s *RSISource) Fetch(ctx context.Context, symbol string) (domain.TradingSignal, error) {
	bars, err := s.provider.Candles(ctx, symbol, indicatorBars)
	if err != nil {
		return domain.TradingSignal{}, err
	}
	closes := closesOf(bars)
	if len(closes) < 15 {
		return domain.TradingSignal{}, fmt.Errorf("rsi: only %d bars of history", len(closes))
	}

	_, rsi := indicator.RsiPeriod(14, closes)
	last := lo.LastOrEmpty(rsi)

	sig := domain.TradingSignal{
		Source:    s.Name(),
		Symbol:    symbol,
		Signal:    domain.SignalHold,
		Reason:    fmt.Sprintf("RSI(14)=%.1f", last),
		Timestamp: time.Now(),
	}
	switch {
	case last < 30:
		sig.Signal = domain.SignalBuy
		sig.Confidence = clampConfidence(50 + (30-last)*5/3)
	case last > 70:
		sig.Signal = domain.SignalSell
		sig.Confidence = clampConfidence(50 + (last-70)*5/3)
	default:
		sig.Confidence = 50
	}
	return sig, nil
}

// MACDSource votes on the MACD line relative to its signal line.
type MACDSource struct {
	provider market.Provider
}

func NewMACDSource(p market.Provider) *MACDSource { return &MACDSource{provider: p} }

func (s *MACDSource) Name() string { return "macd" }

func (s *MACDSource) Fetch(ctx context.Context, symbol string) (domain.TradingSignal, error) {
	bars, err := s.provider.Candles(ctx, symbol, indicatorBars)
	if err != nil {
		return domain.TradingSignal{}, err
	}
	closes := closesOf(bars)
	if len(closes) < 27 {
		return domain.TradingSignal{}, fmt.Errorf("macd: only %d bars of history", len(closes))
	}

	macd, sigLine := indicator.Macd(closes)
	diff := lo.LastOrEmpty(macd) - lo.LastOrEmpty(sigLine)
	price := lo.LastOrEmpty(closes)

	sig := domain.TradingSignal{
		Source:    s.Name(),
		Symbol:    symbol,
		Signal:    domain.SignalHold,
		Reason:    fmt.Sprintf("MACD-signal=%.4f", diff),
		Timestamp: time.Now(),
	}

	// Deadband around zero keeps tiny oscillations out.
	threshold := price * 0.0005
	switch {
	case diff > threshold:
		sig.Signal = domain.SignalBuy
		sig.Confidence = clampConfidence(55 + math.Abs(diff)/price*5000)
	case diff < -threshold:
		sig.Signal = domain.SignalSell
		sig.Confidence = clampConfidence(55 + math.Abs(diff)/price*5000)
	default:
		sig.Confidence = 50
	}
	return sig, nil
}

// TrendSource votes on the fast/slow EMA relationship.
type TrendSource struct {
	provider market.Provider
}

func NewTrendSource(p market.Provider) *TrendSource { return &TrendSource{provider: p} }

func (s *TrendSource) Name() string { return "trend" }

func (s *TrendSource) Fetch(ctx context.Context, symbol string) (domain.TradingSignal, error) {
	bars, err := s.provider.Candles(ctx, symbol, indicatorBars)
	if err != nil {
		return domain.TradingSignal{}, err
	}
	closes := closesOf(bars)
	if len(closes) < 31 {
		return domain.TradingSignal{}, fmt.Errorf("trend: only %d bars of history", len(closes))
	}

	fast := lo.LastOrEmpty(indicator.Ema(10, closes))
	slow := lo.LastOrEmpty(indicator.Ema(30, closes))
	spread := (fast - slow) / slow

	sig := domain.TradingSignal{
		Source:    s.Name(),
		Symbol:    symbol,
		Signal:    domain.SignalHold,
		Reason:    fmt.Sprintf("EMA10/EMA30 spread=%.4f", spread),
		Timestamp: time.Now(),
	}
	switch {
	case spread > 0.002:
		sig.Signal = domain.SignalBuy
		sig.Confidence = clampConfidence(55 + spread*2000)
	case spread < -0.002:
		sig.Signal = domain.SignalSell
		sig.Confidence = clampConfidence(55 + math.Abs(spread)*2000)
	default:
		sig.Confidence = 50
	}
	return sig, nil
}
