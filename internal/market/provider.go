package market

import (
	"context"

	"daytrade_go/internal/domain"
)

// Provider supplies market data to the engine and the signal sources.
// Implementations are expected to be safe for concurrent use.
type Provider interface {
	// Quote returns the current snapshot for a symbol.
	Quote(ctx context.Context, symbol string) (domain.Quote, error)

	// Candles returns the most recent n bars for a symbol, oldest first.
	Candles(ctx context.Context, symbol string, n int) ([]domain.Candle, error)

	// Screen filters the tradable universe by the given criteria.
	Screen(ctx context.Context, criteria domain.ScreenCriteria) ([]string, error)
}
