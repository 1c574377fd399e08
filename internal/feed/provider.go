package feed

import (
	"context"

	"GoldSentry/internal/model"
)

// QuoteProvider answers live price lookups. Providers are tried in priority
// order by the Aggregator; any error means "try the next provider".
type QuoteProvider interface {
	Name() string
	Supports(symbol string) bool
	FetchQuote(ctx context.Context, symbol string) (float64, error)
}

// CandleProvider answers historical bar lookups. Returned series must be in
// chronological order, oldest first.
type CandleProvider interface {
	Name() string
	FetchCandles(ctx context.Context, symbol string, limit int, interval model.Interval) ([]model.Candle, error)
}
