package feed

import (
	"context"
	"math"
	"math/rand"
	"time"

	"GoldSentry/internal/model"
)

// Synthetic is the last entry in every provider chain. It fabricates a
// plausible price or candle series from per-symbol base values so the
// aggregator can always return something when every real source is down.
// Callers can tell the data apart by the "synthetic" source tag.
type Synthetic struct {
	GoldSymbol   string
	SilverSymbol string
}

const (
	syntheticGoldBase   = 2035.50
	syntheticSilverBase = 23.45
)

func NewSynthetic(goldSymbol, silverSymbol string) *Synthetic {
	return &Synthetic{GoldSymbol: goldSymbol, SilverSymbol: silverSymbol}
}

func (s *Synthetic) Name() string { return "synthetic" }

func (s *Synthetic) Supports(_ string) bool { return true }

func (s *Synthetic) basePrice(symbol string) float64 {
	if symbol == s.SilverSymbol {
		return syntheticSilverBase
	}
	return syntheticGoldBase
}

// FetchQuote never fails: base price plus bounded jitter in ±0.75.
func (s *Synthetic) FetchQuote(_ context.Context, symbol string) (float64, error) {
	return s.basePrice(symbol) + (rand.Float64()-0.5)*1.5, nil
}

// Candles generates limit bars via a random walk seeded from the symbol's
// base close. The attached RSI is sampled uniformly in [30,70] instead of
// computed, since a synthetic series carries no real momentum information.
func (s *Synthetic) Candles(symbol string, limit int, interval model.Interval) []model.Candle {
	barDur := 15 * time.Minute
	if interval == model.Interval1Hour {
		barDur = time.Hour
	}

	bars := make([]model.Candle, 0, limit)
	lastClose := s.basePrice(symbol)
	now := time.Now()

	for i := 0; i < limit; i++ {
		volatile := rand.Float64() > 0.7
		span := 2.0
		if volatile {
			span = 10.0
		}
		move := (rand.Float64() - 0.5) * span

		open := lastClose
		closePx := open + move
		wick := rand.Float64()
		if volatile {
			wick = rand.Float64() * 5
		}
		high := math.Max(open, closePx) + wick
		low := math.Min(open, closePx) - wick

		bars = append(bars, model.Candle{
			Symbol:    symbol,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePx,
			RSI:       30 + rand.Float64()*40,
			Timestamp: now.Add(-time.Duration(limit-i) * barDur),
		})
		lastClose = closePx
	}
	return bars
}

var _ QuoteProvider = (*Synthetic)(nil)
