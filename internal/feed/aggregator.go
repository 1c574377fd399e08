package feed

import (
	"context"
	"log"
	"time"

	"GoldSentry/internal/calculator"
	"GoldSentry/internal/model"
)

// providerTimeout bounds every single upstream attempt.
const providerTimeout = 5 * time.Second

// streamMinBars is the minimum cached stream depth before the stream series
// is preferred over a REST time-series fetch.
const streamMinBars = 5

// defaultLevels are static per-symbol liquidity reference values. This is a
// known simplification: no live prior-day/Asian-session aggregation is done,
// and the strategy contract does not depend on where the numbers come from.
var defaultLevels = map[string]model.LiquidityLevels{
	"XAUUSD": {PrevDayHigh: 2046.80, PrevDayLow: 2028.20, AsianHigh: 2041.30, AsianLow: 2031.60},
	"XAGUSD": {PrevDayHigh: 23.92, PrevDayLow: 23.18, AsianHigh: 23.74, AsianLow: 23.31},
}

// Aggregator resolves prices and candle series by walking a ranked provider
// chain with per-call timeouts, degrading to the synthetic generator when
// every upstream fails. Its methods never return an error.
type Aggregator struct {
	stream    *StreamFeed // may be nil when the stream is disabled
	quotes    []QuoteProvider
	candles   []CandleProvider
	synthetic *Synthetic

	goldSymbol   string
	silverSymbol string

	nowFn func() time.Time
}

// NewAggregator assembles the fallback chain. quotes and candles are tried in
// slice order; the stream (when non-nil) is consulted before either.
func NewAggregator(stream *StreamFeed, quotes []QuoteProvider, candles []CandleProvider, synthetic *Synthetic) *Aggregator {
	return &Aggregator{
		stream:       stream,
		quotes:       quotes,
		candles:      candles,
		synthetic:    synthetic,
		goldSymbol:   synthetic.GoldSymbol,
		silverSymbol: synthetic.SilverSymbol,
		nowFn:        time.Now,
	}
}

// GetLatestPrice queries providers strictly in priority order under bounded
// timeouts. The first well-formed positive price wins; the synthetic fallback
// guarantees a result even under total provider failure.
func (a *Aggregator) GetLatestPrice(ctx context.Context, symbol string) model.PriceQuote {
	chain := a.quoteChain()
	for _, p := range chain {
		if !p.Supports(symbol) {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, providerTimeout)
		price, err := p.FetchQuote(callCtx, symbol)
		cancel()
		if err != nil {
			log.Printf("[WARN] feed: %s quote via %s failed: %v", symbol, p.Name(), err)
			continue
		}
		if price <= 0 {
			log.Printf("[WARN] feed: %s quote via %s not ready (%v)", symbol, p.Name(), price)
			continue
		}
		return model.PriceQuote{Symbol: symbol, Price: price, Source: p.Name(), Timestamp: a.nowFn()}
	}

	// Unreachable in practice: the synthetic provider closes the chain and
	// never fails. Kept as a hard floor.
	price, _ := a.synthetic.FetchQuote(ctx, symbol)
	return model.PriceQuote{Symbol: symbol, Price: price, Source: a.synthetic.Name(), Timestamp: a.nowFn()}
}

func (a *Aggregator) quoteChain() []QuoteProvider {
	chain := make([]QuoteProvider, 0, len(a.quotes)+2)
	if a.stream != nil {
		chain = append(chain, a.stream)
	}
	chain = append(chain, a.quotes...)
	chain = append(chain, a.synthetic)
	return chain
}

// GetPricesBatch resolves one price per symbol sequentially. The per-symbol
// hard defaults only matter if GetLatestPrice could ever fail, which the
// synthetic floor prevents; they are kept as a defensive last resort.
func (a *Aggregator) GetPricesBatch(ctx context.Context, symbols []string) map[string]float64 {
	out := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		quote := a.GetLatestPrice(ctx, symbol)
		if quote.Price > 0 {
			out[symbol] = quote.Price
			continue
		}
		if symbol == a.silverSymbol {
			out[symbol] = 23
		} else {
			out[symbol] = 2030
		}
	}
	return out
}

// GetCandles resolves a chronological candle series: stream cache first (15m
// native interval only, and only when deep enough), then REST providers, then
// the synthetic generator. Real series get RSI(14) attached per bar; the
// synthetic path carries its own sampled RSI.
func (a *Aggregator) GetCandles(ctx context.Context, symbol string, limit int, interval model.Interval) []model.Candle {
	if a.stream != nil && interval == model.Interval15Min {
		bars := a.stream.Candles(symbol)
		if len(bars) > streamMinBars {
			if len(bars) > limit {
				bars = bars[len(bars)-limit:]
			}
			return attachRSI(bars)
		}
	}

	for _, p := range a.candles {
		callCtx, cancel := context.WithTimeout(ctx, providerTimeout)
		bars, err := p.FetchCandles(callCtx, symbol, limit, interval)
		cancel()
		if err != nil {
			log.Printf("[WARN] feed: %s candles via %s failed: %v", symbol, p.Name(), err)
			continue
		}
		if len(bars) == 0 {
			continue
		}
		return attachRSI(bars)
	}

	log.Printf("[WARN] feed: all candle providers failed for %s, using synthetic series", symbol)
	return a.synthetic.Candles(symbol, limit, interval)
}

// attachRSI computes RSI(14) over the closes and stamps it per bar.
func attachRSI(bars []model.Candle) []model.Candle {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	rsi := calculator.CalculateRSI(closes, calculator.DefaultRSIPeriod)
	for i := range bars {
		bars[i].RSI = rsi[i]
	}
	return bars
}

// GetLiquidityLevels returns the static reference levels for symbol.
func (a *Aggregator) GetLiquidityLevels(symbol string) model.LiquidityLevels {
	if lv, ok := defaultLevels[symbol]; ok {
		return lv
	}
	if symbol == a.silverSymbol {
		return defaultLevels["XAGUSD"]
	}
	return defaultLevels["XAUUSD"]
}

// CurrentSession derives the trading session from the current UTC hour.
// The 13-16h overlap reports LONDON because that branch is checked first;
// preserved as observed upstream behavior.
func (a *Aggregator) CurrentSession() model.Session {
	hour := a.nowFn().UTC().Hour()
	switch {
	case hour >= 8 && hour < 16:
		return model.SessionLondon
	case hour >= 13 && hour < 21:
		return model.SessionNewYork
	case hour >= 0 && hour < 8:
		return model.SessionAsia
	default:
		return model.SessionOther
	}
}
