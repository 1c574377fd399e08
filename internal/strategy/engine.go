package strategy

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"GoldSentry/internal/calculator"
	"GoldSentry/internal/model"
)

// MarketData is the slice of the feed aggregator the engine needs.
type MarketData interface {
	GetCandles(ctx context.Context, symbol string, limit int, interval model.Interval) []model.Candle
	GetLiquidityLevels(symbol string) model.LiquidityLevels
	CurrentSession() model.Session
}

// SymbolParams tunes the engine per symbol. The stop buffer and the EMA
// proximity tolerance scale with the instrument's price.
type SymbolParams struct {
	StopBuffer   float64
	EMAProximity float64
}

// DefaultParams returns the tuning table for the two tracked metals.
func DefaultParams(goldSymbol, silverSymbol string) map[string]SymbolParams {
	return map[string]SymbolParams{
		goldSymbol:   {StopBuffer: 1.5, EMAProximity: 10.0},
		silverSymbol: {StopBuffer: 0.1, EMAProximity: 0.5},
	}
}

const (
	trendLookback = 220 // requested 1h depth; gate needs at least 200
	trendMinBars  = 200
	zoneLookback  = 30 // requested 15m depth; gate needs at least 20
	zoneMinBars   = 20
	rsiBuyLevel   = 45.0
	rsiSellLevel  = 55.0
	emaFastPeriod = 50
	emaSlowPeriod = 200
)

// Engine evaluates the layered rule set: session filter, 1h trend filter,
// 15m liquidity/zone filter, momentum confirmation.
type Engine struct {
	Market MarketData
	Params map[string]SymbolParams

	nowFn func() time.Time
}

// NewEngine creates an engine over the given market data source.
func NewEngine(market MarketData, params map[string]SymbolParams) *Engine {
	return &Engine{Market: market, Params: params, nowFn: time.Now}
}

// Evaluate runs all gates for one symbol and returns at most one directional
// setup, or nil when any gate rejects. Insufficient data is "no signal", not
// an error.
func (e *Engine) Evaluate(ctx context.Context, symbol string) *model.Signal {
	session := e.Market.CurrentSession()
	if session == model.SessionAsia || session == model.SessionOther {
		return nil
	}

	// Gate 1: 1-hour trend.
	h1 := e.Market.GetCandles(ctx, symbol, trendLookback, model.Interval1Hour)
	if len(h1) < trendMinBars {
		log.Printf("[INFO] strategy: %s has only %d 1h bars, need %d", symbol, len(h1), trendMinBars)
		return nil
	}
	closes := extractCloses(h1)
	ema50 := last(calculator.CalculateEMA(closes, emaFastPeriod))
	ema200 := last(calculator.CalculateEMA(closes, emaSlowPeriod))
	trendUp := ema50 > ema200
	trendDown := ema50 < ema200
	if !trendUp && !trendDown {
		return nil
	}

	// Gate 2: 15-minute liquidity sweep + rejection candle.
	m15 := e.Market.GetCandles(ctx, symbol, zoneLookback, model.Interval15Min)
	if len(m15) < zoneMinBars {
		log.Printf("[INFO] strategy: %s has only %d 15m bars, need %d", symbol, len(m15), zoneMinBars)
		return nil
	}
	current := m15[len(m15)-1]
	prev := m15[len(m15)-2]
	levels := e.Market.GetLiquidityLevels(symbol)

	params, ok := e.Params[symbol]
	if !ok {
		params = SymbolParams{StopBuffer: 1.5, EMAProximity: 10.0}
	}
	nearEMA50 := math.Abs(current.Close-ema50) < params.EMAProximity

	if trendUp {
		sweepPDL := prev.Low < levels.PrevDayLow
		sweepASL := prev.Low < levels.AsianLow
		bullishRejection := current.Close > current.Open && current.Close > prev.High
		rsiCrossUp := prev.RSI < rsiBuyLevel && current.RSI > rsiBuyLevel

		if (sweepPDL || sweepASL) && bullishRejection && rsiCrossUp && nearEMA50 {
			return e.buildSignal(symbol, model.SignalBuy, current, prev, params, session, sweptLevel(sweepPDL, levels.PrevDayLow, levels.AsianLow))
		}
		return nil
	}

	sweepPDH := prev.High > levels.PrevDayHigh
	sweepASH := prev.High > levels.AsianHigh
	bearishRejection := current.Close < current.Open && current.Close < prev.Low
	rsiCrossDown := prev.RSI > rsiSellLevel && current.RSI < rsiSellLevel

	if (sweepPDH || sweepASH) && bearishRejection && rsiCrossDown && nearEMA50 {
		return e.buildSignal(symbol, model.SignalSell, current, prev, params, session, sweptLevel(sweepPDH, levels.PrevDayHigh, levels.AsianHigh))
	}
	return nil
}

// buildSignal prices the setup: stop beyond the sweep wick, two take-profit
// levels at 1x and 2x the risk distance.
func (e *Engine) buildSignal(symbol string, direction model.SignalType, current, prev model.Candle, params SymbolParams, session model.Session, swept float64) *model.Signal {
	now := e.nowFn()
	entry := current.Close

	var stop, tp1, tp2 float64
	var reason string
	if direction == model.SignalBuy {
		stop = prev.Low - params.StopBuffer
		risk := entry - stop
		tp1 = entry + risk
		tp2 = entry + 2*risk
		reason = fmt.Sprintf("🚀 %s BUY setup: liquidity sweep below %.2f with bullish rejection in %s session. RSI crossed up through %.0f (%.1f → %.1f), price holding the 1h EMA50 zone.",
			symbol, swept, session, rsiBuyLevel, prev.RSI, current.RSI)
	} else {
		stop = prev.High + params.StopBuffer
		risk := stop - entry
		tp1 = entry - risk
		tp2 = entry - 2*risk
		reason = fmt.Sprintf("🔻 %s SELL setup: liquidity raid above %.2f with bearish rejection in %s session. RSI crossed down through %.0f (%.1f → %.1f), price holding the 1h EMA50 zone.",
			symbol, swept, session, rsiSellLevel, prev.RSI, current.RSI)
	}

	return &model.Signal{
		Symbol:      symbol,
		Type:        direction,
		EntryPrice:  entry,
		StopLoss:    stop,
		TakeProfit1: tp1,
		TakeProfit2: tp2,
		Reason:      reason,
		Time:        now.Format("15:04:05"),
		Timestamp:   now,
	}
}

// sweptLevel picks the level to report: the prior-day level when it was the
// one swept, otherwise the Asian-session level.
func sweptLevel(prevDaySwept bool, prevDayLevel, asianLevel float64) float64 {
	if prevDaySwept {
		return prevDayLevel
	}
	return asianLevel
}

func extractCloses(bars []model.Candle) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
