package strategy

import (
	"context"
	"testing"
	"time"

	"GoldSentry/internal/model"
)

// fakeMarket serves canned candle series and a fixed session/levels.
type fakeMarket struct {
	session model.Session
	levels  model.LiquidityLevels
	h1      []model.Candle
	m15     []model.Candle
}

func (f *fakeMarket) GetCandles(_ context.Context, _ string, _ int, interval model.Interval) []model.Candle {
	if interval == model.Interval1Hour {
		return f.h1
	}
	return f.m15
}

func (f *fakeMarket) GetLiquidityLevels(_ string) model.LiquidityLevels { return f.levels }

func (f *fakeMarket) CurrentSession() model.Session { return f.session }

// h1Series builds n hourly bars whose closes trend from start by step per bar,
// so EMA50 vs EMA200 ordering is controlled by the sign of step.
func h1Series(n int, start, step float64) []model.Candle {
	bars := make([]model.Candle, n)
	now := time.Now()
	for i := range bars {
		c := start + float64(i)*step
		bars[i] = model.Candle{
			Symbol: "XAUUSD", Open: c, High: c + 1, Low: c - 1, Close: c,
			Timestamp: now.Add(-time.Duration(n-i) * time.Hour),
		}
	}
	return bars
}

// flatM15 builds 15m bars with neutral values that trip no gate.
func flatM15(n int, price float64) []model.Candle {
	bars := make([]model.Candle, n)
	now := time.Now()
	for i := range bars {
		bars[i] = model.Candle{
			Symbol: "XAUUSD", Open: price, High: price + 1, Low: price - 1, Close: price,
			RSI:       50,
			Timestamp: now.Add(-time.Duration(n-i) * 15 * time.Minute),
		}
	}
	return bars
}

func testEngine(m *fakeMarket) *Engine {
	return NewEngine(m, DefaultParams("XAUUSD", "XAGUSD"))
}

// buyMarket assembles a market where every BUY gate passes. The 1h closes
// rise toward endPrice so EMA50 > EMA200 and EMA50 sits near the last close.
func buyMarket() *fakeMarket {
	h1 := h1Series(220, 1990, 0.25) // ends near 2045, uptrend
	lastClose := h1[len(h1)-1].Close

	m15 := flatM15(30, lastClose)
	// prev bar sweeps below the Asian low with RSI still depressed...
	m15[28].Low = 2027.0
	m15[28].High = lastClose + 0.5
	m15[28].RSI = 41
	// ...and the current bar rejects: green close above prev high.
	m15[29].Open = lastClose
	m15[29].Close = lastClose + 1.2
	m15[29].High = lastClose + 1.6
	m15[29].RSI = 52

	return &fakeMarket{
		session: model.SessionLondon,
		levels:  model.LiquidityLevels{PrevDayHigh: 2070, PrevDayLow: 2020, AsianHigh: 2060, AsianLow: 2030},
		h1:      h1,
		m15:     m15,
	}
}

func TestEvaluate_BuySetup(t *testing.T) {
	m := buyMarket()
	sig := testEngine(m).Evaluate(context.Background(), "XAUUSD")
	if sig == nil {
		t.Fatal("expected BUY signal, got nil")
	}
	if sig.Type != model.SignalBuy {
		t.Fatalf("expected BUY, got %s", sig.Type)
	}
	current := m.m15[29]
	prev := m.m15[28]
	if sig.EntryPrice != current.Close {
		t.Errorf("entry: expected %v, got %v", current.Close, sig.EntryPrice)
	}
	wantStop := prev.Low - 1.5
	if sig.StopLoss != wantStop {
		t.Errorf("stop: expected %v, got %v", wantStop, sig.StopLoss)
	}
	risk := sig.EntryPrice - sig.StopLoss
	if sig.TakeProfit1 != sig.EntryPrice+risk || sig.TakeProfit2 != sig.EntryPrice+2*risk {
		t.Errorf("take profits not at 1x/2x risk: %v / %v (risk %v)", sig.TakeProfit1, sig.TakeProfit2, risk)
	}
	if sig.Reason == "" {
		t.Error("expected a rationale string")
	}
}

func TestEvaluate_RejectsOutsideActiveSessions(t *testing.T) {
	for _, session := range []model.Session{model.SessionAsia, model.SessionOther} {
		m := buyMarket()
		m.session = session
		if sig := testEngine(m).Evaluate(context.Background(), "XAUUSD"); sig != nil {
			t.Errorf("session %s: expected nil, got %s", session, sig.Type)
		}
	}
}

func TestEvaluate_RejectsInsufficientTrendHistory(t *testing.T) {
	m := buyMarket()
	m.h1 = m.h1[:150]
	if sig := testEngine(m).Evaluate(context.Background(), "XAUUSD"); sig != nil {
		t.Errorf("expected nil with <200 1h bars, got %s", sig.Type)
	}
}

func TestEvaluate_RejectsInsufficientZoneHistory(t *testing.T) {
	m := buyMarket()
	m.m15 = m.m15[:10]
	if sig := testEngine(m).Evaluate(context.Background(), "XAUUSD"); sig != nil {
		t.Errorf("expected nil with <20 15m bars, got %s", sig.Type)
	}
}

func TestEvaluate_TrendFilterBlocksCounterTrendBuy(t *testing.T) {
	m := buyMarket()
	m.h1 = h1Series(220, 2100, -0.25) // downtrend: EMA50 < EMA200
	// The 15m picture still looks like a buy, but gate 1 points down and the
	// down-path conditions don't hold either.
	if sig := testEngine(m).Evaluate(context.Background(), "XAUUSD"); sig != nil {
		t.Errorf("expected nil against the trend, got %s", sig.Type)
	}
}

func TestEvaluate_RequiresRSICross(t *testing.T) {
	m := buyMarket()
	m.m15[28].RSI = 48 // prev already above the 45 line: no cross
	m.m15[29].RSI = 52
	if sig := testEngine(m).Evaluate(context.Background(), "XAUUSD"); sig != nil {
		t.Errorf("expected nil without an RSI cross, got %s", sig.Type)
	}
}

func TestEvaluate_RequiresSweep(t *testing.T) {
	m := buyMarket()
	m.m15[28].Low = 2035 // above both reference lows
	if sig := testEngine(m).Evaluate(context.Background(), "XAUUSD"); sig != nil {
		t.Errorf("expected nil without a liquidity sweep, got %s", sig.Type)
	}
}

func TestEvaluate_SellSetup(t *testing.T) {
	h1 := h1Series(220, 2100, -0.25) // downtrend ending near 2045
	lastClose := h1[len(h1)-1].Close

	m15 := flatM15(30, lastClose)
	m15[28].High = 2061.0 // raid above the Asian high
	m15[28].Low = lastClose - 0.5
	m15[28].RSI = 59
	m15[29].Open = lastClose
	m15[29].Close = lastClose - 1.2
	m15[29].Low = lastClose - 1.6
	m15[29].RSI = 48

	m := &fakeMarket{
		session: model.SessionNewYork,
		levels:  model.LiquidityLevels{PrevDayHigh: 2070, PrevDayLow: 2020, AsianHigh: 2060, AsianLow: 2030},
		h1:      h1,
		m15:     m15,
	}
	sig := testEngine(m).Evaluate(context.Background(), "XAUUSD")
	if sig == nil {
		t.Fatal("expected SELL signal, got nil")
	}
	if sig.Type != model.SignalSell {
		t.Fatalf("expected SELL, got %s", sig.Type)
	}
	wantStop := m15[28].High + 1.5
	if sig.StopLoss != wantStop {
		t.Errorf("stop: expected %v, got %v", wantStop, sig.StopLoss)
	}
	if sig.TakeProfit1 >= sig.EntryPrice || sig.TakeProfit2 >= sig.TakeProfit1 {
		t.Errorf("sell targets must descend: entry %v tp1 %v tp2 %v", sig.EntryPrice, sig.TakeProfit1, sig.TakeProfit2)
	}
}
