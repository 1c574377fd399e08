package model

import "time"

// Interval identifies a candle duration.
type Interval string

const (
	Interval15Min Interval = "15m"
	Interval1Hour Interval = "1h"
)

// Candle represents a single fixed-duration bar for one symbol.
// RSI is attached per-bar by the feed layer before a series reaches the
// strategy engine. Immutable once constructed; series are ordered oldest first.
type Candle struct {
	Symbol    string    `json:"symbol"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	RSI       float64   `json:"rsi"`
	Timestamp time.Time `json:"timestamp"`
}

// PriceQuote is the result of a live price lookup. Source records which
// provider answered; it is kept for logging only, never for business logic.
type PriceQuote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// LiquidityLevels holds the reference levels the strategy checks for sweeps.
type LiquidityLevels struct {
	PrevDayHigh float64 `json:"prevDayHigh"`
	PrevDayLow  float64 `json:"prevDayLow"`
	AsianHigh   float64 `json:"asianHigh"`
	AsianLow    float64 `json:"asianLow"`
}

// Session is a UTC-hour-derived trading-activity window.
type Session string

const (
	SessionLondon  Session = "LONDON"
	SessionNewYork Session = "NEW_YORK"
	SessionAsia    Session = "ASIA"
	SessionOther   Session = "OTHER"
)
