package model

import "time"

// SignalType is the direction of a trade setup.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

// Signal is the final output of the strategy engine. Created once per
// detected setup and immutable afterwards.
type Signal struct {
	Symbol      string     `json:"symbol"`
	Type        SignalType `json:"type"`
	EntryPrice  float64    `json:"entryPrice"`
	StopLoss    float64    `json:"stopLoss"`
	TakeProfit1 float64    `json:"takeProfit1"`
	TakeProfit2 float64    `json:"takeProfit2"`
	Reason      string     `json:"reason"`
	Time        string     `json:"time"` // local display string
	Timestamp   time.Time  `json:"timestamp"`
}

// TickSummary reports the outcome of one evaluation cycle.
type TickSummary struct {
	ProcessedAt time.Time `json:"processedAt"`
	Count       int       `json:"count"`
	Signals     []Signal  `json:"signals"`
	Forced      bool      `json:"forced"`
	Skipped     bool      `json:"skipped,omitempty"` // another cycle was in flight
}

// HistoryDocument is the persisted form of the signal history.
type HistoryDocument struct {
	Signals       []Signal  `json:"signals"`
	MonthlyProfit float64   `json:"monthly_profit"`
	UpdatedAt     time.Time `json:"updated_at"`
}
