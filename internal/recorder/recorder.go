package recorder

import "GoldSentry/internal/model"

// SignalRecord is one emitted-signal audit row.
type SignalRecord struct {
	Signal  model.Signal
	Session string
	Source  string // "auto", "forced" or "manual"
}

// Recorder persists emitted signals for later analysis. Recording is
// best-effort: a failure never blocks delivery or the cycle.
type Recorder interface {
	RecordSignal(rec *SignalRecord) error
	Close() error
}
