package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"GoldSentry/internal/history"
	"GoldSentry/internal/model"
	"GoldSentry/internal/notifier"
	"GoldSentry/internal/recorder"
)

// Evaluator produces a signal for one symbol, or nil when no setup exists.
type Evaluator interface {
	Evaluate(ctx context.Context, symbol string) *model.Signal
}

// Market is the price/session view the scheduler needs for commands.
type Market interface {
	GetLatestPrice(ctx context.Context, symbol string) model.PriceQuote
	CurrentSession() model.Session
}

// Sender delivers a rendered message to the operator channel.
type Sender interface {
	Send(text string) error
}

// Scheduler drives the evaluation cycle: cron-triggered or on demand, with
// a single cycle in flight at a time.
type Scheduler struct {
	market   Market
	engine   Evaluator
	history  *history.Store
	notifier Sender
	recorder recorder.Recorder

	symbols    []string
	goldSymbol string

	cron   *cron.Cron
	tickMu sync.Mutex
	nowFn  func() time.Time
}

func New(market Market, engine Evaluator, hist *history.Store, sender Sender, rec recorder.Recorder, symbols []string, goldSymbol string) *Scheduler {
	return &Scheduler{
		market:     market,
		engine:     engine,
		history:    hist,
		notifier:   sender,
		recorder:   rec,
		symbols:    symbols,
		goldSymbol: goldSymbol,
		nowFn:      time.Now,
	}
}

// Start registers the cron entry and begins the schedule. cronSpec uses the
// six-field form with seconds.
func (s *Scheduler) Start(ctx context.Context, cronSpec string) error {
	s.cron = cron.New(cron.WithSeconds())
	_, err := s.cron.AddFunc(cronSpec, func() {
		s.RunTick(ctx, false)
	})
	if err != nil {
		return fmt.Errorf("register tick schedule: %w", err)
	}
	s.cron.Start()
	log.Printf("[INFO] scheduler started with spec %q", cronSpec)
	return nil
}

// Stop halts the cron schedule. A cycle already in flight runs to completion.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		log.Println("[INFO] scheduler stopped")
	}
}

// RunTick evaluates every symbol once and delivers accepted signals. Only one
// cycle runs at a time; an overlapping call reports Skipped without waiting.
func (s *Scheduler) RunTick(ctx context.Context, force bool) model.TickSummary {
	// Signals starts as an empty slice so a no-signal cycle serializes as
	// an array, not null.
	summary := model.TickSummary{
		ProcessedAt: s.nowFn(),
		Forced:      force,
		Signals:     []model.Signal{},
	}

	if !s.tickMu.TryLock() {
		log.Println("[WARN] tick skipped: previous cycle still running")
		summary.Skipped = true
		return summary
	}
	defer s.tickMu.Unlock()

	for _, symbol := range s.symbols {
		log.Printf("[INFO] tick: evaluating %s", symbol)
		sig := s.engine.Evaluate(ctx, symbol)

		source := "auto"
		if sig == nil && force && symbol == s.goldSymbol {
			log.Println("[INFO] tick: emitting diagnostic signal for connectivity check")
			sig = s.diagnosticSignal()
			source = "forced"
		}
		if sig == nil {
			log.Printf("[INFO] tick: no signal for %s", symbol)
			continue
		}

		if !s.history.Admit(*sig, force) {
			log.Printf("[INFO] tick: %s %s suppressed (duplicate or too soon)", symbol, sig.Type)
			continue
		}

		s.deliver(sig, source)
		summary.Signals = append(summary.Signals, *sig)
	}

	summary.Count = len(summary.Signals)
	return summary
}

// deliver sends and records an accepted signal. Neither step can undo the
// history append; failures are logged and the cycle continues.
func (s *Scheduler) deliver(sig *model.Signal, source string) {
	if err := s.notifier.Send(notifier.FormatSignal(sig)); err != nil {
		log.Printf("[ERROR] tick: Telegram send failed for %s: %v", sig.Symbol, err)
	} else {
		log.Printf("[INFO] tick: delivered %s %s @ %.2f", sig.Symbol, sig.Type, sig.EntryPrice)
	}
	rec := &recorder.SignalRecord{
		Signal:  *sig,
		Session: string(s.market.CurrentSession()),
		Source:  source,
	}
	if err := s.recorder.RecordSignal(rec); err != nil {
		log.Printf("[ERROR] tick: record failed for %s: %v", sig.Symbol, err)
	}
}

// diagnosticSignal is a fixed SELL used to verify the delivery path when a
// forced run finds no real setup.
func (s *Scheduler) diagnosticSignal() *model.Signal {
	now := s.nowFn()
	return &model.Signal{
		Symbol:      s.goldSymbol,
		Type:        model.SignalSell,
		EntryPrice:  2439.50,
		StopLoss:    2449.50,
		TakeProfit1: 2410.50,
		TakeProfit2: 2381.50,
		Reason:      "DIAGNOSTIC SIGNAL: Testing Telegram connectivity (FORCED)",
		Time:        now.Format("15:04:05"),
		Timestamp:   now,
	}
}

// InjectManual delivers an operator-supplied signal, bypassing admission.
func (s *Scheduler) InjectManual(sig model.Signal) error {
	now := s.nowFn()
	if sig.Time == "" {
		sig.Time = now.Format("15:04:05")
	}
	if sig.Timestamp.IsZero() {
		sig.Timestamp = now
	}
	if err := s.notifier.Send(notifier.FormatSignal(&sig)); err != nil {
		return fmt.Errorf("send manual signal: %w", err)
	}
	s.history.Append(sig)
	rec := &recorder.SignalRecord{
		Signal:  sig,
		Session: string(s.market.CurrentSession()),
		Source:  "manual",
	}
	if err := s.recorder.RecordSignal(rec); err != nil {
		log.Printf("[ERROR] manual: record failed for %s: %v", sig.Symbol, err)
	}
	log.Printf("[INFO] manual signal injected: %s %s @ %.2f", sig.Symbol, sig.Type, sig.EntryPrice)
	return nil
}

// HandleCommand dispatches one operator command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	// "/tick@BotName" arrives when the bot is in a group.
	verb := strings.SplitN(fields[0], "@", 2)[0]

	switch verb {
	case "/tick":
		return s.summaryText(s.RunTick(ctx, false))
	case "/force":
		return s.summaryText(s.RunTick(ctx, true))
	case "/prices":
		quotes := make([]model.PriceQuote, 0, len(s.symbols))
		for _, sym := range s.symbols {
			quotes = append(quotes, s.market.GetLatestPrice(ctx, sym))
		}
		return notifier.FormatPrices(quotes)
	case "/history":
		return notifier.FormatHistory(s.history.Snapshot(), s.history.MonthlyProfit())
	case "/status":
		return notifier.FormatStatus(s.market.CurrentSession(), len(s.history.Snapshot()), s.history.MonthlyProfit())
	default:
		return "Commands: /tick /force /prices /history /status"
	}
}

func (s *Scheduler) summaryText(sum model.TickSummary) string {
	if sum.Skipped {
		return "⏳ A cycle is already running, try again shortly."
	}
	if sum.Count == 0 {
		return "✅ Cycle complete, no signals."
	}
	return fmt.Sprintf("✅ Cycle complete, %d signal(s) delivered.", sum.Count)
}
