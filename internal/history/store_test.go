package history

import (
	"fmt"
	"testing"
	"time"

	"GoldSentry/internal/model"
	"GoldSentry/internal/storage"
)

func newTestStore() *Store {
	return NewStore(storage.NewMemoryStore())
}

func signalAt(symbol string, direction model.SignalType, ts time.Time) model.Signal {
	return model.Signal{
		Symbol:     symbol,
		Type:       direction,
		EntryPrice: 2035.5,
		Timestamp:  ts,
	}
}

func TestAdmit_EmptyHistoryAccepts(t *testing.T) {
	s := newTestStore()
	if !s.Admit(signalAt("XAUUSD", model.SignalBuy, time.Now()), false) {
		t.Error("expected accept with empty history")
	}
}

func TestAdmit_SameDirectionWithinCooldownSuppressed(t *testing.T) {
	s := newTestStore()
	base := time.Now()
	s.nowFn = func() time.Time { return base }

	if !s.Admit(signalAt("XAUUSD", model.SignalBuy, base), false) {
		t.Fatal("first signal should be accepted")
	}
	s.nowFn = func() time.Time { return base.Add(10 * time.Minute) }
	if s.Admit(signalAt("XAUUSD", model.SignalBuy, base.Add(10*time.Minute)), false) {
		t.Error("second same-direction signal 10m later should be suppressed")
	}
	if got := len(s.Snapshot()); got != 1 {
		t.Errorf("expected 1 entry after suppression, got %d", got)
	}
}

func TestAdmit_SameDirectionAfterCooldownAccepted(t *testing.T) {
	s := newTestStore()
	base := time.Now()
	s.nowFn = func() time.Time { return base }

	s.Admit(signalAt("XAUUSD", model.SignalBuy, base), false)
	s.nowFn = func() time.Time { return base.Add(31 * time.Minute) }
	if !s.Admit(signalAt("XAUUSD", model.SignalBuy, base.Add(31*time.Minute)), false) {
		t.Error("same-direction signal past the 30m cooldown should be accepted")
	}
}

func TestAdmit_DirectionChangeAlwaysAccepted(t *testing.T) {
	s := newTestStore()
	base := time.Now()
	s.nowFn = func() time.Time { return base }

	s.Admit(signalAt("XAUUSD", model.SignalBuy, base), false)
	// Only seconds later, but the direction flipped.
	s.nowFn = func() time.Time { return base.Add(5 * time.Second) }
	if !s.Admit(signalAt("XAUUSD", model.SignalSell, base.Add(5*time.Second)), false) {
		t.Error("direction change should be accepted regardless of elapsed time")
	}
}

func TestAdmit_ForceBypassesAllChecks(t *testing.T) {
	s := newTestStore()
	base := time.Now()
	s.nowFn = func() time.Time { return base }

	s.Admit(signalAt("XAUUSD", model.SignalBuy, base), false)
	if !s.Admit(signalAt("XAUUSD", model.SignalBuy, base), true) {
		t.Error("force=true must always accept")
	}
}

func TestAdmit_PerSymbolCooldown(t *testing.T) {
	s := newTestStore()
	base := time.Now()
	s.nowFn = func() time.Time { return base }

	s.Admit(signalAt("XAUUSD", model.SignalBuy, base), false)
	// Different symbol, same direction, immediately: no prior for XAGUSD.
	if !s.Admit(signalAt("XAGUSD", model.SignalBuy, base), false) {
		t.Error("cooldown is per symbol; other symbol should be accepted")
	}
}

func TestCapacity_FIFOEviction(t *testing.T) {
	s := newTestStore()
	base := time.Now()

	for i := 0; i < 10; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		s.nowFn = func() time.Time { return ts }
		sig := signalAt("XAUUSD", model.SignalBuy, ts)
		sig.Reason = fmt.Sprintf("setup %d", i)
		if !s.Admit(sig, false) {
			t.Fatalf("signal %d unexpectedly suppressed", i)
		}
	}

	got := s.Snapshot()
	if len(got) != Capacity {
		t.Fatalf("expected %d entries, got %d", Capacity, len(got))
	}
	// The store must hold exactly the 6 most recent, in arrival order.
	for i, sig := range got {
		want := fmt.Sprintf("setup %d", i+4)
		if sig.Reason != want {
			t.Errorf("slot %d: expected %q, got %q", i, want, sig.Reason)
		}
	}
}

func TestAppend_BypassesAdmission(t *testing.T) {
	s := newTestStore()
	base := time.Now()
	s.nowFn = func() time.Time { return base }

	s.Admit(signalAt("XAUUSD", model.SignalBuy, base), false)
	// A duplicate that Admit would suppress; Append records it anyway.
	s.Append(signalAt("XAUUSD", model.SignalBuy, base))
	if got := len(s.Snapshot()); got != 2 {
		t.Errorf("expected 2 entries after manual append, got %d", got)
	}
}

func TestNewStore_RestoresPersistedHistory(t *testing.T) {
	mem := storage.NewMemoryStore()
	first := NewStore(mem)
	first.Append(signalAt("XAUUSD", model.SignalBuy, time.Now()))
	first.Append(signalAt("XAGUSD", model.SignalSell, time.Now()))

	second := NewStore(mem)
	if got := len(second.Snapshot()); got != 2 {
		t.Errorf("expected restored history of 2, got %d", got)
	}
	if second.MonthlyProfit() <= 0 {
		t.Error("expected monthly profit restored")
	}
	if last, ok := second.LastForSymbol("XAGUSD"); !ok || last.Type != model.SignalSell {
		t.Errorf("expected last XAGUSD signal SELL, got %+v (ok=%v)", last, ok)
	}
}
