package storage

import (
	"path/filepath"
	"testing"

	"GoldSentry/internal/model"
)

func TestForPath(t *testing.T) {
	if _, ok := ForPath(":memory:").(*MemoryStore); !ok {
		t.Error("expected :memory: to select the in-memory store")
	}
	if _, ok := ForPath("data/history.json").(*FileStore); !ok {
		t.Error("expected a path to select the file store")
	}
}

func TestFileStore_MissingFileLoadsEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	doc, err := fs.Load()
	if err != nil {
		t.Fatalf("missing file must load as empty, got %v", err)
	}
	if len(doc.Signals) != 0 || doc.MonthlyProfit != 0 {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "history.json"))
	saved := &model.HistoryDocument{
		Signals:       []model.Signal{{Symbol: "XAUUSD", Type: model.SignalBuy, EntryPrice: 2035.5}},
		MonthlyProfit: 5478,
	}
	if err := fs.Save(saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Signals) != 1 || loaded.Signals[0].Symbol != "XAUUSD" {
		t.Errorf("unexpected signals: %+v", loaded.Signals)
	}
	if loaded.MonthlyProfit != 5478 {
		t.Errorf("expected monthly profit 5478, got %v", loaded.MonthlyProfit)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be stamped on save")
	}
}
