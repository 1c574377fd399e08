package storage

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"GoldSentry/internal/model"
)

// Store persists the signal history document. Implementations are
// best-effort collaborators: the history layer logs failures and keeps
// serving from memory.
type Store interface {
	Load() (*model.HistoryDocument, error)
	Save(doc *model.HistoryDocument) error
}

// FileStore keeps the history document in a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the document from disk. A missing file yields an empty document.
func (f *FileStore) Load() (*model.HistoryDocument, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.HistoryDocument{}, nil
		}
		return nil, err
	}
	var doc model.HistoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save writes the document to disk.
func (f *FileStore) Save(doc *model.HistoryDocument) error {
	doc.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}

// ForPath selects a store for a configured state-file path. The sqlite-style
// ":memory:" value opts out of persistence entirely.
func ForPath(path string) Store {
	if path == ":memory:" {
		return NewMemoryStore()
	}
	return NewFileStore(path)
}

// MemoryStore holds the document in memory only. Used in tests and when the
// history file is configured as ":memory:".
type MemoryStore struct {
	mu  sync.Mutex
	doc *model.HistoryDocument
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doc: &model.HistoryDocument{}}
}

func (m *MemoryStore) Load() (*model.HistoryDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *m.doc
	copied.Signals = append([]model.Signal(nil), m.doc.Signals...)
	return &copied, nil
}

func (m *MemoryStore) Save(doc *model.HistoryDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.UpdatedAt = time.Now()
	copied := *doc
	copied.Signals = append([]model.Signal(nil), doc.Signals...)
	m.doc = &copied
	return nil
}
