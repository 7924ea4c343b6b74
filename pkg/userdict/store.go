package userdict

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrStore is matched by every *StoreError.
var ErrStore = errors.New("userdict: store failure")

// StoreError reports a failed persistence operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("userdict: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStore) succeed.
func (e *StoreError) Is(target error) bool { return target == ErrStore }

// Entry is one learned word.
type Entry struct {
	Word      string `msgpack:"w"`
	Frequency int    `msgpack:"f"`
}

// Store persists user dictionary entries. Save receives only what changed
// since the last successful Save.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, upserts []Entry, deletes []string) error
	Close() error
}

// MemoryStore keeps entries in memory. It is used for tests and for
// sessions that should not persist anything.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]int
	closed  bool
}

// NewMemoryStore returns a store preloaded with entries.
func NewMemoryStore(entries ...Entry) *MemoryStore {
	m := &MemoryStore{entries: make(map[string]int, len(entries))}
	for _, e := range entries {
		m.entries[e.Word] = e.Frequency
	}
	return m
}

// Load returns all entries sorted by word.
func (m *MemoryStore) Load(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("store is closed")
	}
	return sortedEntries(m.entries), nil
}

// Save applies upserts and deletes.
func (m *MemoryStore) Save(ctx context.Context, upserts []Entry, deletes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("store is closed")
	}
	for _, e := range upserts {
		m.entries[e.Word] = e.Frequency
	}
	for _, w := range deletes {
		delete(m.entries, w)
	}
	return nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func sortedEntries(words map[string]int) []Entry {
	entries := make([]Entry, 0, len(words))
	for w, f := range words {
		entries = append(entries, Entry{Word: w, Frequency: f})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Word < entries[j].Word
	})
	return entries
}
