package userdict

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

const snapshotVersion = 1

type snapshot struct {
	Version int     `msgpack:"v"`
	Entries []Entry `msgpack:"e"`
}

// SnapshotStore keeps all entries in one msgpack file that is rewritten
// atomically on every Save.
type SnapshotStore struct {
	path    string
	mu      sync.Mutex
	entries map[string]int
}

// NewSnapshotStore returns a store backed by the file at path. The file
// is created on the first Save.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path, entries: make(map[string]int)}
}

// Load reads the snapshot. A missing file is an empty dictionary.
func (s *SnapshotStore) Load(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "load", Err: err}
	}
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, &StoreError{Op: "load", Err: fmt.Errorf("decode %s: %w", s.path, err)}
	}
	if snap.Version != snapshotVersion {
		return nil, &StoreError{Op: "load", Err: fmt.Errorf("unsupported snapshot version %d", snap.Version)}
	}
	s.entries = make(map[string]int, len(snap.Entries))
	for _, e := range snap.Entries {
		s.entries[e.Word] = e.Frequency
	}
	return sortedEntries(s.entries), nil
}

// Save applies the changes and rewrites the file.
func (s *SnapshotStore) Save(ctx context.Context, upserts []Entry, deletes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]int, len(s.entries)+len(upserts))
	for w, f := range s.entries {
		next[w] = f
	}
	for _, e := range upserts {
		next[e.Word] = e.Frequency
	}
	for _, w := range deletes {
		delete(next, w)
	}

	data, err := msgpack.Marshal(snapshot{Version: snapshotVersion, Entries: sortedEntries(next)})
	if err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	s.entries = next
	return nil
}

// Close is a no-op; every Save is already durable.
func (s *SnapshotStore) Close() error { return nil }

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
