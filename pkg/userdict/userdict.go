// Package userdict is the small, mutable dictionary of words the user has
// taught the keyboard.
//
// Words are indexed in a patricia trie keyed by their folded form
// (lowercase, no accents), so lookups driven by typed keys can find
// "ένα" from "εν". All methods are safe for concurrent use: mutations take
// an exclusive lock and readers never see a half-applied change.
package userdict

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bastiangx/keypredict/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Frequency bounds for learned words.
const (
	MinFrequency = 1
	MaxFrequency = 255

	DefaultInitialFrequency = 128
	DefaultPromoteAfter     = 3
)

type options struct {
	initialFrequency int
	promoteAfter     int
}

// Option configures a Dictionary.
type Option func(*options)

// WithInitialFrequency sets the frequency given to auto-promoted words.
func WithInitialFrequency(freq int) Option {
	return func(o *options) { o.initialFrequency = clampFrequency(freq) }
}

// WithPromoteAfter sets how many acceptances of an unknown word promote
// it into the dictionary. Zero disables promotion.
func WithPromoteAfter(n int) Option {
	return func(o *options) { o.promoteAfter = max(n, 0) }
}

// bucket holds the words that share one folded key.
type bucket struct {
	words []string
}

// Dictionary is the user dictionary.
type Dictionary struct {
	mu      sync.RWMutex
	words   map[string]int
	index   *patricia.Trie
	dirty   map[string]bool
	removed map[string]bool
	pending map[string]int
	store   Store
	opts    options
	version atomic.Uint64
}

// New returns an empty dictionary backed by a MemoryStore.
func New(opts ...Option) *Dictionary {
	return newDictionary(NewMemoryStore(), opts)
}

// Open loads every entry from store. A failing store is logged and the
// dictionary starts empty; it is never fatal.
func Open(ctx context.Context, store Store, opts ...Option) *Dictionary {
	d := newDictionary(store, opts)
	entries, err := store.Load(ctx)
	if err != nil {
		log.Warnf("User dictionary unavailable, starting empty: %v", err)
		return d
	}
	for _, e := range entries {
		d.insertLocked(e.Word, clampFrequency(e.Frequency))
	}
	log.Debugf("Loaded %d user words", len(d.words))
	return d
}

func newDictionary(store Store, opts []Option) *Dictionary {
	o := options{
		initialFrequency: DefaultInitialFrequency,
		promoteAfter:     DefaultPromoteAfter,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Dictionary{
		words:   make(map[string]int),
		index:   patricia.NewTrie(),
		dirty:   make(map[string]bool),
		removed: make(map[string]bool),
		pending: make(map[string]int),
		store:   store,
		opts:    o,
	}
}

func clampFrequency(freq int) int {
	return min(max(freq, MinFrequency), MaxFrequency)
}

func normalizeWord(word string) string {
	return strings.TrimSpace(word)
}

// insertLocked adds word to the map and the index. The caller holds mu.
func (d *Dictionary) insertLocked(word string, freq int) {
	if _, ok := d.words[word]; !ok {
		key := patricia.Prefix(utils.Fold(word))
		if item := d.index.Get(key); item != nil {
			b := item.(*bucket)
			b.words = append(b.words, word)
			sort.Strings(b.words)
		} else {
			d.index.Insert(key, &bucket{words: []string{word}})
		}
	}
	d.words[word] = freq
}

func (d *Dictionary) deleteLocked(word string) {
	delete(d.words, word)
	key := patricia.Prefix(utils.Fold(word))
	item := d.index.Get(key)
	if item == nil {
		return
	}
	b := item.(*bucket)
	for i, w := range b.words {
		if w == word {
			b.words = append(b.words[:i], b.words[i+1:]...)
			break
		}
	}
	if len(b.words) == 0 {
		d.index.Delete(key)
	}
}

func (d *Dictionary) markDirty(word string) {
	d.dirty[word] = true
	delete(d.removed, word)
	d.version.Add(1)
}

// AddWord adds word with freq. If the word exists it keeps the higher of
// the two frequencies. It reports false for an empty word.
func (d *Dictionary) AddWord(word string, freq int) bool {
	word = normalizeWord(word)
	if word == "" {
		return false
	}
	freq = clampFrequency(freq)

	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.words[word]; ok && old >= freq {
		return true
	}
	d.insertLocked(word, freq)
	delete(d.pending, word)
	d.markDirty(word)
	return true
}

// Increment bumps the frequency of a stored word by one and returns the
// new value.
func (d *Dictionary) Increment(word string) (int, bool) {
	word = normalizeWord(word)

	d.mu.Lock()
	defer d.mu.Unlock()

	freq, ok := d.words[word]
	if !ok {
		return 0, false
	}
	if freq < MaxFrequency {
		freq++
		d.words[word] = freq
		d.markDirty(word)
	}
	return freq, true
}

// LearnResult says what Learn did with a word.
type LearnResult int

const (
	// Ignored means nothing changed.
	Ignored LearnResult = iota
	// Incremented means a stored word gained frequency.
	Incremented
	// Counted means an unknown word moved closer to promotion.
	Counted
	// Promoted means an unknown word was added.
	Promoted
)

var learnResultNames = [...]string{"ignored", "incremented", "counted", "promoted"}

func (r LearnResult) String() string {
	if r < 0 || int(r) >= len(learnResultNames) {
		return "unknown"
	}
	return learnResultNames[r]
}

// Learn records that the user committed word. Stored words gain
// frequency. Unknown words that are not in the main dictionary (known is
// false) are added with the initial frequency once they have been
// committed often enough.
func (d *Dictionary) Learn(word string, known bool) LearnResult {
	word = normalizeWord(word)
	if word == "" {
		return Ignored
	}
	if _, ok := d.Increment(word); ok {
		return Incremented
	}
	if known {
		return Ignored
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.opts.promoteAfter == 0 {
		return Ignored
	}
	if _, ok := d.words[word]; ok {
		return Ignored
	}
	d.pending[word]++
	if d.pending[word] < d.opts.promoteAfter {
		return Counted
	}
	delete(d.pending, word)
	d.insertLocked(word, d.opts.initialFrequency)
	d.markDirty(word)
	log.Debugf("Promoted %q into the user dictionary", word)
	return Promoted
}

// Remove deletes word. It reports whether the word was present.
func (d *Dictionary) Remove(word string) bool {
	word = normalizeWord(word)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.words[word]; !ok {
		return false
	}
	d.deleteLocked(word)
	delete(d.dirty, word)
	d.removed[word] = true
	d.version.Add(1)
	return true
}

// Version changes whenever a word is added, removed or re-weighted.
func (d *Dictionary) Version() uint64 {
	return d.version.Load()
}

// Frequency returns the stored frequency of word.
func (d *Dictionary) Frequency(word string) (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	freq, ok := d.words[word]
	return freq, ok
}

// Contains reports whether word is stored exactly as given.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.Frequency(word)
	return ok
}

// IsValidWord reports whether word is stored as given or in lowercase.
func (d *Dictionary) IsValidWord(word string) bool {
	if word == "" {
		return false
	}
	return d.Contains(word) || d.Contains(strings.ToLower(word))
}

// Len returns the number of stored words.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.words)
}

// Entries returns all words sorted alphabetically.
func (d *Dictionary) Entries() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return sortedEntries(d.words)
}

// Candidates calls fn for every word whose first letter folds to the same
// base as one of first. fn runs under the read lock and must not modify
// the dictionary.
func (d *Dictionary) Candidates(first []rune, fn func(word string, freq int)) {
	seen := make(map[rune]bool, len(first))

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, r := range first {
		base := utils.BaseRune(r)
		if seen[base] {
			continue
		}
		seen[base] = true
		err := d.index.VisitSubtree(patricia.Prefix(string(base)), func(_ patricia.Prefix, item patricia.Item) error {
			for _, w := range item.(*bucket).words {
				fn(w, d.words[w])
			}
			return nil
		})
		if err != nil {
			log.Errorf("Error visiting user dictionary: %v", err)
		}
	}
}

// Flush writes pending changes to the store. On failure the changes stay
// pending so a later Flush can retry.
func (d *Dictionary) Flush(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.dirty) == 0 && len(d.removed) == 0 {
		return nil
	}
	upserts := make([]Entry, 0, len(d.dirty))
	for w := range d.dirty {
		upserts = append(upserts, Entry{Word: w, Frequency: d.words[w]})
	}
	sort.Slice(upserts, func(i, j int) bool { return upserts[i].Word < upserts[j].Word })
	deletes := make([]string, 0, len(d.removed))
	for w := range d.removed {
		deletes = append(deletes, w)
	}
	sort.Strings(deletes)

	if err := d.store.Save(ctx, upserts, deletes); err != nil {
		var se *StoreError
		if errors.As(err, &se) {
			return err
		}
		return &StoreError{Op: "flush", Err: err}
	}
	d.dirty = make(map[string]bool)
	d.removed = make(map[string]bool)
	log.Debugf("Flushed %d user words, removed %d", len(upserts), len(deletes))
	return nil
}

// Close flushes and closes the store. The store is closed even when the
// flush fails.
func (d *Dictionary) Close(ctx context.Context) error {
	flushErr := d.Flush(ctx)
	if flushErr != nil {
		log.Warnf("Failed to flush user dictionary: %v", flushErr)
	}
	closeErr := d.store.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
