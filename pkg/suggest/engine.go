package suggest

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bastiangx/keypredict/internal/utils"
	"github.com/bastiangx/keypredict/pkg/composer"
	"github.com/bastiangx/keypredict/pkg/dictionary"
	"github.com/bastiangx/keypredict/pkg/userdict"
	"github.com/charmbracelet/log"
)

// Suggest returns the candidates for the taps in c. It reads c, dict and
// user without changing them; either dictionary may be nil.
func Suggest(c *composer.Composer, dict *dictionary.Dictionary, user *userdict.Dictionary, mode CorrectionMode, opts Options) Result {
	opts = opts.sanitized()
	res := Result{Mode: mode}
	if c == nil || c.Len() == 0 {
		return res
	}
	steps := c.Steps()
	res.Typed = c.TypedWord()
	res.TypedValid = isValidWord(dict, user, res.Typed)
	if len(steps) > MaxInputLength {
		log.Debugf("Input of %d taps is too long to suggest for", len(steps))
		return res
	}

	col := newCollector(steps, opts)
	if dict != nil {
		w := &walker{collector: col, dict: dict, mode: mode}
		if !w.walk(dict.Root(), 0, 0) {
			log.Debugf("Visit budget of %d spent for %q", opts.MaxVisits, res.Typed)
		}
	}
	if user != nil {
		col.collectUser(user, mode)
	}

	cands := make([]Candidate, 0, len(col.found))
	for _, cand := range col.found {
		cands = append(cands, cand)
	}
	slices.SortFunc(cands, compareCandidates)

	if mode != ModeNone && res.TypedValid {
		cands = pinTyped(cands, col, dict, user, res.Typed)
	}
	res.Candidates = finish(cands, c, opts.MaxSuggestions)
	return res
}

// pinTyped moves the typed word to the front, adding it if the walk did
// not reach it.
func pinTyped(cands []Candidate, col *collector, dict *dictionary.Dictionary, user *userdict.Dictionary, typed string) []Candidate {
	lower := strings.ToLower(typed)
	i := slices.IndexFunc(cands, func(c Candidate) bool {
		return strings.ToLower(c.Word) == lower
	})
	if i >= 0 {
		pinned := cands[i]
		copy(cands[1:i+1], cands[:i])
		cands[0] = pinned
		return cands
	}
	word, freq, fromUser := typedEntry(dict, user, typed)
	pinned := Candidate{
		Word:      word,
		Score:     col.score(freq, 0, true, fromUser),
		Frequency: freq,
		User:      fromUser,
		exact:     true,
	}
	return slices.Insert(cands, 0, pinned)
}

// typedEntry finds the stored form and frequency of a valid typed word.
func typedEntry(dict *dictionary.Dictionary, user *userdict.Dictionary, typed string) (string, int, bool) {
	forms := []string{typed, strings.ToLower(typed)}
	if dict != nil {
		for _, w := range forms {
			if f, ok := dict.Frequency(w); ok {
				return w, int(f), false
			}
		}
	}
	if user != nil {
		for _, w := range forms {
			if f, ok := user.Frequency(w); ok {
				return w, f, true
			}
		}
	}
	return typed, 1, false
}

// finish applies the typed capitalization, drops words that became equal
// and caps the list.
func finish(cands []Candidate, c *composer.Composer, limit int) []Candidate {
	capitalize := capitalizer(c)
	filter := utils.NewSuggestionFilter(len(cands))
	out := make([]Candidate, 0, min(len(cands), limit))
	for _, cand := range cands {
		if len(out) == limit {
			break
		}
		cand.Word = capitalize(cand.Word)
		if !filter.ShouldInclude(cand.Word) {
			continue
		}
		out = append(out, cand)
	}
	return out
}

func capitalizer(c *composer.Composer) func(string) string {
	switch {
	case c.IsAllUpperCase():
		return utils.UpperAll
	case c.IsCapitalized() || utils.IsUpperRune(c.Step(0).Char):
		return utils.UpperFirst
	default:
		return func(w string) string { return w }
	}
}

func isValidWord(dict *dictionary.Dictionary, user *userdict.Dictionary, word string) bool {
	if word == "" {
		return false
	}
	if dict != nil && (dict.IsValidWord(word) || dict.IsValidWord(strings.ToLower(word))) {
		return true
	}
	return user != nil && user.IsValidWord(word)
}

// dictState pairs a dictionary with a generation number so that cached
// results never outlive a dictionary swap.
type dictState struct {
	dict       *dictionary.Dictionary
	generation uint64
}

// Engine holds the dictionaries and settings used for suggestions. It is
// safe for concurrent use.
type Engine struct {
	state  atomic.Pointer[dictState]
	swapMu sync.Mutex
	user   *userdict.Dictionary
	mode   atomic.Int32
	opts   Options
	cache  *ResultCache
}

// New creates an engine. dict may be nil, in which case only the user
// dictionary is searched until SetDictionary is called.
func New(dict *dictionary.Dictionary, user *userdict.Dictionary, opts ...Option) *Engine {
	settings := engineSettings{opts: DefaultOptions(), mode: ModeBasic}
	for _, opt := range opts {
		opt(&settings)
	}
	e := &Engine{user: user, opts: settings.opts.sanitized()}
	e.state.Store(&dictState{dict: dict})
	e.mode.Store(int32(settings.mode))
	if e.opts.CacheSize > 0 {
		e.cache = NewResultCache(e.opts.CacheSize)
	}
	return e
}

// Suggest returns candidates using the engine's current mode.
func (e *Engine) Suggest(c *composer.Composer) Result {
	return e.SuggestWithMode(c, e.Mode())
}

// SuggestWithMode returns candidates using mode.
func (e *Engine) SuggestWithMode(c *composer.Composer, mode CorrectionMode) Result {
	st := e.state.Load()
	if e.cache == nil || c == nil || c.Len() == 0 {
		return Suggest(c, st.dict, e.user, mode, e.opts)
	}

	key := cacheKey(c, mode)
	userVersion := e.userVersion()
	if r, ok := e.cache.Get(key, st.generation, userVersion); ok {
		return r
	}
	r := Suggest(c, st.dict, e.user, mode, e.opts)
	e.cache.Put(key, st.generation, userVersion, r)
	return r
}

func (e *Engine) userVersion() uint64 {
	if e.user == nil {
		return 0
	}
	return e.user.Version()
}

// IsValidWord reports whether word is in the main or the user dictionary.
func (e *Engine) IsValidWord(word string) bool {
	return isValidWord(e.state.Load().dict, e.user, word)
}

// SetDictionary swaps the main dictionary, for example on a language
// change. Calls already running finish with the old one. nil disables
// main dictionary suggestions.
func (e *Engine) SetDictionary(d *dictionary.Dictionary) {
	e.swapMu.Lock()
	defer e.swapMu.Unlock()
	old := e.state.Load()
	e.state.Store(&dictState{dict: d, generation: old.generation + 1})
	if d == nil {
		log.Warn("No dictionary loaded, suggesting from the user dictionary only")
	}
}

// Dictionary returns the current main dictionary.
func (e *Engine) Dictionary() *dictionary.Dictionary {
	return e.state.Load().dict
}

// User returns the user dictionary, which may be nil.
func (e *Engine) User() *userdict.Dictionary { return e.user }

// SetMode changes the default correction mode.
func (e *Engine) SetMode(mode CorrectionMode) { e.mode.Store(int32(mode)) }

// Mode returns the default correction mode.
func (e *Engine) Mode() CorrectionMode { return CorrectionMode(e.mode.Load()) }

// Options returns the tuning values in use.
func (e *Engine) Options() Options { return e.opts }

// AddWord teaches the user dictionary word with freq.
func (e *Engine) AddWord(word string, freq int) bool {
	if e.user == nil {
		return false
	}
	return e.user.AddWord(word, freq)
}

// RemoveWord deletes word from the user dictionary.
func (e *Engine) RemoveWord(word string) bool {
	if e.user == nil {
		return false
	}
	return e.user.Remove(word)
}

// Accept records that the user committed word. Words the user dictionary
// knows gain frequency; unknown words are promoted after enough commits.
func (e *Engine) Accept(word string) userdict.LearnResult {
	if e.user == nil {
		return userdict.Ignored
	}
	dict := e.state.Load().dict
	known := dict != nil && (dict.IsValidWord(word) || dict.IsValidWord(strings.ToLower(word)))
	return e.user.Learn(word, known)
}

// Stats returns counters for the loaded dictionaries and the cache.
func (e *Engine) Stats() map[string]int {
	stats := map[string]int{
		"mode":       int(e.Mode()),
		"generation": int(e.state.Load().generation),
	}
	if d := e.state.Load().dict; d != nil {
		s := d.Stats()
		stats["words"] = s.Words
		stats["nodes"] = s.Nodes
		stats["maxDepth"] = s.MaxDepth
		stats["sizeBytes"] = s.Size
	}
	if e.user != nil {
		stats["userWords"] = e.user.Len()
	}
	if e.cache != nil {
		for k, v := range e.cache.Stats() {
			stats[k] = v
		}
	}
	return stats
}
