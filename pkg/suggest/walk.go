package suggest

import (
	"math"
	"strings"
	"unicode"

	"github.com/bastiangx/keypredict/internal/utils"
	"github.com/bastiangx/keypredict/pkg/composer"
	"github.com/bastiangx/keypredict/pkg/dictionary"
	"github.com/bastiangx/keypredict/pkg/userdict"
)

const apostrophe = '\''

// keyMatches reports whether a typed key selects the stored character c.
// Stored characters are compared without case or accents, so a typed 'ε'
// selects 'έ' and 'Ε' and a typed 'σ' selects 'ς'.
func keyMatches(key, c rune) bool {
	if key == c {
		return true
	}
	lower := unicode.ToLower(key)
	return lower == unicode.ToLower(c) || lower == utils.BaseRune(c)
}

// matchStep returns the index of the first key of step that selects c, or
// -1. Index 0 is the key that was pressed; anything else is a correction.
func matchStep(step composer.Step, c rune, mode CorrectionMode) int {
	keys := step.Neighbors
	if len(keys) == 0 {
		keys = []rune{step.Char}
	}
	if mode == ModeNone {
		keys = keys[:1]
	}
	for j, k := range keys {
		if keyMatches(k, c) {
			return j
		}
	}
	return -1
}

// skipsApostrophe reports whether a stored apostrophe should be passed over
// without consuming a tap.
func skipsApostrophe(step composer.Step, c rune) bool {
	return c == apostrophe && step.Char != apostrophe
}

// collector gathers the best candidate per lowercase word.
type collector struct {
	steps []composer.Step
	opts  Options
	found map[string]Candidate
}

func newCollector(steps []composer.Step, opts Options) *collector {
	return &collector{steps: steps, opts: opts, found: make(map[string]Candidate)}
}

func (c *collector) score(freq, corrections int, exact, user bool) int {
	s := freq
	for i := 0; i < len(c.steps)-corrections; i++ {
		s = mulSat(s, c.opts.TypedLetterMultiplier)
	}
	if exact {
		s = mulSat(s, c.opts.FullWordMultiplier)
	}
	if user {
		s = mulSat(s, c.opts.UserBoost)
	}
	return s
}

func (c *collector) add(word string, freq, corrections int, exact, user bool) {
	cand := Candidate{
		Word:        word,
		Score:       c.score(freq, corrections, exact, user),
		Frequency:   freq,
		Corrections: corrections,
		User:        user,
		exact:       exact,
	}
	key := strings.ToLower(word)
	if old, ok := c.found[key]; ok && !cand.beats(old) {
		return
	}
	c.found[key] = cand
}

// maxLen is the deepest node a completion may descend from, so words reach
// one character past it.
func (c *collector) maxLen() int {
	return c.opts.MaxDepthFactor * len(c.steps)
}

// walker runs the depth-first search over the main dictionary.
type walker struct {
	*collector
	dict   *dictionary.Dictionary
	mode   CorrectionMode
	visits int
	word   []rune
}

// walk visits the children of n while matching tap si. It returns false
// once the visit budget is spent.
func (w *walker) walk(n dictionary.Node, si, corrections int) bool {
	for child := range w.dict.Children(n) {
		w.visits++
		if w.visits > w.opts.MaxVisits {
			return false
		}
		if !w.visit(child, si, corrections) {
			return false
		}
	}
	return true
}

func (w *walker) visit(n dictionary.Node, si, corrections int) bool {
	descend := func(next, corr int) bool {
		if !n.HasChildren() || len(w.word) > w.maxLen() {
			return true
		}
		return w.walk(n, next, corr)
	}

	w.word = append(w.word, n.Char)
	defer func() { w.word = w.word[:len(w.word)-1] }()

	// Past the last tap every path is a completion.
	if si >= len(w.steps) {
		if freq, ok := w.dict.FrequencyAt(n); ok {
			w.add(string(w.word), int(freq), corrections, false, false)
		}
		return descend(si, corrections)
	}

	step := w.steps[si]
	if skipsApostrophe(step, n.Char) {
		return descend(si, corrections)
	}
	j := matchStep(step, n.Char, w.mode)
	if j < 0 {
		return true
	}
	if j > 0 {
		corrections++
		if corrections > w.opts.MaxCorrections {
			return true
		}
	}
	if si == len(w.steps)-1 {
		if freq, ok := w.dict.FrequencyAt(n); ok {
			w.add(string(w.word), int(freq), corrections, true, false)
		}
	}
	return descend(si+1, corrections)
}

// matchWord applies the same rules as the trie walk to a single word. It
// returns the number of corrections and whether the word ends on the last
// tap.
func (c *collector) matchWord(word []rune, mode CorrectionMode) (corrections int, exact, ok bool) {
	if len(word) > c.maxLen()+1 {
		return 0, false, false
	}
	wi := 0
	for si := 0; si < len(c.steps); {
		if wi >= len(word) {
			return 0, false, false
		}
		step := c.steps[si]
		if skipsApostrophe(step, word[wi]) {
			wi++
			continue
		}
		j := matchStep(step, word[wi], mode)
		if j < 0 {
			return 0, false, false
		}
		if j > 0 {
			corrections++
			if corrections > c.opts.MaxCorrections {
				return 0, false, false
			}
		}
		wi++
		si++
	}
	return corrections, wi == len(word), true
}

// collectUser adds the user dictionary words that the taps can spell.
func (c *collector) collectUser(user *userdict.Dictionary, mode CorrectionMode) {
	first := c.steps[0].Neighbors
	if len(first) == 0 || mode == ModeNone {
		first = []rune{c.steps[0].Char}
	}
	type hit struct {
		word string
		freq int
	}
	var hits []hit
	user.Candidates(first, func(word string, freq int) {
		hits = append(hits, hit{word, freq})
	})
	// A stored word may start with an apostrophe, which no prefix covers.
	user.Candidates([]rune{apostrophe}, func(word string, freq int) {
		hits = append(hits, hit{word, freq})
	})
	for _, h := range hits {
		corrections, exact, ok := c.matchWord([]rune(h.word), mode)
		if ok {
			c.add(h.word, h.freq, corrections, exact, true)
		}
	}
}

func mulSat(a, b int) int {
	if a != 0 && b > math.MaxInt/a {
		return math.MaxInt
	}
	return a * b
}
