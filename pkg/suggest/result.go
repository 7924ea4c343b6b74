package suggest

import (
	"cmp"
	"slices"
	"strings"
)

// Candidate is one suggested word.
type Candidate struct {
	Word        string
	Score       int
	Frequency   int
	Corrections int
	User        bool

	// exact is set when the word ends on the last tap.
	exact bool
}

// beats reports whether c should replace other as the entry for the same
// word.
func (c Candidate) beats(other Candidate) bool {
	if c.Score != other.Score {
		return c.Score > other.Score
	}
	if c.User != other.User {
		return c.User
	}
	return c.Corrections < other.Corrections
}

// compareCandidates orders by score, then fewer corrections, then word.
func compareCandidates(a, b Candidate) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Corrections, b.Corrections); c != 0 {
		return c
	}
	return strings.Compare(a.Word, b.Word)
}

// Result is the outcome of one Suggest call.
type Result struct {
	// Candidates are ordered best first. When the typed word is valid
	// and the mode is not ModeNone it comes first.
	Candidates []Candidate
	// Typed is the word formed by the keys actually pressed.
	Typed string
	// TypedValid reports whether Typed is in either dictionary.
	TypedValid bool
	Mode       CorrectionMode
}

// Len returns the number of candidates.
func (r Result) Len() int { return len(r.Candidates) }

// Words returns the candidate words in order.
func (r Result) Words() []string {
	words := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		words[i] = c.Word
	}
	return words
}

// corrects reports whether c is a correction of the typed word rather than
// a plain completion: it needed a neighbor key, or it has the typed length
// but is spelled differently, as when accents or a final sigma are restored.
func (r Result) corrects(c Candidate) bool {
	if c.Corrections > 0 {
		return true
	}
	return c.exact && strings.ToLower(c.Word) != strings.ToLower(r.Typed)
}

// HasMinimalCorrection reports whether the result holds a genuine
// correction the caller may apply on its own: some candidate corrects the
// typed word, and either the mode is ModeFull or the typed word is not a
// word.
func (r Result) HasMinimalCorrection() bool {
	if r.Mode == ModeNone {
		return false
	}
	if r.Mode != ModeFull && r.TypedValid {
		return false
	}
	return slices.ContainsFunc(r.Candidates, r.corrects)
}

// BestWord returns the word to commit when the user types a separator.
func (r Result) BestWord() string {
	switch r.Mode {
	case ModeBasic:
		if r.TypedValid || len(r.Candidates) == 0 {
			return r.Typed
		}
		for _, c := range r.Candidates {
			if r.corrects(c) {
				return c.Word
			}
		}
		return r.Candidates[0].Word
	case ModeFull:
		typed := strings.ToLower(r.Typed)
		for _, c := range r.Candidates {
			if strings.ToLower(c.Word) != typed {
				return c.Word
			}
		}
		return r.Typed
	default:
		return r.Typed
	}
}

func (r Result) clone() Result {
	r.Candidates = slices.Clone(r.Candidates)
	return r
}
