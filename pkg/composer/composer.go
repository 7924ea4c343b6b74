// Package composer accumulates the word being typed, one key tap at a
// time, together with the keys each tap may have meant.
package composer

import (
	"slices"

	"github.com/bastiangx/keypredict/internal/utils"
	"github.com/bastiangx/keypredict/pkg/proximity"
)

// Step is one key tap. Neighbors[0] is always Char.
type Step struct {
	Char      rune
	Neighbors []rune
}

// Composer is the in-progress word. It is not safe for concurrent
// mutation; readers such as the suggestion engine only look at it.
type Composer struct {
	steps       []Step
	capitalized bool
}

// New returns an empty composer.
func New() *Composer {
	return &Composer{}
}

// Reset clears all steps and the capitalized flag.
func (c *Composer) Reset() {
	c.steps = c.steps[:0]
	c.capitalized = false
}

// Add appends a tap. char is placed first in the candidate set and
// duplicates are dropped, so the set always contains char exactly once.
func (c *Composer) Add(char rune, neighbors []rune) {
	set := make([]rune, 0, len(neighbors)+1)
	set = append(set, char)
	for _, n := range neighbors {
		if n > 0 && !slices.Contains(set, n) {
			set = append(set, n)
		}
	}
	c.steps = append(c.steps, Step{Char: char, Neighbors: set})
}

// AddKey appends a tap whose alternates come from layout.
func (c *Composer) AddKey(char rune, layout *proximity.Layout) {
	if layout == nil {
		c.Add(char, nil)
		return
	}
	c.Add(char, layout.Neighbors(char))
}

// AddWord appends one exact tap per rune of word.
func (c *Composer) AddWord(word string) {
	for _, r := range word {
		c.Add(r, nil)
	}
}

// DeleteLast removes the last tap. It does nothing on an empty composer.
func (c *Composer) DeleteLast() {
	if len(c.steps) == 0 {
		return
	}
	c.steps = c.steps[:len(c.steps)-1]
}

// Len returns the number of taps.
func (c *Composer) Len() int { return len(c.steps) }

// Step returns tap i.
func (c *Composer) Step(i int) Step { return c.steps[i] }

// Steps returns a copy of all taps.
func (c *Composer) Steps() []Step {
	out := make([]Step, len(c.steps))
	for i, s := range c.steps {
		out[i] = Step{Char: s.Char, Neighbors: slices.Clone(s.Neighbors)}
	}
	return out
}

// TypedWord joins the chosen characters.
func (c *Composer) TypedWord() string {
	buf := make([]rune, len(c.steps))
	for i, s := range c.steps {
		buf[i] = s.Char
	}
	return string(buf)
}

// SetCapitalized marks the word as starting with a capital letter.
func (c *Composer) SetCapitalized(capitalized bool) { c.capitalized = capitalized }

// IsCapitalized reports the flag set by SetCapitalized.
func (c *Composer) IsCapitalized() bool { return c.capitalized }

// IsAllUpperCase reports whether at least two taps were made and every
// chosen character is uppercase.
func (c *Composer) IsAllUpperCase() bool {
	if len(c.steps) < 2 {
		return false
	}
	for _, s := range c.steps {
		if !utils.IsUpperRune(s.Char) {
			return false
		}
	}
	return true
}
