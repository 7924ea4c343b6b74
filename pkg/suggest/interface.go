// Package suggest turns the taps of a composer into ranked word
// candidates, walking the packed dictionary and the user dictionary with
// tolerance for neighboring keys.
package suggest

import (
	"github.com/bastiangx/keypredict/pkg/composer"
	"github.com/bastiangx/keypredict/pkg/dictionary"
	"github.com/bastiangx/keypredict/pkg/userdict"
)

// ISuggester defines the interface for suggestion engines
type ISuggester interface {
	// Suggest returns candidates for c using the current mode
	Suggest(c *composer.Composer) Result

	// SuggestWithMode returns candidates for c using mode
	SuggestWithMode(c *composer.Composer, mode CorrectionMode) Result

	IsValidWord(word string) bool

	// AddWord, RemoveWord and Accept change the user dictionary
	AddWord(word string, freq int) bool
	RemoveWord(word string) bool
	Accept(word string) userdict.LearnResult

	Mode() CorrectionMode
	SetMode(mode CorrectionMode)

	// SetDictionary swaps the main dictionary (language change)
	SetDictionary(d *dictionary.Dictionary)

	// Stats returns statistics about the loaded dictionaries
	Stats() map[string]int
}

var _ ISuggester = (*Engine)(nil)
