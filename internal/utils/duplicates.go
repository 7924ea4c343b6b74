package utils

import (
	"strings"
)

// SuggestionFilter drops words already seen, comparing case-insensitively.
// It is not safe for concurrent use.
type SuggestionFilter struct {
	seenWords map[string]bool
}

// NewSuggestionFilter creates an empty filter sized for n words.
func NewSuggestionFilter(n int) *SuggestionFilter {
	return &SuggestionFilter{seenWords: make(map[string]bool, n)}
}

// ShouldInclude reports whether word is new and records it.
func (f *SuggestionFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if f.seenWords[lowerWord] {
		return false
	}
	f.seenWords[lowerWord] = true
	return true
}
