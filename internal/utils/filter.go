package utils

import (
	"unicode"
)

// IsSeparator checks if a rune ends a word being composed.
func IsSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '.' || r == ',' || r == ';' || r == '!' || r == '?' || r == '·'
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsWordRune reports whether r can appear inside a dictionary word.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || r == '\'' || r == '’'
}

// IsValidInput checks if a typed word should be sent to the engine.
// It rejects empty strings, numbers and anything with non-word runes.
func IsValidInput(s string) bool {
	if len(s) == 0 || IsOnlyNumbers(s) {
		return false
	}
	for _, r := range s {
		if !IsWordRune(r) {
			return false
		}
	}
	return true
}
