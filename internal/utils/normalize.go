package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTableSize covers Latin, Greek and Cyrillic letters.
const foldTableSize = 0x0530

// foldTable holds BaseRune for the common scripts. It is filled once at
// package init and never written again.
var foldTable = buildFoldTable()

func newAccentStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func buildFoldTable() [foldTableSize]rune {
	var table [foldTableSize]rune
	t := newAccentStripper()
	for r := rune(0); r < foldTableSize; r++ {
		table[r] = computeBase(t, r)
	}
	return table
}

func computeBase(t transform.Transformer, r rune) rune {
	base := r
	if stripped, _, err := transform.String(t, string(r)); err == nil {
		if rs := []rune(stripped); len(rs) == 1 {
			base = rs[0]
		}
	}
	base = unicode.ToLower(base)
	if base == 'ς' {
		base = 'σ'
	}
	return base
}

// BaseRune lowercases r, drops its accents and maps final sigma to sigma,
// so that 'Έ', 'έ' and 'ε' all share one base.
func BaseRune(r rune) rune {
	if r >= 0 && r < foldTableSize {
		return foldTable[r]
	}
	return computeBase(newAccentStripper(), r)
}

// Fold applies BaseRune to every rune of s.
func Fold(s string) string {
	return strings.Map(BaseRune, s)
}
