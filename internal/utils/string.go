package utils

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UpperFirst uppercases the first rune of word, keeping its accent.
func UpperFirst(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return word
	}
	return string(unicode.ToTitle(r)) + word[size:]
}

// UpperAll uppercases word with Greek rules, which drop the tonos in
// all-caps text. A Caser is stateful, so each call makes its own.
func UpperAll(word string) string {
	return cases.Upper(language.Greek).String(word)
}

// IsUpperRune reports whether r is an uppercase letter.
func IsUpperRune(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsTitle(r)
}

// FormatWithCommas formats an integer with comma separators
func FormatWithCommas(n int) string {
	str := strconv.Itoa(n)
	if n < 1000 && n > -1000 {
		return str
	}
	sign := ""
	if str[0] == '-' {
		sign, str = "-", str[1:]
	}
	result := make([]byte, 0, len(str)+len(str)/3)
	for i := range len(str) {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, str[i])
	}
	return sign + string(result)
}
