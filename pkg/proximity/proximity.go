// Package proximity holds keyboard layouts used to derive the nearby keys
// a tap may have meant.
package proximity

import (
	"unicode"
)

// Layout maps each key to the keys around it. Layouts are built once at
// package init and are read-only afterwards.
type Layout struct {
	name      string
	neighbors map[rune][]rune
}

// Greek is the standard Greek soft keyboard.
var Greek = NewLayout("el", []string{
	";ςερτυθιοπ",
	"ασδφγηξκλ",
	"ζχψωβνμ",
})

// Latin is a plain QWERTY keyboard.
var Latin = NewLayout("en", []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
})

var layouts = map[string]*Layout{
	Greek.name: Greek,
	Latin.name: Latin,
}

// ForLanguage returns the layout registered for lang.
func ForLanguage(lang string) (*Layout, bool) {
	l, ok := layouts[lang]
	return l, ok
}

// NewLayout builds a layout from rows of lowercase keys. Each row is
// shifted half a key to the right of the row above it, so key i touches
// keys i and i+1 above and keys i-1 and i below.
func NewLayout(name string, rows []string) *Layout {
	grid := make([][]rune, len(rows))
	for i, row := range rows {
		grid[i] = []rune(row)
	}
	l := &Layout{name: name, neighbors: make(map[rune][]rune)}
	for y, row := range grid {
		for x, key := range row {
			var near []rune
			add := func(yy, xx int) {
				if yy < 0 || yy >= len(grid) || xx < 0 || xx >= len(grid[yy]) {
					return
				}
				near = append(near, grid[yy][xx])
			}
			add(y, x-1)
			add(y, x+1)
			add(y-1, x)
			add(y-1, x+1)
			add(y+1, x-1)
			add(y+1, x)
			l.neighbors[key] = near
		}
	}
	return l
}

// Name returns the layout's language tag.
func (l *Layout) Name() string { return l.name }

// Neighbors returns r followed by the keys adjacent to it, in the case of
// r. Unknown keys yield just r.
func (l *Layout) Neighbors(r rune) []rune {
	upper := unicode.IsUpper(r)
	near := l.neighbors[unicode.ToLower(r)]
	out := make([]rune, 0, len(near)+1)
	out = append(out, r)
	for _, n := range near {
		if upper {
			n = unicode.ToUpper(n)
		}
		out = append(out, n)
	}
	return out
}
