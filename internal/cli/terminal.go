package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/bastiangx/keypredict/internal/utils"
	"github.com/bastiangx/keypredict/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const wordColumn = 24

var (
	wordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	fixStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle = lipgloss.NewStyle().Faint(true)
	headStyle  = lipgloss.NewStyle().Bold(true)
)

// printer renders engine results for humans.
type printer struct {
	w io.Writer
}

func (p printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// suggestions prints up to limit candidates of r, one per line, with the
// word column padded by display width.
func (p printer) suggestions(r suggest.Result, limit int, elapsed time.Duration) {
	flags := ""
	if r.TypedValid {
		flags = " valid"
	}
	if r.HasMinimalCorrection() {
		flags += " corrected"
	}
	p.printf("%s %s%s %s\n",
		headStyle.Render(fmt.Sprintf("'%s'", r.Typed)),
		mutedStyle.Render(r.Mode.String()),
		fixStyle.Render(flags),
		mutedStyle.Render(elapsed.String()))

	if r.Len() == 0 {
		p.printf("   %s\n", mutedStyle.Render("no suggestions"))
		return
	}
	for i, c := range r.Candidates {
		if i == limit {
			break
		}
		style := wordStyle
		if c.User {
			style = userStyle
		}
		word := runewidth.FillRight(runewidth.Truncate(c.Word, wordColumn, "…"), wordColumn)
		detail := fmt.Sprintf("score %8s  freq %3d", utils.FormatWithCommas(c.Score), c.Frequency)
		if c.Corrections > 0 {
			detail += fixStyle.Render(fmt.Sprintf("  fix %d", c.Corrections))
		}
		p.printf("%2d. %s %s\n", i+1, style.Render(word), detail)
	}
}

// commit prints the word a separator committed and the resulting state.
func (p printer) commit(word string, state suggest.State) {
	p.printf("   -> %s %s\n", headStyle.Render(word), mutedStyle.Render(state.String()))
}
