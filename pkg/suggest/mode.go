package suggest

import (
	"fmt"
	"strings"
)

// CorrectionMode controls how far the engine strays from what was typed.
type CorrectionMode int32

const (
	// ModeNone only follows the keys that were actually pressed.
	ModeNone CorrectionMode = iota
	// ModeBasic tolerates neighbor keys but only proposes a correction
	// when the typed word is not a word.
	ModeBasic
	// ModeFull always proposes the best alternative.
	ModeFull
)

var modeNames = [...]string{"none", "basic", "full"}

func (m CorrectionMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("CorrectionMode(%d)", int32(m))
	}
	return modeNames[m]
}

// ParseMode parses "none", "basic" or "full", ignoring case.
func ParseMode(s string) (CorrectionMode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return CorrectionMode(i), nil
		}
	}
	return ModeNone, fmt.Errorf("unknown correction mode %q", s)
}
