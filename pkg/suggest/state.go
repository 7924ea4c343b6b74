package suggest

import "fmt"

// State is where the caller's text entry currently is. The engine does
// not keep one; Transition helps callers drive theirs from a Result.
type State int

const (
	StateNone State = iota
	StateComposing
	StateAcceptedTyped
	StateAcceptedDefault
	StateAcceptedSuggestion
	StateUndoCommit
)

var stateNames = [...]string{
	"none", "composing", "accepted_typed", "accepted_default", "accepted_suggestion", "undo_commit",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Accepted reports whether s is one of the just-committed states.
func (s State) Accepted() bool {
	return s == StateAcceptedTyped || s == StateAcceptedDefault || s == StateAcceptedSuggestion
}

// Event is something the user did.
type Event int

const (
	// EventKey is a letter key.
	EventKey Event = iota
	// EventSeparator is a space or punctuation that ends a word.
	EventSeparator
	// EventPick is a tap on a candidate.
	EventPick
	// EventBackspace deletes one character.
	EventBackspace
	// EventReset abandons the word, for example on a cursor move.
	EventReset
)

// Transition returns the state after ev. r is the result for the word as
// it stood before ev; it decides whether a separator commits the typed
// word or the engine's default. remaining is the number of taps left in
// the composer after ev.
func Transition(s State, ev Event, r Result, remaining int) State {
	switch ev {
	case EventReset:
		return StateNone
	case EventKey:
		return StateComposing
	case EventPick:
		if s == StateComposing || s == StateNone {
			return StateAcceptedSuggestion
		}
		return s
	case EventSeparator:
		if s != StateComposing {
			return StateNone
		}
		if r.BestWord() != r.Typed {
			return StateAcceptedDefault
		}
		return StateAcceptedTyped
	case EventBackspace:
		switch {
		case s.Accepted():
			return StateUndoCommit
		case s == StateUndoCommit:
			return StateComposing
		case remaining == 0:
			return StateNone
		default:
			return StateComposing
		}
	}
	return s
}
