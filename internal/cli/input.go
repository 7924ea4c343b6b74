// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/keypredict/internal/utils"
	"github.com/bastiangx/keypredict/pkg/composer"
	"github.com/bastiangx/keypredict/pkg/proximity"
	"github.com/bastiangx/keypredict/pkg/suggest"
	"github.com/bastiangx/keypredict/pkg/userdict"
	"github.com/charmbracelet/log"
)

// InputHandler reads lines from stdin and types them into the engine one
// key at a time. Every separator ends a word: its suggestions are printed
// and the word the keyboard would commit is accepted into the user
// dictionary. Lines starting with ':' are commands.
type InputHandler struct {
	engine   suggest.ISuggester
	layout   *proximity.Layout
	limit    int
	noFilter bool
	learn    bool

	in  io.Reader
	out printer
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(engine suggest.ISuggester, layout *proximity.Layout, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		engine:   engine,
		layout:   layout,
		limit:    limit,
		noFilter: noFilter,
		learn:    true,
		in:       os.Stdin,
		out:      printer{w: os.Stdout},
	}
}

// SetIO replaces stdin and stdout.
func (h *InputHandler) SetIO(in io.Reader, out io.Writer) {
	h.in = in
	h.out = printer{w: out}
}

// SetLearn controls whether committed words are accepted into the user
// dictionary.
func (h *InputHandler) SetLearn(learn bool) { h.learn = learn }

// Start begins the interface loop. It returns nil when the input ends or
// the user quits.
func (h *InputHandler) Start() error {
	log.Print("keypredict CLI [BETA]")
	log.Print("type something and press Enter to see the suggestions (:help for commands, Ctrl+C to exit):")

	scanner := bufio.NewScanner(h.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := h.handleCommand(line[1:]); quit {
				return nil
			}
			continue
		}
		h.handleInput(line)
	}
	return scanner.Err()
}

// handleInput types line key by key, committing a word at every separator
// and at the end of the line.
func (h *InputHandler) handleInput(line string) {
	c := composer.New()
	state := suggest.StateNone

	commit := func() {
		if c.Len() == 0 {
			return
		}
		typed := c.TypedWord()
		defer c.Reset()
		if !h.noFilter && !utils.IsValidInput(typed) {
			log.Warnf("Skipping '%s' (filtered out)", typed)
			return
		}

		start := time.Now()
		r := h.engine.Suggest(c)
		elapsed := time.Since(start)
		log.Debugf("Took [ %v ] for '%s'", elapsed, typed)
		h.out.suggestions(r, h.limit, elapsed)

		state = suggest.Transition(state, suggest.EventSeparator, r, 0)
		word := r.Typed
		if state == suggest.StateAcceptedDefault {
			word = r.BestWord()
		}
		h.out.commit(word, state)
		if h.learn {
			log.Debugf("Accept '%s': %s", word, h.engine.Accept(word))
		}
	}

	for _, r := range line {
		if utils.IsSeparator(r) {
			commit()
			continue
		}
		if c.Len() >= suggest.MaxInputLength {
			continue
		}
		c.AddKey(r, h.layout)
		state = suggest.Transition(state, suggest.EventKey, suggest.Result{}, c.Len())
	}
	commit()
}

var errUsage = errors.New("usage")

// handleCommand runs one ':' command and reports whether to quit.
func (h *InputHandler) handleCommand(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	var err error
	switch fields[0] {
	case "q", "quit", "exit":
		return true
	case "help":
		h.out.printf("%s\n", strings.Join([]string{
			":mode [none|basic|full]  show or set the correction mode",
			":add <word> [freq]       add a word to the user dictionary",
			":rm <word>               remove a user word",
			":valid <word>            check a word",
			":learn on|off            accept committed words",
			":stats                   engine counters",
			":q                       quit",
		}, "\n"))
	case "mode":
		if arg(1) != "" {
			var m suggest.CorrectionMode
			if m, err = suggest.ParseMode(arg(1)); err == nil {
				h.engine.SetMode(m)
			}
		}
		if err == nil {
			h.out.printf("mode: %s\n", h.engine.Mode())
		}
	case "add":
		if arg(1) == "" {
			err = errUsage
			break
		}
		freq := 0
		if arg(2) != "" {
			if freq, err = strconv.Atoi(arg(2)); err != nil {
				break
			}
		}
		if freq <= 0 {
			freq = userdict.DefaultInitialFrequency
		}
		h.out.printf("added: %t\n", h.engine.AddWord(arg(1), freq))
	case "rm", "remove":
		if arg(1) == "" {
			err = errUsage
			break
		}
		h.out.printf("removed: %t\n", h.engine.RemoveWord(arg(1)))
	case "valid":
		if arg(1) == "" {
			err = errUsage
			break
		}
		h.out.printf("valid: %t\n", h.engine.IsValidWord(arg(1)))
	case "learn":
		h.learn = arg(1) != "off"
		h.out.printf("learn: %t\n", h.learn)
	case "stats":
		stats := h.engine.Stats()
		for _, k := range slices.Sorted(maps.Keys(stats)) {
			h.out.printf("%-12s %s\n", k, utils.FormatWithCommas(stats[k]))
		}
	default:
		err = fmt.Errorf("unknown command %q", fields[0])
	}
	if err != nil {
		log.Errorf("%s: %v", fields[0], err)
	}
	return false
}
