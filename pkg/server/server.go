package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/keypredict/pkg/composer"
	"github.com/bastiangx/keypredict/pkg/config"
	"github.com/bastiangx/keypredict/pkg/dictionary"
	"github.com/bastiangx/keypredict/pkg/proximity"
	"github.com/bastiangx/keypredict/pkg/suggest"
	"github.com/bastiangx/keypredict/pkg/userdict"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for suggestions
type Server struct {
	engine  suggest.ISuggester
	cfg     config.ServerConfig
	library *dictionary.Library
	lang    string
	layout  *proximity.Layout

	user       *userdict.Dictionary
	flushEvery int
	changes    int

	reader  io.Reader
	writer  *bufio.Writer
	encoder *msgpack.Encoder
}

// Option configures a Server.
type Option func(*Server)

// WithIO replaces stdin and stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.reader = r
		s.writer = bufio.NewWriter(w)
	}
}

// WithLibrary enables the lang action. lang is the language loaded at start.
func WithLibrary(lib *dictionary.Library, lang string) Option {
	return func(s *Server) {
		s.library = lib
		s.lang = lang
	}
}

// WithUserDictionary makes the server flush user after every flushEvery
// changes and when it stops.
func WithUserDictionary(user *userdict.Dictionary, flushEvery int) Option {
	return func(s *Server) {
		s.user = user
		s.flushEvery = flushEvery
	}
}

// NewServer creates a suggestion server using stdin/stdout for IPC
func NewServer(engine suggest.ISuggester, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		cfg:    cfg,
		reader: os.Stdin,
		writer: bufio.NewWriter(os.Stdout),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.encoder = msgpack.NewEncoder(s.writer)
	if layout, ok := proximity.ForLanguage(s.lang); ok {
		s.layout = layout
	}
	return s
}

// Start serves requests until the input ends or ctx is cancelled. The
// user dictionary is flushed before it returns.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting Server.")
	defer s.flush(context.WithoutCancel(ctx))

	decoder := msgpack.NewDecoder(bufio.NewReader(s.reader))
	s.send(StatusResponse{Status: "ready"})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		var raw msgpack.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Reading from stdin: %v", err)
			return fmt.Errorf("server: read request: %w", err)
		}
		s.handleMessage(ctx, raw)
	}
}

// handleMessage decodes one request and dispatches it.
func (s *Server) handleMessage(ctx context.Context, raw msgpack.RawMessage) {
	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		log.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "Invalid msgpack request", 400)
		return
	}

	switch req.Action {
	case ActionSuggest:
		s.handleSuggest(req)
	case ActionValid:
		s.handleValid(req)
	case ActionAdd:
		s.handleAdd(ctx, req)
	case ActionAccept:
		s.handleAccept(ctx, req)
	case ActionRemove:
		s.handleRemove(ctx, req)
	case ActionMode:
		s.handleMode(req)
	case ActionLang:
		s.handleLang(req)
	case ActionHealth:
		s.send(StatusResponse{ID: req.ID, Status: "ok", Mode: s.engine.Mode().String(), Lang: s.lang, Stats: s.engine.Stats()})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

func (s *Server) handleSuggest(req Request) {
	if len(req.Keys) == 0 {
		s.sendError(req.ID, "Missing 'keys' parameter", 400)
		return
	}
	if len(req.Keys) > suggest.MaxInputLength {
		s.sendError(req.ID, fmt.Sprintf("Input exceeds maximum length of %d keys", suggest.MaxInputLength), 400)
		return
	}
	mode := s.engine.Mode()
	if req.Mode != "" {
		m, err := suggest.ParseMode(req.Mode)
		if err != nil {
			s.sendError(req.ID, err.Error(), 400)
			return
		}
		mode = m
	}

	c := composer.New()
	for i, k := range req.Keys {
		if utf8.RuneCountInString(k.Char) != 1 {
			s.sendError(req.ID, fmt.Sprintf("Key %d must hold exactly one character", i), 400)
			return
		}
		r, _ := utf8.DecodeRuneInString(k.Char)
		if r == utf8.RuneError {
			s.sendError(req.ID, fmt.Sprintf("Key %d is not valid UTF-8", i), 400)
			return
		}
		if k.Neighbors == "" {
			c.AddKey(r, s.layout)
		} else {
			c.Add(r, []rune(k.Neighbors))
		}
	}
	c.SetCapitalized(req.Capitalized)

	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.DefaultLimit
	}
	limit = min(limit, s.cfg.MaxLimit)

	start := time.Now()
	result := s.engine.SuggestWithMode(c, mode)
	elapsed := time.Since(start)

	cands := result.Candidates
	if len(cands) > limit {
		cands = cands[:limit]
	}
	suggestions := make([]Suggestion, len(cands))
	for i, cand := range cands {
		suggestions[i] = Suggestion{
			Word:        cand.Word,
			Score:       cand.Score,
			Corrections: cand.Corrections,
			User:        cand.User,
		}
	}
	s.send(SuggestResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Typed:       result.Typed,
		Valid:       result.TypedValid,
		Corrected:   result.HasMinimalCorrection(),
		Best:        result.BestWord(),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleValid(req Request) {
	if req.Word == "" {
		s.sendError(req.ID, "Missing 'word' parameter", 400)
		return
	}
	valid := s.engine.IsValidWord(req.Word)
	s.send(StatusResponse{ID: req.ID, Status: "ok", Valid: &valid})
}

func (s *Server) handleAdd(ctx context.Context, req Request) {
	if req.Word == "" {
		s.sendError(req.ID, "Missing 'word' parameter", 400)
		return
	}
	freq := req.Freq
	if freq <= 0 {
		freq = userdict.DefaultInitialFrequency
	}
	if !s.engine.AddWord(req.Word, freq) {
		s.sendError(req.ID, "User dictionary unavailable", 503)
		return
	}
	s.changed(ctx)
	s.send(StatusResponse{ID: req.ID, Status: "ok"})
}

func (s *Server) handleAccept(ctx context.Context, req Request) {
	if req.Word == "" {
		s.sendError(req.ID, "Missing 'word' parameter", 400)
		return
	}
	res := s.engine.Accept(req.Word)
	if res == userdict.Incremented || res == userdict.Promoted {
		s.changed(ctx)
	}
	s.send(StatusResponse{ID: req.ID, Status: "ok", Result: res.String()})
}

func (s *Server) handleRemove(ctx context.Context, req Request) {
	if req.Word == "" {
		s.sendError(req.ID, "Missing 'word' parameter", 400)
		return
	}
	if !s.engine.RemoveWord(req.Word) {
		s.sendError(req.ID, fmt.Sprintf("Word not found: %s", req.Word), 404)
		return
	}
	s.changed(ctx)
	s.send(StatusResponse{ID: req.ID, Status: "ok"})
}

func (s *Server) handleMode(req Request) {
	if req.Mode != "" {
		m, err := suggest.ParseMode(req.Mode)
		if err != nil {
			s.sendError(req.ID, err.Error(), 400)
			return
		}
		s.engine.SetMode(m)
		log.Debugf("Correction mode set to %s", m)
	}
	s.send(StatusResponse{ID: req.ID, Status: "ok", Mode: s.engine.Mode().String()})
}

func (s *Server) handleLang(req Request) {
	if req.Lang == "" {
		s.send(StatusResponse{ID: req.ID, Status: "ok", Lang: s.lang})
		return
	}
	if !dictionary.ValidLanguage(req.Lang) {
		s.sendError(req.ID, fmt.Sprintf("Invalid language: %s", req.Lang), 400)
		return
	}
	if s.library == nil {
		s.sendError(req.ID, "No dictionary library configured", 503)
		return
	}
	d, err := s.library.Load(req.Lang)
	if err != nil {
		log.Warnf("Failed to load dictionary %q: %v", req.Lang, err)
		s.sendError(req.ID, fmt.Sprintf("Dictionary unavailable: %s", req.Lang), 404)
		return
	}
	s.engine.SetDictionary(d)
	s.lang = req.Lang
	s.layout, _ = proximity.ForLanguage(req.Lang)
	log.Debugf("Switched to %s dictionary", req.Lang)
	s.send(StatusResponse{ID: req.ID, Status: "ok", Lang: s.lang})
}

// changed counts a user dictionary change and flushes every flushEvery.
func (s *Server) changed(ctx context.Context) {
	s.changes++
	if s.flushEvery > 0 && s.changes >= s.flushEvery {
		s.flush(ctx)
	}
}

func (s *Server) flush(ctx context.Context) {
	s.changes = 0
	if s.user == nil {
		return
	}
	if err := s.user.Flush(ctx); err != nil {
		log.Errorf("Failed to save user dictionary: %v", err)
	}
}

// send encodes the response and flushes it so the client sees it at once.
func (s *Server) send(response any) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Marshaling response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
