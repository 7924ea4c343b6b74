package suggest

import (
	"github.com/bastiangx/keypredict/pkg/config"
	"github.com/charmbracelet/log"
)

// MaxInputLength is the longest composer the engine will walk.
const MaxInputLength = 48

// Options tunes matching and scoring.
type Options struct {
	// MaxSuggestions caps the result length.
	MaxSuggestions int
	// MaxCorrections is how many taps may be read as a neighbor key.
	MaxCorrections int
	// MaxDepthFactor bounds completions to this many times the typed length.
	MaxDepthFactor int
	// MaxVisits bounds the number of trie entries one call may decode.
	MaxVisits int
	// TypedLetterMultiplier rewards every tap matched by the key pressed.
	TypedLetterMultiplier int
	// FullWordMultiplier rewards words exactly as long as the input.
	FullWordMultiplier int
	// UserBoost rewards words from the user dictionary.
	UserBoost int
	// CacheSize is the number of results the engine remembers. Zero
	// disables caching.
	CacheSize int
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		MaxSuggestions:        10,
		MaxCorrections:        2,
		MaxDepthFactor:        3,
		MaxVisits:             50000,
		TypedLetterMultiplier: 2,
		FullWordMultiplier:    2,
		UserBoost:             2,
		CacheSize:             128,
	}
}

// sanitized replaces out-of-range values with defaults.
func (o Options) sanitized() Options {
	def := DefaultOptions()
	if o.MaxSuggestions <= 0 {
		o.MaxSuggestions = def.MaxSuggestions
	}
	if o.MaxCorrections < 0 {
		o.MaxCorrections = 0
	}
	if o.MaxDepthFactor < 1 {
		o.MaxDepthFactor = def.MaxDepthFactor
	}
	if o.MaxVisits <= 0 {
		o.MaxVisits = def.MaxVisits
	}
	o.TypedLetterMultiplier = max(o.TypedLetterMultiplier, 1)
	o.FullWordMultiplier = max(o.FullWordMultiplier, 1)
	o.UserBoost = max(o.UserBoost, 1)
	o.CacheSize = max(o.CacheSize, 0)
	return o
}

type engineSettings struct {
	opts Options
	mode CorrectionMode
}

// Option configures an Engine.
type Option func(*engineSettings)

// WithOptions replaces all tuning values.
func WithOptions(o Options) Option {
	return func(s *engineSettings) { s.opts = o }
}

// WithMode sets the initial correction mode.
func WithMode(m CorrectionMode) Option {
	return func(s *engineSettings) { s.mode = m }
}

// WithMaxSuggestions caps the result length.
func WithMaxSuggestions(n int) Option {
	return func(s *engineSettings) { s.opts.MaxSuggestions = n }
}

// WithCacheSize sets how many results are remembered.
func WithCacheSize(n int) Option {
	return func(s *engineSettings) { s.opts.CacheSize = n }
}

// WithConfig applies the [engine] section of a config file.
func WithConfig(c config.EngineConfig) Option {
	return func(s *engineSettings) {
		s.opts = Options{
			MaxSuggestions:        c.MaxSuggestions,
			MaxCorrections:        c.MaxCorrections,
			MaxDepthFactor:        c.MaxDepthFactor,
			MaxVisits:             c.MaxVisits,
			TypedLetterMultiplier: c.TypedLetterMultiplier,
			FullWordMultiplier:    c.FullWordMultiplier,
			UserBoost:             c.UserBoost,
			CacheSize:             c.CacheSize,
		}
		mode, err := ParseMode(c.Mode)
		if err != nil {
			log.Warnf("Invalid engine mode in config: %v. Using %s", err, s.mode)
			return
		}
		s.mode = mode
	}
}
