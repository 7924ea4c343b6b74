package suggest

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/bastiangx/keypredict/pkg/composer"
	"github.com/bastiangx/keypredict/pkg/dictionary"
	"github.com/bastiangx/keypredict/pkg/proximity"
	"github.com/bastiangx/keypredict/pkg/userdict"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var greekWords = map[string]int{
	"και":     250,
	"καλά":    120,
	"καλός":   90,
	"κάτι":    100,
	"είναι":   255,
	"εν":      40,
	"σ'αγαπώ": 30,
	"Αθήνα":   150,
	"ζωή":     80,
}

var latinWords = map[string]int{
	"we":  180,
	"web": 60,
	"wet": 20,
	"ew":  10,
}

func buildDict(t testing.TB, words map[string]int) *dictionary.Dictionary {
	t.Helper()
	b := dictionary.NewBuilder()
	for w, f := range words {
		require.NoError(t, b.Add(w, f))
	}
	var buf bytes.Buffer
	require.NoError(t, b.Encode(&buf))
	d, err := dictionary.Parse(buf.Bytes())
	require.NoError(t, err)
	return d
}

func typed(word string) *composer.Composer {
	c := composer.New()
	c.AddWord(word)
	return c
}

func fatFinger(taps ...[]rune) *composer.Composer {
	c := composer.New()
	for _, keys := range taps {
		c.Add(keys[0], keys[1:])
	}
	return c
}

func TestExactMatchIncluded(t *testing.T) {
	dict := buildDict(t, greekWords)
	for _, mode := range []CorrectionMode{ModeBasic, ModeFull} {
		for word := range greekWords {
			t.Run(mode.String()+"/"+word, func(t *testing.T) {
				r := Suggest(typed(word), dict, nil, mode, DefaultOptions())
				require.NotEmpty(t, r.Candidates)
				assert.True(t, r.TypedValid)
				assert.Equal(t, word, r.Candidates[0].Word)
			})
		}
	}
}

func TestProximityTolerance(t *testing.T) {
	dict := buildDict(t, latinWords)
	c := fatFinger([]rune{'q', 'w'}, []rune{'e', 'w'})

	r := Suggest(c, dict, nil, ModeBasic, DefaultOptions())
	assert.Equal(t, "qe", r.Typed)
	assert.False(t, r.TypedValid)
	require.NotEmpty(t, r.Candidates)
	assert.Equal(t, "we", r.Candidates[0].Word)
	assert.Equal(t, 1, r.Candidates[0].Corrections)
	assert.Contains(t, r.Words(), "web")
	assert.True(t, r.HasMinimalCorrection())
	assert.Equal(t, "we", r.BestWord())

	withLayout := composer.New()
	withLayout.AddKey('q', proximity.Latin)
	withLayout.AddKey('e', proximity.Latin)
	assert.Contains(t, Suggest(withLayout, dict, nil, ModeBasic, DefaultOptions()).Words(), "we")
}

func TestCorrectionModeGating(t *testing.T) {
	dict := buildDict(t, latinWords)
	c := fatFinger([]rune{'q', 'w'}, []rune{'e', 'w'})

	r := Suggest(c, dict, nil, ModeNone, DefaultOptions())
	assert.NotContains(t, r.Words(), "we")
	assert.Empty(t, r.Candidates)
	assert.False(t, r.HasMinimalCorrection())
	assert.Equal(t, "qe", r.BestWord())

	exact := fatFinger([]rune{'w', 'q', 'e'}, []rune{'e', 'w', 'r'})
	r = Suggest(exact, dict, nil, ModeNone, DefaultOptions())
	for _, cand := range r.Candidates {
		assert.Zero(t, cand.Corrections, cand.Word)
	}
	assert.NotContains(t, r.Words(), "ew")
}

func TestMinimalCorrectionAndBestWord(t *testing.T) {
	dict := buildDict(t, latinWords)
	// "we" typed exactly, with neighbors that also spell "ew"
	c := fatFinger([]rune{'w', 'e', 'q'}, []rune{'e', 'w', 'r'})

	tests := []struct {
		mode     CorrectionMode
		minimal  bool
		bestWord string
	}{
		{ModeNone, false, "we"},
		{ModeBasic, false, "we"},
		{ModeFull, true, "web"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			r := Suggest(c, dict, nil, tt.mode, DefaultOptions())
			assert.Equal(t, tt.minimal, r.HasMinimalCorrection())
			assert.Equal(t, tt.bestWord, r.BestWord())
		})
	}

	full := Suggest(c, dict, nil, ModeFull, DefaultOptions())
	assert.Equal(t, []string{"we", "web", "wet", "ew"}, full.Words())
}

func TestAccentRestorationIsACorrection(t *testing.T) {
	dict := buildDict(t, greekWords)

	tests := []struct {
		typed    string
		mode     CorrectionMode
		minimal  bool
		bestWord string
	}{
		{"καλα", ModeBasic, true, "καλά"},
		{"καλα", ModeFull, true, "καλά"},
		{"καλα", ModeNone, false, "καλα"},
		{"καλοσ", ModeBasic, true, "καλός"},
		{"ζωη", ModeBasic, true, "ζωή"},
		// a valid word in basic mode is left alone
		{"και", ModeBasic, false, "και"},
		// a longer word is only a completion
		{"καλ", ModeBasic, false, "καλά"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.typed, func(t *testing.T) {
			r := Suggest(typed(tt.typed), dict, nil, tt.mode, DefaultOptions())
			assert.Equal(t, tt.minimal, r.HasMinimalCorrection())
			assert.Equal(t, tt.bestWord, r.BestWord())
		})
	}
}

func TestScoring(t *testing.T) {
	dict := buildDict(t, latinWords)
	c := fatFinger([]rune{'w', 'e'}, []rune{'e', 'w'})
	r := Suggest(c, dict, nil, ModeFull, DefaultOptions())

	byWord := make(map[string]Candidate)
	for _, cand := range r.Candidates {
		byWord[cand.Word] = cand
	}
	// freq x typed-letter^matched x full-word
	assert.Equal(t, 180*2*2*2, byWord["we"].Score)
	assert.Equal(t, 60*2*2, byWord["web"].Score)
	assert.Equal(t, 10*2, byWord["ew"].Score)
	assert.Equal(t, 2, byWord["ew"].Corrections)

	opts := DefaultOptions()
	opts.MaxCorrections = 1
	r = Suggest(c, dict, nil, ModeFull, opts)
	assert.NotContains(t, r.Words(), "ew")
}

func TestDeterminism(t *testing.T) {
	dict := buildDict(t, greekWords)
	user := userdict.New()
	user.AddWord("κακό", 70)
	e := New(dict, user, WithMode(ModeFull))

	c := fatFinger([]rune{'κ', 'λ'}, []rune{'α', 'σ'})
	first := Suggest(c, dict, user, ModeFull, DefaultOptions())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Suggest(c, dict, user, ModeFull, DefaultOptions()))
		assert.Equal(t, first, e.Suggest(c))
	}
}

func TestCapAndDedup(t *testing.T) {
	dict := buildDict(t, greekWords)
	user := userdict.New()
	user.AddWord("αθήνα", 200)

	r := Suggest(typed("αθ"), dict, user, ModeBasic, DefaultOptions())
	require.Len(t, r.Candidates, 1)
	assert.Equal(t, "αθήνα", r.Candidates[0].Word)
	assert.True(t, r.Candidates[0].User)

	opts := DefaultOptions()
	opts.MaxSuggestions = 2
	r = Suggest(typed("κα"), dict, user, ModeFull, opts)
	assert.Len(t, r.Candidates, 2)

	r = Suggest(typed("κα"), dict, user, ModeFull, DefaultOptions())
	seen := make(map[string]bool)
	for _, w := range r.Words() {
		key := strings.ToLower(w)
		assert.False(t, seen[key], "duplicate %q", w)
		seen[key] = true
	}
}

func TestCapitalization(t *testing.T) {
	dict := buildDict(t, greekWords)

	firstUpper := func(t *testing.T, r Result) {
		t.Helper()
		require.NotEmpty(t, r.Candidates)
		for _, w := range r.Words() {
			first, _ := utf8.DecodeRuneInString(w)
			assert.True(t, unicode.IsUpper(first), w)
		}
	}

	c := typed("κα")
	c.SetCapitalized(true)
	r := Suggest(c, dict, nil, ModeBasic, DefaultOptions())
	firstUpper(t, r)
	assert.Contains(t, r.Words(), "Καλά")
	assert.Contains(t, r.Words(), "Κάτι")

	firstUpper(t, Suggest(typed("Κα"), dict, nil, ModeBasic, DefaultOptions()))

	r = Suggest(typed("ΚΑ"), dict, nil, ModeBasic, DefaultOptions())
	require.NotEmpty(t, r.Candidates)
	assert.Contains(t, r.Words(), "ΚΑΛΑ")
	for _, w := range r.Words() {
		for _, ch := range w {
			assert.True(t, unicode.IsUpper(ch), w)
		}
	}
}

func TestUserDictionaryPromotion(t *testing.T) {
	dict := buildDict(t, greekWords)
	e := New(dict, userdict.New())

	assert.NotContains(t, e.Suggest(typed("εν")).Words(), "ένα")
	require.True(t, e.AddWord("ένα", 128))
	r := e.Suggest(typed("εν"))
	assert.Contains(t, r.Words(), "ένα")
	assert.True(t, e.IsValidWord("ένα"))

	require.True(t, e.RemoveWord("ένα"))
	assert.NotContains(t, e.Suggest(typed("εν")).Words(), "ένα")
}

func TestAcceptPromotesUnknownWords(t *testing.T) {
	dict := buildDict(t, greekWords)
	e := New(dict, userdict.New(userdict.WithPromoteAfter(2)))

	assert.Equal(t, userdict.Ignored, e.Accept("και"))
	assert.Equal(t, userdict.Counted, e.Accept("γεια"))
	assert.Equal(t, userdict.Promoted, e.Accept("γεια"))
	assert.Contains(t, e.Suggest(typed("γε")).Words(), "γεια")
	assert.Equal(t, userdict.Incremented, e.Accept("γεια"))

	bare := New(dict, nil)
	assert.Equal(t, userdict.Ignored, bare.Accept("γεια"))
	assert.False(t, bare.AddWord("γεια", 10))
}

func TestEmptyInput(t *testing.T) {
	dict := buildDict(t, greekWords)
	c := typed("και")
	c.Reset()

	r := Suggest(c, dict, userdict.New(), ModeFull, DefaultOptions())
	assert.Empty(t, r.Candidates)
	assert.Equal(t, "", r.Typed)
	assert.Equal(t, "", r.BestWord())
	assert.Empty(t, New(dict, nil).Suggest(composer.New()).Candidates)
}

func TestFoldingAndApostrophes(t *testing.T) {
	dict := buildDict(t, greekWords)

	r := Suggest(typed("ειναι"), dict, nil, ModeBasic, DefaultOptions())
	require.NotEmpty(t, r.Candidates)
	assert.Equal(t, "είναι", r.Candidates[0].Word)
	assert.Zero(t, r.Candidates[0].Corrections)

	assert.Contains(t, Suggest(typed("σαγ"), dict, nil, ModeBasic, DefaultOptions()).Words(), "σ'αγαπώ")
	assert.Contains(t, Suggest(typed("σ'α"), dict, nil, ModeBasic, DefaultOptions()).Words(), "σ'αγαπώ")
	assert.Contains(t, Suggest(typed("αθη"), dict, nil, ModeBasic, DefaultOptions()).Words(), "Αθήνα")
}

func TestCompletionDepthLimit(t *testing.T) {
	dict := buildDict(t, greekWords)
	opts := DefaultOptions()
	opts.MaxDepthFactor = 2

	r := Suggest(typed("κ"), dict, nil, ModeBasic, opts)
	for _, w := range r.Words() {
		assert.LessOrEqual(t, utf8.RuneCountInString(w), 3, w)
	}
	assert.Contains(t, r.Words(), "και")
	assert.NotContains(t, r.Words(), "καλά")

	// completions reach one letter past factor x taps
	r = Suggest(typed("κ"), dict, nil, ModeBasic, DefaultOptions())
	assert.Contains(t, r.Words(), "καλά")
	assert.Contains(t, r.Words(), "κάτι")
	assert.NotContains(t, r.Words(), "καλός")

	withApostrophe := buildDict(t, map[string]int{"'ναι": 50})
	assert.Equal(t, []string{"'ναι"}, Suggest(typed("ν"), withApostrophe, nil, ModeBasic, DefaultOptions()).Words())

	user := userdict.New()
	user.AddWord("'ναι", 50)
	assert.Equal(t, []string{"'ναι"}, Suggest(typed("ν"), nil, user, ModeBasic, DefaultOptions()).Words())
}

func TestVisitBudget(t *testing.T) {
	dict := buildDict(t, greekWords)
	opts := DefaultOptions()
	opts.MaxVisits = 1

	r := Suggest(typed("κα"), dict, nil, ModeBasic, opts)
	assert.Empty(t, r.Candidates)
	assert.Equal(t, "κα", r.Typed)
}

func TestNilDictionary(t *testing.T) {
	user := userdict.New()
	user.AddWord("ένα", 128)
	e := New(nil, user)

	r := e.Suggest(typed("εν"))
	assert.Equal(t, []string{"ένα"}, r.Words())
	assert.Nil(t, e.Dictionary())
	assert.False(t, e.IsValidWord("και"))
}

func TestSetDictionaryInvalidatesCache(t *testing.T) {
	e := New(buildDict(t, latinWords), nil, WithCacheSize(8))
	c := typed("we")

	assert.Contains(t, e.Suggest(c).Words(), "web")
	assert.Contains(t, e.Suggest(c).Words(), "web")
	assert.Equal(t, 1, e.Stats()["cacheHits"])

	e.SetDictionary(buildDict(t, map[string]int{"went": 20}))
	assert.Equal(t, []string{"went"}, e.Suggest(c).Words())

	e.SetDictionary(nil)
	assert.Empty(t, e.Suggest(c).Candidates)
}

func TestCachedResultsAreCopies(t *testing.T) {
	e := New(buildDict(t, latinWords), nil)
	c := typed("we")

	r := e.Suggest(c)
	require.NotEmpty(t, r.Candidates)
	r.Candidates[0].Word = "mutated"
	assert.Equal(t, "we", e.Suggest(c).Candidates[0].Word)
}

func TestResultCacheEviction(t *testing.T) {
	rc := NewResultCache(2)
	rc.Put("a", 0, 0, Result{Typed: "a"})
	rc.Put("b", 0, 0, Result{Typed: "b"})
	_, ok := rc.Get("a", 0, 0)
	require.True(t, ok)
	rc.Put("c", 0, 0, Result{Typed: "c"})

	_, ok = rc.Get("b", 0, 0)
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok = rc.Get("a", 0, 0)
	assert.True(t, ok)
	_, ok = rc.Get("c", 1, 0)
	assert.False(t, ok, "stale generation")
	assert.Equal(t, 1, rc.Stats()["cacheEntries"])
}

func TestEngineMode(t *testing.T) {
	e := New(nil, nil, WithMode(ModeFull))
	assert.Equal(t, ModeFull, e.Mode())
	e.SetMode(ModeNone)
	assert.Equal(t, ModeNone, e.Mode())
}

func TestParseMode(t *testing.T) {
	for _, m := range []CorrectionMode{ModeNone, ModeBasic, ModeFull} {
		got, err := ParseMode(strings.ToUpper(m.String()))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("aggressive")
	assert.Error(t, err)
	assert.Equal(t, "CorrectionMode(7)", CorrectionMode(7).String())
}

func TestConcurrentSuggest(t *testing.T) {
	el := buildDict(t, greekWords)
	en := buildDict(t, latinWords)
	e := New(el, userdict.New())

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c := fatFinger([]rune{'κ', 'w'}, []rune{'α', 'e'})
				r := e.Suggest(c)
				assert.LessOrEqual(t, r.Len(), e.Options().MaxSuggestions)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			e.AddWord(fmt.Sprintf("καφές%d", i), 100)
			e.Accept("καινούργιο")
			if i%10 == 0 {
				e.SetDictionary(en)
				e.SetDictionary(el)
			}
		}
	}()
	wg.Wait()
}
