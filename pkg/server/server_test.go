package server

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/keypredict/pkg/config"
	"github.com/bastiangx/keypredict/pkg/dictionary"
	"github.com/bastiangx/keypredict/pkg/suggest"
	"github.com/bastiangx/keypredict/pkg/userdict"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func encodeDict(t *testing.T, words map[string]int) []byte {
	t.Helper()
	b := dictionary.NewBuilder()
	for w, f := range words {
		require.NoError(t, b.Add(w, f))
	}
	var buf bytes.Buffer
	require.NoError(t, b.Encode(&buf))
	return buf.Bytes()
}

type harness struct {
	t      *testing.T
	engine *suggest.Engine
	user   *userdict.Dictionary
	store  *userdict.MemoryStore
	lib    *dictionary.Library
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "el.dict"),
		encodeDict(t, map[string]int{"και": 250, "καλά": 120, "εν": 40}), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.dict"),
		encodeDict(t, map[string]int{"we": 180, "web": 60}), 0o644))

	lib := dictionary.NewLibrary(dir)
	t.Cleanup(func() { lib.Close() })
	el, err := lib.Load("el")
	require.NoError(t, err)

	store := userdict.NewMemoryStore()
	user := userdict.Open(context.Background(), store, userdict.WithPromoteAfter(2))
	return &harness{
		t:      t,
		engine: suggest.New(el, user, suggest.WithCacheSize(0)),
		user:   user,
		store:  store,
		lib:    lib,
	}
}

// run feeds requests to a fresh server and returns the decoder over its
// output, positioned after the ready message.
func (h *harness) run(flushEvery int, requests ...any) *msgpack.Decoder {
	h.t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range requests {
		require.NoError(h.t, enc.Encode(r))
	}
	srv := NewServer(h.engine, config.DefaultConfig().Server,
		WithIO(&in, &out),
		WithLibrary(h.lib, "el"),
		WithUserDictionary(h.user, flushEvery),
	)
	require.NoError(h.t, srv.Start(context.Background()))

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(h.t, dec.Decode(&ready))
	require.Equal(h.t, "ready", ready.Status)
	return dec
}

func decode[T any](t *testing.T, dec *msgpack.Decoder) T {
	t.Helper()
	var v T
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestSuggest(t *testing.T) {
	h := newHarness(t)
	dec := h.run(0,
		Request{ID: "1", Action: ActionSuggest, Keys: []Key{{Char: "κ"}, {Char: "α"}}},
		Request{ID: "2", Action: ActionSuggest, Keys: []Key{{Char: "κ"}, {Char: "σ", Neighbors: "α"}}, Limit: 1},
		Request{ID: "3", Action: ActionSuggest, Keys: []Key{{Char: "κ"}}, Capitalized: true, Mode: "none"},
	)

	r1 := decode[SuggestResponse](t, dec)
	assert.Equal(t, "1", r1.ID)
	assert.Equal(t, "κα", r1.Typed)
	assert.False(t, r1.Valid)
	require.NotEmpty(t, r1.Suggestions)
	assert.Equal(t, "και", r1.Suggestions[0].Word)

	r2 := decode[SuggestResponse](t, dec)
	assert.Equal(t, "κσ", r2.Typed)
	require.Len(t, r2.Suggestions, 1)
	assert.Equal(t, 1, r2.Suggestions[0].Corrections)
	assert.True(t, r2.Corrected)
	assert.Equal(t, "και", r2.Best)

	r3 := decode[SuggestResponse](t, dec)
	require.NotEmpty(t, r3.Suggestions)
	assert.Equal(t, "Και", r3.Suggestions[0].Word)
	assert.False(t, r3.Corrected)
}

func TestSuggestFlagsAccentCorrection(t *testing.T) {
	h := newHarness(t)
	dec := h.run(0, Request{ID: "1", Action: ActionSuggest, Keys: []Key{{Char: "κ"}, {Char: "α"}, {Char: "λ"}, {Char: "α"}}})
	r := decode[SuggestResponse](t, dec)
	assert.False(t, r.Valid)
	assert.True(t, r.Corrected)
	assert.Equal(t, "καλά", r.Best)
}

func TestSuggestUsesLayoutNeighbors(t *testing.T) {
	h := newHarness(t)
	// ς sits next to ε on the Greek layout
	dec := h.run(0, Request{ID: "1", Action: ActionSuggest, Keys: []Key{{Char: "ς"}, {Char: "ν"}}})
	r := decode[SuggestResponse](t, dec)
	assert.Equal(t, "εν", r.Best)
}

func TestBadRequests(t *testing.T) {
	h := newHarness(t)
	long := make([]Key, suggest.MaxInputLength+1)
	for i := range long {
		long[i] = Key{Char: "α"}
	}
	dec := h.run(0,
		Request{ID: "1", Action: ActionSuggest},
		Request{ID: "2", Action: ActionSuggest, Keys: long},
		Request{ID: "3", Action: ActionSuggest, Keys: []Key{{Char: "κ"}}, Mode: "wild"},
		Request{ID: "4", Action: ActionSuggest, Keys: []Key{{Char: ""}}},
		Request{ID: "5", Action: "dance"},
		Request{ID: "6", Action: ActionAdd},
		Request{ID: "7", Action: ActionRemove, Word: "ποτέ"},
		Request{ID: "8", Action: ActionLang, Lang: "fr"},
		Request{ID: "9", Action: ActionLang, Lang: "../el"},
		Request{ID: "10", Action: ActionSuggest, Keys: []Key{{Char: "κα"}}},
		Request{ID: "11", Action: ActionSuggest, Keys: []Key{{Char: "\xff"}}},
		"not a request",
	)
	for _, want := range []struct {
		id   string
		code int
	}{{"1", 400}, {"2", 400}, {"3", 400}, {"4", 400}, {"5", 400}, {"6", 400}, {"7", 404}, {"8", 404}, {"9", 400}, {"10", 400}, {"11", 400}, {"", 400}} {
		e := decode[ErrorResponse](t, dec)
		assert.Equal(t, want.id, e.ID)
		assert.Equal(t, want.code, e.Code, e.Error)
		assert.NotEmpty(t, e.Error)
	}
}

func TestUserDictionaryActions(t *testing.T) {
	h := newHarness(t)
	dec := h.run(2,
		Request{ID: "1", Action: ActionAdd, Word: "ένα", Freq: 128},
		Request{ID: "2", Action: ActionSuggest, Keys: []Key{{Char: "ε"}, {Char: "ν"}}},
		Request{ID: "3", Action: ActionValid, Word: "ένα"},
		Request{ID: "4", Action: ActionAccept, Word: "γεια"},
		Request{ID: "5", Action: ActionAccept, Word: "γεια"},
		Request{ID: "6", Action: ActionRemove, Word: "ένα"},
		Request{ID: "7", Action: ActionValid, Word: "ένα"},
	)

	assert.Equal(t, "ok", decode[StatusResponse](t, dec).Status)

	var words []string
	for _, s := range decode[SuggestResponse](t, dec).Suggestions {
		words = append(words, s.Word)
	}
	assert.Contains(t, words, "ένα")

	valid := decode[StatusResponse](t, dec)
	require.NotNil(t, valid.Valid)
	assert.True(t, *valid.Valid)

	assert.Equal(t, "counted", decode[StatusResponse](t, dec).Result)
	assert.Equal(t, "promoted", decode[StatusResponse](t, dec).Result)
	assert.Equal(t, "ok", decode[StatusResponse](t, dec).Status)

	invalid := decode[StatusResponse](t, dec)
	require.NotNil(t, invalid.Valid)
	assert.False(t, *invalid.Valid)

	entries, err := h.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []userdict.Entry{{Word: "γεια", Frequency: userdict.DefaultInitialFrequency}}, entries)
}

func TestModeAndLang(t *testing.T) {
	h := newHarness(t)
	dec := h.run(0,
		Request{ID: "1", Action: ActionMode},
		Request{ID: "2", Action: ActionMode, Mode: "full"},
		Request{ID: "3", Action: ActionLang, Lang: "en"},
		Request{ID: "4", Action: ActionSuggest, Keys: []Key{{Char: "w"}}},
		Request{ID: "5", Action: ActionLang},
		Request{ID: "6", Action: ActionHealth},
	)

	assert.Equal(t, "basic", decode[StatusResponse](t, dec).Mode)
	assert.Equal(t, "full", decode[StatusResponse](t, dec).Mode)
	assert.Equal(t, suggest.ModeFull, h.engine.Mode())
	assert.Equal(t, "en", decode[StatusResponse](t, dec).Lang)

	r := decode[SuggestResponse](t, dec)
	require.Len(t, r.Suggestions, 2)
	assert.Equal(t, "we", r.Suggestions[0].Word)

	assert.Equal(t, "en", decode[StatusResponse](t, dec).Lang)

	health := decode[StatusResponse](t, dec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 2, health.Stats["words"])
}

func TestStopsOnCancelledContext(t *testing.T) {
	h := newHarness(t)
	var in, out bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&in).Encode(Request{ID: "1", Action: ActionHealth}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := NewServer(h.engine, config.DefaultConfig().Server, WithIO(&in, &out))
	require.NoError(t, srv.Start(ctx))

	dec := msgpack.NewDecoder(&out)
	assert.Equal(t, "ready", decode[StatusResponse](t, dec).Status)
	var extra StatusResponse
	assert.Error(t, dec.Decode(&extra))
}
