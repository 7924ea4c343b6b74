package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/keypredict/pkg/dictionary"
	"github.com/bastiangx/keypredict/pkg/proximity"
	"github.com/bastiangx/keypredict/pkg/suggest"
	"github.com/bastiangx/keypredict/pkg/userdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T, input string) (*InputHandler, *suggest.Engine, *bytes.Buffer) {
	t.Helper()
	b := dictionary.NewBuilder()
	for w, f := range map[string]int{"we": 180, "web": 60, "hello": 100} {
		require.NoError(t, b.Add(w, f))
	}
	var buf bytes.Buffer
	require.NoError(t, b.Encode(&buf))
	d, err := dictionary.Parse(buf.Bytes())
	require.NoError(t, err)

	e := suggest.New(d, userdict.New(userdict.WithPromoteAfter(1)))
	h := NewInputHandler(e, proximity.Latin, 5, false)
	var out bytes.Buffer
	h.SetIO(strings.NewReader(input), &out)
	return h, e, &out
}

func TestHandleInputCommitsWords(t *testing.T) {
	h, e, out := newHandler(t, "qe hello, zzq\n")
	require.NoError(t, h.Start())

	text := out.String()
	assert.Contains(t, text, "'qe'")
	assert.Contains(t, text, "accepted_default")
	assert.Contains(t, text, "'hello'")
	assert.Contains(t, text, "accepted_typed")
	assert.Contains(t, text, "no suggestions")

	// unknown committed words are learned
	assert.True(t, e.IsValidWord("zzq"))
}

func TestHandleInputFilters(t *testing.T) {
	h, _, out := newHandler(t, "1234\n")
	require.NoError(t, h.Start())
	assert.NotContains(t, out.String(), "'1234'")
}

func TestCommands(t *testing.T) {
	input := strings.Join([]string{
		":mode full",
		":add wex 50",
		":valid wex",
		":rm wex",
		":valid wex",
		":learn off",
		":bogus",
		":q",
		"hello",
	}, "\n")
	h, e, out := newHandler(t, input)
	require.NoError(t, h.Start())

	text := out.String()
	assert.Equal(t, suggest.ModeFull, e.Mode())
	assert.Contains(t, text, "mode: full")
	assert.Contains(t, text, "added: true")
	assert.Contains(t, text, "valid: true")
	assert.Contains(t, text, "removed: true")
	assert.Contains(t, text, "valid: false")
	assert.Contains(t, text, "learn: false")
	assert.NotContains(t, text, "'hello'")
}
