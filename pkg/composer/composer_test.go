package composer

import (
	"testing"

	"github.com/bastiangx/keypredict/pkg/proximity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposer(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "", c.TypedWord())

	c.Add('q', []rune{'w', 'q', 'w', 0})
	c.Add('e', []rune{'w'})
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "qe", c.TypedWord())
	assert.Equal(t, []rune{'q', 'w'}, c.Step(0).Neighbors)
	assert.Equal(t, []rune{'e', 'w'}, c.Step(1).Neighbors)

	c.DeleteLast()
	assert.Equal(t, "q", c.TypedWord())
	c.DeleteLast()
	c.DeleteLast()
	assert.Equal(t, 0, c.Len())

	c.AddWord("εν")
	c.SetCapitalized(true)
	assert.True(t, c.IsCapitalized())
	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.IsCapitalized())
}

func TestStepsIsACopy(t *testing.T) {
	c := New()
	c.Add('a', []rune{'s'})
	steps := c.Steps()
	steps[0].Neighbors[1] = 'z'
	assert.Equal(t, 's', c.Step(0).Neighbors[1])
}

func TestAddKey(t *testing.T) {
	c := New()
	c.AddKey('q', proximity.Latin)
	c.AddKey('x', nil)
	assert.Equal(t, []rune{'q', 'w', 'a'}, c.Step(0).Neighbors)
	assert.Equal(t, []rune{'x'}, c.Step(1).Neighbors)
}

func TestIsAllUpperCase(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"", false},
		{"Α", false},
		{"ΑΘ", true},
		{"Αθ", false},
		{"ΝΑΙ", true},
	}
	for _, tt := range tests {
		c := New()
		c.AddWord(tt.word)
		assert.Equal(t, tt.want, c.IsAllUpperCase(), tt.word)
	}
}
