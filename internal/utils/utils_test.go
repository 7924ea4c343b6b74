package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseRune(t *testing.T) {
	tests := []struct {
		in, want rune
	}{
		{'ε', 'ε'},
		{'έ', 'ε'},
		{'Έ', 'ε'},
		{'ς', 'σ'},
		{'Σ', 'σ'},
		{'ϊ', 'ι'},
		{'ΐ', 'ι'},
		{'é', 'e'},
		{'A', 'a'},
		{'ж', 'ж'},
		{'\'', '\''},
		{'€', '€'},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.want), string(BaseRune(tt.in)), "BaseRune(%q)", tt.in)
	}
	assert.Equal(t, "καλησ", Fold("Καλής"))
}

func TestIsValidInput(t *testing.T) {
	assert.True(t, IsValidInput("καλά"))
	assert.True(t, IsValidInput("σ'αγαπώ"))
	assert.False(t, IsValidInput(""))
	assert.False(t, IsValidInput("1234"))
	assert.False(t, IsValidInput("a1"))
	assert.True(t, IsSeparator(' '))
	assert.True(t, IsSeparator('·'))
	assert.False(t, IsSeparator('\''))
}

func TestCasing(t *testing.T) {
	assert.Equal(t, "Ένα", UpperFirst("ένα"))
	assert.Equal(t, "Ένα", UpperFirst("Ένα"))
	assert.Equal(t, "", UpperFirst(""))
	assert.Equal(t, "ΚΑΛΑ", UpperAll("καλά"))
	assert.True(t, IsUpperRune('Κ'))
	assert.False(t, IsUpperRune('κ'))
}

func TestFormatWithCommas(t *testing.T) {
	assert.Equal(t, "999", FormatWithCommas(999))
	assert.Equal(t, "1,000", FormatWithCommas(1000))
	assert.Equal(t, "12,345,678", FormatWithCommas(12345678))
	assert.Equal(t, "-4,096", FormatWithCommas(-4096))
}

func TestSuggestionFilter(t *testing.T) {
	f := NewSuggestionFilter(4)
	assert.True(t, f.ShouldInclude("Και"))
	assert.False(t, f.ShouldInclude("και"))
	assert.True(t, f.ShouldInclude("καί"))
}

func TestTOMLRecoveryHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[dict]\nlanguage = \"en\"\nlegacy = true\nsize = 3\n"), 0o644))

	data, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	dict, ok := Extract[map[string]any](data, "dict")
	require.True(t, ok)

	lang, ok := Extract[string](dict, "language")
	assert.True(t, ok)
	assert.Equal(t, "en", lang)
	legacy, ok := Extract[bool](dict, "legacy")
	assert.True(t, ok)
	assert.True(t, legacy)
	size, ok := ExtractInt(dict, "size")
	assert.True(t, ok)
	assert.Equal(t, 3, size)
	_, ok = ExtractInt(dict, "language")
	assert.False(t, ok)
}

func TestDictDirs(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsDictDir(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.dict"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "el.dict"), nil, 0o644))
	assert.True(t, IsDictDir(dir))
	assert.Equal(t, []string{filepath.Join(dir, "el.dict"), filepath.Join(dir, "en.dict")}, ListDictFiles(dir))

	pr := &PathResolver{executableDir: t.TempDir(), configDir: t.TempDir()}
	assert.Equal(t, dir, pr.GetDataDir(dir))
	missing := filepath.Join(t.TempDir(), "nope")
	assert.Equal(t, missing, pr.GetDataDir(missing))
}

func TestCheckDirStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	res := CheckDirStatus(dir)
	assert.True(t, res.Exists)
	assert.True(t, res.Writable)
	assert.True(t, FileExists(dir))
}

func TestSaveTOMLFile(t *testing.T) {
	type section struct {
		Level string `toml:"level"`
	}
	type doc struct {
		Log section `toml:"log"`
	}
	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, SaveTOMLFile(doc{Log: section{Level: "warn"}}, path))
	require.NoError(t, SaveTOMLFile(doc{Log: section{Level: "debug"}}, path))

	var got doc
	require.NoError(t, LoadTOMLFile(path, &got))
	assert.Equal(t, "debug", got.Log.Level)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "unknown", GetAbsolutePath(""))
	assert.True(t, filepath.IsAbs(GetAbsolutePath("c.toml")))
}
