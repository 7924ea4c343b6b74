package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// FileExt is the extension of dictionary files inside a Library directory.
const FileExt = ".dict"

// Library resolves per-language dictionaries stored as <lang>.dict in one
// directory. Loaded dictionaries are cached until Close.
type Library struct {
	dir    string
	legacy bool
	mu     sync.Mutex
	loaded map[string]*Dictionary
}

// NewLibrary returns a library rooted at dir.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir, loaded: make(map[string]*Dictionary)}
}

// SetLegacy makes the library read headerless files. It affects
// dictionaries loaded afterwards.
func (l *Library) SetLegacy(legacy bool) {
	l.mu.Lock()
	l.legacy = legacy
	l.mu.Unlock()
}

// Dir returns the directory the library reads from.
func (l *Library) Dir() string { return l.dir }

// ValidLanguage reports whether lang can name a file inside the library
// directory. Names with path separators or dot segments are refused.
func ValidLanguage(lang string) bool {
	if lang == "" || lang == "." || lang == ".." {
		return false
	}
	return !strings.ContainsAny(lang, `/\`) && filepath.Base(lang) == lang
}

// Path returns the file path used for lang.
func (l *Library) Path(lang string) string {
	return filepath.Join(l.dir, lang+FileExt)
}

// Available lists the languages with a dictionary file, sorted.
func (l *Library) Available() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(l.dir, "*"+FileExt))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for dictionaries: %w", err)
	}
	langs := make([]string, 0, len(files))
	for _, f := range files {
		langs = append(langs, strings.TrimSuffix(filepath.Base(f), FileExt))
	}
	sort.Strings(langs)
	return langs, nil
}

// Load returns the dictionary for lang, mapping it on first use.
func (l *Library) Load(lang string) (*Dictionary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !ValidLanguage(lang) {
		return nil, fmt.Errorf("invalid language name %q", lang)
	}
	if d, ok := l.loaded[lang]; ok {
		return d, nil
	}
	path := l.Path(lang)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no dictionary for language %q: %w", lang, err)
	}
	d, err := open(path, l.legacy)
	if err != nil {
		return nil, err
	}
	l.loaded[lang] = d
	log.Debugf("Loaded %q dictionary with %d words", lang, d.Stats().Words)
	return d, nil
}

// Close unmaps every loaded dictionary.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for lang, d := range l.loaded {
		if err := d.Close(); err != nil {
			log.Warnf("Failed to close %q dictionary: %v", lang, err)
			if firstErr == nil {
				firstErr = err
			}
		}
		delete(l.loaded, lang)
	}
	return firstErr
}
