// Package dictionary implements the packed, offset-addressed trie that
// backs word prediction.
//
// A dictionary is loaded once, validated in full and never mutated
// afterwards, so a *Dictionary can be shared by any number of goroutines
// without locking. Nodes are small values that point into the backing
// buffer; walking the trie does not allocate.
package dictionary

import (
	"fmt"
	"io"
	"iter"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/mmap"
)

// source is the backing storage of a dictionary: a byte slice or a
// read-only memory map.
type source interface {
	At(i int) byte
	Len() int
}

type byteSource []byte

func (b byteSource) At(i int) byte { return b[i] }
func (b byteSource) Len() int      { return len(b) }

// Node is one trie edge: the character leading to it, whether a word ends
// there and where its children start.
type Node struct {
	Char     rune
	terminal bool
	freq     uint8
	child    int
}

// IsTerminal reports whether a complete word ends at n.
func (n Node) IsTerminal() bool { return n.terminal }

// HasChildren reports whether n has at least one child.
func (n Node) HasChildren() bool { return n.child >= 0 }

// Stats describes a loaded dictionary.
type Stats struct {
	Words    int
	Nodes    int
	Groups   int
	MaxDepth int
	Size     int
	Legacy   bool
}

// Dictionary is an immutable packed trie.
type Dictionary struct {
	src    source
	closer io.Closer
	base   int
	cs     *charset
	header Header
	legacy bool
	stats  Stats
}

// Parse loads a dictionary with a header from data. data must not be
// modified afterwards.
func Parse(data []byte) (*Dictionary, error) {
	return newDictionary(byteSource(data), nil, false)
}

// ParseLegacy loads a headerless node table as produced by older
// tooling. Single-byte characters are ISO-8859-7.
func ParseLegacy(data []byte) (*Dictionary, error) {
	return newDictionary(byteSource(data), nil, true)
}

// Load reads a complete dictionary with a header from r.
func Load(r io.Reader) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	return Parse(data)
}

// Open memory-maps the dictionary file at path. The mapping is released
// by Close.
func Open(path string) (*Dictionary, error) {
	return open(path, false)
}

// OpenLegacy memory-maps a headerless dictionary file.
func OpenLegacy(path string) (*Dictionary, error) {
	return open(path, true)
}

func open(path string, legacy bool) (*Dictionary, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to map dictionary %s: %w", path, err)
	}
	d, err := newDictionary(ra, ra, legacy)
	if err != nil {
		ra.Close()
		return nil, fmt.Errorf("failed to load dictionary %s: %w", path, err)
	}
	log.Debugf("Mapped dictionary %s: %d words, %d bytes", path, d.stats.Words, d.stats.Size)
	return d, nil
}

func newDictionary(src source, closer io.Closer, legacy bool) (*Dictionary, error) {
	d := &Dictionary{src: src, closer: closer, legacy: legacy}
	if legacy {
		d.header = Header{Version: Version, Flags: FlagISO88597}
	} else {
		h, err := parseHeader(src)
		if err != nil {
			return nil, err
		}
		d.header = h
		d.base = HeaderSize
	}
	d.cs = charsetFor(d.header.Flags)
	stats, err := d.validate()
	if err != nil {
		return nil, err
	}
	stats.Legacy = legacy
	d.stats = stats
	return d, nil
}

// Close releases the memory map, if any. The dictionary must not be used
// afterwards.
func (d *Dictionary) Close() error {
	if d == nil || d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}

// Header returns the parsed file header.
func (d *Dictionary) Header() Header { return d.header }

// Stats returns counts gathered while validating the node table.
func (d *Dictionary) Stats() Stats { return d.stats }

// Root returns the pseudo-node whose children are the first letters.
func (d *Dictionary) Root() Node {
	return Node{child: d.base}
}

// entry decodes the entry at absolute position p. Positions come from a
// validated table, so no bounds checks are needed here.
func (d *Dictionary) entry(p int) (Node, int) {
	src := d.src
	b := src.At(p)
	p++
	var r rune
	if b == wideCharMarker {
		r = rune(src.At(p))<<8 | rune(src.At(p+1))
		p += 2
	} else {
		r = d.cs.decode[b]
	}
	flags := src.At(p)
	n := Node{Char: r, terminal: flags&flagTerminal != 0, child: -1}
	if flags&flagAddress == 0 {
		p++
	} else {
		addr := int(flags&(addressMask>>16))<<16 | int(src.At(p+1))<<8 | int(src.At(p+2))
		n.child = d.base + addr
		p += 3
	}
	if n.terminal {
		n.freq = src.At(p)
		p++
	}
	return n, p
}

// Children yields the children of n in ascending character order.
func (d *Dictionary) Children(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if n.child < 0 {
			return
		}
		p := n.child
		count := int(d.src.At(p))
		p++
		for i := 0; i < count; i++ {
			var c Node
			c, p = d.entry(p)
			if !yield(c) {
				return
			}
		}
	}
}

// Child returns the child of n reached by r.
func (d *Dictionary) Child(n Node, r rune) (Node, bool) {
	for c := range d.Children(n) {
		if c.Char == r {
			return c, true
		}
		if c.Char > r {
			break
		}
	}
	return Node{}, false
}

// FrequencyAt returns the word frequency if a word ends at n.
func (d *Dictionary) FrequencyAt(n Node) (uint8, bool) {
	if !n.terminal {
		return 0, false
	}
	return n.freq, true
}

// Lookup walks word from the root and returns the node it ends on.
func (d *Dictionary) Lookup(word string) (Node, bool) {
	if word == "" {
		return Node{}, false
	}
	n := d.Root()
	for _, r := range word {
		c, ok := d.Child(n, r)
		if !ok {
			return Node{}, false
		}
		n = c
	}
	return n, true
}

// IsValidWord reports whether word is stored exactly as given.
func (d *Dictionary) IsValidWord(word string) bool {
	n, ok := d.Lookup(word)
	return ok && n.terminal
}

// Frequency returns the stored frequency of word.
func (d *Dictionary) Frequency(word string) (uint8, bool) {
	n, ok := d.Lookup(word)
	if !ok {
		return 0, false
	}
	return d.FrequencyAt(n)
}

// Words calls fn for every stored word in depth-first, ascending order
// until fn returns false.
func (d *Dictionary) Words(fn func(word string, freq uint8) bool) {
	buf := make([]rune, 0, 32)
	d.words(d.Root(), buf, fn)
}

func (d *Dictionary) words(n Node, prefix []rune, fn func(string, uint8) bool) bool {
	for c := range d.Children(n) {
		word := append(prefix, c.Char)
		if c.terminal && !fn(string(word), c.freq) {
			return false
		}
		if c.child >= 0 && !d.words(c, word, fn) {
			return false
		}
	}
	return true
}
