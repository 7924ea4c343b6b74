package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"unicode/utf8"
)

// MaxFrequency is the largest frequency a node can carry.
const MaxFrequency = 255

type buildNode struct {
	children map[rune]*buildEdge
	addr     int
}

type buildEdge struct {
	freq int
	sub  *buildNode
}

func newBuildNode() *buildNode {
	return &buildNode{children: make(map[rune]*buildEdge)}
}

func (n *buildNode) sortedKeys() []rune {
	keys := make([]rune, 0, len(n.children))
	for r := range n.children {
		keys = append(keys, r)
	}
	slices.Sort(keys)
	return keys
}

// Builder compiles a word list into the packed format. Groups are laid
// out breadth-first with siblings sorted by code point.
type Builder struct {
	// Flags is written to the header. FlagISO88597 selects the
	// single-byte character set.
	Flags uint8

	root  *buildNode
	words int
}

// NewBuilder returns an empty builder for Greek dictionaries.
func NewBuilder() *Builder {
	return &Builder{Flags: FlagISO88597, root: newBuildNode()}
}

// Len returns the number of distinct words added.
func (b *Builder) Len() int { return b.words }

// Add inserts word with freq, clamped to MaxFrequency. Words with a
// non-positive frequency are ignored. Adding a word twice keeps the
// higher frequency.
func (b *Builder) Add(word string, freq int) error {
	if word == "" {
		return errors.New("dictionary: empty word")
	}
	if !utf8.ValidString(word) {
		return fmt.Errorf("dictionary: invalid UTF-8 in %q", word)
	}
	if freq <= 0 {
		return nil
	}
	freq = min(freq, MaxFrequency)

	n := b.root
	runes := []rune(word)
	for i, r := range runes {
		if r > 0xFFFF {
			return fmt.Errorf("dictionary: character %U in %q is outside the BMP", r, word)
		}
		e, ok := n.children[r]
		if !ok {
			if len(n.children) == maxChildrenCount {
				return fmt.Errorf("dictionary: more than %d siblings at %q", maxChildrenCount, string(runes[:i]))
			}
			e = &buildEdge{freq: -1}
			n.children[r] = e
		}
		if i == len(runes)-1 {
			if e.freq < 0 {
				b.words++
			}
			e.freq = max(e.freq, freq)
			break
		}
		if e.sub == nil {
			e.sub = newBuildNode()
		}
		n = e.sub
	}
	return nil
}

func (b *Builder) charSize(r rune) int {
	if _, ok := charsetFor(b.Flags).encodeRune(r); ok {
		return 1
	}
	return 3
}

func (b *Builder) groupSize(n *buildNode) int {
	size := 1
	for r, e := range n.children {
		size += b.charSize(r)
		if e.sub != nil {
			size += 3
		} else {
			size++
		}
		if e.freq >= 0 {
			size++
		}
	}
	return size
}

// layout assigns relative addresses breadth-first and returns the groups
// in write order.
func (b *Builder) layout() ([]*buildNode, error) {
	var order []*buildNode
	addr := 0
	queue := []*buildNode{b.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		n.addr = addr
		if addr > maxAddress {
			return nil, fmt.Errorf("dictionary: node table exceeds %d bytes", maxAddress)
		}
		addr += b.groupSize(n)
		order = append(order, n)
		for _, r := range n.sortedKeys() {
			if sub := n.children[r].sub; sub != nil {
				queue = append(queue, sub)
			}
		}
	}
	return order, nil
}

// Encode writes the header and node table to w.
func (b *Builder) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	h := Header{Version: Version, Flags: b.Flags}
	if _, err := bw.Write(h.bytes()); err != nil {
		return err
	}
	if err := b.encodeTable(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// EncodeLegacy writes only the node table, with ISO-8859-7 characters.
func (b *Builder) EncodeLegacy(w io.Writer) error {
	flags := b.Flags
	b.Flags = FlagISO88597
	defer func() { b.Flags = flags }()

	bw := bufio.NewWriter(w)
	if err := b.encodeTable(bw); err != nil {
		return err
	}
	return bw.Flush()
}

func (b *Builder) encodeTable(w *bufio.Writer) error {
	groups, err := b.layout()
	if err != nil {
		return err
	}
	cs := charsetFor(b.Flags)
	for _, n := range groups {
		w.WriteByte(byte(len(n.children)))
		for _, r := range n.sortedKeys() {
			if c, ok := cs.encodeRune(r); ok {
				w.WriteByte(c)
			} else {
				w.Write([]byte{wideCharMarker, byte(r >> 8), byte(r)})
			}
			e := n.children[r]
			var flags byte
			if e.freq >= 0 {
				flags |= flagTerminal
			}
			if e.sub != nil {
				addr := e.sub.addr & addressMask
				w.Write([]byte{flags | flagAddress | byte(addr>>16), byte(addr >> 8), byte(addr)})
			} else {
				w.WriteByte(flags)
			}
			if e.freq >= 0 {
				if err := w.WriteByte(byte(e.freq)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
