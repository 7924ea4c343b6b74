package dictionary

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Header layout. The node table starts right after the header and every
// child address stored in it is relative to that point.
const (
	HeaderSize = 8
	Version    = 1

	// FlagISO88597 marks single-byte characters as ISO-8859-7 codes.
	// Without it they are ISO-8859-1 codes.
	FlagISO88597 = 0x01
)

// Magic identifies a dictionary file.
var Magic = [4]byte{'K', 'P', 'D', 'T'}

// Entry encoding inside a node group.
const (
	wideCharMarker   = 0xFF
	flagTerminal     = 0x80
	flagAddress      = 0x40
	addressMask      = 0x3FFFFF
	maxAddress       = addressMask
	maxChildrenCount = 0xFF
)

// ErrFormat is matched by every *FormatError.
var ErrFormat = errors.New("dictionary: malformed dictionary")

// FormatError reports a structural problem found while loading.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("dictionary: %s", e.Reason)
	}
	return fmt.Sprintf("dictionary: %s at offset %d", e.Reason, e.Offset)
}

// Is lets errors.Is(err, ErrFormat) succeed.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func formatErr(offset int, format string, args ...any) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// Header is the fixed-size prefix of a dictionary file.
type Header struct {
	Version uint8
	Flags   uint8
}

// parseHeader validates the first HeaderSize bytes of src.
func parseHeader(src source) (Header, error) {
	if src.Len() < HeaderSize {
		return Header{}, formatErr(-1, "file too small (%d bytes) for header", src.Len())
	}
	var magic [4]byte
	for i := range magic {
		magic[i] = src.At(i)
	}
	if !bytes.Equal(magic[:], Magic[:]) {
		return Header{}, formatErr(0, "bad magic %q", magic[:])
	}
	h := Header{Version: src.At(4), Flags: src.At(5)}
	if h.Version != Version {
		return Header{}, formatErr(4, "unsupported version %d", h.Version)
	}
	if h.Flags&^FlagISO88597 != 0 {
		return Header{}, formatErr(5, "unknown flags %#x", h.Flags)
	}
	if src.At(6) != 0 || src.At(7) != 0 {
		return Header{}, formatErr(6, "reserved header bytes are not zero")
	}
	return h, nil
}

func (h Header) bytes() []byte {
	return []byte{Magic[0], Magic[1], Magic[2], Magic[3], h.Version, h.Flags, 0, 0}
}

// charset maps single-byte character codes to runes and back. Code 0xFF is
// never a single-byte character; it introduces a 16-bit code.
type charset struct {
	cm     *charmap.Charmap
	decode [256]rune
}

var (
	greekCharset = newCharset(charmap.ISO8859_7)
	latinCharset = newCharset(charmap.ISO8859_1)
)

func charsetFor(flags uint8) *charset {
	if flags&FlagISO88597 != 0 {
		return greekCharset
	}
	return latinCharset
}

func newCharset(cm *charmap.Charmap) *charset {
	cs := &charset{cm: cm}
	for i := 0; i < 256; i++ {
		r := cm.DecodeByte(byte(i))
		if r == utf8.RuneError || i == wideCharMarker {
			r = -1
		}
		cs.decode[i] = r
	}
	return cs
}

// encodeRune returns the single-byte code for r, if it has one.
func (cs *charset) encodeRune(r rune) (byte, bool) {
	b, ok := cs.cm.EncodeRune(r)
	if !ok || b == wideCharMarker || cs.decode[b] != r {
		return 0, false
	}
	return b, true
}
