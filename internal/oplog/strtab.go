package oplog

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// StringTable holds the strings embedded at the start of a log.
// Reference 0 means "no string"; reference i (i >= 1) is entry i-1.
type StringTable []string

// Lookup resolves a string reference. It returns nil for reference 0.
func (t StringTable) Lookup(ref uint32) (*string, error) {
	if ref == 0 {
		return nil, nil
	}
	if uint64(ref) > uint64(len(t)) {
		return nil, fmt.Errorf("%w: string reference %d outside table of %d", ErrMalformedLog, ref, len(t))
	}
	s := t[ref-1]
	return &s, nil
}

// DecodeStringTable reads the table size word at the cursor, then every
// [length][code units] entry within that region. The cursor ends exactly at
// the recorded boundary; an entry that crosses it is a format error.
func DecodeStringTable(c *Cursor) (StringTable, error) {
	size, err := c.Next("string table size")
	if err != nil {
		return nil, err
	}
	if uint64(size) > uint64(c.Remaining()) {
		return nil, &DecodeError{
			Offset: c.Pos() - 1,
			Field:  "string table size",
			Err:    fmt.Errorf("%w: table of %d words exceeds buffer", ErrMalformedLog, size),
		}
	}

	end := c.Pos() + int(size)
	var table StringTable
	for c.Pos() < end {
		start := c.Pos()
		length, err := c.Next("string length")
		if err != nil {
			return nil, err
		}
		if uint64(length) > uint64(end-c.Pos()) {
			return nil, &DecodeError{
				Offset: start,
				Field:  "string length",
				Err:    fmt.Errorf("%w: entry of %d words crosses table boundary at word %d", ErrMalformedLog, length, end),
			}
		}
		units, err := c.Take(length, "string data")
		if err != nil {
			return nil, err
		}
		table = append(table, decodeString(units))
	}
	return table, nil
}

// decodeString turns code units into text. UTF-16 surrogate pairs combine into
// one rune; words that are not valid code points become U+FFFD.
func decodeString(units []uint32) string {
	var b strings.Builder
	b.Grow(len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		if utf16.IsSurrogate(rune(u)) && i+1 < len(units) {
			if r := utf16.DecodeRune(rune(u), rune(units[i+1])); r != utf8.RuneError {
				b.WriteRune(r)
				i++
				continue
			}
		}
		if u > utf8.MaxRune || !utf8.ValidRune(rune(u)) {
			b.WriteRune(utf8.RuneError)
			continue
		}
		b.WriteRune(rune(u))
	}
	return b.String()
}

// encodeString is the inverse of decodeString: one word per UTF-16 code unit.
func encodeString(s string) []uint32 {
	units := utf16.Encode([]rune(s))
	out := make([]uint32, len(units))
	for i, u := range units {
		out[i] = uint32(u)
	}
	return out
}
