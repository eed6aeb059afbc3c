package oplog

import "fmt"

// Cursor reads words sequentially from a log buffer.
type Cursor struct {
	words []uint32
	pos   int
}

// NewCursor returns a cursor positioned at offset within words.
func NewCursor(words []uint32, offset int) *Cursor {
	return &Cursor{words: words, pos: offset}
}

// Pos returns the offset of the next word to be read.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread words.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.words) {
		return 0
	}
	return len(c.words) - c.pos
}

// Next reads one word. field names the value for error reporting.
func (c *Cursor) Next(field string) (uint32, error) {
	if c.pos >= len(c.words) {
		return 0, &DecodeError{Offset: c.pos, Field: field, Err: fmt.Errorf("%w: unexpected end of buffer", ErrMalformedLog)}
	}
	w := c.words[c.pos]
	c.pos++
	return w, nil
}

// Take reads n words as a slice aliasing the buffer.
func (c *Cursor) Take(n uint32, field string) ([]uint32, error) {
	if uint64(n) > uint64(c.Remaining()) {
		return nil, &DecodeError{
			Offset: c.pos,
			Field:  field,
			Err:    fmt.Errorf("%w: %d words requested, %d remain", ErrMalformedLog, n, c.Remaining()),
		}
	}
	out := c.words[c.pos : c.pos+int(n)]
	c.pos += int(n)
	return out, nil
}
