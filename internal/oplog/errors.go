package oplog

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLog indicates a truncated buffer, a string table whose size does
	// not line up with its entries, or an operand that cannot be interpreted.
	ErrMalformedLog = errors.New("malformed operation log")

	// ErrUnsupportedOperation indicates an opcode this decoder does not know.
	// It is a kind of ErrMalformedLog.
	ErrUnsupportedOperation = fmt.Errorf("%w: unsupported operation", ErrMalformedLog)
)

// DecodeError records where in the word buffer decoding stopped.
type DecodeError struct {
	Offset int    // Word offset of the field that could not be read
	Field  string // What was being read
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("word %d (%s): %v", e.Offset, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
