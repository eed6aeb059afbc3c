package oplog

import (
	"encoding/binary"
	"fmt"
)

// Encode produces the word form of a log. Display names and keys of Add
// operations are interned into the string table in order of first use.
func Encode(header [headerWords]uint32, ops []Operation) ([]uint32, error) {
	refs := make(map[string]uint32)
	var table []uint32

	intern := func(s *string) uint32 {
		if s == nil {
			return 0
		}
		if ref, ok := refs[*s]; ok {
			return ref
		}
		units := encodeString(*s)
		table = append(table, uint32(len(units)))
		table = append(table, units...)
		ref := uint32(len(refs) + 1)
		refs[*s] = ref
		return ref
	}

	var body []uint32
	for i, op := range ops {
		switch o := op.(type) {
		case Add:
			body = append(body, uint32(OpAdd), o.ID, uint32(o.Type))
			if o.IsRoot() {
				body = append(body, o.SupportsProfiling, o.HasOwnerMetadata)
				continue
			}
			body = append(body, o.ParentID, o.OwnerID, intern(o.DisplayName), intern(o.Key))
		case Remove:
			body = append(body, uint32(OpRemove), uint32(len(o.IDs)))
			body = append(body, o.IDs...)
		case ReorderChildren:
			body = append(body, uint32(OpReorderChildren), o.ID, uint32(len(o.Children)))
			body = append(body, o.Children...)
		case UpdateTreeBaseDuration:
			body = append(body, uint32(OpUpdateTreeBaseDuration), o.ID, o.DurationMicros)
		default:
			return nil, fmt.Errorf("operation %d: %w: %T", i, ErrUnsupportedOperation, op)
		}
	}

	words := make([]uint32, 0, headerWords+1+len(table)+len(body))
	words = append(words, header[:]...)
	words = append(words, uint32(len(table)))
	words = append(words, table...)
	words = append(words, body...)
	return words, nil
}

// MarshalWords frames words as little-endian 4-byte values.
func MarshalWords(words []uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}

// UnmarshalWords is the inverse of MarshalWords.
func UnmarshalWords(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of words", ErrMalformedLog, len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return words, nil
}
