package oplog

import "fmt"

// Decode parses a complete operation log. Nothing is returned unless the whole
// buffer decodes; an unknown opcode stops decoding with ErrUnsupportedOperation.
func Decode(words []uint32) (*Log, error) {
	if len(words) < headerWords {
		return nil, &DecodeError{Offset: len(words), Field: "header", Err: fmt.Errorf("%w: unexpected end of buffer", ErrMalformedLog)}
	}

	log := &Log{}
	copy(log.Header[:], words[:headerWords])

	c := NewCursor(words, headerWords)
	strs, err := DecodeStringTable(c)
	if err != nil {
		return nil, err
	}
	log.Strings = strs

	for c.Remaining() > 0 {
		op, err := decodeOperation(c, strs)
		if err != nil {
			return nil, err
		}
		log.Ops = append(log.Ops, op)
	}
	return log, nil
}

func decodeOperation(c *Cursor, strs StringTable) (Operation, error) {
	at := c.Pos()
	code, err := c.Next("opcode")
	if err != nil {
		return nil, err
	}

	switch Opcode(code) {
	case OpAdd:
		return decodeAdd(c, strs)

	case OpRemove:
		count, err := c.Next("remove count")
		if err != nil {
			return nil, err
		}
		ids, err := c.Take(count, "remove ids")
		if err != nil {
			return nil, err
		}
		return Remove{IDs: append([]uint32(nil), ids...)}, nil

	case OpReorderChildren:
		id, err := c.Next("reorder id")
		if err != nil {
			return nil, err
		}
		n, err := c.Next("reorder child count")
		if err != nil {
			return nil, err
		}
		children, err := c.Take(n, "reorder children")
		if err != nil {
			return nil, err
		}
		return ReorderChildren{ID: id, Children: append([]uint32(nil), children...)}, nil

	case OpUpdateTreeBaseDuration:
		id, err := c.Next("duration id")
		if err != nil {
			return nil, err
		}
		micros, err := c.Next("duration value")
		if err != nil {
			return nil, err
		}
		return UpdateTreeBaseDuration{ID: id, DurationMicros: micros}, nil

	default:
		return nil, &DecodeError{Offset: at, Field: "opcode", Err: fmt.Errorf("%w: opcode %d", ErrUnsupportedOperation, code)}
	}
}

func decodeAdd(c *Cursor, strs StringTable) (Operation, error) {
	var add Add
	var err error

	at := c.Pos()
	if add.ID, err = c.Next("add id"); err != nil {
		return nil, err
	}
	if add.ID == 0 {
		return nil, &DecodeError{Offset: at, Field: "add id", Err: fmt.Errorf("%w: node id 0 is reserved", ErrMalformedLog)}
	}
	typ, err := c.Next("add type")
	if err != nil {
		return nil, err
	}
	add.Type = ElementType(typ)

	if add.IsRoot() {
		if add.SupportsProfiling, err = c.Next("root profiling flag"); err != nil {
			return nil, err
		}
		if add.HasOwnerMetadata, err = c.Next("root owner metadata flag"); err != nil {
			return nil, err
		}
		return add, nil
	}

	if add.ParentID, err = c.Next("add parent id"); err != nil {
		return nil, err
	}
	if add.OwnerID, err = c.Next("add owner id"); err != nil {
		return nil, err
	}

	at = c.Pos()
	nameRef, err := c.Next("add display name ref")
	if err != nil {
		return nil, err
	}
	keyRef, err := c.Next("add key ref")
	if err != nil {
		return nil, err
	}

	if add.DisplayName, err = strs.Lookup(nameRef); err != nil {
		return nil, &DecodeError{Offset: at, Field: "add display name ref", Err: err}
	}
	if add.Key, err = strs.Lookup(keyRef); err != nil {
		return nil, &DecodeError{Offset: at + 1, Field: "add key ref", Err: err}
	}
	return add, nil
}
