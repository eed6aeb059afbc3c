package committree

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math"

	"lukechampine.com/blake3"
)

// Hash is a BLAKE3-256 digest of a snapshot.
type Hash [32]byte

// String returns the hexadecimal representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// CanonicalBytes returns a deterministic encoding of the tree's content.
// Two trees with equal content encode identically regardless of how their
// nodes are shared.
//
// Format:
//
//	uvarint(rootID)
//	uvarint(node count)
//	for each node in ascending id order:
//	  uvarint(id) uvarint(parentID) uvarint(type)
//	  optional string displayName, optional string key
//	  uvarint(len(children)) uvarint(child)*
//	  8 bytes big-endian float64 bits of treeBaseDuration
//
// An optional string is a 0 byte when absent, or a 1 byte followed by
// uvarint(len) and the UTF-8 bytes.
func (t *CommitTree) CanonicalBytes() []byte {
	var buf bytes.Buffer
	scratch := make([]byte, binary.MaxVarintLen64)

	putUvarint := func(v uint64) {
		n := binary.PutUvarint(scratch, v)
		buf.Write(scratch[:n])
	}
	putString := func(s *string) {
		if s == nil {
			buf.WriteByte(0)
			return
		}
		buf.WriteByte(1)
		putUvarint(uint64(len(*s)))
		buf.WriteString(*s)
	}

	putUvarint(uint64(t.rootID))
	putUvarint(uint64(len(t.nodes)))

	var bits [8]byte
	for _, id := range t.IDs() {
		n := t.nodes[id]
		putUvarint(uint64(n.ID))
		putUvarint(uint64(n.ParentID))
		putUvarint(uint64(n.Type))
		putString(n.DisplayName)
		putString(n.Key)
		putUvarint(uint64(len(n.Children)))
		for _, c := range n.Children {
			putUvarint(uint64(c))
		}
		binary.BigEndian.PutUint64(bits[:], math.Float64bits(n.TreeBaseDuration))
		buf.Write(bits[:])
	}

	return buf.Bytes()
}

// Digest computes the BLAKE3 hash of the tree's canonical representation.
func (t *CommitTree) Digest() Hash {
	return blake3.Sum256(t.CanonicalBytes())
}
