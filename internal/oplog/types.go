// Package oplog decodes the binary operation logs that describe how a profiled
// component hierarchy changed during one commit.
//
// A log is a flat run of 32-bit words:
//
//	[0]            header word A (renderer id, opaque here)
//	[1]            header word B (root id, opaque here)
//	[2]            string table word count N
//	[3 .. 3+N)     string table: repeated [length L][L code units]
//	[3+N .. end)   operations, each [opcode][operands...]
//
// Decoding produces a typed sequence of operation records so that the code
// applying them never re-derives operand counts from raw opcode values.
package oplog

import "fmt"

// Opcode identifies the shape of one operation in a log.
type Opcode uint32

const (
	OpAdd                    Opcode = 1
	OpRemove                 Opcode = 2
	OpReorderChildren        Opcode = 3
	OpUpdateTreeBaseDuration Opcode = 4
)

// String returns a human-readable representation of the Opcode.
func (o Opcode) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpReorderChildren:
		return "reorder-children"
	case OpUpdateTreeBaseDuration:
		return "update-tree-base-duration"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(o))
	}
}

// ElementType classifies the component a node stands for.
type ElementType uint32

// ElementTypeRoot marks an Add operation that introduces a root node.
const ElementTypeRoot ElementType = 11

// headerWords is the number of reserved words preceding the string table.
const headerWords = 2

// Operation is one decoded structural or metadata change.
// The concrete types are Add, Remove, ReorderChildren and UpdateTreeBaseDuration.
type Operation interface {
	Opcode() Opcode
	isOperation()
}

// Add inserts a node. Root adds carry the two profiling flags and nothing else;
// other adds carry a parent, an owner and two string table references.
type Add struct {
	ID   uint32
	Type ElementType

	// Root-only flags, ignored by tree reconstruction.
	SupportsProfiling uint32
	HasOwnerMetadata  uint32

	ParentID    uint32
	OwnerID     uint32
	DisplayName *string
	Key         *string
}

// IsRoot reports whether the add introduces a root node.
func (a Add) IsRoot() bool { return a.Type == ElementTypeRoot }

// Remove detaches and deletes nodes, in order.
type Remove struct {
	IDs []uint32
}

// ReorderChildren replaces the ordered child list of a node.
type ReorderChildren struct {
	ID       uint32
	Children []uint32
}

// UpdateTreeBaseDuration sets the subtree cost of a node, in microseconds.
type UpdateTreeBaseDuration struct {
	ID             uint32
	DurationMicros uint32
}

func (Add) Opcode() Opcode                    { return OpAdd }
func (Remove) Opcode() Opcode                 { return OpRemove }
func (ReorderChildren) Opcode() Opcode        { return OpReorderChildren }
func (UpdateTreeBaseDuration) Opcode() Opcode { return OpUpdateTreeBaseDuration }

func (Add) isOperation()                    {}
func (Remove) isOperation()                 {}
func (ReorderChildren) isOperation()        {}
func (UpdateTreeBaseDuration) isOperation() {}

// Log is a fully decoded operation log.
type Log struct {
	Header  [headerWords]uint32
	Strings StringTable
	Ops     []Operation
}
