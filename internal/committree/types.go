// Package committree materializes immutable snapshots ("commit trees") of a
// profiled component hierarchy.
//
// The package provides:
// - Node and CommitTree, where a CommitTree never changes once returned
// - BuildInitialTree for the first snapshot of a timeline
// - ApplyOperations for deriving snapshot K from snapshot K-1 and one log
// - Digest and Diff for comparing snapshots by content
//
// Successive snapshots share every Node an update did not touch.
package committree

import (
	"sort"

	"github.com/javanhut/commitscope/internal/oplog"
)

// NodeID is the stable identity of a node within a timeline. Ids are never reused.
type NodeID uint32

// NoParent is the ParentID of root nodes. It is never a valid node id.
const NoParent NodeID = 0

// ElementType classifies the component a node stands for.
type ElementType = oplog.ElementType

// Node is one entry in a snapshot. Nodes reachable from a CommitTree are
// shared between snapshots and must be treated as read-only.
type Node struct {
	ID          NodeID
	ParentID    NodeID      // NoParent for roots
	Type        ElementType // Zero when the source did not record it
	DisplayName *string     // Absent for roots
	Key         *string
	Children    []NodeID // Render order

	// TreeBaseDuration is the aggregate cost of the subtree in milliseconds.
	TreeBaseDuration float64
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.ParentID == NoParent }

// clone copies the node's fields. Children gets its own backing array so the
// clone can be appended to without touching the original.
func (n *Node) clone() *Node {
	c := *n
	c.Children = append([]NodeID(nil), n.Children...)
	return &c
}

// CommitTree is an immutable snapshot: a root id plus every node keyed by id.
type CommitTree struct {
	rootID NodeID
	nodes  map[NodeID]*Node
}

// RootID returns the id of the root the tree was built from.
func (t *CommitTree) RootID() NodeID { return t.rootID }

// Node returns the node with the given id. The node must not be modified.
func (t *CommitTree) Node(id NodeID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Len returns the number of nodes in the tree.
func (t *CommitTree) Len() int { return len(t.nodes) }

// IDs returns every node id in ascending order.
func (t *CommitTree) IDs() []NodeID {
	ids := make([]NodeID, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Walk visits the tree depth-first, pre-order, starting at the root. Child ids
// that are not present in the tree are skipped. Returning an error from fn
// stops the walk.
func (t *CommitTree) Walk(fn func(n *Node, depth int) error) error {
	type frame struct {
		id    NodeID
		depth int
	}
	stack := []frame{{id: t.rootID}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, ok := t.nodes[f.id]
		if !ok {
			continue
		}
		if err := fn(n, f.depth); err != nil {
			return err
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: n.Children[i], depth: f.depth + 1})
		}
	}
	return nil
}

// HierarchyNode describes one node of an externally supplied full hierarchy.
type HierarchyNode struct {
	Children    []NodeID
	DisplayName *string
	Key         *string
	Type        ElementType
}

// Hierarchy is a full hierarchy description keyed by node id.
type Hierarchy map[NodeID]HierarchyNode

// Durations maps node ids to tree base durations in milliseconds.
type Durations map[NodeID]float64
