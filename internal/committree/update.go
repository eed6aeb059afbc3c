package committree

import (
	"fmt"

	"github.com/javanhut/commitscope/internal/oplog"
)

// ApplyOperations decodes words and applies the resulting log to prev.
func ApplyOperations(prev *CommitTree, words []uint32) (*CommitTree, error) {
	log, err := oplog.Decode(words)
	if err != nil {
		return nil, err
	}
	return Apply(prev, log)
}

// Apply derives a new snapshot from prev by applying every operation in log.
// prev is left untouched: the new tree starts from a copy of prev's id map and
// each node an operation modifies is cloned, at most once, before mutation.
// On any error the partially built map is discarded.
func Apply(prev *CommitTree, log *oplog.Log) (*CommitTree, error) {
	u := &updater{
		nodes:  make(map[NodeID]*Node, len(prev.nodes)),
		cloned: make(map[NodeID]bool),
	}
	for id, n := range prev.nodes {
		u.nodes[id] = n
	}

	for i, op := range log.Ops {
		if err := u.apply(op); err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Opcode(), err)
		}
	}

	return &CommitTree{rootID: prev.rootID, nodes: u.nodes}, nil
}

type updater struct {
	nodes  map[NodeID]*Node
	cloned map[NodeID]bool // Nodes owned by this update and safe to mutate
}

// mutable returns a node that may be modified in place, cloning it first if it
// is still shared with an earlier snapshot.
func (u *updater) mutable(id NodeID) (*Node, error) {
	n, ok := u.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	if u.cloned[id] {
		return n, nil
	}
	c := n.clone()
	u.nodes[id] = c
	u.cloned[id] = true
	return c, nil
}

func (u *updater) insert(n *Node) error {
	if _, exists := u.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, n.ID)
	}
	u.nodes[n.ID] = n
	u.cloned[n.ID] = true
	return nil
}

func (u *updater) apply(op oplog.Operation) error {
	switch o := op.(type) {
	case oplog.Add:
		return u.add(o)
	case oplog.Remove:
		return u.remove(o)
	case oplog.ReorderChildren:
		n, err := u.mutable(NodeID(o.ID))
		if err != nil {
			return err
		}
		n.Children = toNodeIDs(o.Children)
		return nil
	case oplog.UpdateTreeBaseDuration:
		n, err := u.mutable(NodeID(o.ID))
		if err != nil {
			return err
		}
		n.TreeBaseDuration = float64(o.DurationMicros) / 1000
		return nil
	default:
		return fmt.Errorf("%w: %T", oplog.ErrUnsupportedOperation, op)
	}
}

func (u *updater) add(o oplog.Add) error {
	id := NodeID(o.ID)
	if id == NoParent {
		return ErrReservedNodeID
	}
	if _, exists := u.nodes[id]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}

	if o.IsRoot() {
		return u.insert(&Node{ID: id, ParentID: NoParent, Type: o.Type})
	}

	parentID := NodeID(o.ParentID)
	parent, err := u.mutable(parentID)
	if err != nil {
		return fmt.Errorf("parent of %d: %w", id, err)
	}
	parent.Children = append(parent.Children, id)

	return u.insert(&Node{
		ID:          id,
		ParentID:    parentID,
		Type:        o.Type,
		DisplayName: o.DisplayName,
		Key:         o.Key,
	})
}

// remove deletes each id in order. A parent that is already gone (removed
// earlier in the same batch) is left alone.
func (u *updater) remove(o oplog.Remove) error {
	for _, raw := range o.IDs {
		id := NodeID(raw)
		n, ok := u.nodes[id]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownNode, id)
		}
		parentID := n.ParentID

		delete(u.nodes, id)
		delete(u.cloned, id)

		if parentID == NoParent {
			continue
		}
		if _, ok := u.nodes[parentID]; !ok {
			continue
		}
		parent, err := u.mutable(parentID)
		if err != nil {
			return err
		}
		parent.Children = without(parent.Children, id)
	}
	return nil
}

func without(ids []NodeID, drop NodeID) []NodeID {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func toNodeIDs(raw []uint32) []NodeID {
	ids := make([]NodeID, len(raw))
	for i, r := range raw {
		ids[i] = NodeID(r)
	}
	return ids
}
