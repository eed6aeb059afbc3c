package committree

import "fmt"

// BuildInitialTree materializes the first snapshot of a timeline. It walks the
// hierarchy depth-first, pre-order, from rootID. Every visited node copies its
// children, display name, key and type from the hierarchy and its duration from
// durations. Child ids absent from the hierarchy are skipped, so a partial
// hierarchy yields a partial tree. A visited node with no duration entry is an
// error: the two sources disagree. So is a hierarchy entry for id 0.
func BuildInitialTree(rootID NodeID, hierarchy Hierarchy, durations Durations) (*CommitTree, error) {
	tree := &CommitTree{rootID: rootID, nodes: make(map[NodeID]*Node, len(hierarchy))}

	type frame struct {
		id     NodeID
		parent NodeID
	}
	stack := []frame{{id: rootID, parent: NoParent}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		src, ok := hierarchy[f.id]
		if !ok {
			continue
		}
		if f.id == NoParent {
			return nil, ErrReservedNodeID
		}
		if _, seen := tree.nodes[f.id]; seen {
			return nil, fmt.Errorf("node %d reached twice: %w", f.id, ErrDuplicateNode)
		}
		duration, ok := durations[f.id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrMissingDuration, f.id)
		}

		tree.nodes[f.id] = &Node{
			ID:               f.id,
			ParentID:         f.parent,
			Type:             src.Type,
			DisplayName:      src.DisplayName,
			Key:              src.Key,
			Children:         append([]NodeID(nil), src.Children...),
			TreeBaseDuration: duration,
		}

		for i := len(src.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: src.Children[i], parent: f.id})
		}
	}

	return tree, nil
}
