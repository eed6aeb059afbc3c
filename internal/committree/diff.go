package committree

import (
	"fmt"
	"sort"
)

// ChangeKind represents the type of change to a node between two snapshots.
type ChangeKind int

const (
	Added           ChangeKind = iota // Node exists only in the newer tree
	Removed                           // Node exists only in the older tree
	Reparented                        // ParentID changed
	Reordered                         // Children changed (membership or order)
	Renamed                           // Display name or key changed
	DurationChanged                   // TreeBaseDuration changed
)

// String returns a human-readable representation of the ChangeKind.
func (ck ChangeKind) String() string {
	switch ck {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Reparented:
		return "reparented"
	case Reordered:
		return "reordered"
	case Renamed:
		return "renamed"
	case DurationChanged:
		return "duration"
	default:
		return fmt.Sprintf("unknown(%d)", ck)
	}
}

// Change represents one difference between two snapshots.
type Change struct {
	ID   NodeID
	Kind ChangeKind
	Old  *Node // nil for Added
	New  *Node // nil for Removed
}

// Diff computes the differences between two snapshots, sorted by node id and
// then by kind. A node present in both trees as the same shared value is
// skipped without comparing fields.
func Diff(a, b *CommitTree) []Change {
	var changes []Change

	for id, an := range a.nodes {
		bn, ok := b.nodes[id]
		if !ok {
			changes = append(changes, Change{ID: id, Kind: Removed, Old: an})
			continue
		}
		if an == bn {
			continue
		}
		changes = append(changes, nodeChanges(an, bn)...)
	}
	for id, bn := range b.nodes {
		if _, ok := a.nodes[id]; !ok {
			changes = append(changes, Change{ID: id, Kind: Added, New: bn})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].ID != changes[j].ID {
			return changes[i].ID < changes[j].ID
		}
		return changes[i].Kind < changes[j].Kind
	})
	return changes
}

func nodeChanges(a, b *Node) []Change {
	var out []Change
	emit := func(kind ChangeKind) {
		out = append(out, Change{ID: a.ID, Kind: kind, Old: a, New: b})
	}

	if a.ParentID != b.ParentID {
		emit(Reparented)
	}
	if !equalIDs(a.Children, b.Children) {
		emit(Reordered)
	}
	if !equalOptional(a.DisplayName, b.DisplayName) || !equalOptional(a.Key, b.Key) {
		emit(Renamed)
	}
	if a.TreeBaseDuration != b.TreeBaseDuration {
		emit(DurationChanged)
	}
	return out
}

func equalIDs(a, b []NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
