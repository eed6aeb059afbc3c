package committree

import (
	"errors"
	"reflect"
	"testing"

	"github.com/javanhut/commitscope/internal/oplog"
)

func strPtr(s string) *string { return &s }

// sampleTree builds:
//
//	1 (root)
//	├── 2 App
//	│   └── 4 Row
//	└── 3 Sidebar (key "s")
func sampleTree(t *testing.T) *CommitTree {
	t.Helper()
	hierarchy := Hierarchy{
		1: {Children: []NodeID{2, 3}, Type: oplog.ElementTypeRoot},
		2: {Children: []NodeID{4}, DisplayName: strPtr("App"), Type: 5},
		3: {DisplayName: strPtr("Sidebar"), Key: strPtr("s"), Type: 5},
		4: {DisplayName: strPtr("Row"), Type: 5},
	}
	durations := Durations{1: 10, 2: 6, 3: 4, 4: 1.5}

	tree, err := BuildInitialTree(1, hierarchy, durations)
	if err != nil {
		t.Fatalf("BuildInitialTree failed: %v", err)
	}
	return tree
}

func encode(t *testing.T, ops ...oplog.Operation) []uint32 {
	t.Helper()
	words, err := oplog.Encode([2]uint32{1, 1}, ops)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return words
}

func mustNode(t *testing.T, tree *CommitTree, id NodeID) *Node {
	t.Helper()
	n, ok := tree.Node(id)
	if !ok {
		t.Fatalf("node %d missing", id)
	}
	return n
}

func TestBuildInitialTree(t *testing.T) {
	tree := sampleTree(t)

	if tree.RootID() != 1 {
		t.Errorf("expected root 1, got %d", tree.RootID())
	}
	if tree.Len() != 4 {
		t.Fatalf("expected 4 nodes, got %d", tree.Len())
	}

	root := mustNode(t, tree, 1)
	if !root.IsRoot() || root.DisplayName != nil {
		t.Errorf("root should have no parent and no name: %+v", root)
	}
	if !reflect.DeepEqual(root.Children, []NodeID{2, 3}) {
		t.Errorf("root children mismatch: %v", root.Children)
	}

	row := mustNode(t, tree, 4)
	if row.ParentID != 2 || *row.DisplayName != "Row" || row.TreeBaseDuration != 1.5 {
		t.Errorf("row mismatch: %+v", row)
	}
	sidebar := mustNode(t, tree, 3)
	if sidebar.Key == nil || *sidebar.Key != "s" {
		t.Errorf("sidebar key mismatch: %+v", sidebar)
	}
}

func TestBuildInitialTreeSkipsAbsentIDs(t *testing.T) {
	hierarchy := Hierarchy{
		1: {Children: []NodeID{2, 99}},
		2: {DisplayName: strPtr("A")},
		7: {DisplayName: strPtr("unreachable")},
	}
	durations := Durations{1: 0, 2: 0}

	tree, err := BuildInitialTree(1, hierarchy, durations)
	if err != nil {
		t.Fatalf("BuildInitialTree failed: %v", err)
	}
	if !reflect.DeepEqual(tree.IDs(), []NodeID{1, 2}) {
		t.Errorf("expected ids [1 2], got %v", tree.IDs())
	}
	// Children are copied verbatim, including the absent id.
	if got := mustNode(t, tree, 1).Children; !reflect.DeepEqual(got, []NodeID{2, 99}) {
		t.Errorf("children should be copied verbatim, got %v", got)
	}
}

func TestBuildInitialTreeMissingDuration(t *testing.T) {
	hierarchy := Hierarchy{1: {Children: []NodeID{2}}, 2: {}}
	_, err := BuildInitialTree(1, hierarchy, Durations{1: 0})
	if !errors.Is(err, ErrMissingDuration) {
		t.Errorf("expected ErrMissingDuration, got %v", err)
	}
}

func TestBuildInitialTreeCycle(t *testing.T) {
	hierarchy := Hierarchy{1: {Children: []NodeID{2}}, 2: {Children: []NodeID{1}}}
	_, err := BuildInitialTree(1, hierarchy, Durations{1: 0, 2: 0})
	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestBuildInitialTreeReservedID(t *testing.T) {
	tests := []struct {
		name      string
		root      NodeID
		hierarchy Hierarchy
	}{
		{"root is 0", 0, Hierarchy{0: {Children: []NodeID{5}}, 5: {}}},
		{"child is 0", 1, Hierarchy{1: {Children: []NodeID{0}}, 0: {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			durations := Durations{0: 0, 1: 0, 5: 0}
			tree, err := BuildInitialTree(tt.root, tt.hierarchy, durations)
			if !errors.Is(err, ErrReservedNodeID) {
				t.Errorf("expected ErrReservedNodeID, got %v", err)
			}
			if tree != nil {
				t.Error("no tree should be returned on failure")
			}
		})
	}
}

func TestBuildInitialTreeDoesNotAliasSource(t *testing.T) {
	children := []NodeID{2}
	hierarchy := Hierarchy{1: {Children: children}, 2: {}}
	tree, err := BuildInitialTree(1, hierarchy, Durations{1: 0, 2: 0})
	if err != nil {
		t.Fatalf("BuildInitialTree failed: %v", err)
	}
	children[0] = 42
	if mustNode(t, tree, 1).Children[0] != 2 {
		t.Error("tree should not share the hierarchy's children slice")
	}
}

func TestWalkPreOrder(t *testing.T) {
	tree := sampleTree(t)

	var order []NodeID
	var depths []int
	err := tree.Walk(func(n *Node, depth int) error {
		order = append(order, n.ID)
		depths = append(depths, depth)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if !reflect.DeepEqual(order, []NodeID{1, 2, 4, 3}) {
		t.Errorf("pre-order mismatch: %v", order)
	}
	if !reflect.DeepEqual(depths, []int{0, 1, 2, 1}) {
		t.Errorf("depth mismatch: %v", depths)
	}

	stop := errors.New("stop")
	count := 0
	err = tree.Walk(func(n *Node, depth int) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) || count != 1 {
		t.Errorf("walk should stop on first error, visited %d, err %v", count, err)
	}
}

func TestApplyAdd(t *testing.T) {
	prev := sampleTree(t)

	next, err := ApplyOperations(prev, encode(t,
		oplog.Add{ID: 5, Type: 5, ParentID: 2, OwnerID: 2, DisplayName: strPtr("Row"), Key: strPtr("b")},
	))
	if err != nil {
		t.Fatalf("ApplyOperations failed: %v", err)
	}

	added := mustNode(t, next, 5)
	if added.ParentID != 2 || *added.DisplayName != "Row" || *added.Key != "b" || added.TreeBaseDuration != 0 || len(added.Children) != 0 {
		t.Errorf("added node mismatch: %+v", added)
	}
	if got := mustNode(t, next, 2).Children; !reflect.DeepEqual(got, []NodeID{4, 5}) {
		t.Errorf("parent children mismatch: %v", got)
	}
	if next.RootID() != prev.RootID() {
		t.Error("root id should carry over")
	}

	// prev is unchanged.
	if _, ok := prev.Node(5); ok {
		t.Error("previous snapshot gained a node")
	}
	if got := mustNode(t, prev, 2).Children; !reflect.DeepEqual(got, []NodeID{4}) {
		t.Errorf("previous parent children changed: %v", got)
	}
}

func TestApplyAddRoot(t *testing.T) {
	prev := sampleTree(t)

	next, err := ApplyOperations(prev, encode(t,
		oplog.Add{ID: 50, Type: oplog.ElementTypeRoot, SupportsProfiling: 1, HasOwnerMetadata: 1},
	))
	if err != nil {
		t.Fatalf("ApplyOperations failed: %v", err)
	}
	root := mustNode(t, next, 50)
	if !root.IsRoot() || root.DisplayName != nil || root.Key != nil || len(root.Children) != 0 || root.TreeBaseDuration != 0 {
		t.Errorf("root node mismatch: %+v", root)
	}
	if mustNode(t, next, 1) != mustNode(t, prev, 1) {
		t.Error("adding a root should not clone other nodes")
	}
}

func TestApplyDuplicateNode(t *testing.T) {
	prev := sampleTree(t)

	_, err := ApplyOperations(prev, encode(t,
		oplog.Add{ID: 3, Type: 5, ParentID: 1},
	))
	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode, got %v", err)
	}

	_, err = ApplyOperations(prev, encode(t, oplog.Add{ID: 1, Type: oplog.ElementTypeRoot}))
	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode for root add, got %v", err)
	}
}

func TestApplyReservedID(t *testing.T) {
	prev := sampleTree(t)

	// Apply takes logs built in memory, so it checks ids itself.
	for _, add := range []oplog.Add{
		{ID: 0, Type: 5, ParentID: 1},
		{ID: 0, Type: oplog.ElementTypeRoot},
	} {
		_, err := Apply(prev, &oplog.Log{Ops: []oplog.Operation{add}})
		if !errors.Is(err, ErrReservedNodeID) {
			t.Errorf("Add%+v: expected ErrReservedNodeID, got %v", add, err)
		}
	}

	// Parent 0 never exists, so its children cannot be mistaken for roots.
	_, err := Apply(prev, &oplog.Log{Ops: []oplog.Operation{oplog.Add{ID: 5, Type: 5, ParentID: 0}}})
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode for parent 0, got %v", err)
	}
}

func TestApplyUnknownNode(t *testing.T) {
	prev := sampleTree(t)

	tests := []struct {
		name string
		op   oplog.Operation
	}{
		{"add with missing parent", oplog.Add{ID: 9, Type: 5, ParentID: 77}},
		{"remove missing", oplog.Remove{IDs: []uint32{77}}},
		{"reorder missing", oplog.ReorderChildren{ID: 77, Children: []uint32{1}}},
		{"duration missing", oplog.UpdateTreeBaseDuration{ID: 77, DurationMicros: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := ApplyOperations(prev, encode(t, tt.op))
			if !errors.Is(err, ErrUnknownNode) {
				t.Errorf("expected ErrUnknownNode, got %v", err)
			}
			if next != nil {
				t.Error("no snapshot should be returned on failure")
			}
		})
	}
}

func TestApplyFailureLeavesPreviousIntact(t *testing.T) {
	prev := sampleTree(t)
	before := prev.Digest()

	// Valid changes first, then an unknown removal.
	_, err := ApplyOperations(prev, encode(t,
		oplog.UpdateTreeBaseDuration{ID: 2, DurationMicros: 9000},
		oplog.Add{ID: 5, Type: 5, ParentID: 2},
		oplog.Remove{IDs: []uint32{4, 404}},
	))
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
	if prev.Digest() != before {
		t.Error("failed application mutated the previous snapshot")
	}
}

func TestApplyUnsupportedOperation(t *testing.T) {
	prev := sampleTree(t)
	words := encode(t, oplog.UpdateTreeBaseDuration{ID: 2, DurationMicros: 1})
	words = append(words, 9, 1, 2)

	next, err := ApplyOperations(prev, words)
	if !errors.Is(err, oplog.ErrUnsupportedOperation) {
		t.Errorf("expected ErrUnsupportedOperation, got %v", err)
	}
	if next != nil {
		t.Error("no snapshot should be returned")
	}
	if mustNode(t, prev, 2).TreeBaseDuration != 6 {
		t.Error("previous snapshot changed")
	}
}

func TestApplyRemove(t *testing.T) {
	prev := sampleTree(t)

	next, err := ApplyOperations(prev, encode(t, oplog.Remove{IDs: []uint32{3}}))
	if err != nil {
		t.Fatalf("ApplyOperations failed: %v", err)
	}
	if _, ok := next.Node(3); ok {
		t.Error("node 3 should be removed")
	}
	if got := mustNode(t, next, 1).Children; !reflect.DeepEqual(got, []NodeID{2}) {
		t.Errorf("root children mismatch: %v", got)
	}
	if got := mustNode(t, prev, 1).Children; !reflect.DeepEqual(got, []NodeID{2, 3}) {
		t.Errorf("previous root children changed: %v", got)
	}
}

func TestApplyRemoveParentFirst(t *testing.T) {
	prev := sampleTree(t)

	// Removing 2 before its child 4 leaves 4's parent gone when 4 is detached.
	next, err := ApplyOperations(prev, encode(t, oplog.Remove{IDs: []uint32{2, 4}}))
	if err != nil {
		t.Fatalf("ApplyOperations failed: %v", err)
	}
	if !reflect.DeepEqual(next.IDs(), []NodeID{1, 3}) {
		t.Errorf("expected ids [1 3], got %v", next.IDs())
	}
	if got := mustNode(t, next, 1).Children; !reflect.DeepEqual(got, []NodeID{3}) {
		t.Errorf("root children mismatch: %v", got)
	}
}

func TestApplyRemoveTwiceInOneOperation(t *testing.T) {
	prev := sampleTree(t)
	_, err := ApplyOperations(prev, encode(t, oplog.Remove{IDs: []uint32{4, 4}}))
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("second removal should see the first, got %v", err)
	}
}

func TestApplyReorderChildren(t *testing.T) {
	prev := sampleTree(t)

	next, err := ApplyOperations(prev, encode(t, oplog.ReorderChildren{ID: 1, Children: []uint32{3, 2}}))
	if err != nil {
		t.Fatalf("ApplyOperations failed: %v", err)
	}
	if got := mustNode(t, next, 1).Children; !reflect.DeepEqual(got, []NodeID{3, 2}) {
		t.Errorf("children mismatch: %v", got)
	}
	if got := mustNode(t, prev, 1).Children; !reflect.DeepEqual(got, []NodeID{2, 3}) {
		t.Errorf("previous children changed: %v", got)
	}
}

func TestApplyDurationConversion(t *testing.T) {
	prev := sampleTree(t)

	next, err := ApplyOperations(prev, encode(t, oplog.UpdateTreeBaseDuration{ID: 4, DurationMicros: 2500}))
	if err != nil {
		t.Fatalf("ApplyOperations failed: %v", err)
	}
	if got := mustNode(t, next, 4).TreeBaseDuration; got != 2.5 {
		t.Errorf("expected 2.5, got %v", got)
	}
	if got := mustNode(t, prev, 4).TreeBaseDuration; got != 1.5 {
		t.Errorf("previous duration changed: %v", got)
	}
}

func TestApplyStructuralSharing(t *testing.T) {
	prev := sampleTree(t)

	next, err := ApplyOperations(prev, encode(t,
		oplog.Add{ID: 5, Type: 5, ParentID: 2},
		oplog.Add{ID: 6, Type: 5, ParentID: 2},
		oplog.UpdateTreeBaseDuration{ID: 2, DurationMicros: 7000},
	))
	if err != nil {
		t.Fatalf("ApplyOperations failed: %v", err)
	}

	for _, id := range []NodeID{1, 3, 4} {
		if mustNode(t, next, id) != mustNode(t, prev, id) {
			t.Errorf("untouched node %d should be shared", id)
		}
	}
	if mustNode(t, next, 2) == mustNode(t, prev, 2) {
		t.Error("modified node 2 should be a clone")
	}
	// Node 2 was touched three times but cloned once, so all edits landed.
	app := mustNode(t, next, 2)
	if !reflect.DeepEqual(app.Children, []NodeID{4, 5, 6}) || app.TreeBaseDuration != 7 {
		t.Errorf("node 2 mismatch: %+v", app)
	}
}

func TestApplyAddRemoveRoundTrip(t *testing.T) {
	prev := sampleTree(t)

	next, err := ApplyOperations(prev, encode(t,
		oplog.Add{ID: 5, Type: 5, ParentID: 1, DisplayName: strPtr("X")},
		oplog.Remove{IDs: []uint32{5}},
	))
	if err != nil {
		t.Fatalf("ApplyOperations failed: %v", err)
	}
	if next.Digest() != prev.Digest() {
		t.Error("add then remove should restore the original content")
	}
	if len(Diff(prev, next)) != 0 {
		t.Errorf("expected no diff, got %v", Diff(prev, next))
	}
}

func TestDigest(t *testing.T) {
	a := sampleTree(t)
	b := sampleTree(t)
	if a.Digest() != b.Digest() {
		t.Error("identical trees should have the same digest")
	}

	c, err := ApplyOperations(a, encode(t, oplog.UpdateTreeBaseDuration{ID: 1, DurationMicros: 1}))
	if err != nil {
		t.Fatalf("ApplyOperations failed: %v", err)
	}
	if a.Digest() == c.Digest() {
		t.Error("different trees should have different digests")
	}

	// Absent and empty strings are distinct.
	empty, err := BuildInitialTree(1, Hierarchy{1: {Key: strPtr("")}}, Durations{1: 0})
	if err != nil {
		t.Fatalf("BuildInitialTree failed: %v", err)
	}
	none, err := BuildInitialTree(1, Hierarchy{1: {}}, Durations{1: 0})
	if err != nil {
		t.Fatalf("BuildInitialTree failed: %v", err)
	}
	if empty.Digest() == none.Digest() {
		t.Error("empty key and absent key should differ")
	}
}

func TestDiff(t *testing.T) {
	prev := sampleTree(t)

	next, err := ApplyOperations(prev, encode(t,
		oplog.Add{ID: 5, Type: 5, ParentID: 2},
		oplog.Remove{IDs: []uint32{3}},
		oplog.UpdateTreeBaseDuration{ID: 4, DurationMicros: 3000},
	))
	if err != nil {
		t.Fatalf("ApplyOperations failed: %v", err)
	}

	type kindAt struct {
		ID   NodeID
		Kind ChangeKind
	}
	var got []kindAt
	for _, c := range Diff(prev, next) {
		got = append(got, kindAt{c.ID, c.Kind})
	}
	want := []kindAt{
		{1, Reordered},
		{2, Reordered},
		{3, Removed},
		{4, DurationChanged},
		{5, Added},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("diff mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestChangeKindString(t *testing.T) {
	if Added.String() != "added" || DurationChanged.String() != "duration" {
		t.Error("unexpected kind names")
	}
	if ChangeKind(42).String() != "unknown(42)" {
		t.Errorf("got %q", ChangeKind(42).String())
	}
}
