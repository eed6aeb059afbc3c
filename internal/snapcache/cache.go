// Package snapcache memoizes commit tree snapshots per timeline.
//
// A timeline is identified by the id of its root node. Snapshot 0 is built
// from the timeline's full hierarchy and initial durations; snapshot K>0 is
// built only from snapshot K-1 and the operation log recorded for commit K.
// Computed snapshots are kept until InvalidateAll.
package snapcache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/javanhut/commitscope/internal/committree"
)

// ErrUnreconstructableCommit indicates a commit index with no recorded
// operation log. It is a caller error and should not be retried.
var ErrUnreconstructableCommit = errors.New("no operation log for commit")

// Source supplies the raw profiling data snapshots are built from.
type Source interface {
	// Hierarchy returns the full hierarchy at the start of the timeline.
	Hierarchy(root committree.NodeID) (committree.Hierarchy, error)

	// InitialDurations returns tree base durations matching Hierarchy.
	InitialDurations(root committree.NodeID) (committree.Durations, error)

	// OperationLog returns the log for one commit, or ok == false if none was recorded.
	OperationLog(root committree.NodeID, index int) (words []uint32, ok bool, err error)
}

// Cache holds, per timeline, the snapshots computed so far in commit order.
//
// Callers must not extend one timeline from several goroutines at once; the
// internal lock only keeps the cache's own bookkeeping consistent.
type Cache struct {
	mu        sync.Mutex
	source    Source
	timelines map[committree.NodeID][]*committree.CommitTree
}

// New creates an empty cache reading from source.
func New(source Source) *Cache {
	return &Cache{
		source:    source,
		timelines: make(map[committree.NodeID][]*committree.CommitTree),
	}
}

// Snapshot returns the commit tree at index for the timeline rooted at root.
// Missing earlier snapshots are computed first, in order. A failure leaves
// already cached snapshots in place and caches nothing for the failed index.
func (c *Cache) Snapshot(root committree.NodeID, index int) (*committree.CommitTree, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: negative index %d", ErrUnreconstructableCommit, index)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.timelines[root]
	for k := len(list); k <= index; k++ {
		var prev *committree.CommitTree
		if k > 0 {
			prev = list[k-1]
		}
		tree, err := c.build(root, k, prev)
		if err != nil {
			return nil, err
		}
		list = append(list, tree)
		c.timelines[root] = list
	}
	return list[index], nil
}

// build computes snapshot k from prev, which is nil when k == 0.
func (c *Cache) build(root committree.NodeID, k int, prev *committree.CommitTree) (*committree.CommitTree, error) {
	words, ok, err := c.source.OperationLog(root, k)
	if err != nil {
		return nil, fmt.Errorf("timeline %d commit %d: load operation log: %w", root, k, err)
	}

	if k == 0 {
		hierarchy, err := c.source.Hierarchy(root)
		if err != nil {
			return nil, fmt.Errorf("timeline %d: load hierarchy: %w", root, err)
		}
		durations, err := c.source.InitialDurations(root)
		if err != nil {
			return nil, fmt.Errorf("timeline %d: load initial durations: %w", root, err)
		}
		prev, err = committree.BuildInitialTree(root, hierarchy, durations)
		if err != nil {
			return nil, fmt.Errorf("timeline %d: build initial tree: %w", root, err)
		}
		if !ok {
			return prev, nil
		}
	} else if !ok {
		return nil, fmt.Errorf("%w: timeline %d commit %d", ErrUnreconstructableCommit, root, k)
	}

	tree, err := committree.ApplyOperations(prev, words)
	if err != nil {
		return nil, fmt.Errorf("timeline %d commit %d: %w", root, k, err)
	}
	return tree, nil
}

// Len returns the number of snapshots cached for the timeline.
func (c *Cache) Len(root committree.NodeID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timelines[root])
}

// InvalidateAll drops every cached snapshot of every timeline. It must be
// called whenever the source's data changes; the cache never detects that itself.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timelines = make(map[committree.NodeID][]*committree.CommitTree)
}
