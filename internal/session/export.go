// Package session reads profiling session exports and imports them into a
// snapshot store.
//
// An export is JSON of the form:
//
//	{
//	  "version": 5,
//	  "dataForRoots": [{
//	    "rootID": 1,
//	    "displayName": "App",
//	    "snapshots": [[1, {"id": 1, "children": [2], "displayName": null, "key": null, "type": 11}], ...],
//	    "initialTreeBaseDurations": [[1, 12.5], ...],
//	    "operations": [[1, 1, 0, 4, 1, 1000], ...]
//	  }]
//	}
//
// operations holds one operation log per commit, in commit order. Files whose
// name ends in ".zst" are zstd-decompressed while reading.
package session

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/javanhut/commitscope/internal/committree"
	"github.com/javanhut/commitscope/internal/snapcache"
	"github.com/klauspost/compress/zstd"
)

// Export is a decoded profiling session.
type Export struct {
	Version int        `json:"version"`
	Roots   []RootData `json:"dataForRoots"`
}

// RootData is everything recorded for one timeline.
type RootData struct {
	RootID      committree.NodeID
	DisplayName string
	Hierarchy   committree.Hierarchy
	Durations   committree.Durations
	Operations  [][]uint32
}

type snapshotNode struct {
	ID          committree.NodeID   `json:"id"`
	Children    []committree.NodeID `json:"children"`
	DisplayName *string             `json:"displayName"`
	Key         *string             `json:"key"`
	Type        uint32              `json:"type"`
}

type rootJSON struct {
	RootID      committree.NodeID    `json:"rootID"`
	DisplayName string               `json:"displayName"`
	Snapshots   [][2]json.RawMessage `json:"snapshots"`
	Durations   [][2]json.RawMessage `json:"initialTreeBaseDurations"`
	Operations  [][]uint32           `json:"operations"`
}

// UnmarshalJSON decodes the [id, value] pair lists of an exported root.
func (r *RootData) UnmarshalJSON(data []byte) error {
	var raw rootJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.RootID = raw.RootID
	r.DisplayName = raw.DisplayName
	r.Operations = raw.Operations
	r.Hierarchy = make(committree.Hierarchy, len(raw.Snapshots))
	r.Durations = make(committree.Durations, len(raw.Durations))

	for i, pair := range raw.Snapshots {
		var id committree.NodeID
		var node snapshotNode
		if err := json.Unmarshal(pair[0], &id); err != nil {
			return fmt.Errorf("root %d snapshot %d id: %w", raw.RootID, i, err)
		}
		if err := json.Unmarshal(pair[1], &node); err != nil {
			return fmt.Errorf("root %d snapshot %d: %w", raw.RootID, i, err)
		}
		r.Hierarchy[id] = committree.HierarchyNode{
			Children:    node.Children,
			DisplayName: node.DisplayName,
			Key:         node.Key,
			Type:        committree.ElementType(node.Type),
		}
	}

	for i, pair := range raw.Durations {
		var id committree.NodeID
		var ms float64
		if err := json.Unmarshal(pair[0], &id); err != nil {
			return fmt.Errorf("root %d duration %d id: %w", raw.RootID, i, err)
		}
		if err := json.Unmarshal(pair[1], &ms); err != nil {
			return fmt.Errorf("root %d duration %d: %w", raw.RootID, i, err)
		}
		r.Durations[id] = ms
	}
	return nil
}

// MarshalJSON encodes the root in the export's pair-list form.
func (r RootData) MarshalJSON() ([]byte, error) {
	out := struct {
		RootID      committree.NodeID `json:"rootID"`
		DisplayName string            `json:"displayName"`
		Snapshots   [][2]any          `json:"snapshots"`
		Durations   [][2]any          `json:"initialTreeBaseDurations"`
		Operations  [][]uint32        `json:"operations"`
	}{
		RootID:      r.RootID,
		DisplayName: r.DisplayName,
		Snapshots:   [][2]any{},
		Durations:   [][2]any{},
		Operations:  r.Operations,
	}
	for _, id := range sortedIDs(r.Hierarchy) {
		n := r.Hierarchy[id]
		out.Snapshots = append(out.Snapshots, [2]any{id, snapshotNode{
			ID:          id,
			Children:    n.Children,
			DisplayName: n.DisplayName,
			Key:         n.Key,
			Type:        uint32(n.Type),
		}})
	}
	for _, id := range sortedIDs(r.Durations) {
		out.Durations = append(out.Durations, [2]any{id, r.Durations[id]})
	}
	return json.Marshal(out)
}

// Parse decodes an export from r.
func Parse(r io.Reader) (*Export, error) {
	var exp Export
	if err := json.NewDecoder(r).Decode(&exp); err != nil {
		return nil, fmt.Errorf("decode session export: %w", err)
	}
	return &exp, nil
}

// Load reads an export file, decompressing it first if its name ends in ".zst".
func Load(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session export: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return Parse(r)
}

// Source returns an in-memory snapshot source holding the export's data, for
// inspecting an export without importing it.
func (e *Export) Source() *snapcache.MemorySource {
	src := snapcache.NewMemorySource()
	for _, root := range e.Roots {
		src.SetInitial(root.RootID, root.Hierarchy, root.Durations)
		for i, words := range root.Operations {
			src.SetLog(root.RootID, i, words)
		}
	}
	return src
}

// Root returns the data recorded for one timeline.
func (e *Export) Root(id committree.NodeID) (*RootData, bool) {
	for i := range e.Roots {
		if e.Roots[i].RootID == id {
			return &e.Roots[i], true
		}
	}
	return nil, false
}
