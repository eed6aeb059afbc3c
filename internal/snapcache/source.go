package snapcache

import (
	"fmt"

	"github.com/javanhut/commitscope/internal/committree"
)

// MemorySource is an in-memory implementation of Source.
type MemorySource struct {
	hierarchies map[committree.NodeID]committree.Hierarchy
	durations   map[committree.NodeID]committree.Durations
	logs        map[committree.NodeID]map[int][]uint32
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		hierarchies: make(map[committree.NodeID]committree.Hierarchy),
		durations:   make(map[committree.NodeID]committree.Durations),
		logs:        make(map[committree.NodeID]map[int][]uint32),
	}
}

// SetInitial records the starting hierarchy and durations of a timeline.
func (m *MemorySource) SetInitial(root committree.NodeID, hierarchy committree.Hierarchy, durations committree.Durations) {
	m.hierarchies[root] = hierarchy
	m.durations[root] = durations
}

// SetLog records the operation log of one commit.
func (m *MemorySource) SetLog(root committree.NodeID, index int, words []uint32) {
	if m.logs[root] == nil {
		m.logs[root] = make(map[int][]uint32)
	}
	m.logs[root][index] = words
}

// Hierarchy implements Source.Hierarchy.
func (m *MemorySource) Hierarchy(root committree.NodeID) (committree.Hierarchy, error) {
	h, ok := m.hierarchies[root]
	if !ok {
		return nil, fmt.Errorf("no hierarchy for timeline %d", root)
	}
	return h, nil
}

// InitialDurations implements Source.InitialDurations.
func (m *MemorySource) InitialDurations(root committree.NodeID) (committree.Durations, error) {
	d, ok := m.durations[root]
	if !ok {
		return nil, fmt.Errorf("no initial durations for timeline %d", root)
	}
	return d, nil
}

// OperationLog implements Source.OperationLog.
func (m *MemorySource) OperationLog(root committree.NodeID, index int) ([]uint32, bool, error) {
	words, ok := m.logs[root][index]
	return words, ok, nil
}
