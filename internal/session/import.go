package session

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/javanhut/commitscope/internal/cas"
	"github.com/javanhut/commitscope/internal/committree"
	"github.com/javanhut/commitscope/internal/oplog"
	"github.com/javanhut/commitscope/internal/store"
)

// Meta keys written by Import.
const (
	MetaSource     = "source"
	MetaImportedAt = "imported_at"
	MetaVersion    = "version"
)

// Sink is where an import writes. *store.DB and *store.SharedDB satisfy it.
type Sink interface {
	Clear() error
	PutRoot(info store.RootInfo) error
	PutInitial(root committree.NodeID, hierarchy committree.Hierarchy, durations committree.Durations) error
	PutOperationLog(root committree.NodeID, index int, words []uint32) (cas.Hash, error)
	PutMeta(key, value string) error
}

// ImportResult holds the results of importing an export.
type ImportResult struct {
	Roots   int
	Commits int
	Skipped int // Roots left out because a log failed to decode
	Errors  []error
}

// Import replaces the sink's contents with the export. Every operation log is
// decoded before anything is written for its root; a root with an undecodable
// log is skipped and reported in the result rather than stored half-valid.
func Import(sink Sink, exp *Export, source string) (*ImportResult, error) {
	result := &ImportResult{}

	if err := sink.Clear(); err != nil {
		return result, fmt.Errorf("clear store: %w", err)
	}

	for _, root := range exp.Roots {
		if err := validateRoot(root); err != nil {
			result.Errors = append(result.Errors, err)
			result.Skipped++
			continue
		}
		if err := importRoot(sink, root); err != nil {
			return result, err
		}
		log.Printf("Imported root %d (%s): %d commits", root.RootID, root.DisplayName, len(root.Operations))
		result.Roots++
		result.Commits += len(root.Operations)
	}

	meta := map[string]string{
		MetaSource:     source,
		MetaImportedAt: time.Now().UTC().Format(time.RFC3339),
		MetaVersion:    strconv.Itoa(exp.Version),
	}
	for k, v := range meta {
		if err := sink.PutMeta(k, v); err != nil {
			return result, fmt.Errorf("store %s: %w", k, err)
		}
	}
	return result, nil
}

func validateRoot(root RootData) error {
	for i, words := range root.Operations {
		if _, err := oplog.Decode(words); err != nil {
			return fmt.Errorf("root %d commit %d: %w", root.RootID, i, err)
		}
	}
	return nil
}

func importRoot(sink Sink, root RootData) error {
	if err := sink.PutInitial(root.RootID, root.Hierarchy, root.Durations); err != nil {
		return fmt.Errorf("root %d: store initial tree: %w", root.RootID, err)
	}
	for i, words := range root.Operations {
		if _, err := sink.PutOperationLog(root.RootID, i, words); err != nil {
			return fmt.Errorf("root %d commit %d: %w", root.RootID, i, err)
		}
	}
	return sink.PutRoot(store.RootInfo{
		ID:          root.RootID,
		DisplayName: root.DisplayName,
		Commits:     len(root.Operations),
	})
}

func sortedIDs[M ~map[committree.NodeID]V, V any](m M) []committree.NodeID {
	ids := make([]committree.NodeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
