package cli

import (
	"fmt"
	"strconv"

	"github.com/javanhut/commitscope/internal/committree"
	"github.com/javanhut/commitscope/internal/session"
	"github.com/javanhut/commitscope/internal/snapcache"
	"github.com/javanhut/commitscope/internal/store"
)

// openStore opens the configured session store.
func openStore() (*store.SharedDB, error) {
	db, err := store.GetSharedDB(cfg.Store.Dir, store.Options{Compress: cfg.CompressLogs()})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store %s: %w", cfg.Store.Dir, err)
	}
	return db, nil
}

// openSource returns the snapshot source for inspection commands: the export
// file when one is given, the session store otherwise.
func openSource(file string) (snapcache.Source, func(), error) {
	if file != "" {
		exp, err := session.Load(file)
		if err != nil {
			return nil, nil, err
		}
		return exp.Source(), func() {}, nil
	}

	db, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

func parseRootID(arg string) (committree.NodeID, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid root id %q", arg)
	}
	return committree.NodeID(id), nil
}

func parseCommitIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid commit index %q", arg)
	}
	return index, nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nodeLabel formats a node as "Name key=k #id".
func nodeLabel(n *committree.Node) string {
	name := optional(n.DisplayName)
	if n.IsRoot() {
		name = "(root)"
	} else if name == "" {
		name = "(anonymous)"
	}
	label := name
	if n.Key != nil {
		label += " key=" + *n.Key
	}
	return fmt.Sprintf("%s #%d", label, n.ID)
}
