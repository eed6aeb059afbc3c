package store

import (
	"fmt"
	"path/filepath"
	"sync"
)

// manager tracks one open DB and how many handles refer to it.
type manager struct {
	db   *DB
	refs int
}

// managers holds the open databases keyed by cleaned directory path.
var (
	managers  = make(map[string]*manager)
	managerMu sync.Mutex
)

// SharedDB wraps a database connection with reference counting.
type SharedDB struct {
	*DB
	dir    string
	closed bool
}

// GetSharedDB returns a shared connection to the session database in dir.
// bbolt holds an exclusive file lock, so every caller in the process must go
// through here instead of calling Open. The options of the first caller win.
// The connection is closed when every handle has been closed.
func GetSharedDB(dir string, opts Options) (*SharedDB, error) {
	managerMu.Lock()
	defer managerMu.Unlock()

	dir = filepath.Clean(dir)
	m, ok := managers[dir]
	if !ok {
		db, err := Open(dir, opts)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		m = &manager{db: db}
		managers[dir] = m
	}
	m.refs++

	return &SharedDB{DB: m.db, dir: dir}, nil
}

// Close releases this handle and closes the underlying database when no
// more handles exist. Closing a handle twice is a no-op.
func (s *SharedDB) Close() error {
	managerMu.Lock()
	defer managerMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	m, ok := managers[s.dir]
	if !ok {
		return nil
	}
	m.refs--
	if m.refs > 0 {
		return nil
	}
	delete(managers, s.dir)
	return m.db.Close()
}
