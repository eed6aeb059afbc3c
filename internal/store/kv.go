// Package store persists imported profiling sessions: per root, the initial
// hierarchy, the initial durations and one operation log per commit.
//
// Metadata lives in a bbolt database; operation log blobs live in a
// content-addressable store next to it, optionally zstd-compressed.
// A DB satisfies snapcache.Source.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/javanhut/commitscope/internal/cas"
	"github.com/javanhut/commitscope/internal/committree"
	"github.com/javanhut/commitscope/internal/oplog"
	"go.etcd.io/bbolt"
)

// Buckets
var (
	BucketRoots     = []byte("roots")     // root id -> RootInfo JSON
	BucketHierarchy = []byte("hierarchy") // root id -> committree.Hierarchy JSON
	BucketDurations = []byte("durations") // root id -> committree.Durations JSON
	BucketOpLogs    = []byte("oplogs")    // root id ++ commit index -> logRecord JSON
	BucketMeta      = []byte("meta")      // session metadata (source file, import time)
)

var sessionBuckets = [][]byte{BucketRoots, BucketHierarchy, BucketDurations, BucketOpLogs}

// ErrNotFound indicates a root or metadata key that was never stored.
var ErrNotFound = errors.New("not found")

const (
	dbFile  = "sessions.db"
	blobDir = "logs"
)

// Options controls how a DB writes new data.
type Options struct {
	// Compress stores operation log blobs zstd-compressed.
	Compress bool

	// Blobs replaces the file-backed blob store under dir, e.g. with a
	// cas.MemoryCAS for scratch sessions.
	Blobs cas.CAS
}

// RootInfo describes one imported timeline.
type RootInfo struct {
	ID          committree.NodeID `json:"id"`
	DisplayName string            `json:"display_name,omitempty"`
	Commits     int               `json:"commits"`
}

// logRecord points at the blob holding one commit's operation log.
type logRecord struct {
	Hash       string `json:"hash"`
	Compressed bool   `json:"compressed"`
	Words      int    `json:"words"`
}

type DB struct {
	*bbolt.DB
	blobs cas.CAS
	codec *codec
	opts  Options
}

// Open opens (creating if needed) the session database in dir.
func Open(dir string, opts Options) (*DB, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	blobs := opts.Blobs
	if blobs == nil {
		fileBlobs, err := cas.NewFileCAS(filepath.Join(dir, blobDir))
		if err != nil {
			return nil, err
		}
		blobs = fileBlobs
	}
	c, err := newCodec()
	if err != nil {
		return nil, err
	}

	db, err := bbolt.Open(filepath.Join(dir, dbFile), 0666, nil)
	if err != nil {
		c.Close()
		return nil, err
	}
	// Ensure buckets exist
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range append(sessionBuckets, BucketMeta) {
			if _, e := tx.CreateBucketIfNotExists(name); e != nil {
				return e
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		c.Close()
		return nil, err
	}

	return &DB{DB: db, blobs: blobs, codec: c, opts: opts}, nil
}

func (db *DB) Close() error {
	db.codec.Close()
	return db.DB.Close()
}

func rootKey(root committree.NodeID) []byte {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, uint32(root))
	return key
}

func logKey(root committree.NodeID, index int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint32(key[:4], uint32(root))
	binary.BigEndian.PutUint32(key[4:], uint32(index))
	return key
}

func putJSON(tx *bbolt.Tx, bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", bucket, err)
	}
	return tx.Bucket(bucket).Put(key, data)
}

func getJSON(tx *bbolt.Tx, bucket, key []byte, v any) error {
	data := tx.Bucket(bucket).Get(key)
	if data == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", bucket, err)
	}
	return nil
}

// PutRoot stores the description of one timeline.
func (db *DB) PutRoot(info RootInfo) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx, BucketRoots, rootKey(info.ID), info)
	})
}

// Root looks up one timeline.
func (db *DB) Root(root committree.NodeID) (RootInfo, error) {
	var info RootInfo
	err := db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx, BucketRoots, rootKey(root), &info)
	})
	if err != nil {
		return RootInfo{}, fmt.Errorf("root %d: %w", root, err)
	}
	return info, nil
}

// Roots returns every stored timeline ordered by root id.
func (db *DB) Roots() ([]RootInfo, error) {
	var roots []RootInfo
	err := db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketRoots).ForEach(func(k, v []byte) error {
			var info RootInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return fmt.Errorf("unmarshal root %x: %w", k, err)
			}
			roots = append(roots, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })
	return roots, nil
}

// PutInitial stores the starting hierarchy and durations of a timeline.
func (db *DB) PutInitial(root committree.NodeID, hierarchy committree.Hierarchy, durations committree.Durations) error {
	return db.Update(func(tx *bbolt.Tx) error {
		if err := putJSON(tx, BucketHierarchy, rootKey(root), hierarchy); err != nil {
			return err
		}
		return putJSON(tx, BucketDurations, rootKey(root), durations)
	})
}

// Hierarchy implements snapcache.Source.
func (db *DB) Hierarchy(root committree.NodeID) (committree.Hierarchy, error) {
	var h committree.Hierarchy
	err := db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx, BucketHierarchy, rootKey(root), &h)
	})
	if err != nil {
		return nil, fmt.Errorf("hierarchy for root %d: %w", root, err)
	}
	return h, nil
}

// InitialDurations implements snapcache.Source.
func (db *DB) InitialDurations(root committree.NodeID) (committree.Durations, error) {
	var d committree.Durations
	err := db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx, BucketDurations, rootKey(root), &d)
	})
	if err != nil {
		return nil, fmt.Errorf("durations for root %d: %w", root, err)
	}
	return d, nil
}

// PutOperationLog stores the operation log of one commit and returns the
// hash of the blob it was written to.
func (db *DB) PutOperationLog(root committree.NodeID, index int, words []uint32) (cas.Hash, error) {
	blob := oplog.MarshalWords(words)
	if db.opts.Compress {
		blob = db.codec.compress(blob)
	}
	hash, err := cas.Write(db.blobs, blob)
	if err != nil {
		return cas.Hash{}, fmt.Errorf("store log blob: %w", err)
	}

	rec := logRecord{Hash: hash.String(), Compressed: db.opts.Compress, Words: len(words)}
	err = db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx, BucketOpLogs, logKey(root, index), rec)
	})
	if err != nil {
		return cas.Hash{}, err
	}
	return hash, nil
}

// OperationLog implements snapcache.Source.
func (db *DB) OperationLog(root committree.NodeID, index int) ([]uint32, bool, error) {
	if index < 0 {
		return nil, false, nil
	}

	var rec logRecord
	err := db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx, BucketOpLogs, logKey(root, index), &rec)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	hash, err := cas.ParseHash(rec.Hash)
	if err != nil {
		return nil, false, err
	}
	blob, err := db.blobs.Get(hash)
	if err != nil {
		return nil, false, fmt.Errorf("load log blob for root %d commit %d: %w", root, index, err)
	}
	if rec.Compressed {
		if blob, err = db.codec.decompress(blob); err != nil {
			return nil, false, fmt.Errorf("decompress log for root %d commit %d: %w", root, index, err)
		}
	}

	words, err := oplog.UnmarshalWords(blob)
	if err != nil {
		return nil, false, err
	}
	if len(words) != rec.Words {
		return nil, false, fmt.Errorf("log for root %d commit %d: expected %d words, got %d", root, index, rec.Words, len(words))
	}
	return words, true, nil
}

// Clear removes every stored session. Blobs stay in the CAS and are reused
// if the same logs are imported again.
func (db *DB) Clear() error {
	return db.Update(func(tx *bbolt.Tx) error {
		for _, name := range append(sessionBuckets, BucketMeta) {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutMeta stores a session metadata key-value pair.
func (db *DB) PutMeta(key, value string) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketMeta).Put([]byte(key), []byte(value))
	})
}

// GetMeta retrieves a session metadata value by key.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(BucketMeta).Get([]byte(key))
		if v == nil {
			return fmt.Errorf("meta key %q: %w", key, ErrNotFound)
		}
		value = string(v)
		return nil
	})
	return value, err
}
