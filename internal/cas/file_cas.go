package cas

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileCAS implements CAS with one file per blob under a root directory.
// Blobs are fanned out as <root>/<first 2 hex chars>/<remaining hex>.
type FileCAS struct {
	root string
}

// NewFileCAS creates a file-based CAS in the given directory.
func NewFileCAS(root string) (*FileCAS, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FileCAS{root: root}, nil
}

func (f *FileCAS) path(hash Hash) string {
	hexStr := hash.String()
	return filepath.Join(f.root, hexStr[:2], hexStr[2:])
}

// Put implements CAS.Put. Writing a blob that already exists is a no-op.
func (f *FileCAS) Put(hash Hash, data []byte) error {
	if computed := SumB3(data); computed != hash {
		return fmt.Errorf("hash mismatch: expected %s, got %s", hash, computed)
	}

	path := f.path(hash)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write then rename so readers never see a partial blob.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename blob: %w", err)
	}
	return nil
}

// Get implements CAS.Get and verifies the blob against its hash.
func (f *FileCAS) Get(hash Hash) ([]byte, error) {
	data, err := os.ReadFile(f.path(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("hash not found: %s", hash)
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	if SumB3(data) != hash {
		return nil, fmt.Errorf("corrupted blob: hash mismatch for %s", hash)
	}
	return data, nil
}

// Has implements CAS.Has.
func (f *FileCAS) Has(hash Hash) (bool, error) {
	_, err := os.Stat(f.path(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check blob: %w", err)
	}
	return true, nil
}
