// Atomic document read/write for the file backend. Each collection is a
// single JSON array document; saves go through a temp file that is
// validated by re-parsing before it replaces the live document.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// loadRecords reads a collection document into records of type T. A
// missing or unparseable document yields an empty slice, never an
// error: the caller sees the collection as empty and the next save
// rewrites it whole.
func loadRecords[T any](path string) []T {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	return records
}

// saveRecords replaces the collection document with records. Protocol:
// snapshot the prior version, write a temp file in the same directory,
// validate the temp content by re-parsing it, then rename over the live
// document. Any failure before the rename removes the temp file and
// leaves the live document untouched; if the live document turns out
// corrupted anyway, the newest backup is restored before the error is
// returned.
func (s *Store) saveRecords(path string, records any) error {
	if _, err := os.Stat(path); err == nil {
		s.backups.Snapshot(path)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", types.ErrPersistence, filepath.Base(path), err)
	}

	if err := s.writeAtomic(path, data); err != nil {
		if isCorrupted(path) {
			if restored, rerr := s.backups.RestoreLatest(path); rerr == nil && restored {
				s.logger.Warn("restored document from backup after failed save", "path", path)
			}
		}
		return err
	}
	return nil
}

// writeAtomic performs the temp-write, validate, rename steps.
func (s *Store) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", types.ErrPersistence, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing temp file: %w", types.ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: syncing temp file: %w", types.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %w", types.ErrPersistence, err)
	}

	// Re-parse the written bytes before the document goes live.
	written, err := os.ReadFile(tmpName)
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: re-reading temp file: %w", types.ErrPersistence, err)
	}
	if !json.Valid(written) {
		os.Remove(tmpName)
		return fmt.Errorf("%w: temp content for %s is not valid JSON", types.ErrPersistence, filepath.Base(path))
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming temp file: %w", types.ErrPersistence, err)
	}
	return nil
}

// isCorrupted reports whether the live document exists but no longer
// parses as JSON.
func isCorrupted(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return !os.IsNotExist(err)
	}
	return !json.Valid(data)
}
