package jsonstore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// backupKeep is how many snapshots survive per document.
const backupKeep = 5

// backupStampFormat names snapshots <stem>_<YYYYMMDD_HHMMSS>.json.
const backupStampFormat = "20060102_150405"

// BackupManager snapshots documents into a backup directory before they
// are overwritten and restores the newest snapshot after corruption.
type BackupManager struct {
	dir    string
	logger *slog.Logger

	// now is replaced in tests to control snapshot names.
	now func() time.Time
}

// NewBackupManager creates a manager writing snapshots under dir.
func NewBackupManager(dir string, logger *slog.Logger) *BackupManager {
	return &BackupManager{dir: dir, logger: logger, now: time.Now}
}

// Snapshot copies the current content of path into the backup
// directory under a timestamp-suffixed name and prunes old snapshots.
// Snapshot failures never abort the caller's save: they are logged and
// swallowed.
func (m *BackupManager) Snapshot(path string) {
	stem := docStem(path)
	name := fmt.Sprintf("%s_%s.json", stem, m.now().Format(backupStampFormat))

	if err := copyFile(path, filepath.Join(m.dir, name)); err != nil {
		m.logger.Warn("backup snapshot failed", "path", path, "error", err)
		return
	}
	m.prune(stem)
}

// RestoreLatest copies the newest snapshot for path over the live
// document. Reports whether a snapshot was found and applied.
func (m *BackupManager) RestoreLatest(path string) (bool, error) {
	backups, err := m.list(docStem(path))
	if err != nil {
		return false, err
	}
	if len(backups) == 0 {
		return false, nil
	}
	if err := copyFile(backups[0], path); err != nil {
		return false, err
	}
	return true, nil
}

// prune deletes everything beyond the backupKeep newest snapshots for
// the given document stem. Best-effort, like Snapshot.
func (m *BackupManager) prune(stem string) {
	backups, err := m.list(stem)
	if err != nil {
		m.logger.Warn("backup prune failed", "stem", stem, "error", err)
		return
	}
	for _, old := range backups[min(len(backups), backupKeep):] {
		if err := os.Remove(old); err != nil {
			m.logger.Warn("backup prune failed", "path", old, "error", err)
		}
	}
}

// list returns the snapshot paths for stem, newest first by
// modification time, then by name so equal timestamps stay stable.
func (m *BackupManager) list(stem string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(m.dir, stem+"_*.json"))
	if err != nil {
		return nil, err
	}

	type backup struct {
		path  string
		mtime time.Time
	}
	backups := make([]backup, 0, len(matches))
	for _, p := range matches {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: p, mtime: info.ModTime()})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].mtime.Equal(backups[j].mtime) {
			return backups[i].mtime.After(backups[j].mtime)
		}
		return backups[i].path > backups[j].path
	})

	paths := make([]string, len(backups))
	for i, b := range backups {
		paths[i] = b.path
	}
	return paths, nil
}

// docStem is the document file name without its extension.
func docStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
