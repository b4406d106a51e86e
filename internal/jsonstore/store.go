// Package jsonstore implements the file-backed storage backend. Each
// lifecycle stage lives in its own JSON array document; every save
// replaces a document whole through an atomic write with a backup of
// the prior version.
package jsonstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// Document names, one per stage.
const (
	incubatorDoc = "incubator.json"
	activeDoc    = "active_experiments.json"
	archiveDoc   = "archive.json"

	backupDirName = "backups"
)

// Compile-time interface check: Store must implement types.Store.
var _ types.Store = (*Store)(nil)

// Store is the file backend. One writer process is assumed; the mutex
// serializes writers within it. Concurrent external modification of the
// documents is not defended against.
type Store struct {
	mu      sync.Mutex
	dataDir string
	backups *BackupManager
	logger  *slog.Logger
}

// New creates a file store rooted at dataDir, creating the data and
// backup directories and empty stage documents on first use.
func New(dataDir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data dir: %w", types.ErrPersistence, err)
	}
	backupDir := filepath.Join(dataDir, backupDirName)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating backup dir: %w", types.ErrPersistence, err)
	}

	s := &Store{
		dataDir: dataDir,
		backups: NewBackupManager(backupDir, logger),
		logger:  logger,
	}

	for _, doc := range []string{incubatorDoc, activeDoc, archiveDoc} {
		path := s.docPath(doc)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := s.saveRecords(path, []struct{}{}); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Close is a no-op for the file backend; it exists to satisfy the
// Store interface.
func (s *Store) Close() error { return nil }

func (s *Store) docPath(name string) string {
	return filepath.Join(s.dataDir, name)
}

// nextID returns max(id)+1 over every stage, so identifiers stay unique
// across the whole lifecycle and survive completion without remapping.
func (s *Store) nextID() int64 {
	var max int64
	for _, idea := range loadRecords[types.Idea](s.docPath(incubatorDoc)) {
		if idea.ID > max {
			max = idea.ID
		}
	}
	for _, exp := range loadRecords[types.Experiment](s.docPath(activeDoc)) {
		if exp.ID > max {
			max = exp.ID
		}
	}
	for _, entry := range loadRecords[types.ArchiveEntry](s.docPath(archiveDoc)) {
		if entry.ID > max {
			max = entry.ID
		}
	}
	return max + 1
}

// AddIdea persists a new incubator record.
func (s *Store) AddIdea(idea types.Idea) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ideas := loadRecords[types.Idea](s.docPath(incubatorDoc))
	idea.ID = s.nextID()
	ideas = append(ideas, idea)
	if err := s.saveRecords(s.docPath(incubatorDoc), ideas); err != nil {
		return 0, err
	}
	return idea.ID, nil
}

// GetIdea retrieves a pending idea by ID.
func (s *Store) GetIdea(id int64) (types.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, idea := range loadRecords[types.Idea](s.docPath(incubatorDoc)) {
		if idea.ID == id {
			return idea, nil
		}
	}
	return types.Idea{}, fmt.Errorf("%w: idea %d", types.ErrNotFound, id)
}

// RemoveIdea deletes a pending idea. Removing an absent ID leaves the
// document untouched and returns nil.
func (s *Store) RemoveIdea(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeIdeaLocked(id)
}

func (s *Store) removeIdeaLocked(id int64) error {
	ideas := loadRecords[types.Idea](s.docPath(incubatorDoc))
	kept := ideas[:0]
	for _, idea := range ideas {
		if idea.ID != id {
			kept = append(kept, idea)
		}
	}
	if len(kept) == len(ideas) {
		return nil
	}
	return s.saveRecords(s.docPath(incubatorDoc), kept)
}

// ListIdeas returns pending ideas newest-first.
func (s *Store) ListIdeas(req types.PageRequest) (types.Page[types.Idea], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ideas := loadRecords[types.Idea](s.docPath(incubatorDoc))
	sort.Slice(ideas, func(i, j int) bool {
		if ideas[i].CreatedAt != ideas[j].CreatedAt {
			return ideas[i].CreatedAt > ideas[j].CreatedAt
		}
		return ideas[i].ID > ideas[j].ID
	})
	return types.NewPage(ideas, req), nil
}

// AddExperiment persists a new active record.
func (s *Store) AddExperiment(exp types.Experiment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	experiments := loadRecords[types.Experiment](s.docPath(activeDoc))
	exp.ID = s.nextID()
	if exp.ProgressNotes == nil {
		exp.ProgressNotes = []types.ProgressNote{}
	}
	experiments = append(experiments, exp)
	if err := s.saveRecords(s.docPath(activeDoc), experiments); err != nil {
		return 0, err
	}
	return exp.ID, nil
}

// GetExperiment retrieves an active experiment by ID.
func (s *Store) GetExperiment(id int64) (types.Experiment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, exp := range loadRecords[types.Experiment](s.docPath(activeDoc)) {
		if exp.ID == id {
			return exp, nil
		}
	}
	return types.Experiment{}, fmt.Errorf("%w: experiment %d", types.ErrNotFound, id)
}

// ListExperiments returns active experiments newest-first.
func (s *Store) ListExperiments(req types.PageRequest) (types.Page[types.Experiment], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	experiments := loadRecords[types.Experiment](s.docPath(activeDoc))
	sort.Slice(experiments, func(i, j int) bool {
		if experiments[i].CreatedAt != experiments[j].CreatedAt {
			return experiments[i].CreatedAt > experiments[j].CreatedAt
		}
		return experiments[i].ID > experiments[j].ID
	})
	return types.NewPage(experiments, req), nil
}

// AddProgressNote appends a timestamped note to an active experiment.
func (s *Store) AddProgressNote(experimentID int64, note types.ProgressNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	experiments := loadRecords[types.Experiment](s.docPath(activeDoc))
	for i := range experiments {
		if experiments[i].ID == experimentID {
			experiments[i].ProgressNotes = append(experiments[i].ProgressNotes, note)
			return s.saveRecords(s.docPath(activeDoc), experiments)
		}
	}
	return fmt.Errorf("%w: experiment %d", types.ErrNotFound, experimentID)
}

// CompleteExperiment moves an active experiment to the archive document,
// keeping its identifier and carrying its notes forward in order. The
// archive document is written before the active document so a crash
// between the two saves can duplicate the record but never lose it.
func (s *Store) CompleteExperiment(experimentID int64, retro types.Retrospective, completedAt string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	experiments := loadRecords[types.Experiment](s.docPath(activeDoc))
	idx := -1
	for i := range experiments {
		if experiments[i].ID == experimentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("%w: experiment %d", types.ErrNotFound, experimentID)
	}
	exp := experiments[idx]

	notes := exp.ProgressNotes
	if notes == nil {
		notes = []types.ProgressNote{}
	}
	entry := types.ArchiveEntry{
		ID:            exp.ID,
		Idea:          exp.Idea,
		Goal:          exp.Goal,
		StartDate:     exp.StartDate,
		EndDate:       exp.EndDate,
		CompletedAt:   completedAt,
		SkillLearned:  retro.SkillLearned,
		Experience:    retro.Experience,
		Connection:    retro.Connection,
		ProgressNotes: notes,
		CreatedAt:     exp.CreatedAt,
	}

	archive := loadRecords[types.ArchiveEntry](s.docPath(archiveDoc))
	archive = append(archive, entry)
	if err := s.saveRecords(s.docPath(archiveDoc), archive); err != nil {
		return 0, err
	}

	experiments = append(experiments[:idx], experiments[idx+1:]...)
	if err := s.saveRecords(s.docPath(activeDoc), experiments); err != nil {
		return 0, err
	}
	return entry.ID, nil
}

// GetArchiveEntry retrieves an archived record by ID.
func (s *Store) GetArchiveEntry(id int64) (types.ArchiveEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range loadRecords[types.ArchiveEntry](s.docPath(archiveDoc)) {
		if entry.ID == id {
			return entry, nil
		}
	}
	return types.ArchiveEntry{}, fmt.Errorf("%w: archive entry %d", types.ErrNotFound, id)
}

// ListArchive returns archived records newest-first by completion time.
func (s *Store) ListArchive(req types.PageRequest) (types.Page[types.ArchiveEntry], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	archive := loadRecords[types.ArchiveEntry](s.docPath(archiveDoc))
	sort.Slice(archive, func(i, j int) bool {
		if archive[i].CompletedAt != archive[j].CompletedAt {
			return archive[i].CompletedAt > archive[j].CompletedAt
		}
		if archive[i].CreatedAt != archive[j].CreatedAt {
			return archive[i].CreatedAt > archive[j].CreatedAt
		}
		return archive[i].ID > archive[j].ID
	})
	return types.NewPage(archive, req), nil
}

// DeleteArchiveEntry removes an archived record.
func (s *Store) DeleteArchiveEntry(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	archive := loadRecords[types.ArchiveEntry](s.docPath(archiveDoc))
	kept := archive[:0]
	for _, entry := range archive {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(archive) {
		return fmt.Errorf("%w: archive entry %d", types.ErrNotFound, id)
	}
	return s.saveRecords(s.docPath(archiveDoc), kept)
}

// Statistics counts records per stage.
func (s *Store) Statistics() (types.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := 0
	for _, idea := range loadRecords[types.Idea](s.docPath(incubatorDoc)) {
		if idea.Status == types.StagePending {
			pending++
		}
	}
	active := 0
	for _, exp := range loadRecords[types.Experiment](s.docPath(activeDoc)) {
		if exp.Status == types.StageActive {
			active++
		}
	}
	archived := len(loadRecords[types.ArchiveEntry](s.docPath(archiveDoc)))

	return types.Statistics{
		IncubatorCount: pending,
		ActiveCount:    active,
		ArchiveCount:   archived,
		TotalExplored:  archived,
	}, nil
}
