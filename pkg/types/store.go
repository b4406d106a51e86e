package types

import "errors"

// Store is the backend-agnostic persistence interface. Both the file
// store and the relational store implement it; the lifecycle engine
// never branches on which one it holds. Implementations must return
// records in the canonical shapes of this package, with dates already
// formatted and monetary values as plain floats.
type Store interface {
	// AddIdea persists a new incubator record and returns its ID.
	// The caller supplies CreatedAt and Status; the store assigns ID.
	AddIdea(idea Idea) (int64, error)

	// GetIdea retrieves a pending idea. Returns ErrNotFound if no
	// pending record has that ID.
	GetIdea(id int64) (Idea, error)

	// RemoveIdea deletes a pending idea. Removing an absent ID is a
	// no-op, not an error.
	RemoveIdea(id int64) error

	// ListIdeas returns pending ideas newest-first by creation time.
	ListIdeas(req PageRequest) (Page[Idea], error)

	// AddExperiment persists a new active record and returns its ID.
	AddExperiment(exp Experiment) (int64, error)

	// GetExperiment retrieves an active experiment with its progress
	// notes in insertion order. Returns ErrNotFound if no active
	// record has that ID.
	GetExperiment(id int64) (Experiment, error)

	// ListExperiments returns active experiments newest-first by
	// creation time, each with its progress notes.
	ListExperiments(req PageRequest) (Page[Experiment], error)

	// AddProgressNote appends a note to an active experiment.
	// Returns ErrNotFound if no active record has that ID.
	AddProgressNote(experimentID int64, note ProgressNote) error

	// CompleteExperiment transitions an active experiment to the
	// archive, stamping completedAt and the retrospective and carrying
	// all progress notes forward unmodified. Returns the archive ID,
	// which equals experimentID: both backends preserve the identifier
	// on completion. Returns ErrNotFound if no active record has that
	// ID.
	CompleteExperiment(experimentID int64, retro Retrospective, completedAt string) (int64, error)

	// GetArchiveEntry retrieves an archived record. Returns
	// ErrNotFound if no archived record has that ID.
	GetArchiveEntry(id int64) (ArchiveEntry, error)

	// ListArchive returns archived records newest-first by completion
	// time, then creation time.
	ListArchive(req PageRequest) (Page[ArchiveEntry], error)

	// DeleteArchiveEntry deletes an archived record and its notes.
	// Returns ErrNotFound if the ID is absent or not archived.
	DeleteArchiveEntry(id int64) error

	// Statistics returns per-stage record counts.
	Statistics() (Statistics, error)

	// Close releases backend resources.
	Close() error
}

// Error taxonomy. Callers match with errors.Is; storage and engine code
// wraps these with the offending ID or field for context.
var (
	// ErrValidation marks caller-supplied input that fails a
	// required-field or type check. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced identifier that does not exist in
	// the expected stage. Never retried.
	ErrNotFound = errors.New("record not found")

	// ErrPersistence marks an underlying read/write failure. The full
	// cause is logged where it occurs; callers see a sanitized wrap.
	ErrPersistence = errors.New("persistence failure")

	// ErrConfiguration marks missing or invalid startup configuration.
	// Fatal: the process must not serve requests until resolved.
	ErrConfiguration = errors.New("invalid configuration")
)
