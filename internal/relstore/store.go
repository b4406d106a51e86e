// Package relstore implements the relational storage backend over
// database/sql, with sqlite and postgres dialects. All records live in
// one unified projects table discriminated by a status column, so every
// lifecycle transition is an in-place UPDATE and record identifiers
// never change.
package relstore

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// Compile-time interface check: Store must implement types.Store.
var _ types.Store = (*Store)(nil)

// Store is the relational backend. Each logical operation executes as a
// sequence of separate statements without an enclosing transaction,
// except archive deletion, which removes the record and its notes
// together.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Open connects to the database selected by cfg.Backend, verifies the
// connection, and ensures the schema exists.
func Open(cfg types.Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dialect, err := ParseDialect(cfg.Backend)
	if err != nil {
		return nil, err
	}

	if dialect == DialectSQLite && cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating data dir: %w", types.ErrPersistence, err)
		}
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", types.ErrPersistence, err)
	}
	if dialect == DialectSQLite {
		// modernc sqlite serializes writers; one connection avoids
		// SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to database: %w", types.ErrPersistence, err)
	}

	for _, stmt := range schemaFor(dialect) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: initializing schema: %w", types.ErrPersistence, err)
		}
	}

	return &Store{db: db, dialect: dialect, logger: logger}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// fail logs the underlying cause and returns a sanitized wrap. The full
// diagnostic stays in the log; callers get the operation name only.
func (s *Store) fail(op string, err error) error {
	s.logger.Error("database operation failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %w", types.ErrPersistence, op, err)
}

// AddIdea inserts a pending record.
func (s *Store) AddIdea(idea types.Idea) (int64, error) {
	q := s.dialect.Rebind(
		`INSERT INTO projects (status, idea, notes, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	var id int64
	if err := s.db.QueryRow(q, types.StagePending, idea.Idea, idea.Notes, idea.CreatedAt).Scan(&id); err != nil {
		return 0, s.fail("insert idea", err)
	}
	return id, nil
}

// GetIdea retrieves a pending record by ID.
func (s *Store) GetIdea(id int64) (types.Idea, error) {
	q := s.dialect.Rebind(
		`SELECT id, idea, notes, created_at FROM projects WHERE id = ? AND status = ?`)
	row := s.db.QueryRow(q, id, types.StagePending)

	var idea types.Idea
	var notes sql.NullString
	var createdAt any
	err := row.Scan(&idea.ID, &idea.Idea, &notes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Idea{}, fmt.Errorf("%w: idea %d", types.ErrNotFound, id)
	}
	if err != nil {
		return types.Idea{}, s.fail("get idea", err)
	}
	idea.Notes = notes.String
	idea.CreatedAt = coerceDateTime(createdAt)
	idea.Status = types.StagePending
	return idea, nil
}

// RemoveIdea deletes a pending record; an absent ID is a no-op.
func (s *Store) RemoveIdea(id int64) error {
	q := s.dialect.Rebind(`DELETE FROM projects WHERE id = ? AND status = ?`)
	if _, err := s.db.Exec(q, id, types.StagePending); err != nil {
		return s.fail("remove idea", err)
	}
	return nil
}

// ListIdeas returns pending records newest-first, windowed by req.
// Pagination is the two-step read: a COUNT query, then a LIMIT/OFFSET
// query, with no enclosing transaction.
func (s *Store) ListIdeas(req types.PageRequest) (types.Page[types.Idea], error) {
	req = req.Normalize()

	total, err := s.countByStatus(types.StagePending)
	if err != nil {
		return types.Page[types.Idea]{}, err
	}

	q := `SELECT id, idea, notes, created_at FROM projects
          WHERE status = ? ORDER BY created_at DESC, id DESC`
	args := []any{types.StagePending}
	if req.Paginated() {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, req.PerPage, req.Offset())
	}

	rows, err := s.db.Query(s.dialect.Rebind(q), args...)
	if err != nil {
		return types.Page[types.Idea]{}, s.fail("list ideas", err)
	}
	defer rows.Close()

	items := []types.Idea{}
	for rows.Next() {
		var idea types.Idea
		var notes sql.NullString
		var createdAt any
		if err := rows.Scan(&idea.ID, &idea.Idea, &notes, &createdAt); err != nil {
			return types.Page[types.Idea]{}, s.fail("scan idea", err)
		}
		idea.Notes = notes.String
		idea.CreatedAt = coerceDateTime(createdAt)
		idea.Status = types.StagePending
		items = append(items, idea)
	}
	if err := rows.Err(); err != nil {
		return types.Page[types.Idea]{}, s.fail("list ideas", err)
	}

	return buildPage(items, total, req), nil
}

// AddExperiment inserts an active record.
func (s *Store) AddExperiment(exp types.Experiment) (int64, error) {
	q := s.dialect.Rebind(
		`INSERT INTO projects (status, idea, goal, budget, start_date, end_date, duration_days, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	var id int64
	err := s.db.QueryRow(q,
		types.StageActive, exp.Idea, exp.Goal, exp.Budget,
		exp.StartDate, exp.EndDate, exp.DurationDays, exp.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, s.fail("insert experiment", err)
	}
	return id, nil
}

// GetExperiment retrieves an active record and its notes.
func (s *Store) GetExperiment(id int64) (types.Experiment, error) {
	q := s.dialect.Rebind(
		`SELECT id, idea, goal, budget, start_date, end_date, duration_days, created_at
         FROM projects WHERE id = ? AND status = ?`)
	exp, err := scanExperiment(s.db.QueryRow(q, id, types.StageActive))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Experiment{}, fmt.Errorf("%w: experiment %d", types.ErrNotFound, id)
	}
	if err != nil {
		return types.Experiment{}, s.fail("get experiment", err)
	}

	exp.ProgressNotes, err = s.notesFor(id)
	if err != nil {
		return types.Experiment{}, err
	}
	return exp, nil
}

// ListExperiments returns active records newest-first, windowed by req,
// each hydrated with its notes by a per-record child query.
func (s *Store) ListExperiments(req types.PageRequest) (types.Page[types.Experiment], error) {
	req = req.Normalize()

	total, err := s.countByStatus(types.StageActive)
	if err != nil {
		return types.Page[types.Experiment]{}, err
	}

	q := `SELECT id, idea, goal, budget, start_date, end_date, duration_days, created_at
          FROM projects WHERE status = ? ORDER BY created_at DESC, id DESC`
	args := []any{types.StageActive}
	if req.Paginated() {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, req.PerPage, req.Offset())
	}

	rows, err := s.db.Query(s.dialect.Rebind(q), args...)
	if err != nil {
		return types.Page[types.Experiment]{}, s.fail("list experiments", err)
	}
	defer rows.Close()

	items := []types.Experiment{}
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return types.Page[types.Experiment]{}, s.fail("scan experiment", err)
		}
		items = append(items, exp)
	}
	if err := rows.Err(); err != nil {
		return types.Page[types.Experiment]{}, s.fail("list experiments", err)
	}

	for i := range items {
		items[i].ProgressNotes, err = s.notesFor(items[i].ID)
		if err != nil {
			return types.Page[types.Experiment]{}, err
		}
	}

	return buildPage(items, total, req), nil
}

// AddProgressNote appends a note row for an active record.
func (s *Store) AddProgressNote(experimentID int64, note types.ProgressNote) error {
	if err := s.requireStatus(experimentID, types.StageActive); err != nil {
		return err
	}
	q := s.dialect.Rebind(
		`INSERT INTO progress_notes (project_id, note, created_at) VALUES (?, ?, ?)`)
	if _, err := s.db.Exec(q, experimentID, note.Note, note.Date); err != nil {
		return s.fail("insert progress note", err)
	}
	return nil
}

// CompleteExperiment archives an active record with a single in-place
// UPDATE. The identifier is preserved and the notes rows, which
// reference the record rather than the stage, need no migration.
func (s *Store) CompleteExperiment(experimentID int64, retro types.Retrospective, completedAt string) (int64, error) {
	q := s.dialect.Rebind(
		`UPDATE projects
         SET status = ?, skill_learned = ?, experience = ?, connection = ?, completed_at = ?
         WHERE id = ? AND status = ?`)
	res, err := s.db.Exec(q,
		types.StageArchived, retro.SkillLearned, retro.Experience, retro.Connection,
		completedAt, experimentID, types.StageActive)
	if err != nil {
		return 0, s.fail("complete experiment", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail("complete experiment", err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("%w: experiment %d", types.ErrNotFound, experimentID)
	}
	return experimentID, nil
}

// GetArchiveEntry retrieves an archived record and its notes.
func (s *Store) GetArchiveEntry(id int64) (types.ArchiveEntry, error) {
	q := s.dialect.Rebind(
		`SELECT id, idea, goal, start_date, end_date, completed_at,
                skill_learned, experience, connection, created_at
         FROM projects WHERE id = ? AND status = ?`)
	entry, err := scanArchiveEntry(s.db.QueryRow(q, id, types.StageArchived))
	if errors.Is(err, sql.ErrNoRows) {
		return types.ArchiveEntry{}, fmt.Errorf("%w: archive entry %d", types.ErrNotFound, id)
	}
	if err != nil {
		return types.ArchiveEntry{}, s.fail("get archive entry", err)
	}

	entry.ProgressNotes, err = s.notesFor(id)
	if err != nil {
		return types.ArchiveEntry{}, err
	}
	return entry, nil
}

// ListArchive returns archived records newest-first by completion time,
// windowed by req.
func (s *Store) ListArchive(req types.PageRequest) (types.Page[types.ArchiveEntry], error) {
	req = req.Normalize()

	total, err := s.countByStatus(types.StageArchived)
	if err != nil {
		return types.Page[types.ArchiveEntry]{}, err
	}

	q := `SELECT id, idea, goal, start_date, end_date, completed_at,
                 skill_learned, experience, connection, created_at
          FROM projects WHERE status = ?
          ORDER BY completed_at DESC, created_at DESC, id DESC`
	args := []any{types.StageArchived}
	if req.Paginated() {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, req.PerPage, req.Offset())
	}

	rows, err := s.db.Query(s.dialect.Rebind(q), args...)
	if err != nil {
		return types.Page[types.ArchiveEntry]{}, s.fail("list archive", err)
	}
	defer rows.Close()

	items := []types.ArchiveEntry{}
	for rows.Next() {
		entry, err := scanArchiveEntry(rows)
		if err != nil {
			return types.Page[types.ArchiveEntry]{}, s.fail("scan archive entry", err)
		}
		items = append(items, entry)
	}
	if err := rows.Err(); err != nil {
		return types.Page[types.ArchiveEntry]{}, s.fail("list archive", err)
	}

	for i := range items {
		items[i].ProgressNotes, err = s.notesFor(items[i].ID)
		if err != nil {
			return types.Page[types.ArchiveEntry]{}, err
		}
	}

	return buildPage(items, total, req), nil
}

// DeleteArchiveEntry removes an archived record and its notes in one
// transaction.
func (s *Store) DeleteArchiveEntry(id int64) error {
	if err := s.requireStatus(id, types.StageArchived); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return s.fail("delete archive entry", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.dialect.Rebind(`DELETE FROM progress_notes WHERE project_id = ?`), id); err != nil {
		return s.fail("delete archive notes", err)
	}
	q := s.dialect.Rebind(`DELETE FROM projects WHERE id = ? AND status = ?`)
	if _, err := tx.Exec(q, id, types.StageArchived); err != nil {
		return s.fail("delete archive entry", err)
	}
	if err := tx.Commit(); err != nil {
		return s.fail("delete archive entry", err)
	}
	return nil
}

// Statistics counts records per status.
func (s *Store) Statistics() (types.Statistics, error) {
	pending, err := s.countByStatus(types.StagePending)
	if err != nil {
		return types.Statistics{}, err
	}
	active, err := s.countByStatus(types.StageActive)
	if err != nil {
		return types.Statistics{}, err
	}
	archived, err := s.countByStatus(types.StageArchived)
	if err != nil {
		return types.Statistics{}, err
	}
	return types.Statistics{
		IncubatorCount: pending,
		ActiveCount:    active,
		ArchiveCount:   archived,
		TotalExplored:  archived,
	}, nil
}

func (s *Store) countByStatus(status string) (int, error) {
	q := s.dialect.Rebind(`SELECT COUNT(*) FROM projects WHERE status = ?`)
	var n int
	if err := s.db.QueryRow(q, status).Scan(&n); err != nil {
		return 0, s.fail("count "+status, err)
	}
	return n, nil
}

// requireStatus returns ErrNotFound unless the record exists in the
// given status.
func (s *Store) requireStatus(id int64, status string) error {
	q := s.dialect.Rebind(`SELECT 1 FROM projects WHERE id = ? AND status = ?`)
	var one int
	err := s.db.QueryRow(q, id, status).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s record %d", types.ErrNotFound, status, id)
	}
	if err != nil {
		return s.fail("check record status", err)
	}
	return nil
}

// notesFor returns a record's notes in insertion order. Never nil, so
// listings marshal notes as [] rather than null.
func (s *Store) notesFor(projectID int64) ([]types.ProgressNote, error) {
	q := s.dialect.Rebind(
		`SELECT note, created_at FROM progress_notes
         WHERE project_id = ? ORDER BY created_at ASC, id ASC`)
	rows, err := s.db.Query(q, projectID)
	if err != nil {
		return nil, s.fail("list progress notes", err)
	}
	defer rows.Close()

	notes := []types.ProgressNote{}
	for rows.Next() {
		var note types.ProgressNote
		var createdAt any
		if err := rows.Scan(&note.Note, &createdAt); err != nil {
			return nil, s.fail("scan progress note", err)
		}
		note.Date = coerceDateTime(createdAt)
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list progress notes", err)
	}
	return notes, nil
}

// buildPage assembles the pagination envelope from a windowed item
// slice and the separately counted total.
func buildPage[T any](items []T, total int, req types.PageRequest) types.Page[T] {
	if !req.Paginated() {
		pages := 0
		if total > 0 {
			pages = 1
		}
		return types.Page[T]{Items: items, Total: total, Page: 1, PerPage: total, Pages: pages}
	}
	return types.Page[T]{
		Items:   items,
		Total:   total,
		Page:    req.Page,
		PerPage: req.PerPage,
		Pages:   types.PageCount(total, req.PerPage),
	}
}
