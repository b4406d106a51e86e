package relstore

// Unified-table schema. One projects table holds every record with a
// status discriminant and the union of stage-specific columns, nullable
// where a stage does not use them. Progress notes reference the record
// by foreign key, so completing an experiment is a single status
// UPDATE and the notes rows never move.

const createProjectsSQLite = `CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    status TEXT NOT NULL CHECK (status IN ('pending', 'active', 'archived')),
    idea TEXT NOT NULL,
    notes TEXT,
    goal TEXT,
    budget REAL,
    start_date TEXT,
    end_date TEXT,
    duration_days INTEGER,
    skill_learned TEXT,
    experience TEXT,
    connection TEXT,
    created_at TEXT NOT NULL,
    completed_at TEXT
);`

const createNotesSQLite = `CREATE TABLE IF NOT EXISTS progress_notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL REFERENCES projects(id),
    note TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

const createProjectsPostgres = `CREATE TABLE IF NOT EXISTS projects (
    id BIGSERIAL PRIMARY KEY,
    status TEXT NOT NULL CHECK (status IN ('pending', 'active', 'archived')),
    idea TEXT NOT NULL,
    notes TEXT,
    goal TEXT,
    budget NUMERIC(12, 2),
    start_date DATE,
    end_date DATE,
    duration_days INTEGER,
    skill_learned TEXT,
    experience TEXT,
    connection TEXT,
    created_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP
);`

const createNotesPostgres = `CREATE TABLE IF NOT EXISTS progress_notes (
    id BIGSERIAL PRIMARY KEY,
    project_id BIGINT NOT NULL REFERENCES projects(id),
    note TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);`

const createNotesIndex = `CREATE INDEX IF NOT EXISTS idx_progress_notes_project
    ON progress_notes (project_id, created_at);`

// schemaFor returns the DDL statements for the dialect, in order.
func schemaFor(d Dialect) []string {
	if d == DialectPostgres {
		return []string{createProjectsPostgres, createNotesPostgres, createNotesIndex}
	}
	return []string{createProjectsSQLite, createNotesSQLite, createNotesIndex}
}
