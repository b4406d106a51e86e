package types

// Record stages. A record occupies exactly one stage at any time.
const (
	StagePending  = "pending"
	StageActive   = "active"
	StageArchived = "archived"
)

// validStages is the set of recognized stage values.
var validStages = map[string]bool{
	StagePending:  true,
	StageActive:   true,
	StageArchived: true,
}

// ValidStage reports whether s is a recognized stage value.
func ValidStage(s string) bool {
	return validStages[s]
}

// DefaultDurationDays is the experiment time box applied when the caller
// does not supply one.
const DefaultDurationDays = 21

// ProgressNote is a timestamped free-text update attached to an
// experiment. Notes are append-only and keep insertion order; completion
// carries them to the archive entry unchanged.
type ProgressNote struct {
	Date string `json:"date"` // DateTimeFormat
	Note string `json:"note"`
}

// Idea is an unstarted notion in the incubator stage.
type Idea struct {
	ID        int64  `json:"id"`
	Idea      string `json:"idea"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"` // DateTimeFormat
	Status    string `json:"status"`     // always StagePending
}

// Experiment is an active, time-boxed, goal-and-budget-bound project.
type Experiment struct {
	ID            int64          `json:"id"`
	Idea          string         `json:"idea"`
	Goal          string         `json:"goal"`
	Budget        float64        `json:"budget"`
	StartDate     string         `json:"start_date"` // DateFormat
	EndDate       string         `json:"end_date"`   // DateFormat, StartDate + DurationDays
	DurationDays  int            `json:"duration_days"`
	Status        string         `json:"status"` // always StageActive
	ProgressNotes []ProgressNote `json:"progress_notes"`
	CreatedAt     string         `json:"created_at"` // DateTimeFormat
}

// ExperimentView is an Experiment augmented with fields derived at read
// time. DaysLeft is never persisted; it may be negative once the
// deadline has passed.
type ExperimentView struct {
	Experiment
	DaysLeft int `json:"days_left"`
}

// Retrospective holds the notes recorded when an experiment completes.
type Retrospective struct {
	SkillLearned string `json:"skill_learned"`
	Experience   string `json:"experience"`
	Connection   string `json:"connection"`
}

// ArchiveEntry is a completed experiment. Immutable after creation
// except for deletion.
type ArchiveEntry struct {
	ID            int64          `json:"id"`
	Idea          string         `json:"idea"`
	Goal          string         `json:"goal"`
	StartDate     string         `json:"start_date"`   // DateFormat
	EndDate       string         `json:"end_date"`     // DateFormat
	CompletedAt   string         `json:"completed_at"` // DateTimeFormat
	SkillLearned  string         `json:"skill_learned"`
	Experience    string         `json:"experience"`
	Connection    string         `json:"connection"`
	ProgressNotes []ProgressNote `json:"progress_notes"`
	CreatedAt     string         `json:"created_at"` // DateTimeFormat, from the experiment
}

// Statistics summarizes record counts per stage. TotalExplored equals
// ArchiveCount; it exists because the reporting surface names both.
type Statistics struct {
	IncubatorCount int `json:"incubator_count"`
	ActiveCount    int `json:"active_count"`
	ArchiveCount   int `json:"archive_count"`
	TotalExplored  int `json:"total_explored"`
}
