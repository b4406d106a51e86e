// Package engine implements the three-stage project lifecycle on top of
// a types.Store. It owns validation, timestamping, stage transitions,
// and the read-time derivation of days remaining; persistence mechanics
// belong to the backends.
package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// Engine drives records through incubator, experiment, and archive.
type Engine struct {
	store  types.Store
	logger *slog.Logger
	now    func() time.Time
}

// New returns an Engine over the given store.
func New(store types.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger, now: time.Now}
}

// AddIdea records a new idea in the incubator. Whitespace-only text is
// rejected; notes are optional.
func (e *Engine) AddIdea(text, notes string) (types.Idea, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Idea{}, fmt.Errorf("%w: idea text is required", types.ErrValidation)
	}

	idea := types.Idea{
		Idea:      text,
		Notes:     strings.TrimSpace(notes),
		CreatedAt: types.FormatDateTime(e.now()),
		Status:    types.StagePending,
	}
	id, err := e.store.AddIdea(idea)
	if err != nil {
		return types.Idea{}, err
	}
	idea.ID = id

	e.logger.Info("idea added", "id", id)
	return idea, nil
}

// GetIdea returns a pending idea by ID.
func (e *Engine) GetIdea(id int64) (types.Idea, error) {
	return e.store.GetIdea(id)
}

// RemoveIdea discards a pending idea. Absent IDs are a no-op.
func (e *Engine) RemoveIdea(id int64) error {
	if err := e.store.RemoveIdea(id); err != nil {
		return err
	}
	e.logger.Info("idea removed", "id", id)
	return nil
}

// ListIdeas returns a page of pending ideas, newest first.
func (e *Engine) ListIdeas(req types.PageRequest) (types.Page[types.Idea], error) {
	return e.store.ListIdeas(req)
}

// StartExperiment promotes an idea into an active experiment, or starts
// one from scratch when ideaID is zero. A positive ideaID must name a
// pending idea; its text overrides ideaText and the idea leaves the
// incubator. A non-positive durationDays falls back to the default time
// box. The end date is the start date plus the duration.
func (e *Engine) StartExperiment(ideaID int64, ideaText, goal string, budget float64, durationDays int) (types.ExperimentView, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return types.ExperimentView{}, fmt.Errorf("%w: goal is required", types.ErrValidation)
	}
	if budget < 0 {
		return types.ExperimentView{}, fmt.Errorf("%w: budget cannot be negative", types.ErrValidation)
	}
	if durationDays <= 0 {
		durationDays = types.DefaultDurationDays
	}

	ideaText = strings.TrimSpace(ideaText)
	if ideaID > 0 {
		idea, err := e.store.GetIdea(ideaID)
		if err != nil {
			return types.ExperimentView{}, err
		}
		ideaText = idea.Idea
		// The idea leaves the incubator before the experiment is
		// written, matching the transition order of the stage model.
		if err := e.store.RemoveIdea(ideaID); err != nil {
			return types.ExperimentView{}, err
		}
	}
	if ideaText == "" {
		return types.ExperimentView{}, fmt.Errorf("%w: idea text is required", types.ErrValidation)
	}

	now := e.now()
	start := now
	end := start.AddDate(0, 0, durationDays)

	exp := types.Experiment{
		Idea:          ideaText,
		Goal:          goal,
		Budget:        budget,
		StartDate:     types.FormatDate(start),
		EndDate:       types.FormatDate(end),
		DurationDays:  durationDays,
		Status:        types.StageActive,
		ProgressNotes: []types.ProgressNote{},
		CreatedAt:     types.FormatDateTime(now),
	}
	id, err := e.store.AddExperiment(exp)
	if err != nil {
		return types.ExperimentView{}, err
	}
	exp.ID = id

	e.logger.Info("experiment started", "id", id, "from_idea", ideaID, "duration_days", durationDays)
	return e.view(exp), nil
}

// GetExperiment returns an active experiment with its derived days
// remaining.
func (e *Engine) GetExperiment(id int64) (types.ExperimentView, error) {
	exp, err := e.store.GetExperiment(id)
	if err != nil {
		return types.ExperimentView{}, err
	}
	return e.view(exp), nil
}

// ListExperiments returns a page of active experiments, newest first,
// each with its derived days remaining.
func (e *Engine) ListExperiments(req types.PageRequest) (types.Page[types.ExperimentView], error) {
	page, err := e.store.ListExperiments(req)
	if err != nil {
		return types.Page[types.ExperimentView]{}, err
	}

	views := make([]types.ExperimentView, 0, len(page.Items))
	for _, exp := range page.Items {
		views = append(views, e.view(exp))
	}
	return types.Page[types.ExperimentView]{
		Items:   views,
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
		Pages:   page.Pages,
	}, nil
}

// AddProgressNote appends a timestamped note to an active experiment.
func (e *Engine) AddProgressNote(experimentID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: note text is required", types.ErrValidation)
	}
	note := types.ProgressNote{
		Date: types.FormatDateTime(e.now()),
		Note: text,
	}
	if err := e.store.AddProgressNote(experimentID, note); err != nil {
		return err
	}
	e.logger.Info("progress note added", "experiment_id", experimentID)
	return nil
}

// CompleteExperiment moves an active experiment to the archive with a
// retrospective. All retrospective fields are optional.
func (e *Engine) CompleteExperiment(experimentID int64, skillLearned, experience, connection string) (types.ArchiveEntry, error) {
	retro := types.Retrospective{
		SkillLearned: strings.TrimSpace(skillLearned),
		Experience:   strings.TrimSpace(experience),
		Connection:   strings.TrimSpace(connection),
	}
	archiveID, err := e.store.CompleteExperiment(experimentID, retro, types.FormatDateTime(e.now()))
	if err != nil {
		return types.ArchiveEntry{}, err
	}

	entry, err := e.store.GetArchiveEntry(archiveID)
	if err != nil {
		return types.ArchiveEntry{}, err
	}
	e.logger.Info("experiment completed", "id", archiveID)
	return entry, nil
}

// GetArchiveEntry returns an archived record by ID.
func (e *Engine) GetArchiveEntry(id int64) (types.ArchiveEntry, error) {
	return e.store.GetArchiveEntry(id)
}

// ListArchive returns a page of archived records, most recently
// completed first.
func (e *Engine) ListArchive(req types.PageRequest) (types.Page[types.ArchiveEntry], error) {
	return e.store.ListArchive(req)
}

// DeleteArchiveEntry permanently removes an archived record.
func (e *Engine) DeleteArchiveEntry(id int64) error {
	if err := e.store.DeleteArchiveEntry(id); err != nil {
		return err
	}
	e.logger.Info("archive entry deleted", "id", id)
	return nil
}

// Statistics returns per-stage record counts.
func (e *Engine) Statistics() (types.Statistics, error) {
	return e.store.Statistics()
}

// view wraps an experiment with its derived days remaining. A record
// whose end date cannot be parsed reports zero rather than failing the
// read.
func (e *Engine) view(exp types.Experiment) types.ExperimentView {
	days, err := types.DaysLeft(exp.EndDate, e.now())
	if err != nil {
		e.logger.Warn("unparseable end date", "id", exp.ID, "end_date", exp.EndDate, "error", err)
		days = 0
	}
	return types.ExperimentView{Experiment: exp, DaysLeft: days}
}
