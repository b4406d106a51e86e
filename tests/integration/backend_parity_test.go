// Package integration exercises both storage backends through the
// shared Store interface and verifies they present an identical
// contract: same record shapes, same pagination envelopes, same
// ordering, same error taxonomy.
package integration

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kindling/internal/jsonstore"
	"github.com/mesh-intelligence/kindling/internal/relstore"
	"github.com/mesh-intelligence/kindling/pkg/types"
)

// backends enumerates the store constructors under test.
var backends = []struct {
	name string
	open func(t *testing.T) types.Store
}{
	{
		name: "file",
		open: func(t *testing.T) types.Store {
			s, err := jsonstore.New(t.TempDir(), nil)
			require.NoError(t, err)
			return s
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T) types.Store {
			s, err := relstore.Open(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}, nil)
			require.NoError(t, err)
			return s
		},
	},
}

func TestBackendParity_Lifecycle(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			defer s.Close()

			ideaID, err := s.AddIdea(types.Idea{
				Idea: "Build a synth", Notes: "weekend project",
				CreatedAt: "2025-06-10 09:00:00", Status: types.StagePending,
			})
			require.NoError(t, err)

			idea, err := s.GetIdea(ideaID)
			require.NoError(t, err)
			assert.Equal(t, "Build a synth", idea.Idea)
			assert.Equal(t, "2025-06-10 09:00:00", idea.CreatedAt)

			require.NoError(t, s.RemoveIdea(ideaID))
			require.NoError(t, s.RemoveIdea(ideaID), "absent removal must stay a no-op")

			expID, err := s.AddExperiment(types.Experiment{
				Idea: "Build a synth", Goal: "finish demo", Budget: 50.0,
				StartDate: "2025-06-10", EndDate: "2025-06-24", DurationDays: 14,
				Status: types.StageActive, CreatedAt: "2025-06-10 09:01:00",
			})
			require.NoError(t, err)

			require.NoError(t, s.AddProgressNote(expID, types.ProgressNote{
				Date: "2025-06-11 10:00:00", Note: "soldered the oscillator",
			}))
			require.NoError(t, s.AddProgressNote(expID, types.ProgressNote{
				Date: "2025-06-12 10:00:00", Note: "filter stage working",
			}))

			exp, err := s.GetExperiment(expID)
			require.NoError(t, err)
			assert.Equal(t, 50.0, exp.Budget, "budget must stay a plain decimal")
			assert.Equal(t, "2025-06-10", exp.StartDate)
			assert.Equal(t, "2025-06-24", exp.EndDate)
			require.Len(t, exp.ProgressNotes, 2)
			assert.Equal(t, "soldered the oscillator", exp.ProgressNotes[0].Note)

			archiveID, err := s.CompleteExperiment(expID, types.Retrospective{
				SkillLearned: "soldering", Experience: "fun", Connection: "audio club",
			}, "2025-06-20 18:00:00")
			require.NoError(t, err)
			assert.Equal(t, expID, archiveID, "both backends preserve the identifier")

			_, err = s.GetExperiment(expID)
			assert.ErrorIs(t, err, types.ErrNotFound, "no record may be both active and archived")

			entry, err := s.GetArchiveEntry(archiveID)
			require.NoError(t, err)
			assert.Equal(t, "soldering", entry.SkillLearned)
			assert.Equal(t, "2025-06-20 18:00:00", entry.CompletedAt)
			require.Len(t, entry.ProgressNotes, 2)
			assert.Equal(t, exp.ProgressNotes, entry.ProgressNotes, "notes carry over unmodified and in order")

			stats, err := s.Statistics()
			require.NoError(t, err)
			assert.Equal(t, types.Statistics{ArchiveCount: 1, TotalExplored: 1}, stats)

			require.NoError(t, s.DeleteArchiveEntry(archiveID))
			assert.ErrorIs(t, s.DeleteArchiveEntry(archiveID), types.ErrNotFound)
		})
	}
}

func TestBackendParity_Pagination(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			defer s.Close()

			for i := 0; i < 7; i++ {
				_, err := s.AddIdea(types.Idea{
					Idea:      fmt.Sprintf("idea %d", i),
					CreatedAt: fmt.Sprintf("2025-06-10 09:00:0%d", i),
					Status:    types.StagePending,
				})
				require.NoError(t, err)
			}

			page, err := s.ListIdeas(types.PageRequest{Page: 1, PerPage: 3})
			require.NoError(t, err)
			assert.Equal(t, 7, page.Total)
			assert.Equal(t, 3, page.Pages)
			require.Len(t, page.Items, 3)
			assert.Equal(t, "idea 6", page.Items[0].Idea, "newest first")

			// Concatenating the windows reproduces the full listing.
			var windowed []string
			for pg := 1; pg <= page.Pages; pg++ {
				p, err := s.ListIdeas(types.PageRequest{Page: pg, PerPage: 3})
				require.NoError(t, err)
				for _, item := range p.Items {
					windowed = append(windowed, item.Idea)
				}
			}
			all, err := s.ListIdeas(types.PageRequest{})
			require.NoError(t, err)
			require.Len(t, windowed, len(all.Items))
			for i, item := range all.Items {
				assert.Equal(t, item.Idea, windowed[i])
			}

			// A page past the end is empty, not an error.
			past, err := s.ListIdeas(types.PageRequest{Page: 10, PerPage: 3})
			require.NoError(t, err)
			assert.Empty(t, past.Items)
			assert.Equal(t, 7, past.Total)
		})
	}
}

func TestBackendParity_Errors(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			defer s.Close()

			_, err := s.GetIdea(42)
			assert.ErrorIs(t, err, types.ErrNotFound)

			_, err = s.GetExperiment(42)
			assert.ErrorIs(t, err, types.ErrNotFound)

			_, err = s.GetArchiveEntry(42)
			assert.ErrorIs(t, err, types.ErrNotFound)

			err = s.AddProgressNote(42, types.ProgressNote{Date: "2025-06-11 10:00:00", Note: "n"})
			assert.ErrorIs(t, err, types.ErrNotFound)

			_, err = s.CompleteExperiment(42, types.Retrospective{}, "2025-06-20 18:00:00")
			assert.ErrorIs(t, err, types.ErrNotFound)

			assert.ErrorIs(t, s.DeleteArchiveEntry(42), types.ErrNotFound)
		})
	}
}

func TestBackendParity_ArchiveOrdering(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			defer s.Close()

			var ids []int64
			for i := 0; i < 3; i++ {
				id, err := s.AddExperiment(types.Experiment{
					Idea: fmt.Sprintf("exp %d", i), Goal: "g",
					StartDate: "2025-06-01", EndDate: "2025-06-15", DurationDays: 14,
					Status: types.StageActive, CreatedAt: fmt.Sprintf("2025-06-01 09:00:0%d", i),
				})
				require.NoError(t, err)
				ids = append(ids, id)
			}

			// Complete out of creation order; listing follows completion
			// time, newest first.
			completions := []struct {
				id int64
				at string
			}{
				{ids[1], "2025-06-18 10:00:00"},
				{ids[0], "2025-06-19 10:00:00"},
				{ids[2], "2025-06-17 10:00:00"},
			}
			for _, c := range completions {
				_, err := s.CompleteExperiment(c.id, types.Retrospective{}, c.at)
				require.NoError(t, err)
			}

			page, err := s.ListArchive(types.PageRequest{})
			require.NoError(t, err)
			require.Len(t, page.Items, 3)
			assert.Equal(t, ids[0], page.Items[0].ID)
			assert.Equal(t, ids[1], page.Items[1].ID)
			assert.Equal(t, ids[2], page.Items[2].ID)
		})
	}
}
