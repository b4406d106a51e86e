package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mesh-intelligence/kindling/pkg/kindling"
	"github.com/mesh-intelligence/kindling/pkg/types"
)

// pageParams reads page/per_page query parameters, defaulting to the
// first page of ten. Unparseable values fall back to the defaults.
func pageParams(r *http.Request) types.PageRequest {
	req := types.PageRequest{Page: 1, PerPage: types.DefaultPerPage}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			req.Page = n
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			req.PerPage = n
		}
	}
	return req
}

// pathID reads the {id} path segment as an integer record ID.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", types.ErrValidation, r.PathValue("id"))
	}
	return id, nil
}

// decodeBody decodes a JSON request body into dst. Numbers are decoded
// as json.Number so a malformed budget is a validation error rather
// than a silent truncation.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", types.ErrValidation, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": kindling.Version,
	})
}

func (s *Server) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	page, err := s.engine.ListIdeas(pageParams(r))
	if err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

func (s *Server) handleAddIdea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Idea  string `json:"idea"`
		Notes string `json:"notes"`
	}
	if err := decodeBody(r, &req); err != nil {
		handleError(w, err)
		return
	}

	idea, err := s.engine.AddIdea(req.Idea, req.Notes)
	if err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, mutationResult{Success: true, ID: idea.ID})
}

func (s *Server) handleRemoveIdea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.engine.RemoveIdea(id); err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, mutationResult{Success: true, ID: id})
}

func (s *Server) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	page, err := s.engine.ListExperiments(pageParams(r))
	if err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

func (s *Server) handleStartExperiment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IdeaID int64       `json:"idea_id"`
		Idea   string      `json:"idea"`
		Goal   string      `json:"goal"`
		Budget json.Number `json:"budget"`
		Days   int         `json:"days"`
	}
	if err := decodeBody(r, &req); err != nil {
		handleError(w, err)
		return
	}

	budget := 0.0
	if req.Budget != "" {
		var err error
		budget, err = req.Budget.Float64()
		if err != nil {
			handleError(w, fmt.Errorf("%w: budget must be a number", types.ErrValidation))
			return
		}
	}

	exp, err := s.engine.StartExperiment(req.IdeaID, req.Idea, req.Goal, budget, req.Days)
	if err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, mutationResult{Success: true, ID: exp.ID})
}

func (s *Server) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	exp, err := s.engine.GetExperiment(id)
	if err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, exp)
}

func (s *Server) handleAddProgressNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if err := decodeBody(r, &req); err != nil {
		handleError(w, err)
		return
	}
	if err := s.engine.AddProgressNote(id, req.Note); err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, mutationResult{Success: true, ID: id})
}

func (s *Server) handleCompleteExperiment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	var req struct {
		Skill      string `json:"skill"`
		Experience string `json:"experience"`
		Connection string `json:"connection"`
	}
	if err := decodeBody(r, &req); err != nil {
		handleError(w, err)
		return
	}

	entry, err := s.engine.CompleteExperiment(id, req.Skill, req.Experience, req.Connection)
	if err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, mutationResult{Success: true, ID: entry.ID})
}

func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	page, err := s.engine.ListArchive(pageParams(r))
	if err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

func (s *Server) handleGetArchiveEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	entry, err := s.engine.GetArchiveEntry(id)
	if err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteArchiveEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.engine.DeleteArchiveEntry(id); err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, mutationResult{Success: true, ID: id})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Statistics()
	if err != nil {
		handleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
