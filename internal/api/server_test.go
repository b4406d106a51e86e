package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mesh-intelligence/kindling/internal/engine"
	"github.com/mesh-intelligence/kindling/internal/jsonstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := jsonstore.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("jsonstore.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(Config{Engine: engine.New(store, nil)})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, "GET", "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestAddIdea_Envelope(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "POST", "/api/incubator", map[string]string{
		"idea": "Build a synth", "notes": "weekend project",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var res struct {
		Success bool  `json:"success"`
		ID      int64 `json:"id"`
	}
	decode(t, w, &res)
	if !res.Success || res.ID != 1 {
		t.Errorf("envelope = %+v", res)
	}
}

func TestAddIdea_EmptyText(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "POST", "/api/incubator", map[string]string{"idea": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var res struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decode(t, w, &res)
	if res.Success || res.Error == "" {
		t.Errorf("envelope = %+v", res)
	}
}

func TestStartExperiment_PromotesIdea(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, "POST", "/api/incubator", map[string]string{"idea": "Build a synth"})

	w := doJSON(t, s, "POST", "/api/experiments", map[string]any{
		"idea_id": 1, "goal": "finish demo", "budget": 50.0, "days": 14,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	// The promoted idea is gone from the incubator listing.
	w = doJSON(t, s, "GET", "/api/incubator", nil)
	var ideas struct {
		Items []json.RawMessage `json:"items"`
		Total int               `json:"total"`
	}
	decode(t, w, &ideas)
	if ideas.Total != 0 || len(ideas.Items) != 0 {
		t.Errorf("incubator still holds %d ideas", ideas.Total)
	}

	// The active record carries the budget as a plain number and a
	// derived days_left.
	w = doJSON(t, s, "GET", "/api/experiments/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var exp struct {
		Idea     string  `json:"idea"`
		Budget   float64 `json:"budget"`
		DaysLeft int     `json:"days_left"`
	}
	decode(t, w, &exp)
	if exp.Idea != "Build a synth" || exp.Budget != 50.0 {
		t.Errorf("experiment = %+v", exp)
	}
	if exp.DaysLeft < 12 || exp.DaysLeft > 14 {
		t.Errorf("days_left = %d, want about 13", exp.DaysLeft)
	}
}

func TestStartExperiment_BadBudget(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "POST", "/api/experiments", map[string]any{
		"idea": "x", "goal": "g", "budget": "fifty",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestStartExperiment_MissingIdea(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "POST", "/api/experiments", map[string]any{
		"idea_id": 42, "goal": "g",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestProgressAndComplete(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, "POST", "/api/experiments", map[string]any{
		"idea": "Build a synth", "goal": "finish demo",
	})

	for _, note := range []string{"soldered the oscillator", "filter stage working"} {
		w := doJSON(t, s, "POST", "/api/experiments/1/progress", map[string]string{"note": note})
		if w.Code != http.StatusOK {
			t.Fatalf("progress status = %d, body %s", w.Code, w.Body)
		}
	}

	// Blank notes are rejected at the boundary.
	w := doJSON(t, s, "POST", "/api/experiments/1/progress", map[string]string{"note": "  "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank note status = %d, want 400", w.Code)
	}

	w = doJSON(t, s, "POST", "/api/experiments/1/complete", map[string]string{
		"skill": "soldering", "experience": "fun", "connection": "audio club",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body %s", w.Code, w.Body)
	}
	var res struct {
		Success bool  `json:"success"`
		ID      int64 `json:"id"`
	}
	decode(t, w, &res)
	if !res.Success || res.ID != 1 {
		t.Errorf("envelope = %+v", res)
	}

	// The archive entry holds both notes in insertion order.
	w = doJSON(t, s, "GET", "/api/archive/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("archive status = %d", w.Code)
	}
	var entry struct {
		SkillLearned  string `json:"skill_learned"`
		ProgressNotes []struct {
			Note string `json:"note"`
		} `json:"progress_notes"`
	}
	decode(t, w, &entry)
	if entry.SkillLearned != "soldering" {
		t.Errorf("skill_learned = %q", entry.SkillLearned)
	}
	if len(entry.ProgressNotes) != 2 ||
		entry.ProgressNotes[0].Note != "soldered the oscillator" ||
		entry.ProgressNotes[1].Note != "filter stage working" {
		t.Errorf("notes = %+v", entry.ProgressNotes)
	}

	// Completing again is a 404: the record is no longer active.
	w = doJSON(t, s, "POST", "/api/experiments/1/complete", map[string]string{})
	if w.Code != http.StatusNotFound {
		t.Errorf("second complete status = %d, want 404", w.Code)
	}
}

func TestPaginationDefaults(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 12; i++ {
		doJSON(t, s, "POST", "/api/incubator", map[string]string{"idea": "idea"})
	}

	var page struct {
		Items   []json.RawMessage `json:"items"`
		Total   int               `json:"total"`
		Page    int               `json:"page"`
		PerPage int               `json:"per_page"`
		Pages   int               `json:"pages"`
	}

	w := doJSON(t, s, "GET", "/api/incubator", nil)
	decode(t, w, &page)
	if page.Total != 12 || page.Page != 1 || page.PerPage != 10 || page.Pages != 2 || len(page.Items) != 10 {
		t.Errorf("default page = %+v (items %d)", page, len(page.Items))
	}

	w = doJSON(t, s, "GET", "/api/incubator?page=2&per_page=5", nil)
	decode(t, w, &page)
	if page.Page != 2 || page.PerPage != 5 || page.Pages != 3 || len(page.Items) != 5 {
		t.Errorf("windowed page = %+v (items %d)", page, len(page.Items))
	}
}

func TestDeleteArchiveEntry(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, "POST", "/api/experiments", map[string]any{"idea": "x", "goal": "g"})
	doJSON(t, s, "POST", "/api/experiments/1/complete", map[string]string{})

	w := doJSON(t, s, "DELETE", "/api/archive/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	w = doJSON(t, s, "DELETE", "/api/archive/1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestRemoveIdea_AbsentIsOK(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, "DELETE", "/api/incubator/99", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 no-op", w.Code)
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, "POST", "/api/incubator", map[string]string{"idea": "a"})
	doJSON(t, s, "POST", "/api/experiments", map[string]any{"idea": "b", "goal": "g"})

	w := doJSON(t, s, "GET", "/api/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var stats struct {
		IncubatorCount int `json:"incubator_count"`
		ActiveCount    int `json:"active_count"`
		ArchiveCount   int `json:"archive_count"`
		TotalExplored  int `json:"total_explored"`
	}
	decode(t, w, &stats)
	if stats.IncubatorCount != 1 || stats.ActiveCount != 1 || stats.ArchiveCount != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestBadPathID(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, "GET", "/api/experiments/banana", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, "GET", "/api/health", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
}
