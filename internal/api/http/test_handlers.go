package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prepdesk/prepdesk/internal/events"
	"github.com/prepdesk/prepdesk/internal/exam"
)

// POST /tests  { "title": "...", "questions": [...] }
func CreateTestHandler(store exam.Store, evlog *events.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title     string          `json:"title"`
			Questions []exam.Question `json:"questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}
		t, err := store.CreateTest(r.Context(), req.Title, req.Questions)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		evlog.Append(r.Context(), events.Event{
			Type: events.TypeTestCreated,
			Key:  t.ID,
			Data: map[string]any{"title": t.Title, "questions": len(t.Questions)},
		})
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Test created successfully!",
			"test":    t,
		})
	}
}

// GET /tests — 404 when the catalog is empty, matching the original API.
func ListTestsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tests, err := store.ListTests(r.Context())
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		if len(tests) == 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no tests found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count": len(tests),
			"tests": tests,
		})
	}
}

// GET /tests/{testID} — student-safe view, no answer keys.
func GetTestHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"test": t})
	}
}
