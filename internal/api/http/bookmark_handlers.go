package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/prepdesk/prepdesk/internal/auth/middleware"
	"github.com/prepdesk/prepdesk/internal/exam"
)

// POST /bookmarks  { "test_id": "...", "question_id": "..." }
// Idempotent: bookmarking the same question twice returns the existing row.
func AddBookmarkHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TestID     string `json:"test_id"`
			QuestionID string `json:"question_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}
		if req.TestID == "" || req.QuestionID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "test_id and question_id required"})
			return
		}
		b, err := store.AddBookmark(r.Context(), exam.Bookmark{
			UserID:     authmw.SubjectFromContext(r.Context()),
			TestID:     req.TestID,
			QuestionID: req.QuestionID,
		})
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"bookmark": b})
	}
}

// DELETE /bookmarks/{bookmarkID}
func RemoveBookmarkHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.RemoveBookmark(r.Context(),
			authmw.SubjectFromContext(r.Context()), chi.URLParam(r, "bookmarkID"))
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
