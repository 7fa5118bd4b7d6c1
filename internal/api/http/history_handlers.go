package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/prepdesk/prepdesk/internal/auth/middleware"
	"github.com/prepdesk/prepdesk/internal/exam"
)

// GET /history — test history and bookmarks for the authenticated user,
// both newest first.
func GetHistoryHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		history, err := store.ListHistoryByUser(r.Context(), userID)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		bookmarks, err := store.ListBookmarksByUser(r.Context(), userID)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"testHistory": history,
			"bookmarks":   bookmarks,
		})
	}
}

// POST /history  { "title": "...", "score": 7, "duration_sec": 300 }
// Score and duration are client-reported, same trust model as the timer.
func AddHistoryHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       string  `json:"title"`
			Score       float64 `json:"score"`
			DurationSec int     `json:"duration_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}
		h, err := store.AddHistory(r.Context(), exam.HistoryEntry{
			UserID:      authmw.SubjectFromContext(r.Context()),
			Title:       req.Title,
			Score:       req.Score,
			DurationSec: req.DurationSec,
		})
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"entry": h})
	}
}
