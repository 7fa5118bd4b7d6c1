package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/prepdesk/prepdesk/internal/auth/middleware"
	"github.com/prepdesk/prepdesk/internal/events"
	"github.com/prepdesk/prepdesk/internal/exam"
	"github.com/prepdesk/prepdesk/internal/rbac"
)

// POST /submissions
// { "test_id": "...", "answers": {...}, "time_taken_sec": 123, "question_times": {...} }
// The submitting user comes from the token, not the body.
func CreateSubmissionHandler(store exam.Store, evlog *events.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TestID        string             `json:"test_id"`
			Answers       map[string]string  `json:"answers"`
			TimeTakenSec  int                `json:"time_taken_sec"`
			QuestionTimes map[string]float64 `json:"question_times"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}
		if req.TestID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "test_id is required"})
			return
		}
		sub, err := store.CreateSubmission(r.Context(), exam.Submission{
			UserID:        authmw.SubjectFromContext(r.Context()),
			TestID:        req.TestID,
			Answers:       req.Answers,
			TimeTakenSec:  req.TimeTakenSec,
			QuestionTimes: req.QuestionTimes,
		})
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		evlog.Append(r.Context(), events.Event{
			Type: events.TypeSubmissionCreated,
			Key:  sub.ID,
			Data: map[string]any{"test_id": sub.TestID, "user_id": sub.UserID, "time_taken_sec": sub.TimeTakenSec},
		})
		writeJSON(w, http.StatusCreated, map[string]any{
			"message":    "Test submitted successfully.",
			"submission": sub,
		})
	}
}

// GET /submissions/user/{userID} — each submission resolved with its test.
// Students can only read their own; admins can read anyone's.
func ListUserSubmissionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())
		if role != "admin" && userID != sub {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		list, err := store.ListSubmissionsByUser(r.Context(), userID)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"submissions": list})
	}
}
