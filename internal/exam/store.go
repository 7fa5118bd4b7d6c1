package exam

import "context"

// Store is the catalog + submission surface backing the REST API. Tests are
// immutable once created; submissions are append-only.
type Store interface {
	// CreateTest validates and persists a new test, assigning IDs to the
	// test and to any question that lacks one.
	CreateTest(ctx context.Context, title string, questions []Question) (Test, error)
	// GetTest returns a student-safe copy (no correct/model answers).
	GetTest(ctx context.Context, id string) (Test, error)
	// GetTestAdmin returns the full test including grading material.
	GetTestAdmin(ctx context.Context, id string) (Test, error)
	// ListTests returns all tests, student-safe, unordered.
	ListTests(ctx context.Context) ([]Test, error)

	// CreateSubmission verifies the referenced test exists and that every
	// answered question belongs to it, then persists the submission.
	CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
	// ListSubmissionsByUser returns the user's submissions, each resolved
	// with its (student-safe) test.
	ListSubmissionsByUser(ctx context.Context, userID string) ([]Submission, error)

	AddHistory(ctx context.Context, h HistoryEntry) (HistoryEntry, error)
	ListHistoryByUser(ctx context.Context, userID string) ([]HistoryEntry, error)

	// AddBookmark is idempotent per (user, question).
	AddBookmark(ctx context.Context, b Bookmark) (Bookmark, error)
	RemoveBookmark(ctx context.Context, userID, bookmarkID string) error
	// ListBookmarksByUser returns bookmarks newest first, each resolved
	// with its question.
	ListBookmarksByUser(ctx context.Context, userID string) ([]Bookmark, error)
}

// validateSubmission is shared by both store implementations. The test must
// already be loaded with its full question list.
func validateSubmission(sub Submission, t Test) error {
	known := make(map[string]struct{}, len(t.Questions))
	for _, q := range t.Questions {
		known[q.ID] = struct{}{}
	}
	for qid := range sub.Answers {
		if _, ok := known[qid]; !ok {
			return Validationf("answer references unknown question %q", qid)
		}
	}
	if sub.UserID == "" {
		return Validationf("user id is required")
	}
	if sub.TimeTakenSec < 0 {
		return Validationf("time taken cannot be negative")
	}
	return nil
}
