package exam_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/prepdesk/prepdesk/internal/db"
	"github.com/prepdesk/prepdesk/internal/exam"
)

var memSeq int

// newSQLiteStore opens a uniquely named shared in-memory database so each
// test gets isolated state across the connection pool.
func newSQLiteStore(t *testing.T) *exam.SQLStore {
	t.Helper()
	memSeq++
	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared", memSeq)
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	dbh.SetMaxOpenConns(1)
	t.Cleanup(func() { dbh.Close() })
	return exam.NewSQLStore(dbh)
}

func seedTest(t *testing.T, store exam.Store) exam.Test {
	t.Helper()
	created, err := store.CreateTest(context.Background(), "Midterm", []exam.Question{
		{Text: "2+2?", Type: exam.QuestionMCQ, Options: []string{"3", "4"}, CorrectAnswer: "4"},
		{Text: "Explain gravity.", Type: exam.QuestionSubjective, ModelAnswer: "mass attracts"},
	})
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	return created
}

func TestSQLStoreTestLifecycle(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	created := seedTest(t, store)
	if created.ID == "" || created.Questions[0].ID == "" {
		t.Fatalf("ids not assigned: %+v", created)
	}

	// Student read strips grading material.
	got, err := store.GetTest(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTest: %v", err)
	}
	if got.Questions[0].CorrectAnswer != "" || got.Questions[1].ModelAnswer != "" {
		t.Fatalf("student read leaked answers: %+v", got.Questions)
	}

	// Admin read keeps it.
	full, err := store.GetTestAdmin(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTestAdmin: %v", err)
	}
	if full.Questions[0].CorrectAnswer != "4" {
		t.Fatalf("admin read lost answer key")
	}

	list, err := store.ListTests(ctx)
	if err != nil {
		t.Fatalf("ListTests: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Midterm" {
		t.Fatalf("list = %+v", list)
	}

	if _, err := store.GetTest(ctx, "missing"); !exam.IsNotFound(err) {
		t.Fatalf("missing test err = %v, want not found", err)
	}
	if _, err := store.CreateTest(ctx, "", nil); !exam.IsValidation(err) {
		t.Fatalf("invalid create err = %v, want validation", err)
	}
}

func TestSQLStoreSubmissions(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	created := seedTest(t, store)
	q1 := created.Questions[0].ID

	sub, err := store.CreateSubmission(ctx, exam.Submission{
		UserID:        "u1",
		TestID:        created.ID,
		Answers:       map[string]string{q1: "4"},
		TimeTakenSec:  42,
		QuestionTimes: map[string]float64{q1: 10.5},
	})
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	if sub.Score != "N/A" {
		t.Fatalf("score = %q, want opaque N/A", sub.Score)
	}

	// Unknown test and unknown question are rejected with distinct kinds.
	if _, err := store.CreateSubmission(ctx, exam.Submission{UserID: "u1", TestID: "missing"}); !exam.IsNotFound(err) {
		t.Fatalf("missing test err = %v", err)
	}
	if _, err := store.CreateSubmission(ctx, exam.Submission{
		UserID:  "u1",
		TestID:  created.ID,
		Answers: map[string]string{"bogus": "x"},
	}); !exam.IsValidation(err) {
		t.Fatalf("bogus question err = %v", err)
	}

	list, err := store.ListSubmissionsByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSubmissionsByUser: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("submission count = %d, want 1", len(list))
	}
	got := list[0]
	if got.Answers[q1] != "4" || got.TimeTakenSec != 42 {
		t.Fatalf("submission round trip: %+v", got)
	}
	if got.QuestionTimes[q1] != 10.5 {
		t.Fatalf("question times round trip: %+v", got.QuestionTimes)
	}
	if got.Test == nil || got.Test.Title != "Midterm" {
		t.Fatalf("submission not resolved with test: %+v", got.Test)
	}
	if got.Test.Questions[0].CorrectAnswer != "" {
		t.Fatalf("resolved test leaked answer key")
	}

	other, err := store.ListSubmissionsByUser(ctx, "someone-else")
	if err != nil {
		t.Fatalf("ListSubmissionsByUser other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("leaked submissions across users: %+v", other)
	}
}

func TestSQLStoreHistory(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	first, err := store.AddHistory(ctx, exam.HistoryEntry{UserID: "u1", Title: "Quiz A", Score: 7, DurationSec: 300, TakenAt: 100})
	if err != nil {
		t.Fatalf("AddHistory: %v", err)
	}
	if _, err := store.AddHistory(ctx, exam.HistoryEntry{UserID: "u1", Title: "Quiz B", Score: 9, DurationSec: 240, TakenAt: 200}); err != nil {
		t.Fatalf("AddHistory second: %v", err)
	}
	if _, err := store.AddHistory(ctx, exam.HistoryEntry{UserID: "", Title: "x"}); !exam.IsValidation(err) {
		t.Fatalf("missing user err = %v", err)
	}

	list, err := store.ListHistoryByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListHistoryByUser: %v", err)
	}
	if len(list) != 2 || list[0].Title != "Quiz B" {
		t.Fatalf("history order/count wrong: %+v", list)
	}
	if list[1].ID != first.ID {
		t.Fatalf("oldest entry mismatch")
	}
}

func TestSQLStoreBookmarks(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	created := seedTest(t, store)
	q1 := created.Questions[0].ID

	b, err := store.AddBookmark(ctx, exam.Bookmark{UserID: "u1", TestID: created.ID, QuestionID: q1})
	if err != nil {
		t.Fatalf("AddBookmark: %v", err)
	}

	// Idempotent per (user, question).
	again, err := store.AddBookmark(ctx, exam.Bookmark{UserID: "u1", TestID: created.ID, QuestionID: q1})
	if err != nil {
		t.Fatalf("AddBookmark again: %v", err)
	}
	if again.ID != b.ID {
		t.Fatalf("duplicate bookmark created")
	}

	if _, err := store.AddBookmark(ctx, exam.Bookmark{UserID: "u1", TestID: created.ID, QuestionID: "bogus"}); !exam.IsNotFound(err) {
		t.Fatalf("bogus question err = %v", err)
	}

	list, err := store.ListBookmarksByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListBookmarksByUser: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("bookmark count = %d", len(list))
	}
	if list[0].Question == nil || list[0].Question.Text != "2+2?" {
		t.Fatalf("bookmark not resolved with question: %+v", list[0].Question)
	}
	if list[0].Question.CorrectAnswer != "" {
		t.Fatalf("resolved bookmark question leaked answer")
	}

	if err := store.RemoveBookmark(ctx, "other", b.ID); !exam.IsNotFound(err) {
		t.Fatalf("removing someone else's bookmark err = %v", err)
	}
	if err := store.RemoveBookmark(ctx, "u1", b.ID); err != nil {
		t.Fatalf("RemoveBookmark: %v", err)
	}
	if err := store.RemoveBookmark(ctx, "u1", b.ID); !exam.IsNotFound(err) {
		t.Fatalf("double remove err = %v", err)
	}
}
