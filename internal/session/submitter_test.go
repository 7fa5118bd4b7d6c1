package session_test

import (
	"context"
	"testing"

	"github.com/prepdesk/prepdesk/internal/exam"
	"github.com/prepdesk/prepdesk/internal/session"
)

// End to end: a session submitting through the real in-memory store.
func TestStoreSubmitter(t *testing.T) {
	ctx := context.Background()
	store := exam.NewInMemoryStore()
	created, err := store.CreateTest(ctx, "Quiz", []exam.Question{
		{Text: "2+2?", Type: exam.QuestionMCQ, Options: []string{"3", "4"}, CorrectAnswer: "4"},
		{Text: "Explain.", Type: exam.QuestionSubjective},
	})
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	m := session.New(session.StoreSubmitter{Store: store, UserID: "s1"})
	student, err := store.GetTest(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTest: %v", err)
	}
	if err := m.Start(student, 300); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Answer(student.Questions[0].ID, "4"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := m.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if m.State() != session.Completed {
		t.Fatalf("state = %v, want Completed", m.State())
	}

	subs, err := store.ListSubmissionsByUser(ctx, "s1")
	if err != nil {
		t.Fatalf("ListSubmissionsByUser: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("submission count = %d, want 1", len(subs))
	}
	if subs[0].TestID != created.ID || subs[0].Answers[student.Questions[0].ID] != "4" {
		t.Fatalf("persisted submission: %+v", subs[0])
	}
}
