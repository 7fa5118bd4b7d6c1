package session

import (
	"context"

	"github.com/prepdesk/prepdesk/internal/exam"
)

// StoreSubmitter adapts an exam.Store to the Submitter interface for a
// given user.
type StoreSubmitter struct {
	Store  exam.Store
	UserID string
}

func (s StoreSubmitter) CreateSubmission(ctx context.Context, p Payload) error {
	_, err := s.Store.CreateSubmission(ctx, exam.Submission{
		UserID:        s.UserID,
		TestID:        p.TestID,
		Answers:       p.Answers,
		TimeTakenSec:  p.TimeTakenSec,
		QuestionTimes: p.QuestionTimes,
	})
	return err
}
