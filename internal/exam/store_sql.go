package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SQLStore persists the catalog in SQL, keeping the document shape of the
// data: questions and answers live in JSON columns. The queries use $N
// placeholders, which both supported drivers accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateTest(ctx context.Context, title string, questions []Question) (Test, error) {
	if err := ValidateTest(title, questions); err != nil {
		return Test{}, err
	}
	t := Test{
		ID:        uuid.NewString(),
		Title:     title,
		Questions: make([]Question, len(questions)),
		CreatedAt: time.Now().Unix(),
	}
	copy(t.Questions, questions)
	for i := range t.Questions {
		if t.Questions[i].ID == "" {
			t.Questions[i].ID = uuid.NewString()
		}
	}
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return Test{}, Storef(err, "encode questions")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tests (id,title,questions_json,created_at) VALUES ($1,$2,$3,$4)`,
		t.ID, t.Title, string(qj), t.CreatedAt)
	if err != nil {
		return Test{}, Storef(err, "insert test")
	}
	return t, nil
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	t, err := s.GetTestAdmin(ctx, id)
	if err != nil {
		return Test{}, err
	}
	return Sanitize(t), nil
}

func (s *SQLStore) GetTestAdmin(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,questions_json,created_at FROM tests WHERE id=$1`, id)
	return scanTest(row)
}

func (s *SQLStore) ListTests(ctx context.Context) ([]Test, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,questions_json,created_at FROM tests`)
	if err != nil {
		return nil, Storef(err, "list tests")
	}
	defer rows.Close()
	out := []Test{}
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, Sanitize(t))
	}
	if err := rows.Err(); err != nil {
		return nil, Storef(err, "list tests")
	}
	return out, nil
}

func (s *SQLStore) CreateSubmission(ctx context.Context, sub Submission) (Submission, error) {
	t, err := s.GetTestAdmin(ctx, sub.TestID)
	if err != nil {
		return Submission{}, err
	}
	if err := validateSubmission(sub, t); err != nil {
		return Submission{}, err
	}
	sub.ID = uuid.NewString()
	if sub.Score == "" {
		sub.Score = "N/A"
	}
	if sub.Answers == nil {
		sub.Answers = map[string]string{}
	}
	sub.SubmittedAt = time.Now().Unix()
	sub.Test = nil
	aj, err := json.Marshal(sub.Answers)
	if err != nil {
		return Submission{}, Storef(err, "encode answers")
	}
	qt := sub.QuestionTimes
	if qt == nil {
		qt = map[string]float64{}
	}
	qj, err := json.Marshal(qt)
	if err != nil {
		return Submission{}, Storef(err, "encode question times")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id,user_id,test_id,answers_json,score,time_taken_sec,question_times_json,submitted_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		sub.ID, sub.UserID, sub.TestID, string(aj), sub.Score, sub.TimeTakenSec, string(qj), sub.SubmittedAt)
	if err != nil {
		return Submission{}, Storef(err, "insert submission")
	}
	return sub, nil
}

func (s *SQLStore) ListSubmissionsByUser(ctx context.Context, userID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id,s.user_id,s.test_id,s.answers_json,s.score,s.time_taken_sec,s.question_times_json,s.submitted_at,
		        t.id,t.title,t.questions_json,t.created_at
		 FROM submissions s JOIN tests t ON t.id = s.test_id
		 WHERE s.user_id=$1 ORDER BY s.submitted_at DESC`, userID)
	if err != nil {
		return nil, Storef(err, "list submissions")
	}
	defer rows.Close()
	out := []Submission{}
	for rows.Next() {
		var sub Submission
		var t Test
		var aj, qj, tqj string
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.TestID, &aj, &sub.Score, &sub.TimeTakenSec, &qj, &sub.SubmittedAt,
			&t.ID, &t.Title, &tqj, &t.CreatedAt); err != nil {
			return nil, Storef(err, "scan submission")
		}
		if err := json.Unmarshal([]byte(aj), &sub.Answers); err != nil {
			sub.Answers = map[string]string{}
		}
		if err := json.Unmarshal([]byte(qj), &sub.QuestionTimes); err != nil {
			sub.QuestionTimes = map[string]float64{}
		}
		if err := json.Unmarshal([]byte(tqj), &t.Questions); err != nil {
			return nil, Storef(err, "decode test questions")
		}
		st := Sanitize(t)
		sub.Test = &st
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, Storef(err, "list submissions")
	}
	return out, nil
}

func (s *SQLStore) AddHistory(ctx context.Context, h HistoryEntry) (HistoryEntry, error) {
	if h.UserID == "" || h.Title == "" {
		return HistoryEntry{}, Validationf("user and title are required")
	}
	h.ID = uuid.NewString()
	if h.TakenAt == 0 {
		h.TakenAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO test_history (id,user_id,title,score,duration_sec,taken_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		h.ID, h.UserID, h.Title, h.Score, h.DurationSec, h.TakenAt)
	if err != nil {
		return HistoryEntry{}, Storef(err, "insert history")
	}
	return h, nil
}

func (s *SQLStore) ListHistoryByUser(ctx context.Context, userID string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,user_id,title,score,duration_sec,taken_at FROM test_history
		 WHERE user_id=$1 ORDER BY taken_at DESC`, userID)
	if err != nil {
		return nil, Storef(err, "list history")
	}
	defer rows.Close()
	out := []HistoryEntry{}
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.UserID, &h.Title, &h.Score, &h.DurationSec, &h.TakenAt); err != nil {
			return nil, Storef(err, "scan history")
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, Storef(err, "list history")
	}
	return out, nil
}

func (s *SQLStore) AddBookmark(ctx context.Context, b Bookmark) (Bookmark, error) {
	t, err := s.GetTestAdmin(ctx, b.TestID)
	if err != nil {
		return Bookmark{}, err
	}
	if !hasQuestion(t, b.QuestionID) {
		return Bookmark{}, NotFoundf("question not found")
	}
	var existing Bookmark
	err = s.db.QueryRowContext(ctx,
		`SELECT id,user_id,test_id,question_id,added_at FROM bookmarks WHERE user_id=$1 AND question_id=$2`,
		b.UserID, b.QuestionID).
		Scan(&existing.ID, &existing.UserID, &existing.TestID, &existing.QuestionID, &existing.AddedAt)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Bookmark{}, Storef(err, "lookup bookmark")
	}
	b.ID = uuid.NewString()
	b.AddedAt = time.Now().Unix()
	b.Question = nil
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id,user_id,test_id,question_id,added_at) VALUES ($1,$2,$3,$4,$5)`,
		b.ID, b.UserID, b.TestID, b.QuestionID, b.AddedAt)
	if err != nil {
		return Bookmark{}, Storef(err, "insert bookmark")
	}
	return b, nil
}

func (s *SQLStore) RemoveBookmark(ctx context.Context, userID, bookmarkID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id=$1 AND user_id=$2`, bookmarkID, userID)
	if err != nil {
		return Storef(err, "delete bookmark")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundf("bookmark not found")
	}
	return nil
}

func (s *SQLStore) ListBookmarksByUser(ctx context.Context, userID string) ([]Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id,b.user_id,b.test_id,b.question_id,b.added_at,t.questions_json
		 FROM bookmarks b JOIN tests t ON t.id = b.test_id
		 WHERE b.user_id=$1 ORDER BY b.added_at DESC`, userID)
	if err != nil {
		return nil, Storef(err, "list bookmarks")
	}
	defer rows.Close()
	out := []Bookmark{}
	for rows.Next() {
		var b Bookmark
		var qjson string
		if err := rows.Scan(&b.ID, &b.UserID, &b.TestID, &b.QuestionID, &b.AddedAt, &qjson); err != nil {
			return nil, Storef(err, "scan bookmark")
		}
		var questions []Question
		if err := json.Unmarshal([]byte(qjson), &questions); err == nil {
			for _, q := range questions {
				if q.ID == b.QuestionID {
					q.CorrectAnswer = ""
					q.ModelAnswer = ""
					b.Question = &q
					break
				}
			}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, Storef(err, "list bookmarks")
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTest(row rowScanner) (Test, error) {
	var t Test
	var qjson string
	if err := row.Scan(&t.ID, &t.Title, &qjson, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, NotFoundf("test not found")
		}
		return Test{}, Storef(err, "scan test")
	}
	if err := json.Unmarshal([]byte(qjson), &t.Questions); err != nil {
		return Test{}, Storef(err, "decode questions")
	}
	return t, nil
}
