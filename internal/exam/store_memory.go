package exam

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu          sync.RWMutex
	tests       map[string]Test
	submissions map[string]Submission
	history     map[string]HistoryEntry
	bookmarks   map[string]Bookmark
}

// NewInMemoryStore backs the API for tests and single-node dev runs.
func NewInMemoryStore() Store {
	return &memoryStore{
		tests:       map[string]Test{},
		submissions: map[string]Submission{},
		history:     map[string]HistoryEntry{},
		bookmarks:   map[string]Bookmark{},
	}
}

func (m *memoryStore) CreateTest(_ context.Context, title string, questions []Question) (Test, error) {
	if err := ValidateTest(title, questions); err != nil {
		return Test{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
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
	m.tests[t.ID] = t
	return t, nil
}

func (m *memoryStore) GetTest(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, NotFoundf("test not found")
	}
	return Sanitize(t), nil
}

func (m *memoryStore) GetTestAdmin(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, NotFoundf("test not found")
	}
	return t, nil
}

func (m *memoryStore) ListTests(_ context.Context) ([]Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Test, 0, len(m.tests))
	for _, t := range m.tests {
		out = append(out, Sanitize(t))
	}
	return out, nil
}

func (m *memoryStore) CreateSubmission(_ context.Context, sub Submission) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[sub.TestID]
	if !ok {
		return Submission{}, NotFoundf("test not found")
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
	m.submissions[sub.ID] = sub
	return sub, nil
}

func (m *memoryStore) ListSubmissionsByUser(_ context.Context, userID string) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Submission{}
	for _, s := range m.submissions {
		if s.UserID != userID {
			continue
		}
		if t, ok := m.tests[s.TestID]; ok {
			st := Sanitize(t)
			s.Test = &st
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt > out[j].SubmittedAt })
	return out, nil
}

func (m *memoryStore) AddHistory(_ context.Context, h HistoryEntry) (HistoryEntry, error) {
	if h.UserID == "" || h.Title == "" {
		return HistoryEntry{}, Validationf("user and title are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = uuid.NewString()
	if h.TakenAt == 0 {
		h.TakenAt = time.Now().Unix()
	}
	m.history[h.ID] = h
	return h, nil
}

func (m *memoryStore) ListHistoryByUser(_ context.Context, userID string) ([]HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []HistoryEntry{}
	for _, h := range m.history {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt > out[j].TakenAt })
	return out, nil
}

func (m *memoryStore) AddBookmark(_ context.Context, b Bookmark) (Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[b.TestID]
	if !ok {
		return Bookmark{}, NotFoundf("test not found")
	}
	if !hasQuestion(t, b.QuestionID) {
		return Bookmark{}, NotFoundf("question not found")
	}
	for _, existing := range m.bookmarks {
		if existing.UserID == b.UserID && existing.QuestionID == b.QuestionID {
			return existing, nil
		}
	}
	b.ID = uuid.NewString()
	b.AddedAt = time.Now().Unix()
	b.Question = nil
	m.bookmarks[b.ID] = b
	return b, nil
}

func (m *memoryStore) RemoveBookmark(_ context.Context, userID, bookmarkID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookmarks[bookmarkID]
	if !ok || b.UserID != userID {
		return NotFoundf("bookmark not found")
	}
	delete(m.bookmarks, bookmarkID)
	return nil
}

func (m *memoryStore) ListBookmarksByUser(_ context.Context, userID string) ([]Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Bookmark{}
	for _, b := range m.bookmarks {
		if b.UserID != userID {
			continue
		}
		if t, ok := m.tests[b.TestID]; ok {
			if q, found := questionByID(t, b.QuestionID); found {
				q.CorrectAnswer = ""
				q.ModelAnswer = ""
				b.Question = &q
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt > out[j].AddedAt })
	return out, nil
}

func hasQuestion(t Test, qid string) bool {
	_, ok := questionByID(t, qid)
	return ok
}

func questionByID(t Test, qid string) (Question, bool) {
	for _, q := range t.Questions {
		if q.ID == qid {
			return q, true
		}
	}
	return Question{}, false
}
