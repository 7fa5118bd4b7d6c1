package session

import "github.com/prepdesk/prepdesk/internal/exam"

// Read-only views consumed by a UI. None of these mutate state.

type StatusColor string

const (
	StatusFlagged   StatusColor = "flagged"
	StatusAnswered  StatusColor = "answered"
	StatusUntouched StatusColor = "untouched"
)

func (m *Machine) RemainingSeconds() int { return m.remainingSec }
func (m *Machine) CurrentPage() int      { return m.currentPage }

func (m *Machine) PageCount() int {
	n := len(m.test.Questions)
	if n == 0 {
		return 1
	}
	return (n + m.pageSize - 1) / m.pageSize
}

// PageQuestions returns the slice of questions on the current page.
func (m *Machine) PageQuestions() []exam.Question {
	start := (m.currentPage - 1) * m.pageSize
	if start >= len(m.test.Questions) {
		return nil
	}
	end := start + m.pageSize
	if end > len(m.test.Questions) {
		end = len(m.test.Questions)
	}
	return m.test.Questions[start:end]
}

func (m *Machine) AttemptedCount() int { return len(m.answers) }

func (m *Machine) UnattemptedCount() int {
	return len(m.test.Questions) - len(m.answers)
}

func (m *Machine) FlaggedCount() int { return len(m.flagged) }

// StatusColor reports the navigator color for a question. Flagged wins over
// answered; anything else is untouched.
func (m *Machine) StatusColor(questionID string) StatusColor {
	if _, ok := m.flagged[questionID]; ok {
		return StatusFlagged
	}
	if _, ok := m.answers[questionID]; ok {
		return StatusAnswered
	}
	return StatusUntouched
}

// AnswerFor returns the recorded answer and whether one exists.
func (m *Machine) AnswerFor(questionID string) (string, bool) {
	v, ok := m.answers[questionID]
	return v, ok
}

// QuestionTime returns the accrued focus time for a question in seconds.
func (m *Machine) QuestionTime(questionID string) float64 {
	return m.times[questionID]
}

// Payload returns the built submission payload, present from the first
// Submit/TimeUp onward.
func (m *Machine) Payload() (Payload, bool) {
	if m.payload == nil {
		return Payload{}, false
	}
	return *m.payload, true
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyFloatMap(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
