// Package session holds the state of one in-progress test attempt: the
// countdown, per-question answers and review flags, focus-time tracking and
// pagination. The host owns the event loop and feeds ticks and user actions
// into the machine; with an injected clock every transition is deterministic.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/prepdesk/prepdesk/internal/exam"
)

type State int

const (
	Loading State = iota
	Active
	Submitting
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Active:
		return "active"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

var (
	ErrNotActive      = errors.New("session is not active")
	ErrNotFailed      = errors.New("no failed submission to retry")
	ErrNotLoading     = errors.New("session already started")
	ErrPageBounds     = errors.New("page out of range")
	ErrNoSuchQuestion = errors.New("question not in this test")
)

// Payload is the submission body built on Submit/TimeUp. It is retained
// across a failed submit so a manual retry does not redo the test.
type Payload struct {
	TestID        string
	Answers       map[string]string
	TimeTakenSec  int
	QuestionTimes map[string]float64
}

// Submitter hands a finished attempt to the submission store.
type Submitter interface {
	CreateSubmission(ctx context.Context, p Payload) error
}

const DefaultPageSize = 10

type Machine struct {
	state    State
	test     exam.Test
	qindex   map[string]struct{}
	pageSize int

	totalSec     int
	remainingSec int
	currentPage  int

	answers map[string]string
	flagged map[string]struct{}
	times   map[string]float64

	focused    string
	focusStart time.Time

	payload *Payload

	now       func() time.Time
	submitter Submitter
}

type Option func(*Machine)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

func WithPageSize(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

// New returns a machine in Loading. Start moves it to Active once the test
// has been fetched.
func New(submitter Submitter, opts ...Option) *Machine {
	m := &Machine{
		state:     Loading,
		pageSize:  DefaultPageSize,
		answers:   map[string]string{},
		flagged:   map[string]struct{}{},
		times:     map[string]float64{},
		now:       time.Now,
		submitter: submitter,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Start(t exam.Test, durationSec int) error {
	if m.state != Loading {
		return ErrNotLoading
	}
	if len(t.Questions) == 0 {
		return exam.Validationf("test has no questions")
	}
	if durationSec <= 0 {
		return exam.Validationf("duration must be positive")
	}
	m.test = t
	m.qindex = make(map[string]struct{}, len(t.Questions))
	for _, q := range t.Questions {
		m.qindex[q.ID] = struct{}{}
	}
	m.totalSec = durationSec
	m.remainingSec = durationSec
	m.currentPage = 1
	m.state = Active
	return nil
}

func (m *Machine) State() State { return m.state }

// Answer records a value for a question and clears its review flag:
// answering implicitly un-flags. Presence in the map is what counts as
// "answered"; use ClearAnswer to take a question back to unanswered.
func (m *Machine) Answer(questionID, value string) error {
	if m.state != Active {
		return ErrNotActive
	}
	if _, ok := m.qindex[questionID]; !ok {
		return ErrNoSuchQuestion
	}
	m.answers[questionID] = value
	delete(m.flagged, questionID)
	return nil
}

func (m *Machine) ClearAnswer(questionID string) error {
	if m.state != Active {
		return ErrNotActive
	}
	delete(m.answers, questionID)
	return nil
}

// ToggleFlag flips the review marker, independent of answered state.
func (m *Machine) ToggleFlag(questionID string) error {
	if m.state != Active {
		return ErrNotActive
	}
	if _, ok := m.qindex[questionID]; !ok {
		return ErrNoSuchQuestion
	}
	if _, ok := m.flagged[questionID]; ok {
		delete(m.flagged, questionID)
	} else {
		m.flagged[questionID] = struct{}{}
	}
	return nil
}

func (m *Machine) Navigate(page int) error {
	if m.state != Active {
		return ErrNotActive
	}
	if page < 1 || page > m.PageCount() {
		return ErrPageBounds
	}
	m.currentPage = page
	return nil
}

// Tick is fed once per second while Active. It decrements the countdown,
// floored at zero, and accrues wall-clock time against the focused question.
// Returns true when the countdown has reached zero and the host should fire
// TimeUp. Ticks outside Active are ignored.
func (m *Machine) Tick() bool {
	if m.state != Active {
		return false
	}
	if m.remainingSec > 0 {
		m.remainingSec--
	}
	m.flushFocusTime()
	return m.remainingSec == 0
}

// FocusQuestion flushes time accrued on the previously focused question and
// starts the clock on the new one. Focusing the already-focused question is
// a no-op.
func (m *Machine) FocusQuestion(questionID string) error {
	if m.state != Active {
		return ErrNotActive
	}
	if _, ok := m.qindex[questionID]; !ok {
		return ErrNoSuchQuestion
	}
	if questionID == m.focused {
		return nil
	}
	m.flushFocusTime()
	m.focused = questionID
	m.focusStart = m.now()
	return nil
}

func (m *Machine) flushFocusTime() {
	if m.focused == "" {
		return
	}
	now := m.now()
	if delta := now.Sub(m.focusStart).Seconds(); delta > 0 {
		m.times[m.focused] += delta
	}
	m.focusStart = now
}

// Submit builds the submission payload and hands it to the store. On failure
// the machine lands in Failed with the payload retained; Retry reuses it.
func (m *Machine) Submit(ctx context.Context) error {
	return m.finish(ctx)
}

// TimeUp is the system-initiated submit fired when the countdown hits zero.
// Identical to Submit apart from the initiator.
func (m *Machine) TimeUp(ctx context.Context) error {
	return m.finish(ctx)
}

func (m *Machine) finish(ctx context.Context) error {
	if m.state != Active {
		return ErrNotActive
	}
	m.flushFocusTime()
	m.focused = ""
	p := Payload{
		TestID:        m.test.ID,
		Answers:       copyStringMap(m.answers),
		TimeTakenSec:  m.totalSec - m.remainingSec,
		QuestionTimes: copyFloatMap(m.times),
	}
	m.payload = &p
	m.state = Submitting
	return m.send(ctx)
}

// Retry re-sends the retained payload after a failed submit. Answers are not
// re-collected; the payload built at Submit time is reused as-is.
func (m *Machine) Retry(ctx context.Context) error {
	if m.state != Failed || m.payload == nil {
		return ErrNotFailed
	}
	m.state = Submitting
	return m.send(ctx)
}

func (m *Machine) send(ctx context.Context) error {
	if err := m.submitter.CreateSubmission(ctx, *m.payload); err != nil {
		m.state = Failed
		return err
	}
	m.state = Completed
	return nil
}
