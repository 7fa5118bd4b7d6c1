package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prepdesk/prepdesk/internal/exam"
)

// fakeClock advances only when told to, making every transition
// deterministic.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeSubmitter struct {
	calls    int
	lastBody Payload
	err      error
}

func (f *fakeSubmitter) CreateSubmission(_ context.Context, p Payload) error {
	f.calls++
	f.lastBody = p
	return f.err
}

func twoQuestionTest() exam.Test {
	return exam.Test{
		ID:    "t1",
		Title: "Midterm",
		Questions: []exam.Question{
			{ID: "q1", Text: "2+2?", Type: exam.QuestionMCQ, Options: []string{"3", "4"}},
			{ID: "q2", Text: "Explain.", Type: exam.QuestionSubjective},
		},
	}
}

func startedMachine(t *testing.T, clock *fakeClock, sub Submitter, durationSec int) *Machine {
	t.Helper()
	m := New(sub, WithClock(clock.now))
	if m.State() != Loading {
		t.Fatalf("new machine state = %v, want Loading", m.State())
	}
	if err := m.Start(twoQuestionTest(), durationSec); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return m
}

func TestAnswerClearsFlagAndIsIdempotent(t *testing.T) {
	m := startedMachine(t, newFakeClock(), &fakeSubmitter{}, 300)

	if err := m.ToggleFlag("q1"); err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}
	if got := m.StatusColor("q1"); got != StatusFlagged {
		t.Fatalf("status = %v, want flagged", got)
	}

	// Answering implicitly un-flags.
	if err := m.Answer("q1", "4"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got := m.StatusColor("q1"); got != StatusAnswered {
		t.Fatalf("status after answer = %v, want answered", got)
	}
	if m.FlaggedCount() != 0 {
		t.Fatalf("flagged count = %d, want 0", m.FlaggedCount())
	}

	// Re-answering the same value changes nothing.
	before := m.AttemptedCount()
	if err := m.Answer("q1", "4"); err != nil {
		t.Fatalf("Answer again: %v", err)
	}
	if m.AttemptedCount() != before || m.FlaggedCount() != 0 {
		t.Fatalf("idempotent answer changed counts")
	}
}

func TestFlagWinsOverAnswered(t *testing.T) {
	m := startedMachine(t, newFakeClock(), &fakeSubmitter{}, 300)

	if err := m.Answer("q1", "4"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := m.ToggleFlag("q1"); err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}
	// Flag wins in the navigator, but the answer itself is untouched.
	if got := m.StatusColor("q1"); got != StatusFlagged {
		t.Fatalf("status = %v, want flagged", got)
	}
	if v, ok := m.AnswerFor("q1"); !ok || v != "4" {
		t.Fatalf("answer = %q/%v, want 4/true", v, ok)
	}
}

func TestEmptyStringAnswerStillCountsAsAnswered(t *testing.T) {
	m := startedMachine(t, newFakeClock(), &fakeSubmitter{}, 300)

	if err := m.Answer("q1", ""); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got := m.StatusColor("q1"); got != StatusAnswered {
		t.Fatalf("status = %v, want answered (presence counts)", got)
	}
	if err := m.ClearAnswer("q1"); err != nil {
		t.Fatalf("ClearAnswer: %v", err)
	}
	if got := m.StatusColor("q1"); got != StatusUntouched {
		t.Fatalf("status after clear = %v, want untouched", got)
	}
}

func TestRemainingMonotonicAndFloored(t *testing.T) {
	m := startedMachine(t, newFakeClock(), &fakeSubmitter{}, 3)

	prev := m.RemainingSeconds()
	for i := 0; i < 10; i++ {
		m.Tick()
		cur := m.RemainingSeconds()
		if cur > prev {
			t.Fatalf("remaining increased: %d -> %d", prev, cur)
		}
		if cur < 0 {
			t.Fatalf("remaining went negative: %d", cur)
		}
		prev = cur
	}
	if prev != 0 {
		t.Fatalf("remaining = %d after many ticks, want 0", prev)
	}
}

func TestTickReportsExpiry(t *testing.T) {
	m := startedMachine(t, newFakeClock(), &fakeSubmitter{}, 2)

	if m.Tick() {
		t.Fatalf("expired after 1 of 2 ticks")
	}
	if !m.Tick() {
		t.Fatalf("not expired after 2 of 2 ticks")
	}
}

func TestFocusTimeAccrual(t *testing.T) {
	clock := newFakeClock()
	sub := &fakeSubmitter{}
	m := startedMachine(t, clock, sub, 300)

	if err := m.FocusQuestion("q1"); err != nil {
		t.Fatalf("FocusQuestion: %v", err)
	}
	clock.advance(10 * time.Second)
	if err := m.Answer("q1", "4"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := m.FocusQuestion("q2"); err != nil {
		t.Fatalf("FocusQuestion q2: %v", err)
	}
	if got := m.QuestionTime("q1"); got != 10 {
		t.Fatalf("q1 time = %v, want 10", got)
	}

	// Focusing the already-focused question is a no-op.
	clock.advance(5 * time.Second)
	if err := m.FocusQuestion("q2"); err != nil {
		t.Fatalf("re-focus: %v", err)
	}
	if got := m.QuestionTime("q2"); got != 0 {
		t.Fatalf("q2 time accrued on re-focus before flush: %v", got)
	}
}

func TestFocusTimeBoundedByWallClock(t *testing.T) {
	clock := newFakeClock()
	start := clock.now()
	m := startedMachine(t, clock, &fakeSubmitter{}, 300)

	for i := 0; i < 20; i++ {
		qid := "q1"
		if i%2 == 1 {
			qid = "q2"
		}
		if err := m.FocusQuestion(qid); err != nil {
			t.Fatalf("FocusQuestion: %v", err)
		}
		clock.advance(time.Duration(i%3) * time.Second)
		m.Tick()
	}
	total := m.QuestionTime("q1") + m.QuestionTime("q2")
	wall := clock.now().Sub(start).Seconds()
	if total > wall {
		t.Fatalf("accrued %v seconds > wall clock %v", total, wall)
	}
}

func TestSubmitScenario(t *testing.T) {
	clock := newFakeClock()
	sub := &fakeSubmitter{}
	m := startedMachine(t, clock, sub, 300)

	if err := m.FocusQuestion("q1"); err != nil {
		t.Fatalf("FocusQuestion: %v", err)
	}
	clock.advance(10 * time.Second)
	if err := m.Answer("q1", "A"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := m.FocusQuestion("q2"); err != nil {
		t.Fatalf("FocusQuestion q2: %v", err)
	}
	if err := m.ToggleFlag("q2"); err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}
	if err := m.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if m.State() != Completed {
		t.Fatalf("state = %v, want Completed", m.State())
	}
	p := sub.lastBody
	if p.TestID != "t1" {
		t.Fatalf("payload test = %q", p.TestID)
	}
	if len(p.Answers) != 1 || p.Answers["q1"] != "A" {
		t.Fatalf("payload answers = %v", p.Answers)
	}
	// No tick was fed, so no countdown time was consumed.
	if p.TimeTakenSec != 0 {
		t.Fatalf("time taken = %d, want 0", p.TimeTakenSec)
	}
	if got := p.QuestionTimes["q1"]; got != 10 {
		t.Fatalf("q1 elapsed = %v, want 10", got)
	}
}

func TestTimeUpMatchesSubmitShape(t *testing.T) {
	sub := &fakeSubmitter{}
	m := startedMachine(t, newFakeClock(), sub, 3)

	for !m.Tick() {
	}
	if err := m.TimeUp(context.Background()); err != nil {
		t.Fatalf("TimeUp: %v", err)
	}
	if m.State() != Completed {
		t.Fatalf("state = %v, want Completed", m.State())
	}
	if sub.lastBody.TimeTakenSec != 3 {
		t.Fatalf("time taken = %d, want full duration 3", sub.lastBody.TimeTakenSec)
	}
}

func TestFailedSubmitRetainsPayloadForRetry(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("store unreachable")}
	m := startedMachine(t, newFakeClock(), sub, 300)

	if err := m.Answer("q1", "4"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := m.Submit(context.Background()); err == nil {
		t.Fatalf("Submit succeeded, want failure")
	}
	if m.State() != Failed {
		t.Fatalf("state = %v, want Failed", m.State())
	}

	// Post-failure the session is no longer Active: everything is a no-op.
	if err := m.Answer("q2", "x"); !errors.Is(err, ErrNotActive) {
		t.Fatalf("Answer after failure err = %v, want ErrNotActive", err)
	}
	if m.Tick() {
		t.Fatalf("tick after failure reported expiry")
	}

	// Manual retry reuses the retained payload, no re-prompting.
	sub.err = nil
	if err := m.Retry(context.Background()); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if m.State() != Completed {
		t.Fatalf("state = %v, want Completed", m.State())
	}
	if sub.calls != 2 {
		t.Fatalf("submitter calls = %d, want 2", sub.calls)
	}
	if sub.lastBody.Answers["q1"] != "4" {
		t.Fatalf("retried payload lost answers: %v", sub.lastBody.Answers)
	}
}

func TestSubmitAndTimeUpMutuallyExclusive(t *testing.T) {
	sub := &fakeSubmitter{}
	m := startedMachine(t, newFakeClock(), sub, 300)

	if err := m.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := m.TimeUp(context.Background()); !errors.Is(err, ErrNotActive) {
		t.Fatalf("TimeUp after Submit err = %v, want ErrNotActive", err)
	}
	if sub.calls != 1 {
		t.Fatalf("submitter called %d times, want 1", sub.calls)
	}
}

func TestNavigateBounds(t *testing.T) {
	m := New(&fakeSubmitter{}, WithClock(newFakeClock().now), WithPageSize(1))
	if err := m.Start(twoQuestionTest(), 300); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if m.PageCount() != 2 {
		t.Fatalf("page count = %d, want 2", m.PageCount())
	}
	if err := m.Navigate(0); !errors.Is(err, ErrPageBounds) {
		t.Fatalf("Navigate(0) err = %v", err)
	}
	if err := m.Navigate(3); !errors.Is(err, ErrPageBounds) {
		t.Fatalf("Navigate(3) err = %v", err)
	}
	if err := m.Navigate(2); err != nil {
		t.Fatalf("Navigate(2): %v", err)
	}
	if m.CurrentPage() != 2 {
		t.Fatalf("current page = %d", m.CurrentPage())
	}
	qs := m.PageQuestions()
	if len(qs) != 1 || qs[0].ID != "q2" {
		t.Fatalf("page questions = %+v", qs)
	}
	// Navigation does not alter answers or flags.
	if m.AttemptedCount() != 0 || m.FlaggedCount() != 0 {
		t.Fatalf("navigation mutated answers/flags")
	}
}

func TestUnknownQuestionRejected(t *testing.T) {
	m := startedMachine(t, newFakeClock(), &fakeSubmitter{}, 300)
	if err := m.Answer("nope", "x"); !errors.Is(err, ErrNoSuchQuestion) {
		t.Fatalf("Answer unknown err = %v", err)
	}
	if err := m.FocusQuestion("nope"); !errors.Is(err, ErrNoSuchQuestion) {
		t.Fatalf("Focus unknown err = %v", err)
	}
}
