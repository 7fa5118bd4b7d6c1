// Package authoring builds a Test out of a sequence of question edits before
// a single catalog create call. A draft cycles between Drafting and
// Editing(index) and reaches Submitted only through a successful Finalize.
package authoring

import (
	"context"
	"errors"
	"strings"

	"github.com/prepdesk/prepdesk/internal/exam"
)

type State int

const (
	Drafting State = iota
	Editing
	Submitted
)

var (
	ErrSubmitted = errors.New("draft already submitted")
	ErrBadIndex  = errors.New("question index out of range")
)

const notEditing = -1

// NewMCQ is the default shape loaded into the edit slot for a
// multiple-choice question: four empty options, no correct answer yet.
func NewMCQ() exam.Question {
	return exam.Question{Type: exam.QuestionMCQ, Options: []string{"", "", "", ""}}
}

func NewSubjective() exam.Question {
	return exam.Question{Type: exam.QuestionSubjective}
}

type Draft struct {
	questions []exam.Question
	current   exam.Question
	editIndex int
	state     State
}

func NewDraft() *Draft {
	return &Draft{current: NewMCQ(), editIndex: notEditing}
}

func (d *Draft) State() State { return d.state }

// Questions returns a copy of the draft list.
func (d *Draft) Questions() []exam.Question {
	out := make([]exam.Question, len(d.questions))
	copy(out, d.questions)
	return out
}

// Current returns the question being composed or edited.
func (d *Draft) Current() exam.Question { return d.current }

// SetCurrent replaces the edit slot, e.g. as the author types.
func (d *Draft) SetCurrent(q exam.Question) error {
	if d.state == Submitted {
		return ErrSubmitted
	}
	d.current = cloneQuestion(q)
	return nil
}

// SetType switches the edit slot between MCQ and subjective, resetting it to
// the type default.
func (d *Draft) SetType(qtype string) error {
	if d.state == Submitted {
		return ErrSubmitted
	}
	switch qtype {
	case exam.QuestionMCQ:
		d.current = NewMCQ()
	case exam.QuestionSubjective:
		d.current = NewSubjective()
	default:
		return exam.Validationf("unknown question type %q", qtype)
	}
	return nil
}

// AddOption appends an empty option field to the current MCQ.
func (d *Draft) AddOption() error {
	if d.state == Submitted {
		return ErrSubmitted
	}
	if d.current.Type != exam.QuestionMCQ {
		return exam.Validationf("options apply to mcq questions only")
	}
	d.current.Options = append(d.current.Options, "")
	return nil
}

// RemoveOption drops an option field, keeping the floor of two. Removing the
// option that was marked correct clears the correct answer.
func (d *Draft) RemoveOption(i int) error {
	if d.state == Submitted {
		return ErrSubmitted
	}
	if d.current.Type != exam.QuestionMCQ {
		return exam.Validationf("options apply to mcq questions only")
	}
	if i < 0 || i >= len(d.current.Options) {
		return ErrBadIndex
	}
	if len(d.current.Options) <= 2 {
		return exam.Validationf("mcq needs at least two options")
	}
	if d.current.Options[i] == d.current.CorrectAnswer {
		d.current.CorrectAnswer = ""
	}
	d.current.Options = append(d.current.Options[:i], d.current.Options[i+1:]...)
	return nil
}

// AddOrUpdate validates the edit slot and either appends it to the draft or
// replaces the entry being edited. On success the slot resets to the
// type-appropriate default and edit state clears. On failure the draft is
// untouched.
func (d *Draft) AddOrUpdate() error {
	if d.state == Submitted {
		return ErrSubmitted
	}
	q := cloneQuestion(d.current)
	q.Text = strings.TrimSpace(q.Text)
	if err := exam.ValidateQuestion(q); err != nil {
		return err
	}
	if d.state == Editing {
		d.questions[d.editIndex] = q
	} else {
		d.questions = append(d.questions, q)
	}
	d.resetSlot(q.Type)
	return nil
}

// Edit loads questions[i] into the slot for modification.
func (d *Draft) Edit(i int) error {
	if d.state == Submitted {
		return ErrSubmitted
	}
	if i < 0 || i >= len(d.questions) {
		return ErrBadIndex
	}
	d.current = cloneQuestion(d.questions[i])
	d.editIndex = i
	d.state = Editing
	return nil
}

// Delete removes an entry. Deleting the entry being edited clears the edit
// state; deleting an earlier entry shifts the edit index down with the list.
func (d *Draft) Delete(i int) error {
	if d.state == Submitted {
		return ErrSubmitted
	}
	if i < 0 || i >= len(d.questions) {
		return ErrBadIndex
	}
	d.questions = append(d.questions[:i], d.questions[i+1:]...)
	if d.state == Editing {
		switch {
		case i == d.editIndex:
			d.resetSlot(d.current.Type)
		case i < d.editIndex:
			d.editIndex--
		}
	}
	return nil
}

// Move reorders a question within the draft.
func (d *Draft) Move(from, to int) error {
	if d.state == Submitted {
		return ErrSubmitted
	}
	if from < 0 || from >= len(d.questions) || to < 0 || to >= len(d.questions) {
		return ErrBadIndex
	}
	if from == to {
		return nil
	}
	q := d.questions[from]
	d.questions = append(d.questions[:from], d.questions[from+1:]...)
	d.questions = append(d.questions[:to], append([]exam.Question{q}, d.questions[to:]...)...)
	if d.state == Editing {
		switch {
		case d.editIndex == from:
			d.editIndex = to
		case from < d.editIndex && to >= d.editIndex:
			d.editIndex--
		case from > d.editIndex && to <= d.editIndex:
			d.editIndex++
		}
	}
	return nil
}

// Finalize validates the whole draft and emits a single create call. Any
// failure, validation or store, leaves the draft intact for correction.
func (d *Draft) Finalize(ctx context.Context, store exam.Store, title string) (exam.Test, error) {
	if d.state == Submitted {
		return exam.Test{}, ErrSubmitted
	}
	title = strings.TrimSpace(title)
	if err := exam.ValidateTest(title, d.questions); err != nil {
		return exam.Test{}, err
	}
	t, err := store.CreateTest(ctx, title, d.questions)
	if err != nil {
		return exam.Test{}, err
	}
	d.state = Submitted
	return t, nil
}

// cloneQuestion copies a question so the edit slot never shares an options
// slice with a committed list entry.
func cloneQuestion(q exam.Question) exam.Question {
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}

func (d *Draft) resetSlot(qtype string) {
	if qtype == exam.QuestionSubjective {
		d.current = NewSubjective()
	} else {
		d.current = NewMCQ()
	}
	d.editIndex = notEditing
	d.state = Drafting
}
