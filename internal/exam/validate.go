package exam

import "strings"

// ValidateQuestion enforces the question invariants: an MCQ needs at least
// two non-empty options and a correct answer that is one of them; a
// subjective question must not carry options or a correct answer.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return Validationf("question text is required")
	}
	switch q.Type {
	case QuestionMCQ:
		nonEmpty := 0
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) != "" {
				nonEmpty++
			}
		}
		if nonEmpty < 2 {
			return Validationf("mcq needs at least two options")
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return Validationf("mcq needs a correct answer")
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return Validationf("correct answer must be one of the options")
		}
	case QuestionSubjective:
		if len(q.Options) > 0 || q.CorrectAnswer != "" {
			return Validationf("subjective question cannot have options or a correct answer")
		}
	default:
		return Validationf("unknown question type %q", q.Type)
	}
	return nil
}

// ValidateTest checks title and questions before a test is persisted.
func ValidateTest(title string, questions []Question) error {
	if strings.TrimSpace(title) == "" {
		return Validationf("test title is required")
	}
	if len(questions) == 0 {
		return Validationf("at least one question is required")
	}
	for i, q := range questions {
		if err := ValidateQuestion(q); err != nil {
			return Validationf("question %d: %v", i+1, err)
		}
	}
	return nil
}

// Sanitize strips grading material from a test served to students.
func Sanitize(t Test) Test {
	out := t
	out.Questions = make([]Question, len(t.Questions))
	copy(out.Questions, t.Questions)
	for i := range out.Questions {
		out.Questions[i].CorrectAnswer = ""
		out.Questions[i].ModelAnswer = ""
	}
	return out
}
