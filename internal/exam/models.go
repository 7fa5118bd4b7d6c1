package exam

const (
	QuestionMCQ        = "mcq"
	QuestionSubjective = "subjective"
)

type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Type          string   `json:"type"` // mcq | subjective
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	ModelAnswer   string   `json:"model_answer,omitempty"`
	Image         string   `json:"image,omitempty"` // asset key, optional
}

type Test struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	CreatedAt int64      `json:"created_at,omitempty"`
}

// Submission is one finished attempt. Score stays an opaque string; there is
// no auto-grading in this platform.
type Submission struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	TestID        string             `json:"test_id"`
	Answers       map[string]string  `json:"answers"`
	Score         string             `json:"score"`
	TimeTakenSec  int                `json:"time_taken_sec"`
	QuestionTimes map[string]float64 `json:"question_times,omitempty"` // questionID -> seconds
	SubmittedAt   int64              `json:"submitted_at"`

	Test *Test `json:"test,omitempty"` // resolved on list-by-user
}

type HistoryEntry struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
	DurationSec int     `json:"duration_sec"`
	TakenAt     int64   `json:"taken_at"`
}

type Bookmark struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	TestID     string `json:"test_id"`
	QuestionID string `json:"question_id"`
	AddedAt    int64  `json:"added_at"`

	Question *Question `json:"question,omitempty"` // resolved on list
}

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"` // student | admin
	CreatedAt    int64  `json:"created_at,omitempty"`
}
