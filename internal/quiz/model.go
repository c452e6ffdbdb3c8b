package quiz

import (
	"errors"
	"strings"
)

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
)

type QuestionType string

const (
	TypeSingleChoice QuestionType = "MCQ"
	TypeTrueFalse    QuestionType = "TRUE_FALSE"
	TypeMultiSelect  QuestionType = "MULTI_SELECT"
)

// MultiSelect reports whether answers to this type are encoded as a JSON array.
func (t QuestionType) MultiSelect() bool {
	return t == TypeMultiSelect
}

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Option struct {
	Text string `json:"text"`
}

type Question struct {
	ID      ID           `json:"question_id"`
	Text    string       `json:"question_text"`
	Type    QuestionType `json:"question_type"`
	Options []Option     `json:"options"`
}

// HasOption matches by text; options carry no identifier of their own.
func (q Question) HasOption(text string) bool {
	for _, option := range q.Options {
		if option.Text == text {
			return true
		}
	}
	return false
}

// Quiz is a catalog entry. Score and Position are only set for completed quizzes.
type Quiz struct {
	ID              ID        `json:"quiz_id"`
	Title           string    `json:"title"`
	StartTime       Timestamp `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalMarks      float64   `json:"total_marks"`
	Score           *float64  `json:"score,omitempty"`
	Position        *int      `json:"position,omitempty"`
	Status          Status    `json:"-"`
}

type Catalog struct {
	Active    []Quiz `json:"active"`
	Upcoming  []Quiz `json:"upcoming"`
	Completed []Quiz `json:"completed"`
}

// Find looks the quiz up in every section and reports the section it was found in.
func (c Catalog) Find(id ID) (Quiz, bool) {
	sections := []struct {
		status  Status
		quizzes []Quiz
	}{
		{StatusActive, c.Active},
		{StatusUpcoming, c.Upcoming},
		{StatusCompleted, c.Completed},
	}
	for _, section := range sections {
		for _, item := range section.quizzes {
			if item.ID.Same(id) {
				item.Status = section.status
				return item, true
			}
		}
	}
	return Quiz{}, false
}

type QuestionSet struct {
	QuizID          ID         `json:"-"`
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_minutes"`
	TotalMarks      float64    `json:"total_marks"`
	Questions       []Question `json:"questions"`
}

func (s QuestionSet) Question(id ID) (Question, bool) {
	for _, question := range s.Questions {
		if question.ID.Same(id) {
			return question, true
		}
	}
	return Question{}, false
}

// DurationSeconds is the countdown budget of an attempt.
func (s QuestionSet) DurationSeconds() int {
	if s.DurationMinutes <= 0 {
		return 0
	}
	return s.DurationMinutes * 60
}

// Submission is the body of POST /submit_quiz. Answer values are option texts, or a
// JSON array of option texts for multi-select questions.
type Submission struct {
	QuizID    ID            `json:"quiz_id"`
	StudentID ID            `json:"student_id"`
	Answers   map[ID]string `json:"answers"`
}

type SubmitResult struct {
	Score float64 `json:"score"`
}

type ReviewItem struct {
	Question      string      `json:"question"`
	YourAnswer    AnswerValue `json:"your_answer"`
	CorrectAnswer AnswerValue `json:"correct_answer"`
	IsCorrect     bool        `json:"is_correct"`
	Feedback      string      `json:"feedback,omitempty"`
}

type Summary struct {
	QuizTitle        string       `json:"quiz_title"`
	YourScore        float64      `json:"your_score"`
	TotalMarks       float64      `json:"total_marks"`
	StudentsAttended int          `json:"students_attended"`
	AverageMarks     float64      `json:"average_marks"`
	MedianMarks      float64      `json:"median_marks"`
	Answers          []ReviewItem `json:"answers"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Identity is the student record returned by POST /login.
type Identity struct {
	StudentID ID     `json:"student_id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Token     string `json:"token,omitempty"`
}

func (i Identity) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	if email := strings.TrimSpace(i.Email); email != "" {
		return email
	}
	return "student " + i.StudentID.String()
}
