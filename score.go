package quizbank

import (
	"errors"
	"fmt"
)

// ErrNoCorrectOption is returned when a question has no option recorded as correct
var ErrNoCorrectOption = errors.New("no correct option recorded")

// AnswerStatus is the grading outcome for a single question
type AnswerStatus string

const (
	StatusCorrect           AnswerStatus = "correct"
	StatusIncorrect         AnswerStatus = "incorrect"
	StatusUnanswered        AnswerStatus = "unanswered"
	StatusNoCorrectRecorded AnswerStatus = "no_correct_recorded"
)

// QuestionResult is the graded view of one question
type QuestionResult struct {
	Number         int          `json:"number"` // 1-based position in the section
	Prompt         string       `json:"prompt"`
	Chosen         string       `json:"chosen,omitempty"`
	CorrectAnswers []string     `json:"correct_answers,omitempty"`
	Status         AnswerStatus `json:"status"`
}

// Result is the outcome of grading a section
type Result struct {
	Section   string           `json:"section"`
	Score     int              `json:"score"`
	Total     int              `json:"total"`    // questions with a recorded correct option
	Ungraded  int              `json:"ungraded"` // questions with no recorded correct option
	Questions []QuestionResult `json:"questions"`
}

// Percentage returns the score as a percentage of gradable questions
func (r Result) Percentage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total) * 100
}

// CheckAnswer reports whether chosen matches one of the question's correct options.
// It returns ErrNoCorrectOption when the question cannot be graded.
func CheckAnswer(q Question, chosen string) (bool, error) {
	correct := q.CorrectOptions()
	if len(correct) == 0 {
		return false, fmt.Errorf("%w: %s", ErrNoCorrectOption, q.Prompt)
	}
	for _, option := range correct {
		if option.Text == chosen {
			return true, nil
		}
	}
	return false, nil
}

// Grade scores a section. answers maps a 0-based question index to the chosen option text.
func Grade(section Section, answers map[int]string) Result {
	result := Result{
		Section:   section.Name,
		Questions: make([]QuestionResult, 0, len(section.Questions)),
	}

	for i, q := range section.Questions {
		qr := QuestionResult{
			Number: i + 1,
			Prompt: q.Prompt,
			Chosen: answers[i],
		}
		for _, option := range q.CorrectOptions() {
			qr.CorrectAnswers = append(qr.CorrectAnswers, option.Text)
		}

		ok, err := CheckAnswer(q, qr.Chosen)
		switch {
		case errors.Is(err, ErrNoCorrectOption):
			qr.Status = StatusNoCorrectRecorded
			result.Ungraded++
		case qr.Chosen == "":
			qr.Status = StatusUnanswered
			result.Total++
		case ok:
			qr.Status = StatusCorrect
			result.Score++
			result.Total++
		default:
			qr.Status = StatusIncorrect
			result.Total++
		}
		result.Questions = append(result.Questions, qr)
	}
	return result
}
