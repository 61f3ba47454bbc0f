package quizbank

import "strings"

// Run is a span of paragraph text that shares one set of formatting
type Run struct {
	Text      string `json:"text"`
	Highlight string `json:"highlight,omitempty"` // highlight color name, empty when none
}

// Paragraph is a single line of the source document with its formatted runs
type Paragraph struct {
	Text string `json:"text"`
	Runs []Run  `json:"runs,omitempty"`
}

// PlainText returns the paragraph text, falling back to the concatenated runs
func (p Paragraph) PlainText() string {
	if p.Text != "" || len(p.Runs) == 0 {
		return p.Text
	}
	var sb strings.Builder
	for _, run := range p.Runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// Option is one candidate answer to a question
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question represents a single quiz question with its candidate options
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// CorrectOptions returns the options flagged correct, in document order
func (q Question) CorrectOptions() []Option {
	var correct []Option
	for _, option := range q.Options {
		if option.Correct {
			correct = append(correct, option)
		}
	}
	return correct
}

// HasCorrect reports whether at least one option was recorded as correct
func (q Question) HasCorrect() bool {
	for _, option := range q.Options {
		if option.Correct {
			return true
		}
	}
	return false
}

// OptionTexts returns the option texts in order
func (q Question) OptionTexts() []string {
	texts := make([]string, len(q.Options))
	for i, option := range q.Options {
		texts[i] = option.Text
	}
	return texts
}

// Section is a named grouping of questions
type Section struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// DroppedQuestion describes a question discarded because it collected no options
type DroppedQuestion struct {
	Section string
	Prompt  string
}
