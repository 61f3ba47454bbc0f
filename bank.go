package quizbank

import (
	"encoding/json"
	"fmt"
)

// QuizBank is an ordered mapping from section name to section.
// A bank returned by the parser is fully materialized and never mutated again.
type QuizBank struct {
	names      []string
	sections   map[string]*Section
	selectable []string
}

// NewQuizBank creates an empty bank
func NewQuizBank() *QuizBank {
	return &QuizBank{
		names:    make([]string, 0),
		sections: make(map[string]*Section),
	}
}

// ensureSection returns the named section, appending it when it is new
func (b *QuizBank) ensureSection(name string) *Section {
	if section, ok := b.sections[name]; ok {
		return section
	}
	section := &Section{Name: name, Questions: make([]Question, 0)}
	b.sections[name] = section
	b.names = append(b.names, name)
	return section
}

// Section looks up a section by name. The returned section is a copy.
func (b *QuizBank) Section(name string) (Section, bool) {
	section, ok := b.sections[name]
	if !ok {
		return Section{}, false
	}
	return cloneSection(section), true
}

// Sections returns copies of all sections in encounter order
func (b *QuizBank) Sections() []Section {
	sections := make([]Section, 0, len(b.names))
	for _, name := range b.names {
		sections = append(sections, cloneSection(b.sections[name]))
	}
	return sections
}

// cloneSection deep-copies questions and options so callers cannot reach the bank's slices
func cloneSection(s *Section) Section {
	questions := make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		options := make([]Option, len(q.Options))
		copy(options, q.Options)
		questions[i] = Question{Prompt: q.Prompt, Options: options}
	}
	return Section{Name: s.Name, Questions: questions}
}

// SectionNames returns the section names in encounter order
func (b *QuizBank) SectionNames() []string {
	return append([]string(nil), b.names...)
}

// SelectableSections returns the sections a user may pick, in encounter order
func (b *QuizBank) SelectableSections() []string {
	return append([]string(nil), b.selectable...)
}

// IsSelectable reports whether name is in the selectable list
func (b *QuizBank) IsSelectable(name string) bool {
	for _, s := range b.selectable {
		if s == name {
			return true
		}
	}
	return false
}

// Len returns the number of sections
func (b *QuizBank) Len() int {
	return len(b.names)
}

// QuestionCount returns the number of questions across all sections
func (b *QuizBank) QuestionCount() int {
	total := 0
	for _, name := range b.names {
		total += len(b.sections[name].Questions)
	}
	return total
}

type bankJSON struct {
	Sections   []Section `json:"sections"`
	Selectable []string  `json:"selectable"`
}

// MarshalJSON encodes the bank as an ordered list of sections
func (b *QuizBank) MarshalJSON() ([]byte, error) {
	return json.Marshal(bankJSON{
		Sections:   b.Sections(),
		Selectable: b.SelectableSections(),
	})
}

// UnmarshalJSON decodes a bank written by MarshalJSON
func (b *QuizBank) UnmarshalJSON(data []byte) error {
	var payload bankJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal quiz bank: %w", err)
	}
	*b = *NewQuizBank()
	for _, section := range payload.Sections {
		s := b.ensureSection(section.Name)
		s.Questions = append(s.Questions, section.Questions...)
	}
	for _, name := range payload.Selectable {
		if _, ok := b.sections[name]; !ok {
			return fmt.Errorf("selectable section %q not in bank", name)
		}
	}
	b.selectable = append([]string(nil), payload.Selectable...)
	return nil
}
