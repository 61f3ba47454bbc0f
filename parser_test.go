package quizbank

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func para(text string) Paragraph {
	return Paragraph{Text: text, Runs: []Run{{Text: text}}}
}

// marked builds a paragraph whose last run carries the yellow answer highlight
func marked(label, answer string) Paragraph {
	return Paragraph{
		Text: label + answer,
		Runs: []Run{{Text: label}, {Text: answer, Highlight: "yellow"}},
	}
}

func TestParseSingleSection(t *testing.T) {
	bank := Parse([]Paragraph{
		para("Appendix 1"),
		para("1. Pick the odd one out"),
		para("A. cat"),
		marked("B. ", "dog"),
	}, DefaultParserConfig(), nil)

	require.Equal(t, []string{"Appendix 1"}, bank.SectionNames())
	section, ok := bank.Section("Appendix 1")
	require.True(t, ok)
	require.Equal(t, []Question{{
		Prompt: "1. Pick the odd one out",
		Options: []Option{
			{Text: "A. cat", Correct: false},
			{Text: "B. dog", Correct: true},
		},
	}}, section.Questions)
	require.Equal(t, []string{"Appendix 1"}, bank.SelectableSections())
}

func TestParseIsIdempotent(t *testing.T) {
	paragraphs := []Paragraph{
		para("What is the capital of France?"),
		marked("A. ", "Paris"),
		para("B. Rome"),
		para("Phụ lục 1"),
		para("1. Choose the correct group of words"),
		para("A. IN SPITE OF"),
		marked("", "B. DESPITE OF"),
		para("Phụ lục 2"),
		para("2. Orphan"),
	}
	parser := NewParser(DefaultParserConfig(), nil)

	first := parser.Parse(paragraphs)
	second := parser.Parse(paragraphs)
	require.Equal(t, first, second)
	require.Equal(t, 2, first.QuestionCount())
}

func TestParseDropsQuestionWithoutOptions(t *testing.T) {
	var dropped []DroppedQuestion
	parser := NewParser(DefaultParserConfig(), nil)
	parser.OnDrop(func(d DroppedQuestion) { dropped = append(dropped, d) })

	bank := parser.Parse([]Paragraph{
		para("5. Orphan question"),
		para("Appendix 2"),
		para("6. Real question"),
		para("A. yes"),
		para("7. Trailing orphan"),
	})

	require.Equal(t, []string{"Appendix 2"}, bank.SectionNames())
	section, _ := bank.Section("Appendix 2")
	require.Len(t, section.Questions, 1)
	require.Equal(t, "6. Real question", section.Questions[0].Prompt)
	require.Equal(t, []DroppedQuestion{
		{Section: "General", Prompt: "5. Orphan question"},
		{Section: "Appendix 2", Prompt: "7. Trailing orphan"},
	}, dropped)

	for _, s := range bank.Sections() {
		for _, q := range s.Questions {
			require.NotEmpty(t, q.Options)
			require.NotEmpty(t, q.Prompt)
		}
	}
}

func TestParseDefaultSection(t *testing.T) {
	paragraphs := []Paragraph{
		para("What is 2+2?"),
		para("A. 3"),
		marked("B. ", "4"),
		para("Appendix A"),
		para("1. Which is a colour?"),
		marked("A. ", "red"),
		para("B. table"),
	}

	bank := Parse(paragraphs, DefaultParserConfig(), nil)
	require.Equal(t, []string{"General", "Appendix A"}, bank.SectionNames())
	general, ok := bank.Section("General")
	require.True(t, ok)
	require.Len(t, general.Questions, 1)
	require.Equal(t, []string{"Appendix A"}, bank.SelectableSections())

	cfg := DefaultParserConfig()
	cfg.IncludeDefaultInSelectableList = true
	bank = Parse(paragraphs, cfg, nil)
	require.Equal(t, []string{"General", "Appendix A"}, bank.SelectableSections())
}

func TestParseMeasurementLineStaysWithQuestion(t *testing.T) {
	paragraphs := []Paragraph{
		para("Appendix 1"),
		para("1. How high is the antenna mounted?"),
		para("10 m above ground"),
		marked("", "25 m above ground"),
		para("A. 10 m"),
		marked("B. ", "25 m"),
	}

	bank := Parse(paragraphs, DefaultParserConfig(), nil)
	section, _ := bank.Section("Appendix 1")
	require.Len(t, section.Questions, 1)
	require.Equal(t, []string{"A. 10 m", "B. 25 m"}, section.Questions[0].OptionTexts())

	cfg := DefaultParserConfig()
	cfg.AbsorbUnlabeledOptions = true
	cfg.BareOrdinals = true
	bank = Parse(paragraphs, cfg, nil)
	section, _ = bank.Section("Appendix 1")
	require.Len(t, section.Questions, 1)
	require.Equal(t, []Option{
		{Text: "10 m above ground"},
		{Text: "25 m above ground", Correct: true},
		{Text: "A. 10 m"},
		{Text: "B. 25 m", Correct: true},
	}, section.Questions[0].Options)
}

func TestParseSkipsNoiseUnderQuestion(t *testing.T) {
	bank := Parse([]Paragraph{
		para("Appendix 1"),
		para("1. Pick the odd one out"),
		para("Read the passage carefully before answering"),
		para("A. cat"),
		marked("B. ", "dog"),
	}, DefaultParserConfig(), nil)

	section, _ := bank.Section("Appendix 1")
	require.Len(t, section.Questions, 1)
	require.Equal(t, []Option{
		{Text: "A. cat"},
		{Text: "B. dog", Correct: true},
	}, section.Questions[0].Options)
}

func TestParseDropsQuestionFollowedOnlyByNoise(t *testing.T) {
	var dropped []DroppedQuestion
	parser := NewParser(DefaultParserConfig(), nil)
	parser.OnDrop(func(d DroppedQuestion) { dropped = append(dropped, d) })

	bank := parser.Parse([]Paragraph{
		para("Appendix 1"),
		para("5. Orphan question"),
		para("Note: the following items are taken from the 2019 exam"),
		para("Appendix 2"),
	})

	require.Equal(t, 0, bank.QuestionCount())
	require.Empty(t, bank.SelectableSections())
	require.Equal(t, []DroppedQuestion{{Section: "Appendix 1", Prompt: "5. Orphan question"}}, dropped)
}

func TestParseNumericOptionsDoNotStartQuestions(t *testing.T) {
	bank := Parse([]Paragraph{
		para("Appendix 1"),
		para("1. How many people attended?"),
		para("A. 100 people"),
		marked("B. ", "200 people"),
		para("100 people"),
	}, DefaultParserConfig(), nil)

	section, _ := bank.Section("Appendix 1")
	require.Len(t, section.Questions, 1)
	require.Equal(t, []string{"A. 100 people", "B. 200 people"}, section.Questions[0].OptionTexts())
}

func TestParseReusesSectionNames(t *testing.T) {
	bank := Parse([]Paragraph{
		para("Appendix 1"),
		para("1. First?"),
		para("A. a"),
		para("Appendix 2"),
		para("1. Second?"),
		para("A. b"),
		para("Appendix 1"),
		para("2. Third?"),
		para("A. c"),
	}, DefaultParserConfig(), nil)

	require.Equal(t, []string{"Appendix 1", "Appendix 2"}, bank.SectionNames())
	first, _ := bank.Section("Appendix 1")
	require.Len(t, first.Questions, 2)
	require.Equal(t, "2. Third?", first.Questions[1].Prompt)
}

func TestParseSectionHeaderNeverBecomesQuestionOrOption(t *testing.T) {
	bank := Parse([]Paragraph{
		para("1. Opening question?"),
		para("A. one"),
		para("APPENDIX 3. GRAMMAR?"),
		para("2. Next?"),
		para("A. two"),
	}, DefaultParserConfig(), nil)

	require.Equal(t, []string{"General", "APPENDIX 3. GRAMMAR?"}, bank.SectionNames())
	for _, s := range bank.Sections() {
		for _, q := range s.Questions {
			require.NotContains(t, q.Prompt, "APPENDIX")
			for _, o := range q.Options {
				require.NotContains(t, o.Text, "APPENDIX")
			}
		}
	}
}

func TestParseWithoutHighlightRecordsNoCorrectOption(t *testing.T) {
	never := HighlightFunc(func(Paragraph) bool { return false })
	bank := Parse([]Paragraph{
		para("Appendix 1"),
		para("1. Pick one"),
		marked("A. ", "cat"),
		para("B. dog"),
	}, DefaultParserConfig(), never)

	section, _ := bank.Section("Appendix 1")
	require.False(t, section.Questions[0].HasCorrect())
	require.Empty(t, section.Questions[0].CorrectOptions())
}

func TestParseHighlightCalledOncePerOption(t *testing.T) {
	calls := 0
	counting := HighlightFunc(func(p Paragraph) bool {
		calls++
		return false
	})
	Parse([]Paragraph{
		para("Noise before anything"),
		para("Appendix 1"),
		para("1. Pick one"),
		para("A. cat"),
		para("B. dog"),
		para(""),
	}, DefaultParserConfig(), counting)

	require.Equal(t, 2, calls)
}

func TestParseAbsorbingOptions(t *testing.T) {
	paragraphs := []Paragraph{
		para("Appendix 1"),
		para("1. Choose the correct group of words"),
		para("Read the passage carefully before answering"),
		para("A. on the other hand"),
		para("IN ADDITION"),
	}

	bank := Parse(paragraphs, DefaultParserConfig(), nil)
	section, _ := bank.Section("Appendix 1")
	require.Equal(t, []string{"A. on the other hand", "IN ADDITION"}, section.Questions[0].OptionTexts())

	cfg := DefaultParserConfig()
	cfg.AbsorbUnlabeledOptions = true
	bank = Parse(paragraphs, cfg, nil)
	section, _ = bank.Section("Appendix 1")
	require.Equal(t, []string{
		"Read the passage carefully before answering",
		"A. on the other hand",
		"IN ADDITION",
	}, section.Questions[0].OptionTexts())
}

func TestParseReturnedSectionsDoNotAliasBank(t *testing.T) {
	bank := Parse([]Paragraph{
		para("Appendix 1"),
		para("1. Pick the odd one out"),
		para("A. cat"),
		marked("B. ", "dog"),
	}, DefaultParserConfig(), nil)

	s, _ := bank.Section("Appendix 1")
	s.Questions[0].Prompt = "changed"
	s.Questions[0].Options[0].Correct = true
	s.Questions = append(s.Questions, Question{Prompt: "extra"})

	all := bank.Sections()
	all[0].Questions[0].Options[1].Text = "changed"

	again, _ := bank.Section("Appendix 1")
	require.Equal(t, []Question{{
		Prompt: "1. Pick the odd one out",
		Options: []Option{
			{Text: "A. cat"},
			{Text: "B. dog", Correct: true},
		},
	}}, again.Questions)
}

func TestParseEmptySectionsAreNotSelectable(t *testing.T) {
	bank := Parse([]Paragraph{
		para("Appendix 1"),
		para("Appendix 2"),
		para("1. Only question"),
		para("A. yes"),
	}, DefaultParserConfig(), nil)

	require.Equal(t, []string{"Appendix 1", "Appendix 2"}, bank.SectionNames())
	require.Equal(t, []string{"Appendix 2"}, bank.SelectableSections())
}

func TestParseNormalizesParagraphText(t *testing.T) {
	bank := Parse([]Paragraph{
		{Runs: []Run{{Text: "Phụ lục"}, {Text: " 1"}}},
		para("  1.   Pick\tone  "),
		para("A. cat"),
	}, DefaultParserConfig(), nil)

	require.Equal(t, []string{"Phụ lục 1"}, bank.SectionNames())
	section, _ := bank.Section("Phụ lục 1")
	require.Equal(t, "1. Pick one", section.Questions[0].Prompt)
}

func TestParseEmptyInput(t *testing.T) {
	bank := Parse(nil, DefaultParserConfig(), nil)
	require.Equal(t, 0, bank.Len())
	require.Empty(t, bank.SelectableSections())
}
