package quizbank

// Parser turns an ordered paragraph stream into a QuizBank.
// A Parser holds no per-parse state and may be reused for any number of parses.
type Parser struct {
	cfg        ParserConfig
	classifier *Classifier
	highlight  HighlightPredicate
	onDrop     func(DroppedQuestion)
}

// NewParser creates a parser. A nil highlight predicate defaults to
// RunHighlight over cfg.AnswerHighlightColors.
func NewParser(cfg ParserConfig, highlight HighlightPredicate) *Parser {
	cfg = cfg.withFallbacks()
	if highlight == nil {
		highlight = RunHighlight(cfg.AnswerHighlightColors...)
	}
	return &Parser{
		cfg:        cfg,
		classifier: NewClassifier(cfg),
		highlight:  highlight,
	}
}

// OnDrop registers a callback invoked for every question discarded with no options
func (p *Parser) OnDrop(fn func(DroppedQuestion)) {
	p.onDrop = fn
}

// Classifier returns the line classifier used by the parser
func (p *Parser) Classifier() *Classifier {
	return p.classifier
}

// Parse is a convenience wrapper around NewParser(cfg, highlight).Parse
func Parse(paragraphs []Paragraph, cfg ParserConfig, highlight HighlightPredicate) *QuizBank {
	return NewParser(cfg, highlight).Parse(paragraphs)
}

// parseState is the accumulator threaded through a single parse
type parseState struct {
	bank    *QuizBank
	section string
	open    *Question
}

// Parse walks paragraphs once, in order, and returns the assembled bank
func (p *Parser) Parse(paragraphs []Paragraph) *QuizBank {
	st := &parseState{bank: NewQuizBank()}

	for _, para := range paragraphs {
		text := NormalizeText(para.PlainText())
		if text == "" {
			continue
		}

		switch p.classifier.Classify(text, st.open != nil) {
		case SectionHeader:
			p.seal(st)
			st.section = text
			st.bank.ensureSection(text)
			VerboseLog("Section: %s", text)

		case QuestionStart:
			p.seal(st)
			if st.section == "" {
				st.section = p.cfg.DefaultSectionName
			}
			st.open = &Question{Prompt: text, Options: make([]Option, 0, 4)}

		case OptionLine:
			st.open.Options = append(st.open.Options, Option{
				Text:    text,
				Correct: p.highlight.IsAnswerHighlighted(para),
			})
		}
	}
	p.seal(st)

	st.bank.selectable = p.selectable(st.bank)
	return st.bank
}

// seal appends the open question to its section, discarding it when it has no options
func (p *Parser) seal(st *parseState) {
	if st.open == nil {
		return
	}
	q := st.open
	st.open = nil

	if len(q.Options) == 0 {
		VerboseLog("Dropping question with no options in %q: %s", st.section, q.Prompt)
		if p.onDrop != nil {
			p.onDrop(DroppedQuestion{Section: st.section, Prompt: q.Prompt})
		}
		return
	}

	section := st.bank.ensureSection(st.section)
	section.Questions = append(section.Questions, *q)
}

// selectable lists non-empty sections named by the section marker convention,
// plus the default section when configured
func (p *Parser) selectable(bank *QuizBank) []string {
	names := make([]string, 0, len(bank.names))
	for _, name := range bank.names {
		if len(bank.sections[name].Questions) == 0 {
			continue
		}
		if p.classifier.IsSectionHeader(name) {
			names = append(names, name)
			continue
		}
		if name == p.cfg.DefaultSectionName && p.cfg.IncludeDefaultInSelectableList {
			names = append(names, name)
		}
	}
	return names
}
