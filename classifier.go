package quizbank

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// LineKind is the classification assigned to a paragraph
type LineKind int

const (
	Unclassified LineKind = iota
	SectionHeader
	QuestionStart
	OptionLine
)

func (k LineKind) String() string {
	switch k {
	case SectionHeader:
		return "section"
	case QuestionStart:
		return "question"
	case OptionLine:
		return "option"
	default:
		return "unclassified"
	}
}

var (
	// an integer followed by a period or a parenthesis, not a decimal fraction
	ordinalPattern = regexp.MustCompile(`^\d+\s*[.)](?:[^\d]|$)`)
	// an integer followed only by whitespace and a non-digit
	bareOrdinalPattern = regexp.MustCompile(`^\d+\s+\D`)
	// a leading number and the token glued or spaced after it
	numberUnitPattern = regexp.MustCompile(`^\d+(?:[.,]\d+)?\s*([\p{L}%°]+)`)
)

// Classifier decides the kind of a normalized paragraph line
type Classifier struct {
	markers   []string
	triggers  []string
	prefixes  []string
	units     map[string]struct{}
	label     *regexp.Regexp
	capsMin   int
	absorbAll bool
	bare      bool
}

// NewClassifier compiles the heuristics in cfg. Unusable values fall back to
// DefaultParserConfig so classification stays total.
func NewClassifier(cfg ParserConfig) *Classifier {
	cfg = cfg.withFallbacks()
	first, last, _ := cfg.letterRange()

	units := make(map[string]struct{}, len(cfg.MeasurementUnits))
	for _, unit := range foldAll(cfg.MeasurementUnits) {
		units[unit] = struct{}{}
	}

	return &Classifier{
		markers:   foldAll(cfg.SectionMarkers),
		triggers:  foldAll(cfg.QuestionTriggerPhrases),
		prefixes:  foldAll(cfg.QuestionPrefixes),
		units:     units,
		label:     regexp.MustCompile(fmt.Sprintf(`(?i)^[%c-%c]\s*[.)]`, first, last)),
		capsMin:   cfg.AllCapsMinLetters,
		absorbAll: cfg.AbsorbUnlabeledOptions,
		bare:      cfg.BareOrdinals,
	}
}

// withFallbacks replaces values the classifier cannot work with by defaults
func (c ParserConfig) withFallbacks() ParserConfig {
	def := DefaultParserConfig()
	if len(foldAll(c.SectionMarkers)) == 0 {
		c.SectionMarkers = def.SectionMarkers
	}
	if _, _, err := c.letterRange(); err != nil {
		VerboseLog("Falling back to option letters %s: %v", def.OptionLetterRange, err)
		c.OptionLetterRange = def.OptionLetterRange
	}
	if c.AllCapsMinLetters < 1 {
		c.AllCapsMinLetters = def.AllCapsMinLetters
	}
	c.DefaultSectionName = NormalizeText(c.DefaultSectionName)
	if c.DefaultSectionName == "" {
		c.DefaultSectionName = def.DefaultSectionName
	}
	return c
}

// Classify returns the kind of a normalized line. Options are only recognized
// while a question is open; otherwise such lines are Unclassified.
func (c *Classifier) Classify(text string, questionOpen bool) LineKind {
	if text == "" {
		return Unclassified
	}
	folded := foldCase(text)

	if c.isSectionHeader(folded) {
		return SectionHeader
	}
	if c.isQuestion(text, folded) {
		return QuestionStart
	}
	if questionOpen && c.isOption(text) {
		return OptionLine
	}
	return Unclassified
}

// IsSectionHeader reports whether text starts with a section marker
func (c *Classifier) IsSectionHeader(text string) bool {
	return c.isSectionHeader(foldCase(NormalizeText(text)))
}

func (c *Classifier) isSectionHeader(folded string) bool {
	for _, marker := range c.markers {
		if strings.HasPrefix(folded, marker) {
			return true
		}
	}
	return false
}

func (c *Classifier) isQuestion(text, folded string) bool {
	if c.hasOrdinal(text) {
		return true
	}
	if strings.HasSuffix(text, "?") || strings.HasSuffix(text, "？") {
		return true
	}
	for _, prefix := range c.prefixes {
		if strings.HasPrefix(folded, prefix) {
			return true
		}
	}
	for _, trigger := range c.triggers {
		if strings.Contains(folded, trigger) {
			return true
		}
	}
	return false
}

// hasOrdinal matches "12. ..." unless the number is a measurement such as "10 m"
func (c *Classifier) hasOrdinal(text string) bool {
	if !ordinalPattern.MatchString(text) && !(c.bare && bareOrdinalPattern.MatchString(text)) {
		return false
	}
	return !c.isMeasurement(text)
}

func (c *Classifier) isMeasurement(text string) bool {
	m := numberUnitPattern.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	_, ok := c.units[foldCase(m[1])]
	return ok
}

func (c *Classifier) isOption(text string) bool {
	if c.label.MatchString(text) {
		return true
	}
	if isAllCaps(text, c.capsMin) {
		return true
	}
	return c.absorbAll
}

// isAllCaps reports whether text has no lowercase letters and at least minLetters uppercase ones
func isAllCaps(text string, minLetters int) bool {
	upper := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return upper >= minLetters
}
