package quizbank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a parser configuration fails validation
var ErrInvalidConfig = errors.New("invalid parser config")

// ParserConfig holds every heuristic the parser applies
type ParserConfig struct {
	// SectionMarkers are case-insensitive prefixes that start a section header
	SectionMarkers []string `yaml:"section_markers" json:"section_markers"`
	// QuestionTriggerPhrases mark a question when found anywhere in the line
	QuestionTriggerPhrases []string `yaml:"question_trigger_phrases" json:"question_trigger_phrases"`
	// QuestionPrefixes mark a question when the line starts with them
	QuestionPrefixes []string `yaml:"question_prefixes" json:"question_prefixes"`
	// OptionLetterRange is the inclusive label range, e.g. "A-E"
	OptionLetterRange string `yaml:"option_letter_range" json:"option_letter_range"`
	// MeasurementUnits suppress the ordinal rule when they follow the leading number
	MeasurementUnits []string `yaml:"measurement_units" json:"measurement_units"`
	// AllCapsMinLetters is the minimum letter count for an all-caps option line
	AllCapsMinLetters int `yaml:"all_caps_min_letters" json:"all_caps_min_letters"`
	// DefaultSectionName receives questions that appear before any header
	DefaultSectionName string `yaml:"default_section_name" json:"default_section_name"`
	// IncludeDefaultInSelectableList exposes the default section for selection
	IncludeDefaultInSelectableList bool `yaml:"include_default_in_selectable_list" json:"include_default_in_selectable_list"`
	// AnswerHighlightColors are the highlight colors marking a correct option; empty accepts any
	AnswerHighlightColors []string `yaml:"answer_highlight_colors" json:"answer_highlight_colors"`
	// AbsorbUnlabeledOptions treats any other line under an open question as an option
	AbsorbUnlabeledOptions bool `yaml:"absorb_unlabeled_options" json:"absorb_unlabeled_options"`
	// BareOrdinals accepts "12 Which ..." (a number and a space, no period) as a question number
	BareOrdinals bool `yaml:"bare_ordinals" json:"bare_ordinals"`
}

// DefaultParserConfig returns the heuristics tuned for the Vietnamese/English
// technical-English question banks the tool was built for
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		SectionMarkers:         []string{"phụ lục", "appendix"},
		QuestionTriggerPhrases: []string{"choose the correct group of words"},
		QuestionPrefixes:       []string{"choose"},
		OptionLetterRange:      "A-E",
		MeasurementUnits: []string{
			"m", "mm", "cm", "km", "nm", "mi", "ft", "in",
			"kg", "g", "mg", "t", "lb", "lbs",
			"s", "ms", "min", "h", "hr", "hrs",
			"kt", "kts", "kn", "knots",
			"l", "ml", "v", "kv", "w", "kw", "hz", "khz", "mhz",
			"psi", "bar", "hpa", "%", "°", "°c", "°f",
		},
		AllCapsMinLetters:              3,
		DefaultSectionName:             "General",
		IncludeDefaultInSelectableList: false,
		AnswerHighlightColors:          []string{"yellow"},
		AbsorbUnlabeledOptions:         false,
		BareOrdinals:                   false,
	}
}

// Validate checks the configuration for values the classifier cannot use
func (c ParserConfig) Validate() error {
	if len(foldAll(c.SectionMarkers)) == 0 {
		return fmt.Errorf("%w: at least one section marker is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.DefaultSectionName) == "" {
		return fmt.Errorf("%w: default section name is required", ErrInvalidConfig)
	}
	if c.AllCapsMinLetters < 1 {
		return fmt.Errorf("%w: all_caps_min_letters must be positive, got %d", ErrInvalidConfig, c.AllCapsMinLetters)
	}
	if _, _, err := c.letterRange(); err != nil {
		return err
	}
	return nil
}

// letterRange parses OptionLetterRange into its first and last letters
func (c ParserConfig) letterRange() (rune, rune, error) {
	raw := strings.ToUpper(strings.ReplaceAll(c.OptionLetterRange, " ", ""))
	var first, last rune
	switch {
	case len(raw) == 1:
		first, last = rune(raw[0]), rune(raw[0])
	case len(raw) == 3 && (raw[1] == '-' || raw[1] == '.'):
		first, last = rune(raw[0]), rune(raw[2])
	case len(raw) == 4 && raw[1:3] == "..":
		first, last = rune(raw[0]), rune(raw[3])
	default:
		return 0, 0, fmt.Errorf("%w: option letter range %q must look like \"A-E\"", ErrInvalidConfig, c.OptionLetterRange)
	}
	if first > 'Z' || last > 'Z' || !unicode.IsUpper(first) || !unicode.IsUpper(last) || first > last {
		return 0, 0, fmt.Errorf("%w: option letter range %q must be ascending letters", ErrInvalidConfig, c.OptionLetterRange)
	}
	return first, last, nil
}

// LoadParserConfig reads a YAML or JSON file on top of DefaultParserConfig
func LoadParserConfig(path string) (ParserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ParserConfig{}, fmt.Errorf("read parser config: %w", err)
	}
	cfg := DefaultParserConfig()
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = decodeJSONConfig(data, &cfg)
	} else {
		err = decodeYAMLConfig(data, &cfg)
	}
	if err != nil {
		return ParserConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return ParserConfig{}, err
	}
	return cfg, nil
}

func decodeJSONConfig(data []byte, cfg *ParserConfig) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return nil
}

func decodeYAMLConfig(data []byte, cfg *ParserConfig) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}
