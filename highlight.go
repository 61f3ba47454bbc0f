package quizbank

import "strings"

// HighlightPredicate reports whether a paragraph carries the answer highlight
type HighlightPredicate interface {
	IsAnswerHighlighted(p Paragraph) bool
}

// HighlightFunc adapts a plain function to HighlightPredicate
type HighlightFunc func(p Paragraph) bool

func (f HighlightFunc) IsAnswerHighlighted(p Paragraph) bool {
	return f(p)
}

type runHighlight struct {
	colors map[string]struct{}
}

// RunHighlight returns a predicate that is true when any run is highlighted in
// one of colors. With no colors, any highlight counts.
func RunHighlight(colors ...string) HighlightPredicate {
	rh := runHighlight{colors: make(map[string]struct{}, len(colors))}
	for _, color := range colors {
		if c := strings.ToLower(strings.TrimSpace(color)); c != "" {
			rh.colors[c] = struct{}{}
		}
	}
	return rh
}

func (rh runHighlight) IsAnswerHighlighted(p Paragraph) bool {
	for _, run := range p.Runs {
		color := strings.ToLower(strings.TrimSpace(run.Highlight))
		if color == "" || color == "none" {
			continue
		}
		if len(rh.colors) == 0 {
			return true
		}
		if _, ok := rh.colors[color]; ok {
			return true
		}
	}
	return false
}
