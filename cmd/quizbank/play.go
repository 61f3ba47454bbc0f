package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"quizbank"
)

var (
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// playSection asks every question of section on in/out and grades the answers.
// A blank answer skips the question, "q" or end of input stops the quiz.
func playSection(in io.Reader, out io.Writer, section quizbank.Section) quizbank.Result {
	scanner := bufio.NewScanner(in)
	answers := make(map[int]string)

	fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("Section: %s", section.Name)))
	fmt.Fprintf(out, "Questions: %d\n\n", len(section.Questions))

quiz:
	for i, question := range section.Questions {
		fmt.Fprintf(out, "Question %d/%d:\n", i+1, len(section.Questions))
		fmt.Fprintf(out, "%s\n\n", question.Prompt)
		for j, option := range question.Options {
			fmt.Fprintf(out, "  %d) %s\n", j+1, option.Text)
		}
		fmt.Fprintln(out)

		for {
			fmt.Fprintf(out, "Your answer (1-%d, blank to skip, q to quit): ", len(question.Options))
			if !scanner.Scan() {
				fmt.Fprintln(out)
				break quiz
			}
			input := strings.TrimSpace(scanner.Text())
			if strings.EqualFold(input, "q") {
				break quiz
			}
			if input == "" {
				fmt.Fprintln(out, mutedStyle.Render("Skipped."))
				break
			}
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > len(question.Options) {
				fmt.Fprintf(out, "Please enter a number between 1 and %d\n", len(question.Options))
				continue
			}
			chosen := question.Options[n-1].Text
			answers[i] = chosen
			reportAnswer(out, question, chosen)
			break
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, mutedStyle.Render(strings.Repeat("─", 50)))
		fmt.Fprintln(out)
	}

	return quizbank.Grade(section, answers)
}

func reportAnswer(out io.Writer, question quizbank.Question, chosen string) {
	ok, err := quizbank.CheckAnswer(question, chosen)
	switch {
	case err != nil:
		fmt.Fprintln(out, mutedStyle.Render("No answer is recorded for this question."))
	case ok:
		fmt.Fprintln(out, correctStyle.Render("Correct!"))
	default:
		fmt.Fprintln(out, incorrectStyle.Render(fmt.Sprintf("Incorrect. The correct answer is: %s",
			strings.Join(correctTexts(question), " / "))))
	}
}

func correctTexts(question quizbank.Question) []string {
	var texts []string
	for _, option := range question.CorrectOptions() {
		texts = append(texts, option.Text)
	}
	return texts
}

func printSummary(out io.Writer, result quizbank.Result) {
	fmt.Fprintln(out, headingStyle.Render("Quiz completed!"))
	fmt.Fprintf(out, "Score: %d/%d (%.1f%%)\n", result.Score, result.Total, result.Percentage())
	if result.Ungraded > 0 {
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d question(s) had no recorded answer and were not graded", result.Ungraded)))
	}

	switch pct := result.Percentage(); {
	case result.Total == 0:
	case pct >= 80:
		fmt.Fprintln(out, correctStyle.Render("Excellent work!"))
	case pct >= 60:
		fmt.Fprintln(out, "Good job!")
	default:
		fmt.Fprintln(out, "Keep studying!")
	}
}

func printSuggestions(out io.Writer, suggestions []quizbank.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No answer suggestions."))
		return
	}
	fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("Suggested answers (%d)", len(suggestions))))
	for _, s := range suggestions {
		fmt.Fprintf(out, "  %s #%d: %s\n", s.Section, s.QuestionNumber, s.Prompt)
		fmt.Fprintf(out, "    -> %s %s\n", s.OptionText, mutedStyle.Render("("+s.Reason+")"))
	}
}
