package quizbank

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ReviewLogger records every model interaction of a bank review
type ReviewLogger struct {
	w      io.Writer
	closer io.Closer
	mu     sync.Mutex
	runID  string
}

// NewReviewLogger creates dir/<runID>.log and writes the review header
func NewReviewLogger(dir, runID string, bank *QuizBank) (*ReviewLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", runID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := NewReviewLoggerWriter(file, runID, bank)
	logger.closer = file
	return logger, nil
}

// NewReviewLoggerWriter logs to w instead of a file
func NewReviewLoggerWriter(w io.Writer, runID string, bank *QuizBank) *ReviewLogger {
	logger := &ReviewLogger{w: w, runID: runID}

	logger.Logf("=== Quiz Bank Review Log ===\n")
	logger.Logf("Run ID: %s\n", runID)
	if bank != nil {
		logger.Logf("Sections: %d\n", bank.Len())
		logger.Logf("Questions: %d\n", bank.QuestionCount())
	}
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")
	return logger
}

// Logf writes a formatted log entry with timestamp
func (rl *ReviewLogger) Logf(format string, args ...interface{}) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.logf(format, args...)
}

func (rl *ReviewLogger) logf(format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(rl.w, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	if f, ok := rl.w.(*os.File); ok {
		f.Sync()
	}
}

// LogRequest logs a prompt sent to the model
func (rl *ReviewLogger) LogRequest(prompt string) {
	rl.Logf("=== LLM REQUEST ===\n")
	rl.Logf("Prompt:\n%s\n", prompt)
	rl.Logf("=====================\n\n")
}

// LogResponse logs the raw tool arguments returned by the model
func (rl *ReviewLogger) LogResponse(response string) {
	rl.Logf("=== LLM RESPONSE ===\n")
	rl.Logf("Response:\n%s\n", response)
	rl.Logf("======================\n\n")
}

// LogSuggestion logs the answer suggested for a question
func (rl *ReviewLogger) LogSuggestion(s Suggestion) {
	rl.Logf("%s #%d: option %d (%s) - %s\n", s.Section, s.QuestionNumber, s.OptionNumber, s.OptionText, s.Reason)
}

// Close writes the footer and closes the underlying file, if any
func (rl *ReviewLogger) Close() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.logf("=== Review Complete ===\n")
	rl.logf("Completed: %s\n", time.Now().Format(time.RFC3339))
	if rl.closer != nil {
		err := rl.closer.Close()
		rl.closer = nil
		return err
	}
	return nil
}
