package quizbank

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

// fakeChatServer answers every chat completion with a suggest_answer tool call
// whose option number is picked by answer from the user prompt
func fakeChatServer(t *testing.T, answer func(prompt string) int) (*httptest.Server, *[]string) {
	t.Helper()
	var (
		mu      sync.Mutex
		prompts []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		prompt := req.Messages[1].Content

		mu.Lock()
		prompts = append(prompts, prompt)
		mu.Unlock()

		args, _ := json.Marshal(map[string]interface{}{
			"option_number": answer(prompt),
			"reason":        "it fits",
		})
		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role: openai.ChatMessageRoleAssistant,
					ToolCalls: []openai.ToolCall{{
						ID:   "call_1",
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      suggestAnswerTool,
							Arguments: string(args),
						},
					}},
				},
				FinishReason: openai.FinishReasonToolCalls,
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, &prompts
}

func testReviewer(srv *httptest.Server) *BankReviewer {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	return NewBankReviewerWithConfig(cfg)
}

func TestReviewOnlyAsksAboutUnansweredQuestions(t *testing.T) {
	srv, prompts := fakeChatServer(t, func(prompt string) int {
		if strings.Contains(prompt, "Question: 3.") {
			return 7
		}
		return 2
	})

	bank := Parse([]Paragraph{
		para("Appendix 1"),
		para("1. Already answered"),
		marked("A. ", "yes"),
		para("B. no"),
		para("2. Missing key"),
		para("A. cat"),
		para("B. dog"),
		para("3. Model goes out of range"),
		para("A. up"),
		para("B. down"),
	}, DefaultParserConfig(), nil)

	var logBuf bytes.Buffer
	reviewer := testReviewer(srv)
	reviewer.SetLogger(NewReviewLoggerWriter(&logBuf, "run-1", bank))

	suggestions, err := reviewer.Review(context.Background(), bank)
	require.NoError(t, err)
	require.Equal(t, []Suggestion{{
		Section:        "Appendix 1",
		QuestionNumber: 2,
		Prompt:         "2. Missing key",
		OptionNumber:   2,
		OptionText:     "B. dog",
		Reason:         "it fits",
	}}, suggestions)

	require.Len(t, *prompts, 2)
	require.Contains(t, (*prompts)[0], "Section: Appendix 1")
	require.Contains(t, (*prompts)[0], "2. B. dog")

	logged := logBuf.String()
	require.Contains(t, logged, "Run ID: run-1")
	require.Contains(t, logged, "=== LLM REQUEST ===")
	require.Contains(t, logged, "Appendix 1 #2: option 2 (B. dog) - it fits")
}

func TestSuggestAnswerRejectsOutOfRange(t *testing.T) {
	srv, _ := fakeChatServer(t, func(string) int { return 0 })

	_, err := testReviewer(srv).SuggestAnswer(context.Background(), "General", 1, Question{
		Prompt:  "1. Pick",
		Options: []Option{{Text: "A. one"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of range")
}

func TestReviewStopsOnCancelledContext(t *testing.T) {
	srv, prompts := fakeChatServer(t, func(string) int { return 1 })
	bank := Parse([]Paragraph{para("1. Pick"), para("A. one")}, DefaultParserConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testReviewer(srv).Review(ctx, bank)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, *prompts)
}

func TestReviewLoggerFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewReviewLogger(dir, "run-2", nil)
	require.NoError(t, err)
	logger.LogRequest("prompt body")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "run-2.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "prompt body")
	require.Contains(t, string(data), "=== Review Complete ===")
}
