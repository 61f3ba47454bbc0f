package quizbank

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const suggestAnswerTool = "suggest_answer"

// Suggestion is a model-proposed answer for a question with no highlighted option.
// Suggestions are advisory and never change the bank.
type Suggestion struct {
	Section        string `json:"section"`
	QuestionNumber int    `json:"question_number"` // 1-based within the section
	Prompt         string `json:"prompt"`
	OptionNumber   int    `json:"option_number"` // 1-based
	OptionText     string `json:"option_text"`
	Reason         string `json:"reason"`
}

// BankReviewer asks GPT-4o to propose answers where the document recorded none
type BankReviewer struct {
	client *openai.Client
	model  string
	logger *ReviewLogger
}

// NewBankReviewer creates a reviewer with an OpenAI client
func NewBankReviewer(apiKey string) *BankReviewer {
	return NewBankReviewerWithConfig(openai.DefaultConfig(apiKey))
}

// NewBankReviewerWithConfig creates a reviewer for a custom endpoint
func NewBankReviewerWithConfig(cfg openai.ClientConfig) *BankReviewer {
	return &BankReviewer{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
	}
}

// SetLogger sets the interaction logger
func (br *BankReviewer) SetLogger(logger *ReviewLogger) {
	br.logger = logger
}

// SetModel overrides the chat model
func (br *BankReviewer) SetModel(model string) {
	br.model = model
}

// Review proposes answers for every question that has no correct option.
// Failures on a single question are logged and skipped; a cancelled context stops the review.
func (br *BankReviewer) Review(ctx context.Context, bank *QuizBank) ([]Suggestion, error) {
	var suggestions []Suggestion
	for _, section := range bank.Sections() {
		for i, question := range section.Questions {
			if question.HasCorrect() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return suggestions, err
			}

			suggestion, err := br.SuggestAnswer(ctx, section.Name, i+1, question)
			if err != nil {
				if ctx.Err() != nil {
					return suggestions, ctx.Err()
				}
				log.Printf("Error reviewing %s #%d: %v", section.Name, i+1, err)
				continue
			}
			suggestions = append(suggestions, *suggestion)
		}
	}
	return suggestions, nil
}

// SuggestAnswer asks the model which option of question is correct
func (br *BankReviewer) SuggestAnswer(ctx context.Context, section string, number int, question Question) (*Suggestion, error) {
	VerboseLog("Reviewing %s #%d: %s", section, number, question.Prompt)

	prompt := br.buildPrompt(section, question)
	if br.logger != nil {
		br.logger.LogRequest(prompt)
	}

	resp, err := br.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: br.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert examiner. Identify the single correct option of a multiple choice question.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        suggestAnswerTool,
						Description: "Submit the number of the correct option",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"option_number": map[string]interface{}{
									"type":        "integer",
									"description": "1-based number of the correct option",
								},
								"reason": map[string]interface{}{
									"type":        "string",
									"description": "Brief explanation of why the option is correct",
								},
							},
							"required": []string{"option_number", "reason"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: suggestAnswerTool,
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to review question: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}
	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}
	toolCall := choice.Message.ToolCalls[0]
	if br.logger != nil {
		br.logger.LogResponse(toolCall.Function.Arguments)
	}
	if toolCall.Function.Name != suggestAnswerTool {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	var toolArgs struct {
		OptionNumber int    `json:"option_number"`
		Reason       string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &toolArgs); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	if toolArgs.OptionNumber < 1 || toolArgs.OptionNumber > len(question.Options) {
		return nil, fmt.Errorf("option number %d out of range 1..%d", toolArgs.OptionNumber, len(question.Options))
	}

	suggestion := &Suggestion{
		Section:        section,
		QuestionNumber: number,
		Prompt:         question.Prompt,
		OptionNumber:   toolArgs.OptionNumber,
		OptionText:     question.Options[toolArgs.OptionNumber-1].Text,
		Reason:         toolArgs.Reason,
	}
	if br.logger != nil {
		br.logger.LogSuggestion(*suggestion)
	}
	return suggestion, nil
}

func (br *BankReviewer) buildPrompt(section string, question Question) string {
	var sb strings.Builder

	sb.WriteString("The following multiple choice question comes from a study document whose answer key is missing.\n\n")
	sb.WriteString(fmt.Sprintf("Section: %s\n\n", section))
	sb.WriteString(fmt.Sprintf("Question: %s\n\n", question.Prompt))

	sb.WriteString("Options:\n")
	for i, option := range question.Options {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, option.Text))
	}

	sb.WriteString("\nOption texts may carry their own letter labels; answer with the number shown before each option.\n")
	sb.WriteString("If several options look acceptable, choose the one a careful examiner would mark correct.\n")
	return sb.String()
}
