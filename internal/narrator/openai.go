package narrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	temperature = 0.8
	maxTokens   = 200
)

// OpenAI calls the chat completions endpoint of an OpenAI-compatible API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a client. The deadline of each call comes from its context.
func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

// Narrate sends the prompt and returns the trimmed reply.
func (o *OpenAI) Narrate(ctx context.Context, p Prompt) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("narrator request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("narrator returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("narrator returned empty content")
	}
	return text, nil
}
