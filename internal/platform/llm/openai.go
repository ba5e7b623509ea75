package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultOpenAICompatBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultOpenAICompatBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ChatClient sends prompts to an OpenAI-compatible chat completion API.
type ChatClient struct {
	model chatModel
}

func NewChatClient(ctx context.Context, apiKey, modelName, baseURL string, timeout time.Duration) (*ChatClient, error) {
	if baseURL == "" {
		baseURL = DefaultOpenAICompatBaseURL
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return &ChatClient{model: cm}, nil
}

func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if msg == nil || msg.Content == "" {
		return "", ErrEmptyResponse
	}
	return msg.Content, nil
}
