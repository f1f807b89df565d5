package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
)

const DefaultOpenAIModel = openai.GPT4

// OpenAI completes with the chat completions endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
}

type Option func(*openai.ClientConfig, *OpenAI)

func WithModel(model string) Option {
	return func(_ *openai.ClientConfig, o *OpenAI) {
		if model != "" {
			o.model = model
		}
	}
}

func WithBaseURL(url string) Option {
	return func(c *openai.ClientConfig, _ *OpenAI) {
		c.BaseURL = url
	}
}

// NewOpenAI takes the API key explicitly; the environment is never consulted.
func NewOpenAI(key string, opts ...Option) (*OpenAI, error) {
	if key == "" {
		return nil, errors.New("openai api key is empty")
	}
	cfg := openai.DefaultConfig(key)
	o := &OpenAI{model: DefaultOpenAIModel}
	for _, opt := range opts {
		opt(&cfg, o)
	}
	o.client = openai.NewClientWithConfig(cfg)
	return o, nil
}

func (o *OpenAI) Complete(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	linerag.Logger.Debug("Asking openai", "model", o.model, "messages", len(messages))
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
