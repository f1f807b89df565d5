package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = openai.SmallEmbedding3

// OpenAI embeds through the OpenAI embeddings endpoint.
type OpenAI struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

type OpenAIOption func(*openai.ClientConfig, *OpenAI)

// WithBaseURL points the client at an OpenAI compatible endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openai.ClientConfig, _ *OpenAI) {
		c.BaseURL = url
	}
}

func WithModel(model string) OpenAIOption {
	return func(_ *openai.ClientConfig, e *OpenAI) {
		e.model = openai.EmbeddingModel(model)
	}
}

// NewOpenAI creates an embedder authenticated with key.
func NewOpenAI(key string, opts ...OpenAIOption) (*OpenAI, error) {
	if key == "" {
		return nil, errors.New("openai api key is empty")
	}
	cfg := openai.DefaultConfig(key)
	e := &OpenAI{model: DefaultOpenAIModel}
	for _, opt := range opts {
		opt(&cfg, e)
	}
	e.client = openai.NewClientWithConfig(cfg)
	return e, nil
}

func (e *OpenAI) Model() string {
	return "openai/" + string(e.model)
}

func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: e.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned from API")
	}
	return resp.Data[0].Embedding, nil
}
