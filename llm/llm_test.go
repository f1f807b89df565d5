package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"gotest.tools/v3/assert"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/llm"
)

func TestOpenAIComplete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Path, "/v1/chat/completions")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"gpt-4","choices":[{"index":0,"message":{"role":"assistant","content":"Hi there"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c, err := llm.NewOpenAI("sk-test", llm.WithBaseURL(srv.URL+"/v1"))
	assert.NilError(t, err)

	answer, err := c.Complete(context.Background(), llm.User("Hello"))
	assert.NilError(t, err)
	assert.Equal(t, answer, "Hi there")
	assert.Equal(t, got.Model, "gpt-4")
	assert.Equal(t, len(got.Messages), 1)
	assert.Equal(t, got.Messages[0].Role, "user")
	assert.Equal(t, got.Messages[0].Content, "Hello")
}

func TestOpenAINoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[]}`)
	}))
	defer srv.Close()

	c, err := llm.NewOpenAI("sk-test", llm.WithBaseURL(srv.URL), llm.WithModel("gpt-4o-mini"))
	assert.NilError(t, err)
	_, err = c.Complete(context.Background(), llm.User("Hello"))
	assert.ErrorIs(t, err, llm.ErrNoChoices)
}

type fakeBedrock struct {
	input *bedrockruntime.InvokeModelInput
	body  string
}

func (f *fakeBedrock) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestBedrockComplete(t *testing.T) {
	fake := &fakeBedrock{body: `{"content":[{"type":"text","text":"Claude says hi"}],"stop_reason":"end_turn"}`}
	c := llm.NewBedrock(fake)

	answer, err := c.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "Be brief."},
		{Role: llm.RoleUser, Content: "Hello"},
	})
	assert.NilError(t, err)
	assert.Equal(t, answer, "Claude says hi")

	var req struct {
		AnthropicVersion string `json:"anthropic_version"`
		System           string `json:"system"`
		Messages         []struct {
			Role    string `json:"role"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	assert.NilError(t, json.Unmarshal(fake.input.Body, &req))
	assert.Equal(t, req.AnthropicVersion, "bedrock-2023-05-31")
	assert.Equal(t, req.System, "Be brief.")
	assert.Equal(t, len(req.Messages), 1)
	assert.Equal(t, req.Messages[0].Content[0].Text, "Hello")

	fake.body = `{"content":[]}`
	_, err = c.Complete(context.Background(), llm.User("Hello"))
	assert.ErrorIs(t, err, llm.ErrNoChoices)
}

func TestNew(t *testing.T) {
	cfg := linerag.DefaultConfig()
	c, err := llm.New(linerag.ProviderOpenAI, cfg, "sk-test", nil)
	assert.NilError(t, err)
	assert.Assert(t, c != nil)

	_, err = llm.New(linerag.ProviderBedrock, cfg, "", nil)
	assert.ErrorContains(t, err, "aws config")

	_, err = llm.New("palm", cfg, "", nil)
	assert.ErrorContains(t, err, "unknown")
}
