package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/embedding"
)

const (
	ClaudeModelID    = "anthropic.claude-3-haiku-20240307-v1:0"
	anthropicVersion = "bedrock-2023-05-31"
)

// Bedrock completes with Anthropic Claude through the Bedrock runtime.
type Bedrock struct {
	client    embedding.BedrockAPI
	modelID   string
	maxTokens int
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content []claudeContent `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content    []claudeContent `json:"content"`
	StopReason string          `json:"stop_reason"`
}

func NewBedrock(client embedding.BedrockAPI) *Bedrock {
	return &Bedrock{client: client, modelID: ClaudeModelID, maxTokens: 1024}
}

func NewBedrockFromConfig(cfg aws.Config) *Bedrock {
	return NewBedrock(bedrockruntime.NewFromConfig(cfg))
}

// Complete sends the conversation. System messages go to the system field,
// Claude does not accept them inline.
func (b *Bedrock) Complete(ctx context.Context, messages []Message) (string, error) {
	req := claudeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        b.maxTokens,
	}
	var system []string
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		req.Messages = append(req.Messages, claudeMessage{
			Role:    m.Role,
			Content: []claudeContent{{Type: "text", Text: m.Content}},
		})
	}
	req.System = strings.Join(system, "\n")

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	linerag.Logger.Debug("Asking claude", "model", b.modelID, "messages", len(req.Messages))
	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("invoke %s: %w", b.modelID, err)
	}
	var resp claudeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decode %s response: %w", b.modelID, err)
	}
	var sb strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoChoices
	}
	return sb.String(), nil
}
