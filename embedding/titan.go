package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const TitanModelID = "amazon.titan-embed-text-v1"

// BedrockAPI is the part of *bedrockruntime.Client used for embeddings and chat.
type BedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Titan embeds with Amazon Titan on Bedrock.
type Titan struct {
	client  BedrockAPI
	modelID string
}

type titanRequest struct {
	InputText string `json:"inputText"`
}

type titanResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

func NewTitan(client BedrockAPI) *Titan {
	return &Titan{client: client, modelID: TitanModelID}
}

func NewTitanFromConfig(cfg aws.Config) *Titan {
	return NewTitan(bedrockruntime.NewFromConfig(cfg))
}

func (t *Titan) Model() string {
	return "bedrock/" + t.modelID
}

func (t *Titan) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	body, err := json.Marshal(titanRequest{InputText: text})
	if err != nil {
		return nil, err
	}
	out, err := t.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(t.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", t.modelID, err)
	}
	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", t.modelID, err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%s returned no embedding", t.modelID)
	}
	return resp.Embedding, nil
}
