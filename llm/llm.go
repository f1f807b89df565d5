// Package llm sends role tagged prompts to a completion API.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrNoChoices = errors.New("completion returned no text")

type Message struct {
	Role    string
	Content string
}

// Completer generates the next assistant message.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// User wraps prompt in a single user message.
func User(prompt string) []Message {
	return []Message{{Role: RoleUser, Content: prompt}}
}

// New selects the completer named by provider.
func New(provider string, cfg *linerag.Config, openAIKey string, awsCfg *aws.Config) (Completer, error) {
	switch provider {
	case linerag.ProviderOpenAI:
		return NewOpenAI(openAIKey, WithModel(cfg.OpenAIModel))
	case linerag.ProviderBedrock:
		if awsCfg == nil {
			return nil, errors.New("bedrock completion needs an aws config")
		}
		return NewBedrockFromConfig(*awsCfg), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", provider)
	}
}
