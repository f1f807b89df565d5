// Package embedding provides the embedding functions used to build and query
// the chromem-go collection.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/philippgille/chromem-go"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
)

var ErrEmptyText = errors.New("cannot embed empty text")

// Embedder turns text into a vector. Model names the vector space so an index
// is never queried with vectors from a different model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Func adapts an Embedder to chromem-go.
func Func(e Embedder) chromem.EmbeddingFunc {
	return e.Embed
}

// New selects the embedder named by provider.
func New(provider, openAIKey string, awsCfg *aws.Config) (Embedder, error) {
	switch provider {
	case linerag.ProviderOpenAI:
		return NewOpenAI(openAIKey)
	case linerag.ProviderTitan:
		if awsCfg == nil {
			return nil, errors.New("titan embeddings need an aws config")
		}
		return NewTitanFromConfig(*awsCfg), nil
	case linerag.ProviderLocal:
		return NewLocal(DefaultLocalDimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}
