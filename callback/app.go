package callback

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/embedding"
	"github.com/hsmtkk/turbo-octo-pancake/llm"
	"github.com/hsmtkk/turbo-octo-pancake/objectstore"
	"github.com/hsmtkk/turbo-octo-pancake/query"
	"github.com/hsmtkk/turbo-octo-pancake/secrets"
)

// NewResponder builds the responder selected by cfg.ReplyMode.
// s3Client is only used in rag mode.
func NewResponder(cfg *linerag.Config, bundle *secrets.Bundle, awsCfg *aws.Config, s3Client objectstore.S3API) (Responder, error) {
	if cfg.ReplyMode == linerag.ReplyEcho {
		return Echo{}, nil
	}
	completer, err := llm.New(cfg.CompletionProvider, cfg, bundle.OpenAIAPIKey, awsCfg)
	if err != nil {
		return nil, err
	}
	switch cfg.ReplyMode {
	case linerag.ReplyCompletion:
		return Completion{Completer: completer}, nil
	case linerag.ReplyRAG:
		e, err := embedding.New(cfg.EmbeddingProvider, bundle.OpenAIAPIKey, awsCfg)
		if err != nil {
			return nil, err
		}
		if s3Client == nil {
			if awsCfg == nil {
				return nil, fmt.Errorf("rag mode needs an s3 client")
			}
			s3Client = s3.NewFromConfig(*awsCfg)
		}
		return RAG{
			Source: BucketIndex{
				Store:    objectstore.New(s3Client),
				Bucket:   cfg.VectorBucket,
				Embedder: e,
			},
			Completer: completer,
			Options:   []query.Option{query.WithTopK(cfg.TopK)},
		}, nil
	default:
		return nil, fmt.Errorf("unknown reply mode %q", cfg.ReplyMode)
	}
}

// NewApp wires the handler the query function serves.
func NewApp(cfg *linerag.Config, bundle *secrets.Bundle, awsCfg *aws.Config) (*Handler, error) {
	responder, err := NewResponder(cfg, bundle, awsCfg, nil)
	if err != nil {
		return nil, err
	}
	replier, err := NewLineReplier(bundle.ChannelAccessToken)
	if err != nil {
		return nil, err
	}
	return NewHandler(bundle.ChannelSecret, responder, replier), nil
}
