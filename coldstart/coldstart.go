// Package coldstart resolves what a function needs before it serves its first
// invocation.
package coldstart

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/secrets"
)

// Env is built once per execution environment and passed to the handlers.
type Env struct {
	Config  *linerag.Config
	AWS     aws.Config
	Secrets *secrets.Bundle
}

// Init reads the environment, loads the AWS config and fetches the secret bundle.
func Init(ctx context.Context) (*Env, error) {
	cfg, err := linerag.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return InitWith(ctx, cfg, awsCfg, secretsmanager.NewFromConfig(awsCfg))
}

// InitWith is Init with the configuration and Secrets Manager client supplied.
func InitWith(ctx context.Context, cfg *linerag.Config, awsCfg aws.Config, sm secrets.SecretsManagerAPI) (*Env, error) {
	bundle, err := secrets.Fetch(ctx, sm, cfg.SecretARN)
	if err != nil {
		return nil, err
	}
	linerag.Logger.Info("Cold start complete", "reply_mode", cfg.ReplyMode, "embedding", cfg.EmbeddingProvider, "completion", cfg.CompletionProvider)
	return &Env{Config: cfg, AWS: awsCfg, Secrets: bundle}, nil
}
