package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/embedding"
	"github.com/hsmtkk/turbo-octo-pancake/secrets"
)

type globalFlags struct {
	logLevel  string
	embedding string
	secretARN string
	openAIKey string
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "linerag",
		Short:         "Build, query and exercise the LINE retrieval bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			linerag.SetupTextLogger(cmd.ErrOrStderr(), g.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "debug, info, warn or error")
	root.PersistentFlags().StringVar(&g.embedding, "embedding", envOr("EMBEDDING_PROVIDER", linerag.ProviderOpenAI), "embedding provider: openai, titan or local")
	root.PersistentFlags().StringVar(&g.secretARN, "secret-arn", os.Getenv("SECRET_ARN"), "Secrets Manager secret holding the bot credentials")
	root.PersistentFlags().StringVar(&g.openAIKey, "openai-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key, overrides the secret")

	root.AddCommand(
		newIngestCmd(g),
		newAskCmd(g),
		newInvokeCmd(g),
		newServeCmd(g),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// awsConfig is loaded lazily so local-only commands work without credentials.
func awsConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return cfg, nil
}

// bundle resolves credentials from the secret, with --openai-key taking precedence.
func (g *globalFlags) bundle(ctx context.Context) (*secrets.Bundle, error) {
	b := &secrets.Bundle{}
	if g.secretARN != "" {
		cfg, err := awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		b, err = secrets.Fetch(ctx, secretsmanager.NewFromConfig(cfg), g.secretARN)
		if err != nil {
			return nil, err
		}
	}
	if g.openAIKey != "" {
		b.OpenAIAPIKey = g.openAIKey
	}
	return b, nil
}

func (g *globalFlags) embedder(ctx context.Context) (embedding.Embedder, error) {
	if g.embedding == linerag.ProviderLocal {
		return embedding.New(g.embedding, "", nil)
	}
	var awsCfg *aws.Config
	if g.embedding == linerag.ProviderTitan {
		cfg, err := awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		awsCfg = &cfg
	}
	b, err := g.bundle(ctx)
	if err != nil {
		return nil, err
	}
	return embedding.New(g.embedding, b.OpenAIAPIKey, awsCfg)
}
