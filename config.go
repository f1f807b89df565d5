package linerag

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Reply modes.
const (
	ReplyEcho       = "echo"
	ReplyCompletion = "completion"
	ReplyRAG        = "rag"
)

// Providers.
const (
	ProviderOpenAI  = "openai"
	ProviderTitan   = "titan"
	ProviderBedrock = "bedrock"
	ProviderLocal   = "local"
)

var (
	ErrMissingSecretARN    = errors.New("SECRET_ARN is required")
	ErrMissingVectorBucket = errors.New("VECTOR_BUCKET is required")
)

// Config is read once at cold start.
type Config struct {
	SecretARN          string
	VectorBucket       string
	ReplyMode          string
	EmbeddingProvider  string
	CompletionProvider string
	OpenAIModel        string
	TopK               int
	ChunkSize          int
	ChunkOverlap       int
	LogLevel           string
}

func DefaultConfig() *Config {
	return &Config{
		ReplyMode:          ReplyRAG,
		EmbeddingProvider:  ProviderOpenAI,
		CompletionProvider: ProviderOpenAI,
		OpenAIModel:        "gpt-4",
		TopK:               3,
		ChunkSize:          1024,
		ChunkOverlap:       20,
		LogLevel:           "info",
	}
}

// LoadConfig reads the environment on top of DefaultConfig.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.SecretARN = getenv("SECRET_ARN")
	cfg.VectorBucket = getenv("VECTOR_BUCKET")
	setString(&cfg.ReplyMode, getenv("REPLY_MODE"))
	setString(&cfg.EmbeddingProvider, getenv("EMBEDDING_PROVIDER"))
	setString(&cfg.CompletionProvider, getenv("COMPLETION_PROVIDER"))
	setString(&cfg.OpenAIModel, getenv("OPENAI_MODEL"))
	setString(&cfg.LogLevel, getenv("LOG_LEVEL"))
	for _, v := range []struct {
		name string
		dst  *int
	}{
		{"TOP_K", &cfg.TopK},
		{"CHUNK_SIZE", &cfg.ChunkSize},
		{"CHUNK_OVERLAP", &cfg.ChunkOverlap},
	} {
		raw := getenv(v.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.name, err)
		}
		*v.dst = n
	}
	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks the settings both functions need.
func (c *Config) Validate() error {
	if c.SecretARN == "" {
		return ErrMissingSecretARN
	}
	if c.VectorBucket == "" {
		return ErrMissingVectorBucket
	}
	switch c.ReplyMode {
	case ReplyEcho, ReplyCompletion, ReplyRAG:
	default:
		return fmt.Errorf("unknown REPLY_MODE %q", c.ReplyMode)
	}
	switch c.EmbeddingProvider {
	case ProviderOpenAI, ProviderTitan, ProviderLocal:
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}
	switch c.CompletionProvider {
	case ProviderOpenAI, ProviderBedrock:
	default:
		return fmt.Errorf("unknown COMPLETION_PROVIDER %q", c.CompletionProvider)
	}
	if c.TopK < 1 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	if c.ChunkSize < 1 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("invalid chunking %d/%d", c.ChunkSize, c.ChunkOverlap)
	}
	return nil
}
