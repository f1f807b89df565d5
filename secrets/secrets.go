// Package secrets resolves the credential bundle kept in AWS Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Keys of the secret JSON object.
const (
	KeyChannelAccessToken = "channel-access-token"
	KeyChannelSecret      = "channel-secret"
	KeyOpenAIAPIKey       = "openai-api-key"
)

var (
	ErrMissingKey  = errors.New("secret key missing")
	ErrEmptySecret = errors.New("secret has no string value")
)

// SecretsManagerAPI is the part of *secretsmanager.Client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Bundle is immutable once resolved.
type Bundle struct {
	ChannelAccessToken string
	ChannelSecret      string
	OpenAIAPIKey       string
}

// Fetch reads secretID and parses it into a Bundle.
func Fetch(ctx context.Context, client SecretsManagerAPI, secretID string) (*Bundle, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %s: %w", secretID, err)
	}
	if out.SecretString == nil {
		return nil, ErrEmptySecret
	}
	return Parse([]byte(aws.ToString(out.SecretString)))
}

// Parse decodes a flat string map and requires all three keys.
func Parse(raw []byte) (*Bundle, error) {
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode secret: %w", err)
	}
	b := &Bundle{}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{KeyChannelAccessToken, &b.ChannelAccessToken},
		{KeyChannelSecret, &b.ChannelSecret},
		{KeyOpenAIAPIKey, &b.OpenAIAPIKey},
	} {
		v, ok := m[f.key]
		if !ok || v == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingKey, f.key)
		}
		*f.dst = v
	}
	return b, nil
}

// Map returns the bundle keyed like the stored secret.
func (b *Bundle) Map() map[string]string {
	return map[string]string{
		KeyChannelAccessToken: b.ChannelAccessToken,
		KeyChannelSecret:      b.ChannelSecret,
		KeyOpenAIAPIKey:       b.OpenAIAPIKey,
	}
}
