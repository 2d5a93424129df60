package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretValueGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// AWS reads a JSON document from Secrets Manager and returns one of its keys.
type AWS struct {
	client   secretValueGetter
	secretID string
	key      string
}

// NewAWS builds a Secrets Manager client from the default credential chain.
func NewAWS(ctx context.Context, region, secretID, key string) (*AWS, error) {
	cfg, err := loadDefaultAWSConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return newAWSWithClient(secretsmanager.NewFromConfig(cfg), secretID, key), nil
}

func newAWSWithClient(client secretValueGetter, secretID, key string) *AWS {
	return &AWS{client: client, secretID: secretID, key: key}
}

func (a *AWS) SigningKey(ctx context.Context) ([]byte, error) {
	out, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(a.secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", a.secretID, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return nil, fmt.Errorf("%w: %s has no secret string", ErrSecretNotFound, a.secretID)
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &values); err != nil {
		return nil, fmt.Errorf("failed to decode secret %s: %w", a.secretID, err)
	}

	v := values[a.key]
	if v == "" {
		return nil, fmt.Errorf("%w: %s is missing %s", ErrSecretNotFound, a.secretID, a.key)
	}
	return []byte(v), nil
}
