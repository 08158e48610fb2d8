package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	log "github.com/sirupsen/logrus"
)

const secretPrefix = "ssm:"

// ssmClient is the part of the SSM API used to read parameters.
type ssmClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SecretResolver returns the value of a named secret.
type SecretResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

type SSMResolver struct {
	client ssmClient
}

// NewSSMResolver creates a resolver reading from AWS SSM Parameter Store with the default AWS credential chain.
func NewSSMResolver(ctx context.Context) (*SSMResolver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SSMResolver{client: ssm.NewFromConfig(awsCfg)}, nil
}

func (r *SSMResolver) Resolve(ctx context.Context, name string) (string, error) {
	result, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get parameter %s: %w", name, err)
	}
	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("parameter %s is empty", name)
	}
	return *result.Parameter.Value, nil
}

// ResolveSecrets replaces every secret reference (ssm:/name) in the configuration with its value.
func ResolveSecrets(ctx context.Context, app *Application, resolver SecretResolver) error {
	for _, field := range secretFields(app) {
		if !strings.HasPrefix(*field, secretPrefix) {
			continue
		}
		name := strings.TrimPrefix(*field, secretPrefix)
		value, err := resolver.Resolve(ctx, name)
		if err != nil {
			log.Errorf("failed to resolve secret %s: %v", name, err)
			return err
		}
		*field = value
	}
	return nil
}

func hasSecretRefs(app Application) bool {
	for _, field := range secretFields(&app) {
		if strings.HasPrefix(*field, secretPrefix) {
			return true
		}
	}
	return false
}

func secretFields(app *Application) []*string {
	return []*string{
		&app.Database.Pass,
		&app.Google.ClientId,
		&app.Google.ClientSecret,
	}
}
