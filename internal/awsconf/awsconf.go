// Package awsconf builds AWS SDK configuration from the config Store.
package awsconf

import (
	"context"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Config keys shared by the AWS backed resources.
const (
	KeyAccessKeyID     = "AWS_ACCESS_KEY_ID"
	KeySecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	KeySessionToken    = "AWS_SESSION_TOKEN"
	KeyRegion          = "AWS_REGION"
	// KeyRequireSecrets set to false lets the SDK's default credential
	// chain (instance roles, shared profiles) supply credentials.
	KeyRequireSecrets = "AWS_REQUIRE_SECRETS"
)

// DefaultRegion is used when neither the Store nor the SDK's own sources
// name a region.
const DefaultRegion = "us-east-1"

// RequiredConfigs returns the keys an AWS client needs, followed by extra.
func RequiredConfigs(cfg *config.Store, extra ...string) []string {
	require, err := cfg.Bool(KeyRequireSecrets, true)
	if err != nil {
		require = true
	}
	var keys []string
	if require {
		keys = append(keys, KeyAccessKeyID, KeySecretAccessKey)
	}
	return append(keys, extra...)
}

// Load resolves an aws.Config. Static credentials from the Store take
// precedence over the SDK's default chain.
func Load(ctx context.Context, cfg *config.Store) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region := cfg.Get(KeyRegion); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if id := cfg.Get(KeyAccessKeyID); id != "" {
		provider := credentials.NewStaticCredentialsProvider(id, cfg.Get(KeySecretAccessKey), cfg.Get(KeySessionToken))
		opts = append(opts, awsconfig.WithCredentialsProvider(provider))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	if awsCfg.Region == "" {
		awsCfg.Region = DefaultRegion
	}
	return awsCfg, nil
}
