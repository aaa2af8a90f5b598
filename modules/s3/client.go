package s3

import (
	"context"
	"fmt"

	"github.com/CadentTech/bigrays/internal/awsconf"
	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// KeyEndpoint points the client at an S3 compatible endpoint such as MinIO.
const KeyEndpoint = "S3_ENDPOINT"

// Client opens object-store resources.
type Client struct{}

// RequiredConfigs implements resource.Client.
func (Client) RequiredConfigs(cfg *config.Store) []string {
	return awsconf.RequiredConfigs(cfg)
}

// Open implements resource.Client.
func (Client) Open(ctx context.Context, cfg *config.Store) (any, error) {
	awsCfg, err := awsconf.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	endpoint := cfg.Get(KeyEndpoint)
	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	ctxlog.FromContext(ctx).Debug("S3 client created.", "region", awsCfg.Region, "endpoint", endpoint)
	return NewStore(api), nil
}

// Close implements resource.Client. S3 clients hold no connection of their
// own, so there is nothing to release.
func (Client) Close(context.Context, any) error { return nil }
