package lake

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Clients bundles the AWS service clients the tool talks to.
type Clients struct {
	S3  *s3.Client
	SQS *sqs.Client
}

// NewClients builds S3 and SQS clients from the default AWS credential
// chain. A non-empty endpoint overrides the AWS endpoints (LocalStack and
// friends) and forces path-style S3 addressing.
func NewClients(ctx context.Context, region, endpoint string, pathStyle bool) (*Clients, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS SDK config: %w", err)
	}

	s3Opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  cfg.Credentials,
		HTTPClient:   cfg.HTTPClient,
		BaseEndpoint: cfg.BaseEndpoint,
		UsePathStyle: pathStyle,
	}
	sqsOpts := sqs.Options{
		Region:       cfg.Region,
		Credentials:  cfg.Credentials,
		HTTPClient:   cfg.HTTPClient,
		BaseEndpoint: cfg.BaseEndpoint,
	}
	if endpoint != "" {
		s3Opts.BaseEndpoint = aws.String(endpoint)
		s3Opts.UsePathStyle = true
		sqsOpts.BaseEndpoint = aws.String(endpoint)
	}

	return &Clients{
		S3:  s3.New(s3Opts),
		SQS: sqs.New(sqsOpts),
	}, nil
}
