package lake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/goodwin282/patient-outcome-prediction-pipeline/internal/log"
)

// S3API is the slice of the S3 client this package uses.
type S3API interface {
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketVersioning(ctx context.Context, in *s3.PutBucketVersioningInput, opts ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error)
	PutBucketEncryption(ctx context.Context, in *s3.PutBucketEncryptionInput, opts ...func(*s3.Options)) (*s3.PutBucketEncryptionOutput, error)
	PutPublicAccessBlock(ctx context.Context, in *s3.PutPublicAccessBlockInput, opts ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error)
	PutBucketLifecycleConfiguration(ctx context.Context, in *s3.PutBucketLifecycleConfigurationInput, opts ...func(*s3.Options)) (*s3.PutBucketLifecycleConfigurationOutput, error)
	PutBucketTagging(ctx context.Context, in *s3.PutBucketTaggingInput, opts ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error)
	PutBucketNotificationConfiguration(ctx context.Context, in *s3.PutBucketNotificationConfigurationInput, opts ...func(*s3.Options)) (*s3.PutBucketNotificationConfigurationOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetBucketVersioning(ctx context.Context, in *s3.GetBucketVersioningInput, opts ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error)
	GetBucketEncryption(ctx context.Context, in *s3.GetBucketEncryptionInput, opts ...func(*s3.Options)) (*s3.GetBucketEncryptionOutput, error)
	GetPublicAccessBlock(ctx context.Context, in *s3.GetPublicAccessBlockInput, opts ...func(*s3.Options)) (*s3.GetPublicAccessBlockOutput, error)
	GetBucketLifecycleConfiguration(ctx context.Context, in *s3.GetBucketLifecycleConfigurationInput, opts ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error)
	GetBucketTagging(ctx context.Context, in *s3.GetBucketTaggingInput, opts ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
}

// Provisioner applies the desired bucket state to AWS.
type Provisioner struct {
	s3     S3API
	sqs    SQSAPI
	dryRun bool
	log    zerolog.Logger
}

// NewProvisioner returns a provisioner over the given clients. With dryRun
// set, Run only logs the intended actions and never touches the clients.
func NewProvisioner(s3c S3API, sqsc SQSAPI, dryRun bool) *Provisioner {
	return &Provisioner{
		s3:     s3c,
		sqs:    sqsc,
		dryRun: dryRun,
		log:    log.WithComponent("provision"),
	}
}

// Result records what a provisioning run created or confirmed.
type Result struct {
	Buckets map[Tier]string // tier -> bucket name
	Queues  map[Tier]string // tier -> notification queue URL
}

// Run provisions every spec. A failing bucket does not stop the remaining
// tiers; the error reports which tiers failed.
func (p *Provisioner) Run(ctx context.Context, specs []BucketSpec) (*Result, error) {
	res := &Result{
		Buckets: make(map[Tier]string),
		Queues:  make(map[Tier]string),
	}

	var failed []Tier
	for _, spec := range specs {
		queueURL, err := p.provisionBucket(ctx, spec)
		if err != nil {
			p.log.Error().Err(err).
				Str("bucket", spec.Name).
				Str("tier", string(spec.Tier)).
				Msg("bucket provisioning failed")
			failed = append(failed, spec.Tier)
			continue
		}
		res.Buckets[spec.Tier] = spec.Name
		if queueURL != "" {
			res.Queues[spec.Tier] = queueURL
		}
	}

	if len(failed) > 0 {
		names := lo.Map(failed, func(t Tier, _ int) string { return string(t) })
		return res, fmt.Errorf("provisioning failed for tiers: %s", strings.Join(names, ", "))
	}
	p.log.Info().Int("buckets", len(res.Buckets)).Msg("data lake buckets provisioned")
	return res, nil
}

// provisionBucket applies every step in order and stops at the first
// failure, leaving the remaining steps for a later re-run.
func (p *Provisioner) provisionBucket(ctx context.Context, spec BucketSpec) (string, error) {
	logger := p.log.With().Str("bucket", spec.Name).Str("tier", string(spec.Tier)).Logger()
	logger.Info().Msg("provisioning bucket")

	steps := []struct {
		name string
		run  func(context.Context, BucketSpec) error
	}{
		{"create", p.createBucket},
		{"versioning", p.enableVersioning},
		{"encryption", p.applyEncryption},
		{"public access block", p.blockPublicAccess},
		{"lifecycle", p.applyLifecycle},
		{"tags", p.applyTags},
	}
	for _, step := range steps {
		if p.dryRun {
			logger.Info().Str("step", step.name).Msg("dry run, would apply")
			continue
		}
		if err := step.run(ctx, spec); err != nil {
			return "", fmt.Errorf("%s: %w", step.name, err)
		}
		logger.Debug().Str("step", step.name).Msg("step applied")
	}

	if !spec.Events {
		return "", nil
	}
	if p.dryRun {
		logger.Info().Str("queue", spec.Queue).Msg("dry run, would wire object-created notifications")
		return "", nil
	}
	queueURL, err := p.wireEvents(ctx, spec)
	if err != nil {
		return "", fmt.Errorf("events: %w", err)
	}
	return queueURL, nil
}

func (p *Provisioner) createBucket(ctx context.Context, spec BucketSpec) error {
	in := &s3.CreateBucketInput{Bucket: aws.String(spec.Name)}
	// us-east-1 rejects an explicit LocationConstraint.
	if spec.Region != "us-east-1" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(spec.Region),
		}
	}

	_, err := p.s3.CreateBucket(ctx, in)
	var owned *types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		p.log.Info().Str("bucket", spec.Name).Msg("bucket already exists and is owned by this account")
		return nil
	}
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", spec.Name, err)
	}
	return nil
}

func (p *Provisioner) enableVersioning(ctx context.Context, spec BucketSpec) error {
	_, err := p.s3.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
		Bucket: aws.String(spec.Name),
		VersioningConfiguration: &types.VersioningConfiguration{
			Status: types.BucketVersioningStatusEnabled,
		},
	})
	if err != nil {
		return fmt.Errorf("enable versioning: %w", err)
	}
	return nil
}

func (p *Provisioner) applyEncryption(ctx context.Context, spec BucketSpec) error {
	_, err := p.s3.PutBucketEncryption(ctx, &s3.PutBucketEncryptionInput{
		Bucket: aws.String(spec.Name),
		ServerSideEncryptionConfiguration: &types.ServerSideEncryptionConfiguration{
			Rules: []types.ServerSideEncryptionRule{{
				ApplyServerSideEncryptionByDefault: &types.ServerSideEncryptionByDefault{
					SSEAlgorithm: types.ServerSideEncryptionAes256,
				},
				BucketKeyEnabled: aws.Bool(true),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("apply default encryption: %w", err)
	}
	return nil
}

func (p *Provisioner) blockPublicAccess(ctx context.Context, spec BucketSpec) error {
	_, err := p.s3.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(spec.Name),
		PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(true),
			IgnorePublicAcls:      aws.Bool(true),
			BlockPublicPolicy:     aws.Bool(true),
			RestrictPublicBuckets: aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("block public access: %w", err)
	}
	return nil
}

func (p *Provisioner) applyLifecycle(ctx context.Context, spec BucketSpec) error {
	_, err := p.s3.PutBucketLifecycleConfiguration(ctx, &s3.PutBucketLifecycleConfigurationInput{
		Bucket: aws.String(spec.Name),
		LifecycleConfiguration: &types.BucketLifecycleConfiguration{
			Rules: LifecycleRules(spec.Tier),
		},
	})
	if err != nil {
		return fmt.Errorf("apply lifecycle policy: %w", err)
	}
	return nil
}

func (p *Provisioner) applyTags(ctx context.Context, spec BucketSpec) error {
	_, err := p.s3.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket:  aws.String(spec.Name),
		Tagging: &types.Tagging{TagSet: bucketTags(spec)},
	})
	if err != nil {
		return fmt.Errorf("apply compliance tags: %w", err)
	}
	return nil
}
