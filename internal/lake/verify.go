package lake

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/samber/lo"

	"github.com/goodwin282/patient-outcome-prediction-pipeline/internal/log"
)

// Finding is one verified setting of one bucket.
type Finding struct {
	Bucket string
	Check  string
	Want   string
	Got    string
	OK     bool
}

// Failures filters the findings down to the drifted ones.
func Failures(findings []Finding) []Finding {
	return lo.Filter(findings, func(f Finding, _ int) bool { return !f.OK })
}

// Verifier reads back the managed bucket settings and compares them with
// the desired state.
type Verifier struct {
	s3 S3API
}

func NewVerifier(s3c S3API) *Verifier {
	return &Verifier{s3: s3c}
}

// Verify audits every spec and returns the combined findings.
func (v *Verifier) Verify(ctx context.Context, specs []BucketSpec) ([]Finding, error) {
	var findings []Finding
	for _, spec := range specs {
		fs, err := v.VerifyBucket(ctx, spec)
		if err != nil {
			return nil, err
		}
		findings = append(findings, fs...)
	}
	logger := log.WithComponent("verify")
	logger.Info().
		Int("checks", len(findings)).
		Int("failed", len(Failures(findings))).
		Msg("audit complete")
	return findings, nil
}

// VerifyBucket audits one bucket. A missing configuration block is drift,
// not an error; only transport or access failures abort the audit.
func (v *Verifier) VerifyBucket(ctx context.Context, spec BucketSpec) ([]Finding, error) {
	var findings []Finding
	add := func(check, want, got string) {
		findings = append(findings, Finding{
			Bucket: spec.Name,
			Check:  check,
			Want:   want,
			Got:    got,
			OK:     want == got,
		})
	}

	if _, err := v.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(spec.Name)}); err != nil {
		add("exists", "bucket present", "missing or inaccessible")
		return findings, nil
	}
	add("exists", "bucket present", "bucket present")

	vers, err := v.s3.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(spec.Name)})
	if err != nil {
		return nil, fmt.Errorf("get versioning for %s: %w", spec.Name, err)
	}
	add("versioning", string(types.BucketVersioningStatusEnabled), string(vers.Status))

	enc, err := v.s3.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(spec.Name)})
	switch {
	case isMissingConfig(err):
		add("encryption", string(types.ServerSideEncryptionAes256), "not configured")
	case err != nil:
		return nil, fmt.Errorf("get encryption for %s: %w", spec.Name, err)
	default:
		algorithm, bucketKey := encryptionSummary(enc.ServerSideEncryptionConfiguration)
		add("encryption", string(types.ServerSideEncryptionAes256), algorithm)
		add("encryption bucket key", "true", strconv.FormatBool(bucketKey))
	}

	pab, err := v.s3.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{Bucket: aws.String(spec.Name)})
	switch {
	case isMissingConfig(err):
		add("public access block", "all enabled", "not configured")
	case err != nil:
		return nil, fmt.Errorf("get public access block for %s: %w", spec.Name, err)
	default:
		add("public access block", "all enabled", publicAccessSummary(pab.PublicAccessBlockConfiguration))
	}

	lc, err := v.s3.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{Bucket: aws.String(spec.Name)})
	want := transitionSummary(LifecycleRules(spec.Tier))
	switch {
	case isMissingConfig(err):
		add("lifecycle", want, "not configured")
	case err != nil:
		return nil, fmt.Errorf("get lifecycle for %s: %w", spec.Name, err)
	default:
		add("lifecycle", want, transitionSummary(lc.Rules))
	}

	tg, err := v.s3.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(spec.Name)})
	switch {
	case isMissingConfig(err):
		for _, tag := range bucketTags(spec) {
			add("tag "+aws.ToString(tag.Key), aws.ToString(tag.Value), "(missing)")
		}
	case err != nil:
		return nil, fmt.Errorf("get tags for %s: %w", spec.Name, err)
	default:
		got := tagMap(tg.TagSet)
		for _, tag := range bucketTags(spec) {
			key := aws.ToString(tag.Key)
			value, ok := got[key]
			if !ok {
				value = "(missing)"
			}
			add("tag "+key, aws.ToString(tag.Value), value)
		}
	}

	return findings, nil
}

// isMissingConfig recognises the S3 "this bucket has no such configuration"
// errors that verify treats as drift.
func isMissingConfig(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NoSuchLifecycleConfiguration",
		"NoSuchTagSet",
		"NoSuchPublicAccessBlockConfiguration",
		"ServerSideEncryptionConfigurationNotFoundError":
		return true
	}
	return false
}

func encryptionSummary(cfg *types.ServerSideEncryptionConfiguration) (algorithm string, bucketKey bool) {
	if cfg == nil || len(cfg.Rules) == 0 {
		return "not configured", false
	}
	rule := cfg.Rules[0]
	if rule.ApplyServerSideEncryptionByDefault != nil {
		algorithm = string(rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm)
	}
	return algorithm, aws.ToBool(rule.BucketKeyEnabled)
}

func publicAccessSummary(cfg *types.PublicAccessBlockConfiguration) string {
	if cfg == nil {
		return "not configured"
	}
	var disabled []string
	if !aws.ToBool(cfg.BlockPublicAcls) {
		disabled = append(disabled, "BlockPublicAcls")
	}
	if !aws.ToBool(cfg.IgnorePublicAcls) {
		disabled = append(disabled, "IgnorePublicAcls")
	}
	if !aws.ToBool(cfg.BlockPublicPolicy) {
		disabled = append(disabled, "BlockPublicPolicy")
	}
	if !aws.ToBool(cfg.RestrictPublicBuckets) {
		disabled = append(disabled, "RestrictPublicBuckets")
	}
	if len(disabled) == 0 {
		return "all enabled"
	}
	return "disabled: " + strings.Join(disabled, ", ")
}

func transitionSummary(rules []types.LifecycleRule) string {
	var parts []string
	for _, rule := range rules {
		if rule.Status != types.ExpirationStatusEnabled {
			continue
		}
		parts = append(parts, lo.Map(rule.Transitions, func(t types.Transition, _ int) string {
			return fmt.Sprintf("%dd->%s", aws.ToInt32(t.Days), t.StorageClass)
		})...)
	}
	if len(parts) == 0 {
		return "no transitions"
	}
	return strings.Join(parts, ", ")
}
