// Package lake provisions and audits the S3 data lake of the patient
// outcome prediction platform: one bucket per tier (bronze raw, silver
// processed, gold analytics-ready) with versioning, default encryption,
// public-access blocking, tier-specific lifecycle rules and compliance tags.
package lake

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/samber/lo"
)

// Tier identifies a data-lake layer.
type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// Tiers lists all tiers in provisioning order.
func Tiers() []Tier {
	return []Tier{TierBronze, TierSilver, TierGold}
}

// ParseTier converts a string into a known tier.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierBronze, TierSilver, TierGold:
		return Tier(s), nil
	}
	return "", fmt.Errorf("unknown tier %q, must be one of bronze, silver, gold", s)
}

// BucketSpec is the desired state of one tier bucket.
type BucketSpec struct {
	Tier        Tier
	Name        string
	Region      string
	Environment string

	// Events requests an object-created notification queue for this bucket.
	Events bool
	Queue  string
}

// Specs expands the project settings into one spec per tier. events marks
// the tiers that get a notification queue.
func Specs(project, environment, region string, events map[Tier]bool) ([]BucketSpec, error) {
	specs := make([]BucketSpec, 0, len(Tiers()))
	for _, tier := range Tiers() {
		name, err := BucketName(project, environment, tier)
		if err != nil {
			return nil, err
		}
		spec := BucketSpec{
			Tier:        tier,
			Name:        name,
			Region:      region,
			Environment: environment,
			Events:      events[tier],
		}
		if spec.Events {
			queue, err := QueueName(project, environment, tier)
			if err != nil {
				return nil, err
			}
			spec.Queue = queue
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// bucketTags returns the compliance tag set applied to every tier bucket.
func bucketTags(spec BucketSpec) []types.Tag {
	return []types.Tag{
		{Key: aws.String("Project"), Value: aws.String("PatientOutcomePrediction")},
		{Key: aws.String("Environment"), Value: aws.String(spec.Environment)},
		{Key: aws.String("DataTier"), Value: aws.String(string(spec.Tier))},
		{Key: aws.String("Contains-PHI"), Value: aws.String("True")},
		{Key: aws.String("Compliance"), Value: aws.String("HIPAA")},
	}
}

func tagMap(tags []types.Tag) map[string]string {
	return lo.Associate(tags, func(t types.Tag) (string, string) {
		return aws.ToString(t.Key), aws.ToString(t.Value)
	})
}

func bucketARN(name string) string {
	return "arn:aws:s3:::" + name
}
