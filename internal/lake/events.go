package lake

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the slice of the SQS client this package uses.
type SQSAPI interface {
	CreateQueue(ctx context.Context, in *sqs.CreateQueueInput, opts ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
	GetQueueAttributes(ctx context.Context, in *sqs.GetQueueAttributesInput, opts ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
	SetQueueAttributes(ctx context.Context, in *sqs.SetQueueAttributesInput, opts ...func(*sqs.Options)) (*sqs.SetQueueAttributesOutput, error)
}

// wireEvents creates the tier's notification queue, allows S3 to send to it
// and points the bucket's object-created notifications at it. Returns the
// queue URL.
func (p *Provisioner) wireEvents(ctx context.Context, spec BucketSpec) (string, error) {
	created, err := p.sqs.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName: aws.String(spec.Queue),
	})
	if err != nil {
		return "", fmt.Errorf("create queue %s: %w", spec.Queue, err)
	}

	attrs, err := p.sqs.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       created.QueueUrl,
		AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameQueueArn},
	})
	if err != nil {
		return "", fmt.Errorf("get queue ARN for %s: %w", spec.Queue, err)
	}
	queueARN := attrs.Attributes[string(sqstypes.QueueAttributeNameQueueArn)]
	if queueARN == "" {
		return "", fmt.Errorf("queue %s returned no ARN attribute", spec.Queue)
	}

	policy, err := queuePolicy(queueARN, bucketARN(spec.Name))
	if err != nil {
		return "", fmt.Errorf("build queue policy: %w", err)
	}
	_, err = p.sqs.SetQueueAttributes(ctx, &sqs.SetQueueAttributesInput{
		QueueUrl: created.QueueUrl,
		Attributes: map[string]string{
			string(sqstypes.QueueAttributeNamePolicy): policy,
		},
	})
	if err != nil {
		return "", fmt.Errorf("set queue policy on %s: %w", spec.Queue, err)
	}

	_, err = p.s3.PutBucketNotificationConfiguration(ctx, &s3.PutBucketNotificationConfigurationInput{
		Bucket: aws.String(spec.Name),
		NotificationConfiguration: &types.NotificationConfiguration{
			QueueConfigurations: []types.QueueConfiguration{{
				Id:       aws.String("object-created"),
				QueueArn: aws.String(queueARN),
				Events:   []types.Event{types.EventS3ObjectCreated},
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("set bucket notification configuration: %w", err)
	}

	p.log.Info().
		Str("bucket", spec.Name).
		Str("queue", aws.ToString(created.QueueUrl)).
		Msg("object-created notifications wired")
	return aws.ToString(created.QueueUrl), nil
}

// queuePolicy allows S3 to deliver notifications from the given bucket and
// nothing else.
func queuePolicy(queueARN, bucketARN string) (string, error) {
	doc := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{{
			"Effect":    "Allow",
			"Principal": map[string]string{"Service": "s3.amazonaws.com"},
			"Action":    "sqs:SendMessage",
			"Resource":  queueARN,
			"Condition": map[string]any{
				"ArnEquals": map[string]string{"aws:SourceArn": bucketARN},
			},
		}},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
