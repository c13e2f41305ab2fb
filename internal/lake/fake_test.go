package lake

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
)

// apiError is a minimal smithy.APIError for simulating S3 error codes.
type apiError struct{ code string }

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

// fakeS3 records calls and serves configurable responses.
type fakeS3 struct {
	calls []string

	createErr          error
	failVersioningFor  string
	encryptionErr      error
	publicAccessErr    error
	lifecycleErr       error
	taggingErr         error
	notificationErr    error
	createInputs       []*s3.CreateBucketInput
	notificationInputs []*s3.PutBucketNotificationConfigurationInput

	headErr            error
	getVersioning      *s3.GetBucketVersioningOutput
	getVersioningErr   error
	getEncryption      *s3.GetBucketEncryptionOutput
	getEncryptionErr   error
	getPublicAccess    *s3.GetPublicAccessBlockOutput
	getPublicAccessErr error
	getLifecycle       *s3.GetBucketLifecycleConfigurationOutput
	getLifecycleErr    error
	getTagging         *s3.GetBucketTaggingOutput
	getTaggingErr      error
}

func (f *fakeS3) record(op string, bucket *string) {
	f.calls = append(f.calls, op+":"+aws.ToString(bucket))
}

func (f *fakeS3) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.record("CreateBucket", in.Bucket)
	f.createInputs = append(f.createInputs, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutBucketVersioning(_ context.Context, in *s3.PutBucketVersioningInput, _ ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error) {
	f.record("PutBucketVersioning", in.Bucket)
	if f.failVersioningFor != "" && aws.ToString(in.Bucket) == f.failVersioningFor {
		return nil, &apiError{code: "AccessDenied"}
	}
	return &s3.PutBucketVersioningOutput{}, nil
}

func (f *fakeS3) PutBucketEncryption(_ context.Context, in *s3.PutBucketEncryptionInput, _ ...func(*s3.Options)) (*s3.PutBucketEncryptionOutput, error) {
	f.record("PutBucketEncryption", in.Bucket)
	return &s3.PutBucketEncryptionOutput{}, f.encryptionErr
}

func (f *fakeS3) PutPublicAccessBlock(_ context.Context, in *s3.PutPublicAccessBlockInput, _ ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error) {
	f.record("PutPublicAccessBlock", in.Bucket)
	return &s3.PutPublicAccessBlockOutput{}, f.publicAccessErr
}

func (f *fakeS3) PutBucketLifecycleConfiguration(_ context.Context, in *s3.PutBucketLifecycleConfigurationInput, _ ...func(*s3.Options)) (*s3.PutBucketLifecycleConfigurationOutput, error) {
	f.record("PutBucketLifecycleConfiguration", in.Bucket)
	return &s3.PutBucketLifecycleConfigurationOutput{}, f.lifecycleErr
}

func (f *fakeS3) PutBucketTagging(_ context.Context, in *s3.PutBucketTaggingInput, _ ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error) {
	f.record("PutBucketTagging", in.Bucket)
	return &s3.PutBucketTaggingOutput{}, f.taggingErr
}

func (f *fakeS3) PutBucketNotificationConfiguration(_ context.Context, in *s3.PutBucketNotificationConfigurationInput, _ ...func(*s3.Options)) (*s3.PutBucketNotificationConfigurationOutput, error) {
	f.record("PutBucketNotificationConfiguration", in.Bucket)
	f.notificationInputs = append(f.notificationInputs, in)
	return &s3.PutBucketNotificationConfigurationOutput{}, f.notificationErr
}

func (f *fakeS3) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.record("HeadBucket", in.Bucket)
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) GetBucketVersioning(_ context.Context, in *s3.GetBucketVersioningInput, _ ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error) {
	f.record("GetBucketVersioning", in.Bucket)
	if f.getVersioningErr != nil {
		return nil, f.getVersioningErr
	}
	if f.getVersioning != nil {
		return f.getVersioning, nil
	}
	return &s3.GetBucketVersioningOutput{}, nil
}

func (f *fakeS3) GetBucketEncryption(_ context.Context, in *s3.GetBucketEncryptionInput, _ ...func(*s3.Options)) (*s3.GetBucketEncryptionOutput, error) {
	f.record("GetBucketEncryption", in.Bucket)
	if f.getEncryptionErr != nil {
		return nil, f.getEncryptionErr
	}
	if f.getEncryption != nil {
		return f.getEncryption, nil
	}
	return &s3.GetBucketEncryptionOutput{}, nil
}

func (f *fakeS3) GetPublicAccessBlock(_ context.Context, in *s3.GetPublicAccessBlockInput, _ ...func(*s3.Options)) (*s3.GetPublicAccessBlockOutput, error) {
	f.record("GetPublicAccessBlock", in.Bucket)
	if f.getPublicAccessErr != nil {
		return nil, f.getPublicAccessErr
	}
	if f.getPublicAccess != nil {
		return f.getPublicAccess, nil
	}
	return &s3.GetPublicAccessBlockOutput{}, nil
}

func (f *fakeS3) GetBucketLifecycleConfiguration(_ context.Context, in *s3.GetBucketLifecycleConfigurationInput, _ ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error) {
	f.record("GetBucketLifecycleConfiguration", in.Bucket)
	if f.getLifecycleErr != nil {
		return nil, f.getLifecycleErr
	}
	if f.getLifecycle != nil {
		return f.getLifecycle, nil
	}
	return &s3.GetBucketLifecycleConfigurationOutput{}, nil
}

func (f *fakeS3) GetBucketTagging(_ context.Context, in *s3.GetBucketTaggingInput, _ ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
	f.record("GetBucketTagging", in.Bucket)
	if f.getTaggingErr != nil {
		return nil, f.getTaggingErr
	}
	if f.getTagging != nil {
		return f.getTagging, nil
	}
	return &s3.GetBucketTaggingOutput{}, nil
}

// compliantS3 returns a fake pre-loaded with the desired state of spec, so
// every verify check passes.
func compliantS3(spec BucketSpec) *fakeS3 {
	return &fakeS3{
		getVersioning: &s3.GetBucketVersioningOutput{
			Status: types.BucketVersioningStatusEnabled,
		},
		getEncryption: &s3.GetBucketEncryptionOutput{
			ServerSideEncryptionConfiguration: &types.ServerSideEncryptionConfiguration{
				Rules: []types.ServerSideEncryptionRule{{
					ApplyServerSideEncryptionByDefault: &types.ServerSideEncryptionByDefault{
						SSEAlgorithm: types.ServerSideEncryptionAes256,
					},
					BucketKeyEnabled: aws.Bool(true),
				}},
			},
		},
		getPublicAccess: &s3.GetPublicAccessBlockOutput{
			PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
				BlockPublicAcls:       aws.Bool(true),
				IgnorePublicAcls:      aws.Bool(true),
				BlockPublicPolicy:     aws.Bool(true),
				RestrictPublicBuckets: aws.Bool(true),
			},
		},
		getLifecycle: &s3.GetBucketLifecycleConfigurationOutput{
			Rules: LifecycleRules(spec.Tier),
		},
		getTagging: &s3.GetBucketTaggingOutput{
			TagSet: bucketTags(spec),
		},
	}
}

// fakeSQS serves a single queue.
type fakeSQS struct {
	calls     []string
	queueURL  string
	queueARN  string
	createErr error
	attrs     map[string]string
	setInputs []*sqs.SetQueueAttributesInput
}

func (f *fakeSQS) CreateQueue(_ context.Context, in *sqs.CreateQueueInput, _ ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error) {
	f.calls = append(f.calls, "CreateQueue:"+aws.ToString(in.QueueName))
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &sqs.CreateQueueOutput{QueueUrl: aws.String(f.queueURL)}, nil
}

func (f *fakeSQS) GetQueueAttributes(_ context.Context, in *sqs.GetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
	f.calls = append(f.calls, "GetQueueAttributes:"+aws.ToString(in.QueueUrl))
	attrs := map[string]string{}
	if f.queueARN != "" {
		attrs[string(sqstypes.QueueAttributeNameQueueArn)] = f.queueARN
	}
	return &sqs.GetQueueAttributesOutput{Attributes: attrs}, nil
}

func (f *fakeSQS) SetQueueAttributes(_ context.Context, in *sqs.SetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.SetQueueAttributesOutput, error) {
	f.calls = append(f.calls, "SetQueueAttributes:"+aws.ToString(in.QueueUrl))
	f.setInputs = append(f.setInputs, in)
	if f.attrs == nil {
		f.attrs = map[string]string{}
	}
	for k, v := range in.Attributes {
		f.attrs[k] = v
	}
	return &sqs.SetQueueAttributesOutput{}, nil
}
