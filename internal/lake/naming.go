package lake

import (
	"fmt"
	"regexp"
)

// S3 bucket naming rules: 3-63 characters, lowercase letters, digits and
// hyphens, starting and ending with a letter or digit. The SQS queue names
// follow the same convention so both go through one check.
var bucketNameRE = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

// BucketName builds the canonical tier bucket name,
// <project>-<environment>-<tier>-data.
func BucketName(project, environment string, tier Tier) (string, error) {
	name := fmt.Sprintf("%s-%s-%s-data", project, environment, tier)
	if !bucketNameRE.MatchString(name) {
		return "", fmt.Errorf("bucket name %q violates S3 naming rules", name)
	}
	return name, nil
}

// QueueName builds the notification queue name for a tier,
// <project>-<environment>-<tier>-events.
func QueueName(project, environment string, tier Tier) (string, error) {
	name := fmt.Sprintf("%s-%s-%s-events", project, environment, tier)
	if !bucketNameRE.MatchString(name) {
		return "", fmt.Errorf("queue name %q violates naming rules", name)
	}
	return name, nil
}
