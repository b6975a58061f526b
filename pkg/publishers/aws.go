package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadAWSConfig resolves an SDK config for one region with static keys.
func loadAWSConfig(ctx context.Context, region, keyID, secret string) (aws.Config, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx,
		awscfg.WithRegion(region),
		awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(keyID, secret, "")),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// stringAttributes converts event attributes into an SDK's attribute type.
func stringAttributes[V any](attrs map[string]string, value func(dataType, s *string) V) map[string]V {
	out := make(map[string]V, len(attrs))
	for k, v := range attrs {
		out[k] = value(aws.String("String"), aws.String(v))
	}
	return out
}
