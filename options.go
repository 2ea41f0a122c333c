// Package s3set provides functional options for configuring client and
// collection behavior. These options follow the functional options pattern
// for clean, composable configuration.
package s3set

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/forgekit/s3set/s3settypes"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) s3settypes.Option {
	return func(c *s3settypes.ClientConfig) {
		c.Region = region
	}
}

// WithRetryPolicy sets the retry policy applied to every store call.
// The default is 3 attempts with exponential backoff. Tests can inject a
// deterministic policy with near-zero intervals.
func WithRetryPolicy(policy s3settypes.RetryPolicy) s3settypes.Option {
	return func(c *s3settypes.ClientConfig) {
		c.Retry = policy
	}
}

// WithTimeout sets the per-call timeout for individual S3 operations.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) s3settypes.Option {
	return func(c *s3settypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
// Default is false (uses virtual-hosted style).
func WithForcePathStyle(forcePathStyle bool) s3settypes.Option {
	return func(c *s3settypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) s3settypes.Option {
	return func(c *s3settypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) s3settypes.Option {
	return func(c *s3settypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithOutput redirects a collection's write results to a different
// location instead of overwriting the source. Map writes transformed
// objects, and Filter copies surviving objects, to the corresponding
// relative key under bucket/prefix; the source is never mutated.
func WithOutput(bucket, prefix string) s3settypes.CollectionOption {
	return func(c *s3settypes.CollectionConfig) {
		c.OutputBucket = bucket
		c.OutputPrefix = prefix
	}
}

// WithLimit bounds the number of simultaneously outstanding per-key
// invocations for ParallelEach, Map and Filter. Unset means unbounded:
// every key is dispatched immediately. A value below 1 is a configuration
// error reported when the operation starts, never silently clamped.
func WithLimit(limit int) s3settypes.CollectionOption {
	return func(c *s3settypes.CollectionConfig) {
		c.Limit = limit
		c.LimitSet = true
	}
}

// WithTransformer sets the decode/encode transformer applied when
// materializing and persisting object content. Default is Identity.
func WithTransformer(t s3settypes.Transformer) s3settypes.CollectionOption {
	return func(c *s3settypes.CollectionConfig) {
		c.Transformer = t
	}
}
