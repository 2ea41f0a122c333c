// Package s3set provides client initialization and configuration.
//
// The Client provides single-object S3 operations (get, put, copy, delete)
// with built-in retry on transient failures, and is the factory for
// Collections, which expose whole prefixes as ordered collections with
// batch traversal operations.
package s3set

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/forgekit/s3set/errors"
	"github.com/forgekit/s3set/internal/s3api"
	"github.com/forgekit/s3set/s3settypes"
)

// Client represents an S3 client with configurable options.
// It is safe for concurrent use; all its operations retry transient
// failures according to the configured retry policy.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// retry is the policy applied to every store call
	retry s3settypes.RetryPolicy
}

// New creates a new s3set client with the provided options.
// It loads AWS credentials using the default credential chain
// and applies the specified configuration options.
//
// Example:
//
//	client, err := s3set.New(
//	    s3set.WithRegion("us-west-2"),
//	    s3set.WithRetryPolicy(s3settypes.RetryPolicy{MaxAttempts: 5}),
//	)
func New(opts ...s3settypes.Option) (*Client, error) {
	clientCfg := &s3settypes.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	// Apply region from options if specified, otherwise ensure a region is set
	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	// Per-call timeout is delegated to the HTTP client; the traversal
	// engine itself never manages timeouts.
	if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return &Client{
		s3Client: s3.NewFromConfig(cfg, s3Opts...),
		config:   cfg,
		retry:    clientCfg.Retry,
	}, nil
}

// NewWithClient creates a new s3set client with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...s3settypes.Option) *Client {
	clientCfg := &s3settypes.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
		retry:    clientCfg.Retry,
	}
}
