// Package s3set provides tests for client initialization and configuration.
package s3set

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/s3set/internal/testutil"
	"github.com/forgekit/s3set/s3settypes"
)

// TestClient_New exercises the constructor with a custom AWS config so no
// credential chain or network access is involved.
func TestClient_New(t *testing.T) {
	tests := []struct {
		name string
		opts []s3settypes.Option
	}{
		{
			name: "custom config only",
			opts: []s3settypes.Option{WithAWSConfig(&aws.Config{Region: "eu-west-1"})},
		},
		{
			name: "with region option",
			opts: []s3settypes.Option{
				WithAWSConfig(&aws.Config{}),
				WithRegion("us-west-2"),
			},
		},
		{
			name: "with endpoint and path style",
			opts: []s3settypes.Option{
				WithAWSConfig(&aws.Config{}),
				WithEndpoint("http://localhost:4566"),
				WithForcePathStyle(true),
			},
		},
		{
			name: "with timeout and retry policy",
			opts: []s3settypes.Option{
				WithAWSConfig(&aws.Config{}),
				WithTimeout(30 * time.Second),
				WithRetryPolicy(s3settypes.RetryPolicy{MaxAttempts: 5}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.opts...)
			require.NoError(t, err)
			require.NotNil(t, client)
			assert.NotNil(t, client.s3Client)
		})
	}
}

func TestClient_New_RegionResolution(t *testing.T) {
	t.Run("explicit region wins", func(t *testing.T) {
		client, err := New(
			WithAWSConfig(&aws.Config{Region: "eu-west-1"}),
			WithRegion("us-west-2"),
		)
		require.NoError(t, err)
		assert.Equal(t, "us-west-2", client.config.Region)
	})

	t.Run("falls back to the default region", func(t *testing.T) {
		client, err := New(WithAWSConfig(&aws.Config{}))
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", client.config.Region)
	})

	t.Run("keeps the config region when no option is given", func(t *testing.T) {
		client, err := New(WithAWSConfig(&aws.Config{Region: "ap-southeast-2"}))
		require.NoError(t, err)
		assert.Equal(t, "ap-southeast-2", client.config.Region)
	})
}

func TestClient_NewWithClient(t *testing.T) {
	t.Run("uses the injected client", func(t *testing.T) {
		mock := &testutil.MockS3Client{}
		client := NewWithClient(mock)

		require.NotNil(t, client)
		assert.Equal(t, mock, client.s3Client)
	})

	t.Run("applies the retry policy option", func(t *testing.T) {
		client := NewWithClient(&testutil.MockS3Client{},
			WithRetryPolicy(s3settypes.RetryPolicy{MaxAttempts: 7}),
		)

		assert.Equal(t, 7, client.retry.MaxAttempts)
	})
}
