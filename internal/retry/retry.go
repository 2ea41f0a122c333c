// Package retry implements the injectable retry policy applied to every
// store call. Transient failures are retried with exponential backoff;
// anything else surfaces immediately as a permanent failure.
package retry

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"

	s3seterrors "github.com/forgekit/s3set/errors"
	"github.com/forgekit/s3set/s3settypes"
)

// DefaultMaxAttempts is the number of attempts per store call when the
// policy does not specify one.
const DefaultMaxAttempts = 3

// Do runs op, retrying transient failures according to policy.
// Permanent failures and exhausted retry budgets return the last error.
// The context bounds the total retry loop, including backoff sleeps.
func Do(ctx context.Context, policy s3settypes.RetryPolicy, op func() error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = DefaultMaxAttempts
	}

	bo := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		bo.InitialInterval = policy.InitialInterval
	}
	if policy.MaxInterval > 0 {
		bo.MaxInterval = policy.MaxInterval
	}

	wrapped := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !Transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, wrapped)
}

// retryableCodes are AWS error codes worth retrying. Throttling and
// server-side 5xx responses recover on their own; everything else
// (access denied, missing key) does not.
var retryableCodes = map[string]bool{
	"SlowDown":                true,
	"Throttling":              true,
	"ThrottlingException":     true,
	"RequestTimeout":          true,
	"RequestTimeoutException": true,
	"InternalError":           true,
	"ServiceUnavailable":      true,
}

// Transient reports whether err is a transient store failure that should
// be retried rather than aborting the traversal.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation is the caller's decision, never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, s3seterrors.ErrThrottled) || errors.Is(err, s3seterrors.ErrTimeout) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return retryableCodes[apiErr.ErrorCode()]
	}

	return false
}
