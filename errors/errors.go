// Package errors provides error types and handling for s3set operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents an s3set operation error with context about the
// operation that failed. It wraps the underlying error with the bucket and
// key being processed so traversal aborts always report the offending key.
type Error struct {
	// Op is the operation that failed (e.g., "each", "map", "reduce")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or a user function
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3set.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3set.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3set.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3set.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for common s3set operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidConfig indicates an invalid traversal configuration
	// (missing source, concurrency limit below 1). It is raised
	// synchronously, before any I/O begins.
	ErrInvalidConfig = errors.New("s3set: invalid configuration")

	// ErrEmptyReduce indicates a reduce over an empty listing with no seed
	ErrEmptyReduce = errors.New("s3set: reduce of empty listing with no seed")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3set: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("s3set: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3set: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3set: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3set: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3set: invalid object key")

	// ErrThrottled indicates that the request rate is too high.
	// Throttling is transient and retried inside the client.
	ErrThrottled = errors.New("s3set: request throttled")

	// ErrTimeout indicates that a store call timed out.
	// Timeouts are transient and retried inside the client.
	ErrTimeout = errors.New("s3set: operation timeout")
)

// IsInvalidConfig checks if an error indicates an invalid configuration.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsEmptyReduce checks if an error indicates a seedless reduce over an
// empty listing.
func IsEmptyReduce(err error) bool {
	return errors.Is(err, ErrEmptyReduce)
}

// IsObjectNotFound checks if an error indicates that an object was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}
