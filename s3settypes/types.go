// Package s3settypes provides shared type definitions for the s3set module.
package s3settypes

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Object represents an S3 object with its basic metadata.
type Object struct {
	// Key is the S3 object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string
}

// ListPage is one page of a marker-based key listing. Pages concatenate
// (the marker of page n is the last key of page n-1) to form the full
// ordered key sequence under a prefix.
type ListPage struct {
	// Keys are the object keys on this page, in lexicographic order
	Keys []string

	// NextMarker is the last key of this page; pass it as the marker of
	// the next call to continue the listing
	NextMarker string

	// Truncated indicates whether more pages follow
	Truncated bool
}

// Transformer is applied when materializing or persisting an object's
// content: Decode after every fetch, Encode before every write. It lets
// traversals operate on encoded objects (compressed, framed) transparently.
//
// Server-side copies bypass the transformer; objects are copied verbatim.
type Transformer interface {
	// Decode converts stored bytes into the form user functions see
	Decode(data []byte) ([]byte, error)

	// Encode converts user-function output into the stored form
	Encode(data []byte) ([]byte, error)
}

// Identity is the default Transformer; it passes content through unchanged.
type Identity struct{}

// Decode returns data unchanged.
func (Identity) Decode(data []byte) ([]byte, error) { return data, nil }

// Encode returns data unchanged.
func (Identity) Encode(data []byte) ([]byte, error) { return data, nil }

// RetryPolicy controls how transient store failures are retried.
// The zero value means defaults (3 attempts, exponential backoff).
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts per store call,
	// including the first. Values < 1 fall back to the default of 3.
	MaxAttempts int

	// InitialInterval is the first backoff delay. Zero uses the
	// backoff library default.
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay. Zero uses the library default.
	MaxInterval time.Duration
}

// ClientConfig holds configuration for the s3set client.
type ClientConfig struct {
	Region          string
	Endpoint        string
	Timeout         time.Duration
	ForcePathStyle  bool
	CustomAWSConfig *aws.Config
	Retry           RetryPolicy
}

// CollectionConfig holds per-traversal configuration assembled by
// functional options. A Collection copies it at construction; it is never
// shared between concurrently running traversals.
type CollectionConfig struct {
	// OutputBucket and OutputPrefix redirect writes away from the source.
	// When unset, Map writes back to the key it read and Filter deletes
	// rejected keys in place.
	OutputBucket string
	OutputPrefix string

	// Limit bounds the number of simultaneously outstanding per-key
	// invocations for concurrent operations. Zero with LimitSet false
	// means unbounded.
	Limit int

	// LimitSet records whether Limit was set explicitly. An explicit
	// value below 1 is a configuration error, never silently clamped.
	LimitSet bool

	// Transformer decodes fetched content and encodes written content.
	// Nil means Identity.
	Transformer Transformer
}

// Option is a functional option for configuring the s3set client.
type (
	Option func(*ClientConfig)
	// CollectionOption is a functional option for configuring a Collection.
	CollectionOption func(*CollectionConfig)
)
