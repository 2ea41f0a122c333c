// Package s3set exposes an S3 prefix as a virtual ordered collection.
// It wraps AWS SDK v2 to provide higher-order traversal operations over
// all objects under a prefix: sequential and parallel visits, in-place or
// redirected rewrites, folds, predicate filtering, and concatenation.
//
// The listing is consumed lazily page by page, so arbitrarily large
// prefixes are traversed without holding every key in memory. Concurrent
// operations dispatch in listing order under a configurable concurrency
// limit; sequential operations (Each, Reduce, Join) guarantee strict
// listing-order execution.
//
// Key features:
//   - Simple, zero-configuration usage with AWS credential chain
//   - Progressive enhancement through functional options
//   - Bounded-concurrency traversal with listing-order dispatch
//   - Destructive or redirected writes via an optional output location
//   - Built-in retry with exponential backoff on transient store failures
//   - Pluggable content transformers (e.g. gzip)
//
// Example usage:
//
//	client, err := s3set.New(s3set.WithRegion("us-east-1"))
//	if err != nil {
//	    return err
//	}
//
//	// Delete every object under the prefix that fails validation.
//	col := client.Collection("my-bucket", "records/", s3set.WithLimit(8))
//	err = col.Filter(ctx, func(ctx context.Context, key string, content []byte) (bool, error) {
//	    return json.Valid(content), nil
//	})
package s3set
