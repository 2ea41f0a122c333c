// Package internal contains private implementation details for the s3set
// module. These packages are not intended for external use and may change
// without notice.
//
// The internal packages are organized as follows:
//   - engine: Batch traversal algorithms over a key sequence
//   - keyseq: Lazy, marker-based key listing
//   - retry: Backoff policy for transient store failures
//   - s3api: S3 client interface for dependency injection
//   - validation: Input validation logic
//   - testutil: Mocks and in-memory fakes for tests
package internal
