// Package keyseq turns the marker-based page listing of an S3 prefix into
// a lazy, restartable sequence of keys. Pages are fetched on demand with
// the marker set to the last key of the previous page, so the full prefix
// is never materialized in memory.
package keyseq

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/forgekit/s3set/internal/retry"
	"github.com/forgekit/s3set/s3settypes"
)

// defaultPageSize is the maximum page size S3 allows.
const defaultPageSize = 1000

// API is the subset of S3 operations the sequence needs.
type API interface {
	ListObjectsV2(
		ctx context.Context,
		params *s3.ListObjectsV2Input,
		optFns ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// Sequence streams the keys under a prefix in lexicographic order.
// Each key is yielded at most once per traversal. A Sequence is owned by a
// single traversal and is not safe for concurrent use; Reset rewinds it so
// the same prefix can be walked again.
type Sequence struct {
	client   API
	bucket   string
	prefix   string
	pageSize int32
	policy   s3settypes.RetryPolicy

	buf    []string
	pos    int
	marker string
	done   bool
}

// New creates a Sequence over all keys under bucket/prefix.
func New(client API, bucket, prefix string, policy s3settypes.RetryPolicy) *Sequence {
	return &Sequence{
		client:   client,
		bucket:   bucket,
		prefix:   prefix,
		pageSize: defaultPageSize,
		policy:   policy,
	}
}

// WithPageSize overrides the listing page size. Values outside (0, 1000]
// are ignored.
func (s *Sequence) WithPageSize(n int32) *Sequence {
	if n > 0 && n <= defaultPageSize {
		s.pageSize = n
	}
	return s
}

// Next returns the next key in listing order. The second return value is
// false once the sequence is exhausted. Transient listing failures are
// retried internally; a permanent failure ends the traversal.
func (s *Sequence) Next(ctx context.Context) (string, bool, error) {
	for s.pos >= len(s.buf) {
		if s.done {
			return "", false, nil
		}
		if err := s.fetchPage(ctx); err != nil {
			return "", false, err
		}
	}

	key := s.buf[s.pos]
	s.pos++
	return key, true, nil
}

// Reset rewinds the sequence to the start of the prefix.
func (s *Sequence) Reset() {
	s.buf = nil
	s.pos = 0
	s.marker = ""
	s.done = false
}

// fetchPage loads the next listing page into the buffer. The marker is the
// last key of the previous page, which makes consecutive pages concatenate
// without duplication or omission.
func (s *Sequence) fetchPage(ctx context.Context) error {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.prefix),
		MaxKeys: aws.Int32(s.pageSize),
	}
	if s.marker != "" {
		input.StartAfter = aws.String(s.marker)
	}

	var output *s3.ListObjectsV2Output
	err := retry.Do(ctx, s.policy, func() error {
		var listErr error
		output, listErr = s.client.ListObjectsV2(ctx, input)
		return listErr
	})
	if err != nil {
		return fmt.Errorf("list page after %q: %w", s.marker, err)
	}

	s.buf = s.buf[:0]
	s.pos = 0
	for _, obj := range output.Contents {
		s.buf = append(s.buf, aws.ToString(obj.Key))
	}

	if len(s.buf) > 0 {
		s.marker = s.buf[len(s.buf)-1]
	}
	s.done = !aws.ToBool(output.IsTruncated) || len(s.buf) == 0
	return nil
}
