// Package s3set provides the single-object store operations consumed by
// the traversal engine and exposed for direct use.
package s3set

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	s3seterrors "github.com/forgekit/s3set/errors"
	"github.com/forgekit/s3set/internal/retry"
	"github.com/forgekit/s3set/internal/validation"
	"github.com/forgekit/s3set/s3settypes"
)

// Get downloads an entire object and returns it as a byte slice.
// Transient failures are retried per the client's retry policy.
//
// Errors:
//   - ErrInvalidInput: If bucket is empty or key is invalid
//   - ErrObjectNotFound: If the specified object doesn't exist
//   - ErrAccessDenied: If the credentials lack permission to download
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		return nil, s3seterrors.NewError("get", s3seterrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, s3seterrors.NewError("get", s3seterrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	var data []byte
	err := retry.Do(ctx, c.retry, func() error {
		output, getErr := c.s3Client.GetObject(ctx, input)
		if getErr != nil {
			return getErr
		}
		defer output.Body.Close()

		var readErr error
		data, readErr = io.ReadAll(output.Body)
		return readErr
	})
	if err != nil {
		return nil, s3seterrors.NewError("get", convertAWSError(err)).WithBucket(bucket).WithKey(key)
	}

	return data, nil
}

// Put uploads byte data to S3, detecting the content type from the data
// itself. Transient failures are retried per the client's retry policy.
//
// Errors:
//   - ErrInvalidInput: If bucket is empty or key is invalid
//   - ErrAccessDenied: If the credentials lack permission to upload
func (c *Client) Put(ctx context.Context, bucket, key string, data []byte) error {
	if bucket == "" {
		return s3seterrors.NewError("put", s3seterrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return s3seterrors.NewError("put", s3seterrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	contentType := mimetype.Detect(data).String()

	err := retry.Do(ctx, c.retry, func() error {
		_, putErr := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		return putErr
	})
	if err != nil {
		return s3seterrors.NewError("put", convertAWSError(err)).WithBucket(bucket).WithKey(key)
	}

	return nil
}

// Copy copies an object from one location to another within S3.
// This is a server-side copy; object data never transits the client and
// any configured transformer is bypassed.
//
// Errors:
//   - ErrInvalidInput: If any bucket/key parameter is empty or invalid
//   - ErrObjectNotFound: If the source object doesn't exist
//   - ErrAccessDenied: If the credentials lack permission to copy
func (c *Client) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	if srcBucket == "" || dstBucket == "" {
		return s3seterrors.NewError("copy", s3seterrors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(srcKey); err != nil {
		return s3seterrors.NewError("copy", s3seterrors.ErrInvalidInput).
			WithBucket(srcBucket).
			WithKey(srcKey).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(dstKey); err != nil {
		return s3seterrors.NewError("copy", s3seterrors.ErrInvalidInput).
			WithBucket(dstBucket).
			WithKey(dstKey).
			WithMessage(err.Error())
	}
	if srcBucket == dstBucket && srcKey == dstKey {
		return s3seterrors.NewError("copy", s3seterrors.ErrInvalidInput).
			WithBucket(srcBucket).
			WithKey(srcKey).
			WithMessage("cannot copy object to itself")
	}

	source := url.PathEscape(srcBucket + "/" + srcKey)

	err := retry.Do(ctx, c.retry, func() error {
		_, copyErr := c.s3Client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(dstBucket),
			Key:        aws.String(dstKey),
			CopySource: aws.String(source),
		})
		return copyErr
	})
	if err != nil {
		return s3seterrors.NewError("copy", convertAWSError(err)).
			WithBucket(dstBucket).
			WithKey(dstKey).
			WithMessage("failed to copy from " + srcBucket + "/" + srcKey)
	}

	return nil
}

// Delete deletes a single object from S3.
// This operation is idempotent - deleting a non-existent object doesn't
// return an error.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	if bucket == "" {
		return s3seterrors.NewError("delete", s3seterrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return s3seterrors.NewError("delete", s3seterrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	err := retry.Do(ctx, c.retry, func() error {
		_, delErr := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		return delErr
	})
	if err != nil {
		return s3seterrors.NewError("delete", convertAWSError(err)).WithBucket(bucket).WithKey(key)
	}

	return nil
}

// Exists checks if an object exists using a HEAD request.
// Returns true if the object exists, false if it doesn't exist, and an
// error for other failures (network issues, permissions).
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if bucket == "" {
		return false, s3seterrors.NewError("exists", s3seterrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, s3seterrors.NewError("exists", s3seterrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	err := retry.Do(ctx, c.retry, func() error {
		_, headErr := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		return headErr
	})
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "NotFound") || strings.Contains(errMsg, "NoSuchKey") {
			return false, nil
		}
		return false, s3seterrors.NewError("exists", convertAWSError(err)).WithBucket(bucket).WithKey(key)
	}

	return true, nil
}

// List returns a single page of the key listing under bucket/prefix,
// starting after marker. An empty marker starts at the beginning of the
// prefix. Callers continue the listing by passing the returned NextMarker
// until Truncated is false; the Collection traversals do this lazily.
func (c *Client) List(ctx context.Context, bucket, prefix, marker string) (*s3settypes.ListPage, error) {
	if bucket == "" {
		return nil, s3seterrors.NewError("list", s3seterrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("bucket name cannot be empty")
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1000),
	}
	if marker != "" {
		input.StartAfter = aws.String(marker)
	}

	var output *s3.ListObjectsV2Output
	err := retry.Do(ctx, c.retry, func() error {
		var listErr error
		output, listErr = c.s3Client.ListObjectsV2(ctx, input)
		return listErr
	})
	if err != nil {
		return nil, s3seterrors.NewError("list", convertAWSError(err)).WithBucket(bucket)
	}

	page := &s3settypes.ListPage{
		Keys:      make([]string, 0, len(output.Contents)),
		Truncated: aws.ToBool(output.IsTruncated),
	}
	for _, obj := range output.Contents {
		page.Keys = append(page.Keys, aws.ToString(obj.Key))
	}
	if len(page.Keys) > 0 {
		page.NextMarker = page.Keys[len(page.Keys)-1]
	}

	return page, nil
}

// convertAWSError converts AWS SDK errors to our sentinel error types.
func convertAWSError(err error) error {
	if err == nil {
		return nil
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return s3seterrors.ErrObjectNotFound
	}

	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return s3seterrors.ErrBucketNotFound
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "NoSuchKey"):
		return s3seterrors.ErrObjectNotFound
	case strings.Contains(errMsg, "NoSuchBucket"):
		return s3seterrors.ErrBucketNotFound
	case strings.Contains(errMsg, "AccessDenied"):
		return s3seterrors.ErrAccessDenied
	}

	return err
}
