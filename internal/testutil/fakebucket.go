package testutil

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/forgekit/s3set/internal/s3api"
)

// FakeBucket is an in-memory S3API implementation with real listing
// semantics: lexicographic order, prefix filtering, StartAfter markers and
// MaxKeys truncation. It tracks the number of simultaneously in-flight
// calls so tests can assert concurrency ceilings, and supports failure
// injection through per-operation hooks.
type FakeBucket struct {
	mu      sync.Mutex
	objects map[string]map[string][]byte

	inFlight    int
	maxInFlight int
	listCalls   int

	// Optional failure hooks, called before the operation executes.
	OnGet    func(bucket, key string) error
	OnPut    func(bucket, key string) error
	OnDelete func(bucket, key string) error
	OnCopy   func(srcBucket, srcKey, dstBucket, dstKey string) error
	OnList   func() error
}

// NewFakeBucket creates an empty fake store.
func NewFakeBucket() *FakeBucket {
	return &FakeBucket{
		objects: make(map[string]map[string][]byte),
	}
}

// Seed stores an object directly, bypassing hooks and counters.
func (f *FakeBucket) Seed(bucket, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(bucket, key, data)
}

// Data returns an object's content and whether it exists.
func (f *FakeBucket) Data(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket][key]
	return data, ok
}

// Keys returns the sorted keys under bucket/prefix.
func (f *FakeBucket) Keys(bucket, prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedKeys(bucket, prefix)
}

// MaxInFlight reports the highest number of simultaneously outstanding
// calls observed so far.
func (f *FakeBucket) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// ListCalls reports how many listing pages were served.
func (f *FakeBucket) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// GetObject implements s3api.S3API.
func (f *FakeBucket) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	defer f.enter()()

	bucket, key := aws.ToString(params.Bucket), aws.ToString(params.Key)
	if f.OnGet != nil {
		if err := f.OnGet(bucket, key); err != nil {
			return nil, err
		}
	}

	data, ok := f.Data(bucket, key)
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

// PutObject implements s3api.S3API.
func (f *FakeBucket) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	defer f.enter()()

	bucket, key := aws.ToString(params.Bucket), aws.ToString(params.Key)
	if f.OnPut != nil {
		if err := f.OnPut(bucket, key); err != nil {
			return nil, err
		}
	}

	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.put(bucket, key, data)
	f.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

// DeleteObject implements s3api.S3API.
func (f *FakeBucket) DeleteObject(
	ctx context.Context,
	params *s3.DeleteObjectInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	defer f.enter()()

	bucket, key := aws.ToString(params.Bucket), aws.ToString(params.Key)
	if f.OnDelete != nil {
		if err := f.OnDelete(bucket, key); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	delete(f.objects[bucket], key)
	f.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}

// DeleteObjects implements s3api.S3API.
func (f *FakeBucket) DeleteObjects(
	ctx context.Context,
	params *s3.DeleteObjectsInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	defer f.enter()()

	bucket := aws.ToString(params.Bucket)
	output := &s3.DeleteObjectsOutput{}

	f.mu.Lock()
	for _, obj := range params.Delete.Objects {
		key := aws.ToString(obj.Key)
		delete(f.objects[bucket], key)
		output.Deleted = append(output.Deleted, types.DeletedObject{Key: obj.Key})
	}
	f.mu.Unlock()
	return output, nil
}

// CopyObject implements s3api.S3API.
func (f *FakeBucket) CopyObject(
	ctx context.Context,
	params *s3.CopyObjectInput,
	optFns ...func(*s3.Options),
) (*s3.CopyObjectOutput, error) {
	defer f.enter()()

	source, err := url.PathUnescape(aws.ToString(params.CopySource))
	if err != nil {
		return nil, err
	}
	srcBucket, srcKey, _ := strings.Cut(source, "/")
	dstBucket, dstKey := aws.ToString(params.Bucket), aws.ToString(params.Key)

	if f.OnCopy != nil {
		if err := f.OnCopy(srcBucket, srcKey, dstBucket, dstKey); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[srcBucket][srcKey]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	f.put(dstBucket, dstKey, append([]byte(nil), data...))
	return &s3.CopyObjectOutput{}, nil
}

// HeadObject implements s3api.S3API.
func (f *FakeBucket) HeadObject(
	ctx context.Context,
	params *s3.HeadObjectInput,
	optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	defer f.enter()()

	data, ok := f.Data(aws.ToString(params.Bucket), aws.ToString(params.Key))
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

// ListObjectsV2 implements s3api.S3API with marker-based pagination.
func (f *FakeBucket) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	defer f.enter()()

	if f.OnList != nil {
		if err := f.OnList(); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	keys := f.sortedKeys(aws.ToString(params.Bucket), aws.ToString(params.Prefix))

	startAfter := aws.ToString(params.StartAfter)
	if startAfter != "" {
		i := sort.SearchStrings(keys, startAfter)
		if i < len(keys) && keys[i] == startAfter {
			i++
		}
		keys = keys[i:]
	}

	maxKeys := int(aws.ToInt32(params.MaxKeys))
	if maxKeys <= 0 || maxKeys > 1000 {
		maxKeys = 1000
	}
	truncated := len(keys) > maxKeys
	if truncated {
		keys = keys[:maxKeys]
	}

	output := &s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(truncated),
		KeyCount:    aws.Int32(int32(len(keys))),
	}
	for _, key := range keys {
		output.Contents = append(output.Contents, types.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(f.objects[aws.ToString(params.Bucket)][key]))),
		})
	}
	return output, nil
}

// Ensure FakeBucket implements s3api.S3API interface
var _ s3api.S3API = (*FakeBucket)(nil)

// put stores an object; callers hold the mutex.
func (f *FakeBucket) put(bucket, key string, data []byte) {
	if f.objects[bucket] == nil {
		f.objects[bucket] = make(map[string][]byte)
	}
	f.objects[bucket][key] = data
}

// sortedKeys returns the sorted keys under bucket/prefix; callers hold the
// mutex or tolerate a racy snapshot.
func (f *FakeBucket) sortedKeys(bucket, prefix string) []string {
	var keys []string
	for key := range f.objects[bucket] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// enter tracks in-flight calls; the returned func marks the call finished.
func (f *FakeBucket) enter() func() {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}
}
