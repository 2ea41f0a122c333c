package s3set

import (
	"context"
	"strings"

	s3seterrors "github.com/forgekit/s3set/errors"
	"github.com/forgekit/s3set/internal/engine"
	"github.com/forgekit/s3set/internal/keyseq"
	"github.com/forgekit/s3set/internal/validation"
	"github.com/forgekit/s3set/s3settypes"
)

// VisitFunc is invoked once per key with the key's decoded content.
// It may block or spawn its own goroutines; the traversal waits for it to
// return before considering the key settled.
type VisitFunc func(ctx context.Context, key string, content []byte) error

// MapFunc returns the replacement content for a key during Map.
type MapFunc func(ctx context.Context, key string, content []byte) ([]byte, error)

// ReduceFunc folds one key's content into the accumulator during Reduce.
// The accumulator is owned by the fold loop and never accessed concurrently.
type ReduceFunc func(ctx context.Context, key string, acc, content []byte) ([]byte, error)

// Predicate decides whether a key survives a Filter.
type Predicate func(ctx context.Context, key string, content []byte) (bool, error)

// Collection exposes the objects under one bucket/prefix as an ordered
// collection. It is an immutable value: build one per traversal via
// Client.Collection and discard it afterwards. Two concurrently running
// traversals never share mutable state through a Collection.
type Collection struct {
	client *Client
	bucket string
	prefix string
	cfg    s3settypes.CollectionConfig
}

// Collection creates a traversal context over all keys under bucket/prefix.
//
// Example:
//
//	col := client.Collection("logs-bucket", "2024/",
//	    s3set.WithLimit(16),
//	    s3set.WithOutput("archive-bucket", "compacted/"),
//	)
//	err := col.Map(ctx, func(ctx context.Context, key string, content []byte) ([]byte, error) {
//	    return compact(content)
//	})
func (c *Client) Collection(bucket, prefix string, opts ...s3settypes.CollectionOption) *Collection {
	cfg := s3settypes.CollectionConfig{
		Transformer: s3settypes.Identity{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Transformer == nil {
		cfg.Transformer = s3settypes.Identity{}
	}

	// A non-empty output prefix acts as a directory for relative keys.
	if cfg.OutputPrefix != "" && !strings.HasSuffix(cfg.OutputPrefix, "/") {
		cfg.OutputPrefix += "/"
	}

	return &Collection{
		client: c,
		bucket: bucket,
		prefix: prefix,
		cfg:    cfg,
	}
}

// Each visits every key sequentially in listing order, fetching the object
// and invoking fn. Key k+1 is touched only after fn has settled for key k.
// The first failure aborts the traversal with the offending key recorded.
func (col *Collection) Each(ctx context.Context, fn VisitFunc) error {
	eng, err := col.engine("each")
	if err != nil {
		return err
	}
	if err := eng.Each(ctx, engine.VisitFunc(fn)); err != nil {
		return s3seterrors.NewError("each", err).WithBucket(col.bucket)
	}
	return nil
}

// ParallelEach visits every key under the configured concurrency limit.
// Dispatch follows listing order; completion order is unspecified and
// callers must not depend on it. The first observed failure stops further
// dispatch, in-flight invocations are awaited, and the failure is returned.
func (col *Collection) ParallelEach(ctx context.Context, fn VisitFunc) error {
	eng, err := col.engine("parallelEach")
	if err != nil {
		return err
	}
	if err := eng.ParallelEach(ctx, engine.VisitFunc(fn)); err != nil {
		return s3seterrors.NewError("parallelEach", err).WithBucket(col.bucket)
	}
	return nil
}

// Map rewrites every key: fetch, apply fn, write fn's result back. Without
// an output location the write overwrites the key that was read; with one,
// the result lands at the corresponding relative key under the output
// location and the source is never mutated. Scheduling follows
// ParallelEach. Writes committed before an abort are not rolled back.
func (col *Collection) Map(ctx context.Context, fn MapFunc) error {
	eng, err := col.engine("map")
	if err != nil {
		return err
	}
	if err := eng.Map(ctx, engine.MapFunc(fn)); err != nil {
		return s3seterrors.NewError("map", err).WithBucket(col.bucket)
	}
	return nil
}

// Reduce folds the collection sequentially in listing order. The first
// key's content seeds the accumulator and folding starts from the second
// key. Reducing an empty listing fails with ErrEmptyReduce; use ReduceFrom
// to supply a seed.
func (col *Collection) Reduce(ctx context.Context, fn ReduceFunc) ([]byte, error) {
	return col.reduce(ctx, fn, nil, false)
}

// ReduceFrom folds the collection sequentially in listing order, starting
// from the given seed. An empty listing returns the seed unchanged.
func (col *Collection) ReduceFrom(ctx context.Context, seed []byte, fn ReduceFunc) ([]byte, error) {
	return col.reduce(ctx, fn, seed, true)
}

func (col *Collection) reduce(ctx context.Context, fn ReduceFunc, seed []byte, hasSeed bool) ([]byte, error) {
	eng, err := col.engine("reduce")
	if err != nil {
		return nil, err
	}
	acc, err := eng.Reduce(ctx, engine.ReduceFunc(fn), seed, hasSeed)
	if err != nil {
		return nil, s3seterrors.NewError("reduce", err).WithBucket(col.bucket)
	}
	return acc, nil
}

// Filter evaluates pred per key under the ParallelEach scheduling policy.
// Without an output location, keys the predicate rejects are deleted from
// the source and accepted keys are left untouched. With one, accepted keys
// are copied server-side (bypassing the transformer) to the corresponding
// relative key under the output location, rejected keys are written
// nowhere, and the source is never mutated.
func (col *Collection) Filter(ctx context.Context, pred Predicate) error {
	eng, err := col.engine("filter")
	if err != nil {
		return err
	}
	if err := eng.Filter(ctx, engine.Predicate(pred)); err != nil {
		return s3seterrors.NewError("filter", err).WithBucket(col.bucket)
	}
	return nil
}

// Join fetches every object sequentially in listing order and returns all
// contents joined by sep. The store is never mutated.
func (col *Collection) Join(ctx context.Context, sep []byte) ([]byte, error) {
	eng, err := col.engine("join")
	if err != nil {
		return nil, err
	}
	joined, err := eng.Join(ctx, sep)
	if err != nil {
		return nil, s3seterrors.NewError("join", err).WithBucket(col.bucket)
	}
	return joined, nil
}

// engine validates the configuration and assembles the traversal engine.
// Validation happens synchronously, before any I/O.
func (col *Collection) engine(op string) (*engine.Engine, error) {
	if err := validation.ValidateBucketName(col.bucket); err != nil {
		return nil, s3seterrors.NewError(op, s3seterrors.ErrInvalidConfig).
			WithBucket(col.bucket).
			WithMessage(err.Error())
	}
	if col.cfg.LimitSet && col.cfg.Limit < 1 {
		return nil, s3seterrors.NewError(op, s3seterrors.ErrInvalidConfig).
			WithBucket(col.bucket).
			WithMessage("concurrency limit must be at least 1")
	}

	keys := keyseq.New(col.client.s3Client, col.bucket, col.prefix, col.client.retry)
	store := &collectionStore{col: col}

	limit := 0
	if col.cfg.LimitSet {
		limit = col.cfg.Limit
	}
	redirected := col.cfg.OutputBucket != "" || col.cfg.OutputPrefix != ""

	return engine.New(keys, store, limit, redirected), nil
}

// outputLocation resolves where redirected writes for key land.
func (col *Collection) outputLocation(key string) (bucket, outKey string) {
	bucket = col.cfg.OutputBucket
	if bucket == "" {
		bucket = col.bucket
	}
	rel := strings.TrimPrefix(key, col.prefix)
	return bucket, col.cfg.OutputPrefix + rel
}

// collectionStore adapts the client's single-object operations to the
// engine's Store interface, applying the collection's transformer and
// resolving destructive versus redirected write targets.
type collectionStore struct {
	col *Collection
}

func (s *collectionStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	data, err := s.col.client.Get(ctx, s.col.bucket, key)
	if err != nil {
		return nil, err
	}
	return s.col.cfg.Transformer.Decode(data)
}

func (s *collectionStore) Put(ctx context.Context, key string, content []byte) error {
	data, err := s.col.cfg.Transformer.Encode(content)
	if err != nil {
		return err
	}
	return s.col.client.Put(ctx, s.col.bucket, key, data)
}

func (s *collectionStore) PutOutput(ctx context.Context, key string, content []byte) error {
	data, err := s.col.cfg.Transformer.Encode(content)
	if err != nil {
		return err
	}
	bucket, outKey := s.col.outputLocation(key)
	return s.col.client.Put(ctx, bucket, outKey, data)
}

func (s *collectionStore) CopyOutput(ctx context.Context, key string) error {
	bucket, outKey := s.col.outputLocation(key)
	return s.col.client.Copy(ctx, s.col.bucket, key, bucket, outKey)
}

func (s *collectionStore) Remove(ctx context.Context, key string) error {
	return s.col.client.Delete(ctx, s.col.bucket, key)
}
