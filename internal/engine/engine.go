// Package engine implements the batch traversal algorithms over an ordered
// key sequence: sequential and concurrent visits, in-place or redirected
// rewrites, a sequential fold, predicate filtering, and concatenation.
//
// The engine is written against small KeySource and Store interfaces so the
// scheduling and mutation contracts can be tested with deterministic fakes.
package engine

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	s3seterrors "github.com/forgekit/s3set/errors"
)

// KeySource yields the keys of one traversal in listing order, each key at
// most once.
type KeySource interface {
	// Next returns the next key; ok is false when the source is exhausted.
	Next(ctx context.Context) (key string, ok bool, err error)
}

// Store is the per-key object access the engine drives. Put, PutOutput,
// CopyOutput and Remove resolve the traversal's write targets: Put
// overwrites the source key, the Output variants address the corresponding
// relative key under the configured output location. Implementations must
// be safe for concurrent use.
type Store interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, content []byte) error
	PutOutput(ctx context.Context, key string, content []byte) error
	CopyOutput(ctx context.Context, key string) error
	Remove(ctx context.Context, key string) error
}

// VisitFunc is invoked once per key with the key's decoded content.
type VisitFunc func(ctx context.Context, key string, content []byte) error

// MapFunc returns the replacement content for a key.
type MapFunc func(ctx context.Context, key string, content []byte) ([]byte, error)

// ReduceFunc folds one key's content into the accumulator.
type ReduceFunc func(ctx context.Context, key string, acc, content []byte) ([]byte, error)

// Predicate decides whether a key survives a filter.
type Predicate func(ctx context.Context, key string, content []byte) (bool, error)

// Engine runs traversal algorithms over one key sequence. It is built per
// traversal and discarded afterwards.
type Engine struct {
	keys       KeySource
	store      Store
	limit      int // 0 means unbounded
	redirected bool
}

// New creates an engine. limit bounds the number of simultaneously
// outstanding per-key invocations for the concurrent algorithms; 0 means
// all keys are dispatched immediately. redirected selects output-location
// write targets instead of destructive ones.
func New(keys KeySource, store Store, limit int, redirected bool) *Engine {
	return &Engine{
		keys:       keys,
		store:      store,
		limit:      limit,
		redirected: redirected,
	}
}

// Each visits every key sequentially in listing order. Key k+1 is fetched
// only after fn has settled for key k. The first failure aborts the
// traversal; no further keys are visited.
func (e *Engine) Each(ctx context.Context, fn VisitFunc) error {
	for {
		key, ok, err := e.keys.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		content, err := e.store.Fetch(ctx, key)
		if err != nil {
			return keyErr(key, err)
		}
		if err := fn(ctx, key, content); err != nil {
			return keyErr(key, err)
		}
	}
}

// ParallelEach visits every key under the concurrency limit. Dispatch
// follows listing order; completion order is unspecified. On the first
// observed failure no further keys are dispatched, in-flight invocations
// are awaited, and the failure is returned.
func (e *Engine) ParallelEach(ctx context.Context, fn VisitFunc) error {
	return e.concurrent(ctx, func(ctx context.Context, key string) error {
		content, err := e.store.Fetch(ctx, key)
		if err != nil {
			return err
		}
		return fn(ctx, key, content)
	})
}

// Map rewrites every key: fetch, apply fn, write the result to the
// traversal's target for that key. The read-transform-write of a single key
// is strictly ordered; across keys the ParallelEach scheduling policy
// applies. Writes committed before an abort are not rolled back.
func (e *Engine) Map(ctx context.Context, fn MapFunc) error {
	return e.concurrent(ctx, func(ctx context.Context, key string) error {
		content, err := e.store.Fetch(ctx, key)
		if err != nil {
			return err
		}
		out, err := fn(ctx, key, content)
		if err != nil {
			return err
		}
		if e.redirected {
			return e.store.PutOutput(ctx, key, out)
		}
		return e.store.Put(ctx, key, out)
	})
}

// Reduce folds the listing sequentially into a single accumulator, which is
// owned exclusively by this loop. With hasSeed false the first key's
// content becomes the accumulator and folding starts at the second key; a
// seedless reduce of an empty listing is an error, not a silent default.
func (e *Engine) Reduce(ctx context.Context, fn ReduceFunc, seed []byte, hasSeed bool) ([]byte, error) {
	acc := seed
	seen := false

	for {
		key, ok, err := e.keys.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		content, err := e.store.Fetch(ctx, key)
		if err != nil {
			return nil, keyErr(key, err)
		}

		if !hasSeed && !seen {
			acc = content
			seen = true
			continue
		}
		seen = true

		acc, err = fn(ctx, key, acc, content)
		if err != nil {
			return nil, keyErr(key, err)
		}
	}

	if !hasSeed && !seen {
		return nil, s3seterrors.ErrEmptyReduce
	}
	return acc, nil
}

// Filter evaluates pred per key under the ParallelEach scheduling policy.
// Destructive mode deletes keys the predicate rejects and leaves the rest
// untouched. Redirected mode copies accepted keys to the output location
// and never mutates the source; rejected keys are written nowhere.
func (e *Engine) Filter(ctx context.Context, pred Predicate) error {
	return e.concurrent(ctx, func(ctx context.Context, key string) error {
		content, err := e.store.Fetch(ctx, key)
		if err != nil {
			return err
		}
		keep, err := pred(ctx, key, content)
		if err != nil {
			return err
		}
		if e.redirected {
			if keep {
				return e.store.CopyOutput(ctx, key)
			}
			return nil
		}
		if !keep {
			return e.store.Remove(ctx, key)
		}
		return nil
	})
}

// Join fetches every key sequentially in listing order and returns the
// contents joined by sep. The store is never mutated.
func (e *Engine) Join(ctx context.Context, sep []byte) ([]byte, error) {
	var buf bytes.Buffer
	first := true

	for {
		key, ok, err := e.keys.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return buf.Bytes(), nil
		}

		content, err := e.store.Fetch(ctx, key)
		if err != nil {
			return nil, keyErr(key, err)
		}
		if !first {
			buf.Write(sep)
		}
		buf.Write(content)
		first = false
	}
}

// concurrent dispatches work per key in listing order through a bounded
// group. With a limit, group admission blocks until a slot frees, so later
// keys are admitted fairly in order; without one, every key is dispatched
// immediately. The first failure cancels the group context; stragglers are
// awaited before the failure is surfaced.
func (e *Engine) concurrent(ctx context.Context, work func(ctx context.Context, key string) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for {
		key, ok, err := e.keys.Next(gctx)
		if err != nil {
			// A worker failure cancels gctx and fails the listing too;
			// prefer the worker's error over the induced listing error.
			if werr := g.Wait(); werr != nil {
				return werr
			}
			return err
		}
		if !ok {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := work(gctx, key); err != nil {
				return keyErr(key, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// keyErr records the key that triggered an abort.
func keyErr(key string, err error) error {
	return fmt.Errorf("key %q: %w", key, err)
}
