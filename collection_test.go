package s3set

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3seterrors "github.com/forgekit/s3set/errors"
	"github.com/forgekit/s3set/internal/testutil"
)

func seedCollection(fake *testutil.FakeBucket) {
	fake.Seed("test-bucket", "records/a.txt", []byte("alpha"))
	fake.Seed("test-bucket", "records/b.txt", []byte("beta"))
	fake.Seed("test-bucket", "records/c.txt", []byte("gamma"))
	fake.Seed("test-bucket", "other/d.txt", []byte("delta"))
}

func TestCollectionEach(t *testing.T) {
	t.Run("visits keys under the prefix in listing order", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		seedCollection(fake)
		client := NewWithClient(fake, fastRetry)

		var visited []string
		var contents []string
		err := client.Collection("test-bucket", "records/").Each(
			context.Background(),
			func(ctx context.Context, key string, content []byte) error {
				visited = append(visited, key)
				contents = append(contents, string(content))
				return nil
			},
		)

		require.NoError(t, err)
		assert.Equal(t, []string{"records/a.txt", "records/b.txt", "records/c.txt"}, visited)
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, contents)
	})

	t.Run("user function failure records operation and key", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		seedCollection(fake)
		client := NewWithClient(fake, fastRetry)

		boom := errors.New("boom")
		err := client.Collection("test-bucket", "records/").Each(
			context.Background(),
			func(ctx context.Context, key string, content []byte) error {
				if key == "records/b.txt" {
					return boom
				}
				return nil
			},
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "s3set.each")
		assert.Contains(t, err.Error(), `"records/b.txt"`)
	})
}

func TestCollectionParallelEach(t *testing.T) {
	t.Run("visits every key exactly once under the limit", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		for i := 0; i < 30; i++ {
			fake.Seed("test-bucket", fmt.Sprintf("records/%03d", i), []byte("x"))
		}
		client := NewWithClient(fake, fastRetry)

		var mu sync.Mutex
		visited := make(map[string]int)
		err := client.Collection("test-bucket", "records/", WithLimit(4)).ParallelEach(
			context.Background(),
			func(ctx context.Context, key string, content []byte) error {
				mu.Lock()
				visited[key]++
				mu.Unlock()
				return nil
			},
		)

		require.NoError(t, err)
		assert.Len(t, visited, 30)
		for key, n := range visited {
			assert.Equal(t, 1, n, "key %s visited %d times", key, n)
		}
	})

	t.Run("explicit limit below one is a configuration error", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		seedCollection(fake)
		client := NewWithClient(fake, fastRetry)

		err := client.Collection("test-bucket", "records/", WithLimit(0)).ParallelEach(
			context.Background(),
			func(ctx context.Context, key string, content []byte) error { return nil },
		)

		require.Error(t, err)
		assert.True(t, s3seterrors.IsInvalidConfig(err))
		// Rejected synchronously, before any store call.
		assert.Equal(t, 0, fake.ListCalls())
	})

	t.Run("invalid bucket name is a configuration error", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		client := NewWithClient(fake, fastRetry)

		err := client.Collection("", "records/").Each(
			context.Background(),
			func(ctx context.Context, key string, content []byte) error { return nil },
		)

		require.Error(t, err)
		assert.True(t, s3seterrors.IsInvalidConfig(err))
	})
}

func TestCollectionMap(t *testing.T) {
	upper := func(ctx context.Context, key string, content []byte) ([]byte, error) {
		return bytes.ToUpper(content), nil
	}

	t.Run("destructive rewrite overwrites source keys", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		seedCollection(fake)
		client := NewWithClient(fake, fastRetry)

		err := client.Collection("test-bucket", "records/", WithLimit(2)).Map(context.Background(), upper)

		require.NoError(t, err)
		data, _ := fake.Data("test-bucket", "records/a.txt")
		assert.Equal(t, []byte("ALPHA"), data)
		data, _ = fake.Data("test-bucket", "records/c.txt")
		assert.Equal(t, []byte("GAMMA"), data)
		// Keys outside the prefix are untouched.
		data, _ = fake.Data("test-bucket", "other/d.txt")
		assert.Equal(t, []byte("delta"), data)
	})

	t.Run("redirected rewrite resolves relative keys under the output prefix", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		seedCollection(fake)
		client := NewWithClient(fake, fastRetry)

		// No trailing slash: the output prefix is normalized to one.
		col := client.Collection("test-bucket", "records/", WithOutput("out-bucket", "transformed"))
		err := col.Map(context.Background(), upper)

		require.NoError(t, err)
		data, ok := fake.Data("out-bucket", "transformed/a.txt")
		require.True(t, ok)
		assert.Equal(t, []byte("ALPHA"), data)
		// The source is never mutated.
		data, _ = fake.Data("test-bucket", "records/a.txt")
		assert.Equal(t, []byte("alpha"), data)
	})

	t.Run("redirect to a prefix in the source bucket", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		seedCollection(fake)
		client := NewWithClient(fake, fastRetry)

		col := client.Collection("test-bucket", "records/", WithOutput("", "archive/"))
		err := col.Map(context.Background(), upper)

		require.NoError(t, err)
		data, ok := fake.Data("test-bucket", "archive/b.txt")
		require.True(t, ok)
		assert.Equal(t, []byte("BETA"), data)
		data, _ = fake.Data("test-bucket", "records/b.txt")
		assert.Equal(t, []byte("beta"), data)
	})
}

func TestCollectionReduce(t *testing.T) {
	concat := func(ctx context.Context, key string, acc, content []byte) ([]byte, error) {
		return append(append(acc, '|'), content...), nil
	}

	t.Run("seeds from the first key", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		seedCollection(fake)
		client := NewWithClient(fake, fastRetry)

		acc, err := client.Collection("test-bucket", "records/").Reduce(context.Background(), concat)

		require.NoError(t, err)
		assert.Equal(t, []byte("alpha|beta|gamma"), acc)
	})

	t.Run("ReduceFrom folds every key into the seed", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		seedCollection(fake)
		client := NewWithClient(fake, fastRetry)

		acc, err := client.Collection("test-bucket", "records/").
			ReduceFrom(context.Background(), []byte("seed"), concat)

		require.NoError(t, err)
		assert.Equal(t, []byte("seed|alpha|beta|gamma"), acc)
	})

	t.Run("seedless reduce of an empty prefix fails", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		client := NewWithClient(fake, fastRetry)

		_, err := client.Collection("test-bucket", "records/").Reduce(context.Background(), concat)

		require.Error(t, err)
		assert.True(t, s3seterrors.IsEmptyReduce(err))
	})

	t.Run("ReduceFrom over an empty prefix returns the seed", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		client := NewWithClient(fake, fastRetry)

		acc, err := client.Collection("test-bucket", "records/").
			ReduceFrom(context.Background(), []byte("seed"), concat)

		require.NoError(t, err)
		assert.Equal(t, []byte("seed"), acc)
	})
}

func TestCollectionFilter(t *testing.T) {
	shortOnly := func(ctx context.Context, key string, content []byte) (bool, error) {
		return len(content) <= 4, nil
	}

	t.Run("destructive filter deletes rejected keys", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		seedCollection(fake)
		client := NewWithClient(fake, fastRetry)

		err := client.Collection("test-bucket", "records/", WithLimit(2)).
			Filter(context.Background(), shortOnly)

		require.NoError(t, err)
		// "beta" survives, "alpha" and "gamma" are deleted.
		assert.Equal(t, []string{"records/b.txt"}, fake.Keys("test-bucket", "records/"))
		// Keys outside the prefix are untouched.
		_, ok := fake.Data("test-bucket", "other/d.txt")
		assert.True(t, ok)
	})

	t.Run("redirected filter copies survivors and never mutates the source", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		seedCollection(fake)
		client := NewWithClient(fake, fastRetry)

		err := client.Collection("test-bucket", "records/", WithOutput("out-bucket", "kept/")).
			Filter(context.Background(), shortOnly)

		require.NoError(t, err)
		assert.Equal(t, []string{"kept/b.txt"}, fake.Keys("out-bucket", ""))
		assert.Len(t, fake.Keys("test-bucket", "records/"), 3)
	})
}

func TestCollectionJoin(t *testing.T) {
	t.Run("joins contents in listing order", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		seedCollection(fake)
		client := NewWithClient(fake, fastRetry)

		joined, err := client.Collection("test-bucket", "records/").
			Join(context.Background(), []byte("\n"))

		require.NoError(t, err)
		assert.Equal(t, []byte("alpha\nbeta\ngamma"), joined)
	})

	t.Run("empty prefix joins to nothing", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		client := NewWithClient(fake, fastRetry)

		joined, err := client.Collection("test-bucket", "records/").
			Join(context.Background(), []byte(","))

		require.NoError(t, err)
		assert.Empty(t, joined)
	})
}

func TestCollectionTransformer(t *testing.T) {
	gz := GzipTransformer{}

	gzipped := func(t *testing.T, plain string) []byte {
		t.Helper()
		data, err := gz.Encode([]byte(plain))
		require.NoError(t, err)
		return data
	}

	t.Run("traversals see decoded content", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		fake.Seed("test-bucket", "logs/a.gz", gzipped(t, "alpha"))
		fake.Seed("test-bucket", "logs/b.gz", gzipped(t, "beta"))
		client := NewWithClient(fake, fastRetry)

		joined, err := client.Collection("test-bucket", "logs/", WithTransformer(gz)).
			Join(context.Background(), []byte(" "))

		require.NoError(t, err)
		assert.Equal(t, []byte("alpha beta"), joined)
	})

	t.Run("map writes re-encoded content", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		fake.Seed("test-bucket", "logs/a.gz", gzipped(t, "alpha"))
		client := NewWithClient(fake, fastRetry)

		err := client.Collection("test-bucket", "logs/", WithTransformer(gz)).
			Map(context.Background(), func(ctx context.Context, key string, content []byte) ([]byte, error) {
				return bytes.ToUpper(content), nil
			})

		require.NoError(t, err)
		stored, ok := fake.Data("test-bucket", "logs/a.gz")
		require.True(t, ok)

		plain, err := gz.Decode(stored)
		require.NoError(t, err)
		assert.Equal(t, []byte("ALPHA"), plain)
	})

	t.Run("redirected filter copies stored bytes verbatim", func(t *testing.T) {
		fake := testutil.NewFakeBucket()
		stored := gzipped(t, "alpha")
		fake.Seed("test-bucket", "logs/a.gz", stored)
		client := NewWithClient(fake, fastRetry)

		err := client.Collection("test-bucket", "logs/",
			WithTransformer(gz),
			WithOutput("out-bucket", "kept/"),
		).Filter(context.Background(), func(ctx context.Context, key string, content []byte) (bool, error) {
			// The predicate sees decoded content.
			assert.Equal(t, []byte("alpha"), content)
			return true, nil
		})

		require.NoError(t, err)
		copied, ok := fake.Data("out-bucket", "kept/a.gz")
		require.True(t, ok)
		// Server-side copy bypasses the transformer.
		assert.Equal(t, stored, copied)
	})
}
