package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	base := errors.New("underlying failure")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "operation only",
			err:  NewError("map", base),
			want: "s3set.map: underlying failure",
		},
		{
			name: "with bucket",
			err:  NewError("each", base).WithBucket("my-bucket"),
			want: "s3set.each bucket my-bucket: underlying failure",
		},
		{
			name: "with key",
			err:  NewError("get", base).WithKey("data/file.txt"),
			want: "s3set.get object data/file.txt: underlying failure",
		},
		{
			name: "with bucket and key",
			err:  NewObjectError("put", "my-bucket", "data/file.txt", base),
			want: "s3set.put my-bucket/data/file.txt: underlying failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewError("reduce", ErrEmptyReduce).WithBucket("my-bucket")

	assert.ErrorIs(t, err, ErrEmptyReduce)
	assert.True(t, IsEmptyReduce(err))
}

func TestError_WithMessage(t *testing.T) {
	err := NewError("filter", ErrInvalidConfig).WithMessage("concurrency limit must be at least 1")

	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "concurrency limit must be at least 1")
}

func TestSentinelHelpers(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		err   error
		want  bool
	}{
		{"invalid config direct", IsInvalidConfig, ErrInvalidConfig, true},
		{"invalid config wrapped", IsInvalidConfig, fmt.Errorf("setup: %w", ErrInvalidConfig), true},
		{"invalid config mismatch", IsInvalidConfig, ErrAccessDenied, false},
		{"empty reduce direct", IsEmptyReduce, ErrEmptyReduce, true},
		{"object not found wrapped", IsObjectNotFound, NewError("get", ErrObjectNotFound), true},
		{"access denied wrapped", IsAccessDenied, NewError("put", ErrAccessDenied), true},
		{"nil error", IsObjectNotFound, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}
