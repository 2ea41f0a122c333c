package s3set

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// GzipTransformer decompresses object content after fetch and compresses
// it before write, so traversals see and produce plain bytes while the
// stored objects stay gzipped.
type GzipTransformer struct {
	// Level is the gzip compression level used by Encode.
	// Zero means gzip.DefaultCompression.
	Level int
}

// Decode gunzips stored content.
func (t GzipTransformer) Decode(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// Encode gzips content for storage.
func (t GzipTransformer) Encode(data []byte) ([]byte, error) {
	level := t.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
