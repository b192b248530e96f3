// Package storage holds uploaded PDF bytes in a flat key -> blob namespace.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned by Open when no blob exists under the key.
var ErrNotFound = errors.New("blob not found")

// Store is the blob store used for uploaded documents. All operations stream
// through io.Reader/io.ReadCloser so large files never sit in memory.
type Store interface {
	// Put stores everything read from r under key, replacing any previous
	// blob, and returns the number of bytes consumed from r.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns a reader for the blob. The caller must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// validateKey rejects keys that could escape a flat namespace.
func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("invalid blob key: %q", key)
	}
	return nil
}

// countingReader records how many bytes have passed through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
