package storage

import (
	"context"
	"io"
	"time"
)

type PutInput struct {
	// Prefix namespaces the object key, e.g. "slips/KS-ABC123".
	Prefix      string
	Filename    string
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	// SignedURL returns a time-limited access URL for a stored object.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}
