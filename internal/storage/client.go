// Package storage abstracts the object store holding listing images.
package storage

import (
	"context"
	"io"
)

// Client defines the interface for object storage operations. Keys are
// namespaced paths like "properties/42/<uuid>-kitchen.jpg".
type Client interface {
	// Put uploads content under key and returns the public URL.
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)

	// Delete removes the blob stored under key.
	Delete(ctx context.Context, key string) error
}
