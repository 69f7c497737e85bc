// Package cache holds CMS read results keyed by site path, with tags so a
// single webhook can drop every entry derived from one document.
package cache

import (
	"context"
)

// ContentCache stores rendered CMS responses by path
type ContentCache interface {
	// Get returns the cached value for path and whether it was present
	Get(ctx context.Context, path string) ([]byte, bool, error)
	// Set stores value under path and associates it with tags
	Set(ctx context.Context, path string, value []byte, tags ...string) error
	// InvalidatePath drops a single path
	InvalidatePath(ctx context.Context, path string) error
	// InvalidateTag drops every path stored with tag
	InvalidateTag(ctx context.Context, tag string) error
	Close() error
}
