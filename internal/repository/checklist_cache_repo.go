package repository

import (
	"context"
	"time"
)

// ChecklistCacheRepository stores built known-feature checklists keyed by a dataset fingerprint.
type ChecklistCacheRepository interface {
	// Put stores the per-directory checklists with an expiry time.
	Put(ctx context.Context, fingerprint string, lists map[string][]string, expiry time.Duration) error
	// Get returns the cached checklists, or ErrNotFound.
	Get(ctx context.Context, fingerprint string) (map[string][]string, error)
	// Invalidate drops a cached entry.
	Invalidate(ctx context.Context, fingerprint string) error
}
