package repository

import "context"

// SelectionRepository holds the multi-selection of images for batch edits.
type SelectionRepository interface {
	// Replace sets the selection to images.
	Replace(ctx context.Context, images []string) error
	// Add appends images that are not selected yet.
	Add(ctx context.Context, images ...string) error
	// List returns the selection in insertion order.
	List(ctx context.Context) ([]string, error)
	// Clear empties the selection.
	Clear(ctx context.Context) error
}
