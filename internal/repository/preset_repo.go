package repository

import "context"

// PresetRepository stores named extraction presets: sets of checklist paths
// that are OR-ed into the export filter.
type PresetRepository interface {
	// Add appends paths to the preset, creating it when missing.
	Add(ctx context.Context, name string, paths ...string) error
	// Remove drops paths from the preset.
	Remove(ctx context.Context, name string, paths ...string) error
	// List returns the sorted paths of a preset. Unknown presets are empty.
	List(ctx context.Context, name string) ([]string, error)
	// Delete removes the whole preset.
	Delete(ctx context.Context, name string) error
}
