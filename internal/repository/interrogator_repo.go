package repository

import "context"

// Interrogator produces comma separated automatic tags for an image.
type Interrogator interface {
	Name() string
	// Interrogate returns the tags for the image at imagePath.
	Interrogate(ctx context.Context, imagePath string) (string, error)
}
