package usecase

import "errors"

var (
	ErrNoDataset           = errors.New("no dataset is open")
	ErrEmptyDataset        = errors.New("no supported images found in dataset")
	ErrIndexOutOfRange     = errors.New("image index out of range")
	ErrImageNotFound       = errors.New("no image matches the path")
	ErrOutsideDataset      = errors.New("path is outside the dataset")
	ErrUnknownAction       = errors.New("unknown click action")
	ErrMissingPreset       = errors.New("preset name is required")
	ErrEmptySelection      = errors.New("no images are selected")
	ErrCatalogDisabled     = errors.New("catalog is not configured")
	ErrNoInterrogator      = errors.New("no interrogator is configured")
	ErrSubsetInsideDataset = errors.New("output path must not be the dataset, one of its ancestors, or inside it")
	ErrNotASubset          = errors.New("directory exists but has no valid subset information")
	ErrStaleFiles          = errors.New("subset directory already contains files")
	ErrNoImagesMatched     = errors.New("no images matched filter")
	ErrInvalidOptions      = errors.New("invalid export options")
)
