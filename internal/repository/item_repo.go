package repository

import "github.com/viralesveras/lora-tag-helper/internal/entity"

// ItemRepository reads and writes per-image sidecars below one dataset root.
type ItemRepository interface {
	// Root is the dataset directory the repository is bound to.
	Root() string
	// Defaults returns the built-in values overlaid with every defaults.json
	// from the root down to the image's directory.
	Defaults(imagePath string) (entity.Item, error)
	// Load applies the caption txt and the sidecar JSON on top of Defaults.
	Load(imagePath string) (entity.Item, error)
	// Save writes the fields of item that differ from the image's defaults.
	Save(imagePath string, item entity.Item) error
	// WriteFull writes every field of item to jsonPath.
	WriteFull(item entity.Item, jsonPath string) error
	// SaveDefaults writes a defaults.json into dir, which must be inside the root.
	SaveDefaults(dir string, patch entity.DefaultsPatch) error
	// SidecarPath is the JSON file belonging to imagePath.
	SidecarPath(imagePath string) string
	// Exif reads the EXIF summary of the image. Images without EXIF give an empty summary.
	Exif(imagePath string) (entity.ExifInfo, error)
}

// ItemRepositoryFactory binds an ItemRepository to a dataset root.
type ItemRepositoryFactory func(root string) ItemRepository
