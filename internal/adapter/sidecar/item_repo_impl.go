package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
	"github.com/viralesveras/lora-tag-helper/internal/repository"
	"github.com/viralesveras/lora-tag-helper/pkg/utils"
)

const indent = "    "

// ItemRepoImpl provides a concrete implementation for the ItemRepository
// interface using JSON files next to each image.
type ItemRepoImpl struct {
	root   string
	logger *zap.Logger
}

// NewItemRepo creates a new instance of ItemRepoImpl bound to root.
func NewItemRepo(root string, logger *zap.Logger) *ItemRepoImpl {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &ItemRepoImpl{root: root, logger: logger}
}

// Factory adapts NewItemRepo to repository.ItemRepositoryFactory.
func Factory(logger *zap.Logger) repository.ItemRepositoryFactory {
	return func(root string) repository.ItemRepository {
		return NewItemRepo(root, logger)
	}
}

func (r *ItemRepoImpl) Root() string {
	return r.root
}

// SidecarPath swaps the image extension for .json.
func (r *ItemRepoImpl) SidecarPath(imagePath string) string {
	return utils.StripExt(imagePath) + ".json"
}

func captionPath(imagePath string) string {
	return utils.StripExt(imagePath) + ".txt"
}

// defaultDirs lists the directories whose defaults.json apply to imagePath, root first.
func (r *ItemRepoImpl) defaultDirs(imagePath string) ([]string, error) {
	abs, err := filepath.Abs(imagePath)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(r.root, filepath.Dir(abs))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%s: %w", imagePath, repository.ErrOutsideRoot)
	}

	dirs := []string{r.root}
	if rel == "." {
		return dirs, nil
	}
	cur := r.root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		dirs = append(dirs, cur)
	}
	return dirs, nil
}

// Defaults returns the built-in values overlaid with every defaults.json from
// the root down to the image's directory. Nearer files win key by key.
func (r *ItemRepoImpl) Defaults(imagePath string) (entity.Item, error) {
	title := filepath.Base(utils.StripExt(imagePath))
	prompt, err := PNGPrompt(imagePath)
	if err != nil {
		r.logger.Debug("no generation prompt", zap.String("path", imagePath), zap.Error(err))
	}
	item := entity.BaseItem(title, prompt)

	dirs, err := r.defaultDirs(imagePath)
	if err != nil {
		return item, err
	}
	for _, d := range dirs {
		file := filepath.Join(d, entity.DefaultsFileName)
		data, err := os.ReadFile(file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return item, fmt.Errorf("read %s: %w", file, err)
		}
		if err := json.Unmarshal(data, &item); err != nil {
			return item, fmt.Errorf("parse %s: %w", file, err)
		}
	}
	return item, nil
}

// Load applies the caption txt and then the sidecar JSON on top of the defaults.
func (r *ItemRepoImpl) Load(imagePath string) (entity.Item, error) {
	item, err := r.Defaults(imagePath)
	if err != nil {
		return item, err
	}

	txt := captionPath(imagePath)
	if data, err := os.ReadFile(txt); err == nil {
		item.AutomaticTags = utils.NormalizeSpace(string(data))
	} else if !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("could not read caption file", zap.String("path", txt), zap.Error(err))
	}

	file := r.SidecarPath(imagePath)
	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return item, nil
	}
	if err != nil {
		return item, fmt.Errorf("read %s: %w", file, err)
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return item, fmt.Errorf("parse %s: %w", file, err)
	}
	if item.Version > entity.ItemVersion {
		r.logger.Warn("sidecar written by a newer version",
			zap.String("path", file), zap.Int("version", item.Version))
	}
	return item, nil
}

// sidecarDiff holds the fields of an item that differ from its defaults.
type sidecarDiff struct {
	Version       int              `json:"lora_tag_helper_version"`
	Title         *string          `json:"title,omitempty"`
	Artist        *string          `json:"artist,omitempty"`
	Style         *string          `json:"style,omitempty"`
	Rating        *int             `json:"rating,omitempty"`
	Summary       *string          `json:"summary,omitempty"`
	Features      *entity.Features `json:"features,omitempty"`
	Crop          *entity.Crop     `json:"crop,omitempty"`
	AutomaticTags *string          `json:"automatic_tags,omitempty"`
}

func diff(item, defaults entity.Item) sidecarDiff {
	d := sidecarDiff{Version: entity.ItemVersion}
	if item.Title != defaults.Title {
		d.Title = &item.Title
	}
	if item.Artist != defaults.Artist {
		d.Artist = &item.Artist
	}
	if item.Style != defaults.Style {
		d.Style = &item.Style
	}
	if item.Rating != defaults.Rating {
		d.Rating = &item.Rating
	}
	if item.Summary != defaults.Summary {
		d.Summary = &item.Summary
	}
	if !item.Features.Equal(defaults.Features) {
		fs := item.Features
		if fs == nil {
			fs = entity.Features{}
		}
		d.Features = &fs
	}
	if item.Crop != defaults.Crop {
		d.Crop = &item.Crop
	}
	if item.AutomaticTags != defaults.AutomaticTags {
		d.AutomaticTags = &item.AutomaticTags
	}
	return d
}

// Save writes the fields of item that differ from the image's defaults.
func (r *ItemRepoImpl) Save(imagePath string, item entity.Item) error {
	defaults, err := r.Defaults(imagePath)
	if err != nil {
		return err
	}
	return writeJSON(r.SidecarPath(imagePath), diff(item, defaults))
}

// WriteFull writes every field of item to jsonPath.
func (r *ItemRepoImpl) WriteFull(item entity.Item, jsonPath string) error {
	if item.Features == nil {
		item.Features = entity.Features{}
	}
	return writeJSON(jsonPath, item)
}

// SaveDefaults writes patch to dir/defaults.json. A relative dir is taken from the root.
func (r *ItemRepoImpl) SaveDefaults(dir string, patch entity.DefaultsPatch) error {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.root, dir)
	}
	inside, err := utils.IsWithin(r.root, dir)
	if err != nil {
		return err
	}
	if !inside {
		return fmt.Errorf("%s: %w", dir, repository.ErrOutsideRoot)
	}
	if !utils.DirExists(dir) {
		return fmt.Errorf("%s: %w", dir, repository.ErrDirNotFound)
	}
	return writeJSON(filepath.Join(dir, entity.DefaultsFileName), patch)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
