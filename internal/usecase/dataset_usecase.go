package usecase

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/samber/lo"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
	"github.com/viralesveras/lora-tag-helper/internal/feature"
	"github.com/viralesveras/lora-tag-helper/internal/repository"
	"github.com/viralesveras/lora-tag-helper/pkg/metrics"
	"github.com/viralesveras/lora-tag-helper/pkg/utils"
)

// ImageExtensions are the file types a dataset scan picks up.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff"}

// IsImage reports whether p has a supported image extension.
func IsImage(p string) bool {
	return lo.Contains(ImageExtensions, strings.ToLower(filepath.Ext(p)))
}

// Stores groups the persistence backends of a DatasetManager. Catalog may be nil.
type Stores struct {
	Cache     repository.ChecklistCacheRepository
	Presets   repository.PresetRepository
	Selection repository.SelectionRepository
	Catalog   repository.CatalogRepository
}

// ItemView is one image together with its checklist.
type ItemView struct {
	Index     int                     `json:"index"`
	Path      string                  `json:"path"`
	Item      entity.Item             `json:"item"`
	Checklist []entity.ChecklistEntry `json:"checklist"`
	Exif      entity.ExifInfo         `json:"exif"`
}

// ClickAction selects what a checklist click does.
type ClickAction string

const (
	ClickToggle         ClickAction = "toggle"
	ClickDelete         ClickAction = "delete"
	ClickRename         ClickAction = "rename"
	ClickApplySelection ClickAction = "apply_selection"
	ClickAddPreset      ClickAction = "add_preset"
)

// Click is a checklist click on the item being edited. Item carries unsaved
// edits; when nil the stored item is used.
type Click struct {
	Path        string       `json:"path"`
	Action      ClickAction  `json:"action,omitempty"`
	Item        *entity.Item `json:"item,omitempty"`
	Replacement string       `json:"replacement,omitempty"`
	Preset      string       `json:"preset,omitempty"`
}

// DatasetSnapshot is a consistent view of the open dataset for long running jobs.
type DatasetSnapshot struct {
	Root   string
	Images []string
	Repo   repository.ItemRepository
}

// Rel returns image relative to the dataset root with forward slashes.
func (s DatasetSnapshot) Rel(image string) string {
	rel, err := filepath.Rel(s.Root, image)
	if err != nil {
		return filepath.ToSlash(image)
	}
	return filepath.ToSlash(rel)
}

// DatasetManager owns the open dataset: its image list, the cursor, and the
// known-feature index.
type DatasetManager struct {
	mu       sync.RWMutex
	caps     Capabilities
	newRepo  repository.ItemRepositoryFactory
	stores   Stores
	cacheTTL time.Duration
	logger   *zap.Logger

	seg         *feature.Segmenter
	index       *feature.Index
	repo        repository.ItemRepository
	images      []string
	current     int
	full        bool
	fingerprint string
}

// NewDatasetManager creates a DatasetManager. caps.Tagger is required.
func NewDatasetManager(caps Capabilities, newRepo repository.ItemRepositoryFactory, stores Stores, cacheTTL time.Duration, logger *zap.Logger) *DatasetManager {
	seg := feature.NewSegmenter(caps.Tagger)
	return &DatasetManager{
		caps:     caps,
		newRepo:  newRepo,
		stores:   stores,
		cacheTTL: cacheTTL,
		logger:   logger,
		seg:      seg,
		index:    feature.NewIndex(seg),
	}
}

// Open scans root for images, loads every item and builds the known-feature checklists.
func (m *DatasetManager) Open(ctx context.Context, root string) (entity.DatasetStatus, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return entity.DatasetStatus{}, fmt.Errorf("resolve dataset path: %w", err)
	}
	if !utils.DirExists(abs) {
		return entity.DatasetStatus{}, fmt.Errorf("%s: %w", abs, repository.ErrDirNotFound)
	}

	var images []string
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsImage(p) {
			images = append(images, p)
		}
		return nil
	})
	if err != nil {
		return entity.DatasetStatus{}, fmt.Errorf("scan dataset: %w", err)
	}
	if len(images) == 0 {
		return entity.DatasetStatus{}, ErrEmptyDataset
	}
	sort.Strings(images)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.repo = m.newRepo(abs)
	m.images = images
	m.current = 0
	if err := m.rebuildLocked(ctx, true); err != nil {
		return entity.DatasetStatus{}, err
	}
	m.logger.Info("Dataset opened", zap.String("root", abs), zap.Int("images", len(images)), zap.Int("checklist_entries", m.index.Size()))
	return m.statusLocked(), nil
}

// rebuildLocked reloads every item into the index and restores the built
// checklists from the cache when the dataset has not changed.
func (m *DatasetManager) rebuildLocked(ctx context.Context, catalog bool) error {
	m.index.Reset()
	var records []*entity.CatalogItem
	for _, img := range m.images {
		item, err := m.repo.Load(img)
		if err != nil {
			m.logger.Warn("Skipping unreadable item", zap.String("path", img), zap.Error(err))
			continue
		}
		rel := m.relLocked(img)
		m.index.Add(rel, item.Features)
		metrics.ItemsScannedTotal.Inc()
		if catalog && m.stores.Catalog != nil {
			records = append(records, catalogRecord(m.repo.Root(), rel, item))
		}
	}

	m.fingerprint = m.fingerprintLocked()
	if lists, err := m.stores.Cache.Get(ctx, m.fingerprint); err == nil {
		m.index.Restore(lists)
		m.logger.Debug("Checklists restored from cache", zap.String("fingerprint", m.fingerprint))
	} else {
		m.index.Build()
		m.storeChecklistsLocked(ctx)
	}
	metrics.KnownChecklistEntries.Set(float64(m.index.Size()))

	if len(records) > 0 {
		if err := m.stores.Catalog.Save(ctx, records); err != nil {
			m.logger.Warn("Failed to update catalog", zap.String("root", m.repo.Root()), zap.Error(err))
		}
	}
	return nil
}

func (m *DatasetManager) storeChecklistsLocked(ctx context.Context) {
	if err := m.stores.Cache.Put(ctx, m.fingerprint, m.index.Lists(), m.cacheTTL); err != nil {
		m.logger.Warn("Failed to cache checklists", zap.Error(err))
	}
}

// fingerprintLocked identifies the dataset content that feeds the checklists:
// image paths plus modification times of sidecars and defaults files.
func (m *DatasetManager) fingerprintLocked() string {
	var b strings.Builder
	b.WriteString(m.repo.Root())
	stamp := func(p string) {
		if info, err := os.Stat(p); err == nil {
			fmt.Fprintf(&b, "|%s@%d", p, info.ModTime().UnixNano())
		}
	}
	dirs := map[string]bool{}
	for _, img := range m.images {
		b.WriteString("|" + img)
		stamp(m.repo.SidecarPath(img))
		stamp(utils.StripExt(img) + ".txt")
		for _, d := range feature.Ancestors(feature.ImageDir(m.relLocked(img))) {
			dirs[d] = true
		}
	}
	keys := lo.Keys(dirs)
	sort.Strings(keys)
	for _, d := range keys {
		stamp(filepath.Join(m.repo.Root(), filepath.FromSlash(d), entity.DefaultsFileName))
	}
	return utils.HashPath(b.String())
}

func catalogRecord(root, rel string, item entity.Item) *entity.CatalogItem {
	return &entity.CatalogItem{
		Dataset:  root,
		Path:     rel,
		Title:    item.Title,
		Artist:   item.Artist,
		Style:    item.Style,
		Rating:   item.Rating,
		Summary:  item.Summary,
		Features: item.Features,
	}
}

func (m *DatasetManager) relLocked(image string) string {
	rel, err := filepath.Rel(m.repo.Root(), image)
	if err != nil {
		return filepath.ToSlash(image)
	}
	return filepath.ToSlash(rel)
}

func (m *DatasetManager) checkIndexLocked(index int) error {
	if m.repo == nil {
		return ErrNoDataset
	}
	if index < 0 || index >= len(m.images) {
		return fmt.Errorf("%d: %w", index, ErrIndexOutOfRange)
	}
	return nil
}

// Status summarises the open dataset.
func (m *DatasetManager) Status() entity.DatasetStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

func (m *DatasetManager) statusLocked() entity.DatasetStatus {
	s := entity.DatasetStatus{
		CurrentIndex:   m.current,
		FullChecklist:  m.full,
		TaggerName:     m.caps.Tagger.Name(),
		TokenizerName:  m.caps.counter().Name(),
		Interrogator:   m.caps.interrogatorName(),
		CatalogEnabled: m.stores.Catalog != nil,
	}
	if m.repo == nil {
		return s
	}
	s.Root = m.repo.Root()
	s.ImageCount = len(m.images)
	s.CurrentImage = m.relLocked(m.images[m.current])
	s.KnownFeatures = m.index.Size()
	return s
}

// Snapshot returns the open dataset for export and interrogation jobs.
func (m *DatasetManager) Snapshot() (DatasetSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.repo == nil {
		return DatasetSnapshot{}, ErrNoDataset
	}
	return DatasetSnapshot{Root: m.repo.Root(), Images: append([]string(nil), m.images...), Repo: m.repo}, nil
}

// Images lists the dataset images relative to the root.
func (m *DatasetManager) Images() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.repo == nil {
		return nil, ErrNoDataset
	}
	return lo.Map(m.images, func(img string, _ int) string { return m.relLocked(img) }), nil
}

// SetFullChecklist switches between directory scoped and dataset wide checklists.
func (m *DatasetManager) SetFullChecklist(full bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.full = full
}

// Goto moves the cursor to an image, or to the first image below a directory.
// p may be absolute or relative to the dataset root.
func (m *DatasetManager) Goto(p string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.repo == nil {
		return 0, ErrNoDataset
	}
	target := p
	if !filepath.IsAbs(target) {
		target = filepath.Join(m.repo.Root(), filepath.FromSlash(p))
	}
	within, err := utils.IsWithin(m.repo.Root(), target)
	if err != nil {
		return 0, err
	}
	if !within {
		return 0, fmt.Errorf("%s: %w", p, ErrOutsideDataset)
	}
	rel := path.Clean(m.relLocked(target))

	for i, img := range m.images {
		r := m.relLocked(img)
		if r == rel || rel == feature.RootDir || strings.HasPrefix(r, rel+"/") {
			m.current = i
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s: %w", p, ErrImageNotFound)
}

// Seek moves the cursor by delta, clamping at both ends.
func (m *DatasetManager) Seek(delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.repo == nil {
		return 0, ErrNoDataset
	}
	m.current = min(max(m.current+delta, 0), len(m.images)-1)
	return m.current, nil
}

func (m *DatasetManager) Next() (int, error) { return m.Seek(1) }
func (m *DatasetManager) Prev() (int, error) { return m.Seek(-1) }

func (m *DatasetManager) First() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.repo == nil {
		return 0, ErrNoDataset
	}
	m.current = 0
	return 0, nil
}

func (m *DatasetManager) Last() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.repo == nil {
		return 0, ErrNoDataset
	}
	m.current = len(m.images) - 1
	return m.current, nil
}

// Item loads the stored item at index and moves the cursor there.
func (m *DatasetManager) Item(index int) (ItemView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkIndexLocked(index); err != nil {
		return ItemView{}, err
	}
	item, err := m.repo.Load(m.images[index])
	if err != nil {
		return ItemView{}, err
	}
	m.current = index
	view := m.viewLocked(index, item)
	if view.Exif, err = m.repo.Exif(m.images[index]); err != nil {
		m.logger.Warn("Failed to read EXIF", zap.String("path", m.images[index]), zap.Error(err))
	}
	return view, nil
}

func (m *DatasetManager) viewLocked(index int, item entity.Item) ItemView {
	rel := m.relLocked(m.images[index])
	return ItemView{
		Index:     index,
		Path:      rel,
		Item:      item,
		Checklist: m.index.ForItem(feature.ImageDir(rel), item.Features, m.full),
	}
}

// Checklist returns the checklist for an item being edited at index.
func (m *DatasetManager) Checklist(index int, item entity.Item) ([]entity.ChecklistEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkIndexLocked(index); err != nil {
		return nil, err
	}
	return m.viewLocked(index, item).Checklist, nil
}

// KnownChecklist returns the known entries visible from dir, or every entry when dir is empty.
func (m *DatasetManager) KnownChecklist(dir string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.repo == nil {
		return nil, ErrNoDataset
	}
	if dir == "" {
		return m.index.FullChecklist(), nil
	}
	return m.index.Checklist(path.Clean(dir)), nil
}

// SaveItem writes item's differences from its defaults and refreshes the checklists.
func (m *DatasetManager) SaveItem(ctx context.Context, index int, item entity.Item) (ItemView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkIndexLocked(index); err != nil {
		return ItemView{}, err
	}
	img := m.images[index]
	if err := m.repo.Save(img, item); err != nil {
		return ItemView{}, fmt.Errorf("save item: %w", err)
	}
	metrics.ItemSavesTotal.Inc()

	rel := m.relLocked(img)
	m.index.Add(rel, item.Features)
	m.index.Build()
	m.fingerprint = m.fingerprintLocked()
	m.storeChecklistsLocked(ctx)
	metrics.KnownChecklistEntries.Set(float64(m.index.Size()))

	if m.stores.Catalog != nil {
		if err := m.stores.Catalog.Save(ctx, []*entity.CatalogItem{catalogRecord(m.repo.Root(), rel, item)}); err != nil {
			m.logger.Warn("Failed to update catalog", zap.String("path", rel), zap.Error(err))
		}
	}
	return m.viewLocked(index, item), nil
}

// ResetItem returns the inherited defaults of the image, discarding its own values.
// Nothing is written until the item is saved.
func (m *DatasetManager) ResetItem(index int) (ItemView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkIndexLocked(index); err != nil {
		return ItemView{}, err
	}
	item, err := m.repo.Defaults(m.images[index])
	if err != nil {
		return ItemView{}, err
	}
	return m.viewLocked(index, item), nil
}

func (m *DatasetManager) workingItemLocked(index int, item *entity.Item) (entity.Item, error) {
	if item != nil {
		return item.Clone(), nil
	}
	return m.repo.Load(m.images[index])
}

// Click applies a checklist click to the item at index and returns the edited,
// unsaved item. Rename and selection actions write the affected sidecars.
func (m *DatasetManager) Click(ctx context.Context, index int, c Click) (ItemView, error) {
	action := c.Action
	if action == "" {
		action = ClickToggle
	}
	metrics.FeatureClicksTotal.WithLabelValues(string(action)).Inc()

	if action == ClickRename {
		r := feature.Rename{Path: c.Path, Replacement: c.Replacement}
		if _, err := m.RenameFeature(ctx, r); err != nil {
			return ItemView{}, err
		}
		m.mu.RLock()
		defer m.mu.RUnlock()
		if err := m.checkIndexLocked(index); err != nil {
			return ItemView{}, err
		}
		item, err := m.workingItemLocked(index, nil)
		if err != nil {
			return ItemView{}, err
		}
		if c.Item != nil {
			item = c.Item.Clone()
			item.Features, _ = feature.RenameFeatures(item.Features, r)
		}
		return m.viewLocked(index, item), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkIndexLocked(index); err != nil {
		return ItemView{}, err
	}
	item, err := m.workingItemLocked(index, c.Item)
	if err != nil {
		return ItemView{}, err
	}
	view := m.viewLocked(index, item)
	tree := feature.NewTree(view.Checklist)
	if !tree.Has(c.Path) {
		return ItemView{}, fmt.Errorf("%q: %w", c.Path, feature.ErrUnknownNode)
	}

	switch action {
	case ClickToggle, ClickApplySelection:
		checked, err := tree.Toggle(c.Path)
		if err != nil {
			return ItemView{}, err
		}
		if item.Features, err = feature.ApplyCheck(item.Features, c.Path, checked); err != nil {
			return ItemView{}, err
		}
		if action == ClickApplySelection {
			if err := m.applyToSelectionLocked(ctx, c.Path, checked); err != nil {
				return ItemView{}, err
			}
		}
	case ClickDelete:
		if err := tree.Uncheck(c.Path); err != nil {
			return ItemView{}, err
		}
		if item.Features, err = feature.ApplyCheck(item.Features, c.Path, false); err != nil {
			return ItemView{}, err
		}
		if err := tree.Delete(c.Path); err != nil {
			return ItemView{}, err
		}
		m.index.Suppress(feature.ImageDir(view.Path), c.Path)
	case ClickAddPreset:
		if strings.TrimSpace(c.Preset) == "" {
			return ItemView{}, ErrMissingPreset
		}
		if err := m.stores.Presets.Add(ctx, c.Preset, c.Path); err != nil {
			return ItemView{}, fmt.Errorf("add to preset: %w", err)
		}
		return view, nil
	default:
		return ItemView{}, fmt.Errorf("%q: %w", action, ErrUnknownAction)
	}
	return m.viewLocked(index, item), nil
}

// applyToSelectionLocked writes the check state of p into every selected image.
func (m *DatasetManager) applyToSelectionLocked(ctx context.Context, p string, checked bool) error {
	selected, err := m.stores.Selection.List(ctx)
	if err != nil {
		return fmt.Errorf("list selection: %w", err)
	}
	if len(selected) == 0 {
		return ErrEmptySelection
	}
	for _, rel := range selected {
		img := filepath.Join(m.repo.Root(), filepath.FromSlash(rel))
		item, err := m.repo.Load(img)
		if err != nil {
			m.logger.Warn("Skipping selected item", zap.String("path", rel), zap.Error(err))
			continue
		}
		features, err := feature.ApplyCheck(item.Features, p, checked)
		if err != nil {
			return err
		}
		if features.Equal(item.Features) {
			continue
		}
		item.Features = features
		if err := m.repo.Save(img, item); err != nil {
			return fmt.Errorf("save %s: %w", rel, err)
		}
		metrics.ItemSavesTotal.Inc()
		m.index.Add(rel, features)
	}
	m.index.Build()
	m.fingerprint = m.fingerprintLocked()
	m.storeChecklistsLocked(ctx)
	return nil
}

// RenameFeature renames or deletes a checklist node in every image of the
// dataset, then rebuilds the checklists. It returns the number of changed images.
func (m *DatasetManager) RenameFeature(ctx context.Context, r feature.Rename) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.repo == nil {
		return 0, ErrNoDataset
	}

	changed := 0
	for _, img := range m.images {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		item, err := m.repo.Load(img)
		if err != nil {
			m.logger.Warn("Skipping unreadable item", zap.String("path", img), zap.Error(err))
			continue
		}
		features, ok := feature.RenameFeatures(item.Features, r)
		if !ok {
			continue
		}
		item.Features = features
		if err := m.repo.Save(img, item); err != nil {
			return changed, fmt.Errorf("save %s: %w", img, err)
		}
		changed++
	}

	kind := "rename"
	if r.Delete {
		kind = "delete"
	}
	metrics.FeatureRenamesTotal.WithLabelValues(kind).Inc()
	m.logger.Info("Feature renamed across dataset", zap.String("path", r.Path), zap.String("kind", kind), zap.Int("changed", changed))

	if err := m.rebuildLocked(ctx, changed > 0); err != nil {
		return changed, err
	}
	return changed, nil
}

// FeaturesFromSummary adds a feature row for every known feature named in the item's summary.
func (m *DatasetManager) FeaturesFromSummary(index int, item *entity.Item) (ItemView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkIndexLocked(index); err != nil {
		return ItemView{}, err
	}
	working, err := m.workingItemLocked(index, item)
	if err != nil {
		return ItemView{}, err
	}
	view := m.viewLocked(index, working)
	for _, name := range feature.FeaturesFromSummary(working.Summary, view.Checklist) {
		if working.Features.Index(name) < 0 {
			working.Features = working.Features.Set(name, "")
		}
	}
	return m.viewLocked(index, working), nil
}

// Interrogate fills the automatic tags of the item at index. The item is not saved.
func (m *DatasetManager) Interrogate(ctx context.Context, index int, item *entity.Item) (ItemView, error) {
	if m.caps.Interrogator == nil {
		return ItemView{}, ErrNoInterrogator
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkIndexLocked(index); err != nil {
		return ItemView{}, err
	}
	working, err := m.workingItemLocked(index, item)
	if err != nil {
		return ItemView{}, err
	}
	tags, err := m.caps.Interrogator.Interrogate(ctx, m.images[index])
	if err != nil {
		metrics.InterrogationsTotal.WithLabelValues("failure").Inc()
		return ItemView{}, fmt.Errorf("interrogate: %w", err)
	}
	metrics.InterrogationsTotal.WithLabelValues("success").Inc()
	working.AutomaticTags = tags
	return m.viewLocked(index, working), nil
}

// SaveDefaults writes a defaults.json into dir and reloads the dataset.
func (m *DatasetManager) SaveDefaults(ctx context.Context, dir string, patch entity.DefaultsPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.repo == nil {
		return ErrNoDataset
	}
	if err := m.repo.SaveDefaults(dir, patch); err != nil {
		return err
	}
	return m.rebuildLocked(ctx, true)
}

// Thumbnail writes a JPEG of the image at index that fits in size x size.
func (m *DatasetManager) Thumbnail(w io.Writer, index, size int) error {
	m.mu.RLock()
	if err := m.checkIndexLocked(index); err != nil {
		m.mu.RUnlock()
		return err
	}
	img := m.images[index]
	m.mu.RUnlock()

	src, err := imaging.Open(img, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	return imaging.Encode(w, imaging.Fit(src, size, size, imaging.Lanczos), imaging.JPEG, imaging.JPEGQuality(85))
}

// SelectImages replaces (or extends) the multi-selection with dataset images.
func (m *DatasetManager) SelectImages(ctx context.Context, paths []string, add bool) ([]string, error) {
	m.mu.RLock()
	if m.repo == nil {
		m.mu.RUnlock()
		return nil, ErrNoDataset
	}
	known := lo.SliceToMap(m.images, func(img string) (string, bool) { return m.relLocked(img), true })
	m.mu.RUnlock()

	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		rel := path.Clean(filepath.ToSlash(p))
		if !known[rel] {
			return nil, fmt.Errorf("%s: %w", p, ErrImageNotFound)
		}
		rels = append(rels, rel)
	}
	var err error
	if add {
		err = m.stores.Selection.Add(ctx, rels...)
	} else {
		err = m.stores.Selection.Replace(ctx, rels)
	}
	if err != nil {
		return nil, err
	}
	return m.stores.Selection.List(ctx)
}

func (m *DatasetManager) Selection(ctx context.Context) ([]string, error) {
	return m.stores.Selection.List(ctx)
}

func (m *DatasetManager) ClearSelection(ctx context.Context) error {
	return m.stores.Selection.Clear(ctx)
}

// Preset lists the checklist paths of an extraction preset.
func (m *DatasetManager) Preset(ctx context.Context, name string) ([]string, error) {
	return m.stores.Presets.List(ctx, name)
}

// AddToPreset validates the paths and appends them to a preset.
func (m *DatasetManager) AddToPreset(ctx context.Context, name string, paths ...string) ([]string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingPreset
	}
	for _, p := range paths {
		if entity.Depth(p) == 0 {
			return nil, feature.ErrEmptyPath
		}
		if entity.Depth(p) > entity.MaxDepth {
			return nil, feature.ErrDepth
		}
	}
	if err := m.stores.Presets.Add(ctx, name, paths...); err != nil {
		return nil, err
	}
	return m.stores.Presets.List(ctx, name)
}

// RemoveFromPreset drops paths from a preset, or the whole preset when paths is empty.
func (m *DatasetManager) RemoveFromPreset(ctx context.Context, name string, paths ...string) error {
	if len(paths) == 0 {
		return m.stores.Presets.Delete(ctx, name)
	}
	return m.stores.Presets.Remove(ctx, name, paths...)
}

// SearchCatalog lists catalogued images of the open dataset that carry a feature.
func (m *DatasetManager) SearchCatalog(ctx context.Context, name string, limit int) ([]*entity.CatalogItem, error) {
	if m.stores.Catalog == nil {
		return nil, ErrCatalogDisabled
	}
	m.mu.RLock()
	if m.repo == nil {
		m.mu.RUnlock()
		return nil, ErrNoDataset
	}
	root := m.repo.Root()
	m.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	return m.stores.Catalog.FindByFeature(ctx, root, name, limit)
}
