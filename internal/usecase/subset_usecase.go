package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/viralesveras/lora-tag-helper/internal/caption"
	"github.com/viralesveras/lora-tag-helper/internal/entity"
	"github.com/viralesveras/lora-tag-helper/internal/repository"
	"github.com/viralesveras/lora-tag-helper/pkg/metrics"
	"github.com/viralesveras/lora-tag-helper/pkg/utils"
)

// ProgressFunc is called as work advances. done counts finished images.
type ProgressFunc func(done, total int)

// SubsetExporter writes LoRA training subsets.
type SubsetExporter struct {
	caps    Capabilities
	presets repository.PresetRepository
	history repository.ExportHistoryRepository
	logger  *zap.Logger
}

// NewSubsetExporter creates a SubsetExporter. history may be nil.
func NewSubsetExporter(caps Capabilities, presets repository.PresetRepository, history repository.ExportHistoryRepository, logger *zap.Logger) *SubsetExporter {
	return &SubsetExporter{caps: caps, presets: presets, history: history, logger: logger}
}

// LoRAName replaces runs of whitespace in name with underscores.
func LoRAName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

// SubsetDirName is the kohya style "<steps>_<name>" directory of a subset.
func SubsetDirName(steps entity.Steps, name string) string {
	return fmt.Sprintf("%d_%s", steps, LoRAName(name))
}

// Export writes a subset of the dataset to opts.OutputDir.
func (e *SubsetExporter) Export(ctx context.Context, ds DatasetSnapshot, opts entity.ExportOptions, progress ProgressFunc) (*entity.ExportResult, error) {
	start := time.Now()
	defer func() { metrics.ExportDuration.Observe(time.Since(start).Seconds()) }()

	info := opts.SubsetInfo
	info.Version = entity.ItemVersion
	info.Name = LoRAName(info.Name)
	switch {
	case info.Name == "":
		return nil, fmt.Errorf("%w: LoRA name is empty", ErrInvalidOptions)
	case info.StepsPerImage <= 0:
		return nil, fmt.Errorf("%w: steps per image must be positive", ErrInvalidOptions)
	case info.ReviewOption < entity.ReviewNone || info.ReviewOption > entity.ReviewAll:
		return nil, fmt.Errorf("%w: review option %d", ErrInvalidOptions, info.ReviewOption)
	}

	outputDir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output path: %w", err)
	}
	if err := checkOutsideDataset(ds.Root, outputDir); err != nil {
		return nil, err
	}

	subsetPath := filepath.Join(outputDir, SubsetDirName(info.StepsPerImage, info.Name))
	result := &entity.ExportResult{SubsetPath: subsetPath}
	if err := e.prepareSubsetDir(subsetPath, opts.StaleFiles, result); err != nil {
		return nil, err
	}
	if err := writeSubsetInfo(subsetPath, info); err != nil {
		return nil, err
	}

	var presetPaths []string
	if opts.Preset != "" {
		if presetPaths, err = e.presets.List(ctx, opts.Preset); err != nil {
			return nil, fmt.Errorf("load preset %q: %w", opts.Preset, err)
		}
	}
	expr := caption.Expression(info, presetPaths)

	used := map[string]bool{}
	total := len(ds.Images)
	for i, img := range ds.Images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(i, total)
		}

		item, err := ds.Repo.Load(img)
		if err != nil {
			e.logger.Warn("Skipping unreadable item", zap.String("path", img), zap.Error(err))
			continue
		}
		rel := ds.Rel(img)

		if info.InterrogateAutomaticTags && item.AutomaticTags == "" && e.caps.Interrogator != nil {
			tags, err := e.caps.Interrogator.Interrogate(ctx, img)
			if err != nil {
				metrics.InterrogationsTotal.WithLabelValues("failure").Inc()
				e.logger.Warn("Interrogation failed", zap.String("path", rel), zap.Error(err))
			} else {
				metrics.InterrogationsTotal.WithLabelValues("success").Inc()
				item.AutomaticTags = tags
			}
		}

		text := caption.Build(item, info)
		if expr != "" && !caption.Matches(text, expr) {
			result.Filtered++
			metrics.SubsetImagesTotal.WithLabelValues("filtered").Inc()
			continue
		}
		if info.FilterRating && item.Rating < info.MinimumRating {
			result.LowRating++
			metrics.SubsetImagesTotal.WithLabelValues("low_rating").Inc()
			continue
		}
		if info.ReviewOption == entity.ReviewTruncate {
			var truncated bool
			if text, truncated = caption.Truncate(text, e.caps.counter(), e.caps.budget()); truncated {
				result.Truncated++
				metrics.CaptionTruncationsTotal.Inc()
			}
		}

		ext := filepath.Ext(img)
		cropped := !item.Crop.IsFull()
		if cropped {
			if _, err := imaging.FormatFromExtension(ext); err != nil {
				ext = ".png"
			}
		}
		// Caption and sidecar share the stem, so x.png and x.jpg must not both keep it.
		target := TargetName(rel, item.Title, ext, func(name string) bool { return used[strings.ToLower(utils.StripExt(name))] })
		used[strings.ToLower(utils.StripExt(target))] = true
		targetPath := filepath.Join(subsetPath, target)
		prefix := utils.StripExt(targetPath)

		if err := os.WriteFile(prefix+".txt", []byte(utils.NormalizeSpace(text)), 0644); err != nil {
			return nil, fmt.Errorf("write caption: %w", err)
		}
		if cropped {
			err = cropImage(img, targetPath, item.Crop)
		} else {
			err = copyFile(img, targetPath)
		}
		if err != nil {
			return nil, fmt.Errorf("write image %s: %w", rel, err)
		}

		sidecar := ds.Repo.SidecarPath(img)
		if utils.FileExists(sidecar) {
			err = copyFile(sidecar, prefix+".json")
		} else {
			err = ds.Repo.WriteFull(item, prefix+".json")
		}
		if err != nil {
			return nil, fmt.Errorf("write sidecar %s: %w", rel, err)
		}

		result.Images = append(result.Images, target)
		metrics.SubsetImagesTotal.WithLabelValues("written").Inc()
		switch info.ReviewOption {
		case entity.ReviewAll:
			result.ReviewQueue = append(result.ReviewQueue, target)
		case entity.ReviewOverBudget:
			if caption.OverBudget(text, e.caps.counter(), e.caps.budget()) {
				result.ReviewQueue = append(result.ReviewQueue, target)
			}
		}
	}
	if progress != nil {
		progress(total, total)
	}

	if len(result.Images) == 0 {
		return nil, ErrNoImagesMatched
	}
	e.logger.Info("Subset written",
		zap.String("subset", subsetPath),
		zap.Int("images", len(result.Images)),
		zap.Int("filtered", result.Filtered),
		zap.Int("low_rating", result.LowRating),
		zap.Int("truncated", result.Truncated),
	)

	if e.history != nil {
		record := &entity.SubsetExport{
			Dataset:    ds.Root,
			SubsetPath: subsetPath,
			LoRAName:   info.Name,
			ImageCount: len(result.Images),
			Filtered:   result.Filtered,
			LowRating:  result.LowRating,
			Options:    info,
			ExportedAt: time.Now().UTC(),
		}
		if err := e.history.Record(ctx, record); err != nil {
			e.logger.Warn("Failed to record export", zap.String("subset", subsetPath), zap.Error(err))
		}
	}
	return result, nil
}

// checkOutsideDataset rejects output paths that equal, contain or lie inside the dataset.
func checkOutsideDataset(dataset, output string) error {
	inside, err := utils.IsWithin(dataset, output)
	if err != nil {
		return err
	}
	contains, err := utils.IsWithin(output, dataset)
	if err != nil {
		return err
	}
	if inside || contains {
		return ErrSubsetInsideDataset
	}
	return nil
}

// prepareSubsetDir creates the subset directory or, when it already exists,
// checks that it is a subset and applies the stale files policy.
func (e *SubsetExporter) prepareSubsetDir(subsetPath string, policy entity.StaleFilesPolicy, result *entity.ExportResult) error {
	if !utils.DirExists(subsetPath) {
		if utils.FileExists(subsetPath) {
			return fmt.Errorf("%s: %w", subsetPath, ErrNotASubset)
		}
		return utils.EnsureDir(subsetPath)
	}
	if _, err := ReadSubsetInfo(subsetPath); err != nil {
		return fmt.Errorf("%s: %w", subsetPath, ErrNotASubset)
	}

	var stale []string
	err := filepath.WalkDir(subsetPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			stale = append(stale, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("list subset files: %w", err)
	}
	result.StaleFiles = len(stale)

	switch policy {
	case entity.StaleAbort:
		if len(stale) > 0 {
			return fmt.Errorf("%d files in %s: %w", len(stale), subsetPath, ErrStaleFiles)
		}
	case entity.StaleDelete:
		for _, f := range stale {
			if err := os.Remove(f); err != nil {
				return fmt.Errorf("remove stale file: %w", err)
			}
		}
		e.logger.Info("Removed stale subset files", zap.String("subset", subsetPath), zap.Int("files", len(stale)))
	case entity.StaleKeep, "":
	default:
		return fmt.Errorf("%w: stale files policy %q", ErrInvalidOptions, policy)
	}
	return nil
}

// TargetName flattens an image path into a subset file name: the directory
// and title joined with underscores. taken reports names already in use;
// collisions get _2, _3 and so on.
func TargetName(rel, title, ext string, taken func(string) bool) string {
	base := title
	if base == "" {
		base = path.Base(utils.StripExt(rel))
	}
	name := base
	if dir := path.Dir(rel); dir != "." {
		name = dir + "/" + base
	}
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")

	candidate := name + ext
	for i := 2; taken(candidate); i++ {
		candidate = fmt.Sprintf("%s_%d%s", name, i, ext)
	}
	return candidate
}

func cropImage(src, dst string, crop entity.Crop) error {
	img, err := imaging.Open(src)
	if err != nil {
		return err
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	rect := image.Rect(
		b.Min.X+int(crop[0]*w),
		b.Min.Y+int(crop[1]*h),
		b.Min.X+int(crop[2]*w),
		b.Min.Y+int(crop[3]*h),
	)
	return imaging.Save(imaging.Crop(img, rect), dst)
}

// copyFile copies src to dst and keeps the modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func writeSubsetInfo(subsetPath string, info entity.SubsetInfo) error {
	data, err := json.MarshalIndent(info, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(subsetPath, entity.InfoFileName), data, 0644); err != nil {
		return fmt.Errorf("write subset info: %w", err)
	}
	now := time.Now()
	return os.Chtimes(subsetPath, now, now)
}

// ReadSubsetInfo loads and validates the LoRA_info.json of a subset directory.
func ReadSubsetInfo(subsetPath string) (entity.SubsetInfo, error) {
	data, err := os.ReadFile(filepath.Join(subsetPath, entity.InfoFileName))
	if err != nil {
		return entity.SubsetInfo{}, err
	}
	return entity.ParseSubsetInfo(data)
}

// NewestSubset returns the most recently modified subset directory in
// outputDir whose name ends with the LoRA name, or the default subset name.
func (e *SubsetExporter) NewestSubset(outputDir, name string) string {
	name = LoRAName(name)
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			e.logger.Warn("Failed to list subsets", zap.String("output", outputDir), zap.Error(err))
		}
		return entity.DefaultSubsetName
	}

	type candidate struct {
		name    string
		modTime time.Time
	}
	var candidates []candidate
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{entry.Name(), info.ModTime()})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].modTime.After(candidates[j].modTime)
	})
	for _, c := range candidates {
		if _, err := ReadSubsetInfo(filepath.Join(outputDir, c.name)); err == nil {
			return c.name
		}
	}
	return entity.DefaultSubsetName
}

// Populate returns export settings from the newest matching subset, falling
// back to the defaults. A requested name other than "" or "default" is kept.
func (e *SubsetExporter) Populate(outputDir, name string) entity.SubsetInfo {
	info, err := ReadSubsetInfo(filepath.Join(outputDir, e.NewestSubset(outputDir, name)))
	if err != nil {
		info = entity.DefaultSubsetInfo()
	}
	if name != "" && name != "default" {
		info.Name = LoRAName(name)
	}
	return info
}

// WriteCaption replaces the caption of an exported image during manual review.
func (e *SubsetExporter) WriteCaption(subsetPath, imageName, text string) error {
	if _, err := ReadSubsetInfo(subsetPath); err != nil {
		return fmt.Errorf("%s: %w", subsetPath, ErrNotASubset)
	}
	if imageName == "" || imageName != filepath.Base(imageName) {
		return fmt.Errorf("%w: image must be a file name inside the subset", ErrInvalidOptions)
	}
	if !utils.FileExists(filepath.Join(subsetPath, imageName)) {
		return fmt.Errorf("%s: %w", imageName, ErrImageNotFound)
	}
	target := utils.StripExt(filepath.Join(subsetPath, imageName)) + ".txt"
	return os.WriteFile(target, []byte(utils.NormalizeSpace(text)), 0644)
}

// ReadCaption returns the caption of an exported image.
func (e *SubsetExporter) ReadCaption(subsetPath, imageName string) (string, error) {
	data, err := os.ReadFile(utils.StripExt(filepath.Join(subsetPath, filepath.Base(imageName))) + ".txt")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// TruncateCaption shortens text to the token budget.
func (e *SubsetExporter) TruncateCaption(text string) (string, bool) {
	out, truncated := caption.Truncate(text, e.caps.counter(), e.caps.budget())
	if truncated {
		metrics.CaptionTruncationsTotal.Inc()
	}
	return out, truncated
}

// CountTokens counts text with the configured tokenizer.
func (e *SubsetExporter) CountTokens(text string) int {
	return e.caps.counter().Count(strings.TrimSpace(text))
}

// TokenBudget is the caption length the review step aims for.
func (e *SubsetExporter) TokenBudget() int {
	return e.caps.budget()
}
