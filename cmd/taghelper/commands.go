package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
	"github.com/viralesveras/lora-tag-helper/internal/feature"
	"github.com/viralesveras/lora-tag-helper/internal/usecase"
)

func (c *cli) scan(ctx context.Context, cmd *scanCmd) error {
	status, err := c.datasets.Open(ctx, cmd.Dataset)
	if err != nil {
		return err
	}
	return printJSON(status)
}

func (c *cli) checklist(ctx context.Context, cmd *checklistCmd) error {
	if _, err := c.datasets.Open(ctx, cmd.Dataset); err != nil {
		return err
	}
	entries, err := c.datasets.KnownChecklist(cmd.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Println(e)
	}
	return nil
}

func (c *cli) rename(ctx context.Context, cmd *renameCmd) error {
	if _, err := c.datasets.Open(ctx, cmd.Dataset); err != nil {
		return err
	}
	changed, err := c.datasets.RenameFeature(ctx, feature.Rename{Path: cmd.Path, Replacement: cmd.To, Delete: cmd.Delete})
	if err != nil {
		return err
	}
	fmt.Printf("%d images changed\n", changed)
	return nil
}

func (c *cli) export(ctx context.Context, cmd *exportCmd) error {
	if _, err := c.datasets.Open(ctx, cmd.Dataset); err != nil {
		return err
	}
	output := lo.Ternary(cmd.Output != "", cmd.Output, c.cfg.SubsetOutputDir)

	// Start from the settings of the newest matching subset, like the export form does.
	info := c.exporter.Populate(output, cmd.Name)
	info.Name = cmd.Name
	if cmd.Steps > 0 {
		info.StepsPerImage = entity.Steps(cmd.Steps)
	}
	if cmd.Filter != "" {
		info.EnableFiltering = true
		info.Filter = cmd.Filter
	}
	if cmd.MinRating > 0 {
		info.FilterRating = true
		info.MinimumRating = cmd.MinRating
	}
	if cmd.Review >= 0 {
		info.ReviewOption = entity.ReviewOption(cmd.Review)
	}
	info.InterrogateAutomaticTags = info.InterrogateAutomaticTags || cmd.Interrogate
	info.IncludeAutomaticTags = info.IncludeAutomaticTags && !cmd.NoAutomaticTags
	info.IncludeArtist = info.IncludeArtist || cmd.IncludeArtist
	info.IncludeStyle = info.IncludeStyle || cmd.IncludeStyle

	stale := entity.StaleFilesPolicy(cmd.Stale)
	if !lo.Contains([]entity.StaleFilesPolicy{entity.StaleKeep, entity.StaleDelete, entity.StaleAbort}, stale) {
		return fmt.Errorf("--stale must be keep, delete or abort, not %q", cmd.Stale)
	}

	ds, err := c.datasets.Snapshot()
	if err != nil {
		return err
	}
	progress, finish := progressBar()
	result, err := c.exporter.Export(ctx, ds, entity.ExportOptions{
		SubsetInfo: info,
		OutputDir:  output,
		Preset:     cmd.Preset,
		StaleFiles: stale,
	}, progress)
	finish()
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (c *cli) interrogate(ctx context.Context, cmd *interrogateCmd) error {
	if c.caps.Interrogator == nil {
		return usecase.ErrNoInterrogator
	}
	if _, err := c.datasets.Open(ctx, cmd.Dataset); err != nil {
		return err
	}
	ds, err := c.datasets.Snapshot()
	if err != nil {
		return err
	}
	workers := lo.Ternary(cmd.Workers > 0, cmd.Workers, c.cfg.InterrogateWorkers)
	progress, finish := progressBar()
	summary, err := usecase.NewInterrogation(c.caps.Interrogator, workers, c.log).Run(ctx, ds, cmd.Overwrite, progress)
	finish()
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func (c *cli) defaults(ctx context.Context, cmd *defaultsCmd) error {
	if _, err := c.datasets.Open(ctx, cmd.Dataset); err != nil {
		return err
	}
	patch := entity.DefaultsPatch{Artist: cmd.Artist, Style: cmd.Style, Rating: cmd.Rating}
	for _, name := range cmd.Features {
		patch.Features = patch.Features.Set(name, "")
	}
	return c.datasets.SaveDefaults(ctx, cmd.Dir, patch)
}

func (c *cli) inspect(ctx context.Context, cmd *inspectCmd) error {
	if _, err := c.datasets.Open(ctx, cmd.Dataset); err != nil {
		return err
	}
	index, err := c.datasets.Goto(cmd.Image)
	if err != nil {
		return err
	}
	view, err := c.datasets.Item(index)
	if err != nil {
		return err
	}
	return printJSON(view)
}

// truncate shortens every caption of an exported subset that is over the token budget.
func (c *cli) truncate(cmd *truncateCmd) error {
	if _, err := usecase.ReadSubsetInfo(cmd.Subset); err != nil {
		return fmt.Errorf("%s: %w", cmd.Subset, usecase.ErrNotASubset)
	}
	entries, err := os.ReadDir(cmd.Subset)
	if err != nil {
		return err
	}
	images := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && usecase.IsImage(e.Name())
	})
	sort.Strings(images)

	truncated := 0
	for _, img := range images {
		text, err := c.exporter.ReadCaption(cmd.Subset, img)
		if err != nil {
			c.log.Warn("Skipping image without caption", zap.String("image", filepath.Join(cmd.Subset, img)), zap.Error(err))
			continue
		}
		short, changed := c.exporter.TruncateCaption(text)
		if !changed {
			continue
		}
		if err := c.exporter.WriteCaption(cmd.Subset, img, short); err != nil {
			return err
		}
		truncated++
	}
	fmt.Printf("%d of %d captions truncated\n", truncated, len(images))
	return nil
}
