package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/viralesveras/lora-tag-helper/internal/adapter/sidecar"
	"github.com/viralesveras/lora-tag-helper/internal/app"
	"github.com/viralesveras/lora-tag-helper/internal/usecase"
	"github.com/viralesveras/lora-tag-helper/pkg/config"
	"github.com/viralesveras/lora-tag-helper/pkg/logger"
)

type scanCmd struct {
	Dataset string `arg:"positional,required" help:"dataset directory"`
}

type checklistCmd struct {
	Dataset string `arg:"positional,required" help:"dataset directory"`
	Dir     string `arg:"--dir" help:"directory relative to the dataset; empty lists the whole dataset"`
}

type renameCmd struct {
	Dataset string `arg:"positional,required" help:"dataset directory"`
	Path    string `arg:"positional,required" help:"checklist path, e.g. clothes→hat"`
	To      string `arg:"--to" help:"replacement for the last level of the path"`
	Delete  bool   `arg:"--delete" help:"delete the node from every image instead of renaming"`
}

type exportCmd struct {
	Dataset         string `arg:"positional,required" help:"dataset directory"`
	Name            string `arg:"--name,required" help:"LoRA name"`
	Output          string `arg:"--output,-o" help:"output directory (default SUBSET_OUTPUT_DIR)"`
	Steps           int    `arg:"--steps" help:"steps per image (default from the newest matching subset)"`
	Filter          string `arg:"--filter" help:"keep captions matching e.g. \"red AND hat OR NOT scarf\""`
	MinRating       int    `arg:"--min-rating" help:"skip images rated below this"`
	Review          int    `arg:"--review" default:"-1" help:"0 none, 1 truncate, 2 review over budget, 3 review all"`
	Stale           string `arg:"--stale" default:"keep" help:"existing files: keep, delete or abort"`
	Preset          string `arg:"--preset" help:"only export images with a checklist path from this preset"`
	Interrogate     bool   `arg:"--interrogate" help:"interrogate images without automatic tags"`
	NoAutomaticTags bool   `arg:"--no-automatic-tags" help:"leave automatic tags out of captions"`
	IncludeArtist   bool   `arg:"--artist" help:"add the artist to captions"`
	IncludeStyle    bool   `arg:"--style" help:"add the style to captions"`
}

type interrogateCmd struct {
	Dataset   string `arg:"positional,required" help:"dataset directory"`
	Overwrite bool   `arg:"--overwrite" help:"replace existing automatic tags"`
	Workers   int    `arg:"--workers" help:"parallel interrogations (default INTERROGATE_WORKERS)"`
}

type defaultsCmd struct {
	Dataset  string   `arg:"positional,required" help:"dataset directory"`
	Dir      string   `arg:"--dir" default:"." help:"directory relative to the dataset"`
	Artist   *string  `arg:"--artist"`
	Style    *string  `arg:"--style"`
	Rating   *int     `arg:"--rating"`
	Features []string `arg:"--feature,separate" help:"feature name, repeatable"`
}

type inspectCmd struct {
	Dataset string `arg:"positional,required" help:"dataset directory"`
	Image   string `arg:"positional,required" help:"image path relative to the dataset"`
}

type truncateCmd struct {
	Subset string `arg:"positional,required" help:"exported subset directory"`
}

type args struct {
	Env      string `arg:"--env" default:".env" help:"environment file"`
	LogLevel string `arg:"--log-level,env:LOG_LEVEL" default:"warn"`

	Scan        *scanCmd        `arg:"subcommand:scan" help:"open a dataset and print its status"`
	Checklist   *checklistCmd   `arg:"subcommand:checklist" help:"print the known feature checklist"`
	Rename      *renameCmd      `arg:"subcommand:rename" help:"rename or delete a feature across the dataset"`
	Export      *exportCmd      `arg:"subcommand:export" help:"export a training subset"`
	Interrogate *interrogateCmd `arg:"subcommand:interrogate" help:"fill in automatic tags"`
	Defaults    *defaultsCmd    `arg:"subcommand:defaults" help:"write a defaults.json"`
	Inspect     *inspectCmd     `arg:"subcommand:inspect" help:"print one image with its checklist"`
	Truncate    *truncateCmd    `arg:"subcommand:truncate" help:"truncate captions of an exported subset to the token budget"`
}

func (args) Description() string {
	return "Curates LoRA image-caption datasets from the command line.\n"
}

type cli struct {
	cfg           *config.Config
	log           *zap.Logger
	caps          usecase.Capabilities
	backends      *app.Backends
	datasets      *usecase.DatasetManager
	exporter      *usecase.SubsetExporter
	interrogation *usecase.Interrogation
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.Fail("missing subcommand")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, a); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a args) error {
	cfg, err := config.LoadFile(a.Env)
	if err != nil {
		return err
	}
	log, err := logger.New(a.LogLevel, "console")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	c := &cli{cfg: cfg, log: log}
	if c.caps, err = app.NewCapabilities(cfg, log); err != nil {
		return err
	}
	if c.backends, err = app.NewBackends(ctx, cfg, log); err != nil {
		return err
	}
	defer c.backends.Close()
	c.datasets = usecase.NewDatasetManager(c.caps, sidecar.Factory(log), c.backends.Stores, cfg.ChecklistCacheTTL(), log)
	c.exporter = usecase.NewSubsetExporter(c.caps, c.backends.Stores.Presets, c.backends.History, log)

	switch {
	case a.Scan != nil:
		return c.scan(ctx, a.Scan)
	case a.Checklist != nil:
		return c.checklist(ctx, a.Checklist)
	case a.Rename != nil:
		return c.rename(ctx, a.Rename)
	case a.Export != nil:
		return c.export(ctx, a.Export)
	case a.Interrogate != nil:
		return c.interrogate(ctx, a.Interrogate)
	case a.Defaults != nil:
		return c.defaults(ctx, a.Defaults)
	case a.Inspect != nil:
		return c.inspect(ctx, a.Inspect)
	case a.Truncate != nil:
		return c.truncate(a.Truncate)
	}
	return errors.New("unknown subcommand")
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// progressBar returns a progress callback that draws a bar on the first call
// and a finish function for when the job is done.
func progressBar() (usecase.ProgressFunc, func()) {
	var bar *pb.ProgressBar
	update := func(done, total int) {
		if bar == nil {
			bar = pb.StartNew(total)
		}
		bar.Set(done)
	}
	finish := func() {
		if bar != nil {
			bar.Finish()
		}
	}
	return update, finish
}
