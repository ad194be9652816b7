package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/viralesveras/lora-tag-helper/internal/repository"
	"github.com/viralesveras/lora-tag-helper/pkg/metrics"
)

// InterrogateSummary counts the outcome of a bulk interrogation.
type InterrogateSummary struct {
	Tagged  int `json:"tagged"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Interrogation rewrites the automatic tags of every image with a pool of workers.
type Interrogation struct {
	interrogator repository.Interrogator
	workers      int
	logger       *zap.Logger
}

func NewInterrogation(interrogator repository.Interrogator, workers int, logger *zap.Logger) *Interrogation {
	if workers < 1 {
		workers = 1
	}
	return &Interrogation{interrogator: interrogator, workers: workers, logger: logger}
}

// Run interrogates every image of ds and saves the new tags. Images that
// already have automatic tags are skipped unless overwrite is set.
func (in *Interrogation) Run(ctx context.Context, ds DatasetSnapshot, overwrite bool, progress ProgressFunc) (InterrogateSummary, error) {
	if in.interrogator == nil {
		return InterrogateSummary{}, ErrNoInterrogator
	}
	p := &interrogatePool{
		Interrogation: in,
		ds:            ds,
		overwrite:     overwrite,
		progress:      progress,
		total:         len(ds.Images),
		taskQueue:     make(chan string, in.workers*2),
	}
	p.Start(ctx)
	for _, img := range ds.Images {
		if ctx.Err() != nil {
			break
		}
		p.Submit(img)
	}
	p.Stop()

	s := InterrogateSummary{
		Tagged:  int(p.tagged.Load()),
		Skipped: int(p.skipped.Load()),
		Failed:  int(p.failed.Load()),
	}
	in.logger.Info("Interrogation finished", zap.String("interrogator", in.interrogator.Name()), zap.Int("tagged", s.Tagged), zap.Int("skipped", s.Skipped), zap.Int("failed", s.Failed))
	return s, ctx.Err()
}

type interrogatePool struct {
	*Interrogation
	ds        DatasetSnapshot
	overwrite bool
	progress  ProgressFunc
	total     int

	taskQueue chan string
	wg        sync.WaitGroup

	progressMu sync.Mutex
	done       int
	tagged     atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
}

func (p *interrogatePool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *interrogatePool) Stop() {
	close(p.taskQueue)
	p.wg.Wait()
}

func (p *interrogatePool) Submit(image string) {
	p.taskQueue <- image
}

func (p *interrogatePool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case image, ok := <-p.taskQueue:
			if !ok {
				return
			}
			p.process(ctx, image)
			p.advance()
		case <-ctx.Done():
			// Drain so Submit never blocks after cancellation.
			for range p.taskQueue {
				p.advance()
			}
			return
		}
	}
}

func (p *interrogatePool) advance() {
	p.progressMu.Lock()
	defer p.progressMu.Unlock()
	p.done++
	if p.progress != nil {
		p.progress(p.done, p.total)
	}
}

func (p *interrogatePool) process(ctx context.Context, image string) {
	rel := p.ds.Rel(image)
	item, err := p.ds.Repo.Load(image)
	if err != nil {
		p.failed.Add(1)
		p.logger.Warn("Skipping unreadable item", zap.String("path", rel), zap.Error(err))
		return
	}
	if item.AutomaticTags != "" && !p.overwrite {
		p.skipped.Add(1)
		return
	}

	tags, err := p.interrogator.Interrogate(ctx, image)
	if err != nil {
		p.failed.Add(1)
		metrics.InterrogationsTotal.WithLabelValues("failure").Inc()
		p.logger.Warn("Interrogation failed", zap.String("path", rel), zap.Error(err))
		return
	}
	metrics.InterrogationsTotal.WithLabelValues("success").Inc()

	item.AutomaticTags = tags
	if err := p.ds.Repo.Save(image, item); err != nil {
		p.failed.Add(1)
		p.logger.Error("Failed to save automatic tags", zap.String("path", rel), zap.Error(err))
		return
	}
	metrics.ItemSavesTotal.Inc()
	p.tagged.Add(1)
	p.logger.Debug("Image interrogated", zap.String("path", rel))
}
