// Package app assembles adapters and use cases from configuration for the binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/viralesveras/lora-tag-helper/internal/adapter/memory"
	"github.com/viralesveras/lora-tag-helper/internal/adapter/ollama"
	"github.com/viralesveras/lora-tag-helper/internal/adapter/postgres"
	"github.com/viralesveras/lora-tag-helper/internal/adapter/prose"
	redis_adapter "github.com/viralesveras/lora-tag-helper/internal/adapter/redis"
	"github.com/viralesveras/lora-tag-helper/internal/adapter/sidecar"
	"github.com/viralesveras/lora-tag-helper/internal/adapter/tiktoken"
	"github.com/viralesveras/lora-tag-helper/internal/caption"
	"github.com/viralesveras/lora-tag-helper/internal/repository"
	"github.com/viralesveras/lora-tag-helper/internal/usecase"
	"github.com/viralesveras/lora-tag-helper/pkg/config"
)

// NewCapabilities selects the tagger, tokenizer and interrogator named in cfg.
func NewCapabilities(cfg *config.Config, logger *zap.Logger) (usecase.Capabilities, error) {
	caps := usecase.Capabilities{TokenBudget: cfg.TokenBudget}

	switch cfg.POSTagger {
	case "prose", "":
		caps.Tagger = prose.NewTagger(logger)
	default:
		return caps, fmt.Errorf("unknown POS_TAGGER %q", cfg.POSTagger)
	}

	switch cfg.Tokenizer {
	case "tiktoken", "":
		counter, err := tiktoken.NewCounter()
		if err != nil {
			logger.Warn("Tokenizer unavailable, counting words instead", zap.Error(err))
			caps.Tokens = caption.WordCounter{}
		} else {
			caps.Tokens = counter
		}
	case "words":
		caps.Tokens = caption.WordCounter{}
	default:
		return caps, fmt.Errorf("unknown TOKENIZER %q", cfg.Tokenizer)
	}

	switch cfg.Interrogator {
	case "none", "":
	case "txt":
		caps.Interrogator = sidecar.NewTxtInterrogator()
	case "ollama":
		model, err := ollama.NewInterrogator(cfg.OllamaHost, cfg.InterrogatorModel, cfg.InterrogatorTimeout(), logger)
		if err != nil {
			return caps, fmt.Errorf("ollama interrogator: %w", err)
		}
		caps.Interrogator = ollama.NewFallback(logger, model, sidecar.NewTxtInterrogator())
	default:
		return caps, fmt.Errorf("unknown INTERROGATOR %q", cfg.Interrogator)
	}
	return caps, nil
}

// Backends are the stores behind the use cases. Redis and PostgreSQL are
// used when configured; otherwise state lives in memory and the catalog is off.
type Backends struct {
	Stores  usecase.Stores
	History repository.ExportHistoryRepository
	closers []func()
}

func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func NewBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backends, error) {
	b := &Backends{}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		err := retry.Do(
			func() error { return rdb.Ping(ctx).Err() },
			retry.Context(ctx),
			retry.Attempts(3),
			retry.Delay(200*time.Millisecond),
		)
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("unable to connect to Redis: %w", err)
		}
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		b.Stores.Cache = redis_adapter.NewChecklistCacheRepo(rdb)
		b.Stores.Presets = redis_adapter.NewPresetRepo(rdb)
		b.Stores.Selection = redis_adapter.NewSelectionRepo(rdb)
		logger.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
	} else {
		b.Stores.Cache = memory.NewChecklistCache()
		b.Stores.Presets = memory.NewPresets()
		b.Stores.Selection = memory.NewSelection()
		logger.Info("Using in-memory stores")
	}

	if cfg.PostgresURL != "" {
		db, err := postgres.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		b.closers = append(b.closers, db.Close)
		b.Stores.Catalog = postgres.NewCatalogRepo(db)
		b.History = postgres.NewExportHistoryRepo(db)
		logger.Info("PostgreSQL catalog enabled")
	}
	return b, nil
}
