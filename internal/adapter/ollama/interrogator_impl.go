package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ollama/ollama/api"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/viralesveras/lora-tag-helper/internal/repository"
	"github.com/viralesveras/lora-tag-helper/pkg/metrics"
	"github.com/viralesveras/lora-tag-helper/pkg/utils"
)

const tagsPrompt = `List the visual features of this image as short booru-style tags.
Answer with a single line of lowercase tags separated by commas and nothing else.`

// Interrogator asks a vision model served by Ollama for automatic tags.
type Interrogator struct {
	client   *api.Client
	model    string
	timeout  time.Duration
	attempts uint
	logger   *zap.Logger
}

// NewInterrogator creates an Interrogator talking to host. An empty host uses OLLAMA_HOST.
func NewInterrogator(host, model string, timeout time.Duration, logger *zap.Logger) (*Interrogator, error) {
	var client *api.Client
	if host == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama client: %w", err)
		}
		client = c
	} else {
		parsed, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("parse ollama host: %w", err)
		}
		client = api.NewClient(parsed, http.DefaultClient)
	}
	return &Interrogator{
		client:   client,
		model:    model,
		timeout:  timeout,
		attempts: 3,
		logger:   logger,
	}, nil
}

func (o *Interrogator) Name() string {
	return "ollama:" + o.model
}

// Interrogate sends the image to the model and returns its normalized tag line.
func (o *Interrogator) Interrogate(ctx context.Context, imagePath string) (string, error) {
	frame, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var tags string
	err = retry.Do(func() error {
		var sb strings.Builder
		err := o.client.Generate(ctx,
			&api.GenerateRequest{
				Model:     o.model,
				Prompt:    tagsPrompt,
				Stream:    lo.ToPtr(false),
				KeepAlive: &api.Duration{Duration: 5 * time.Minute},
				Images:    []api.ImageData{frame},
			},
			func(resp api.GenerateResponse) error {
				sb.WriteString(resp.Response)
				return nil
			},
		)
		if err != nil {
			return err
		}
		tags = normalizeTags(sb.String())
		if tags == "" {
			return fmt.Errorf("empty response from %s", o.model)
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(o.attempts),
		retry.Delay(50*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			o.logger.Debug("Retrying interrogation", zap.String("path", imagePath), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return "", fmt.Errorf("interrogate %s: %w", imagePath, err)
	}
	return tags, nil
}

// normalizeTags keeps the first non-empty line, lowercased, with empty tags dropped.
func normalizeTags(response string) string {
	for _, line := range strings.Split(response, "\n") {
		line = strings.Trim(utils.NormalizeSpace(line), " .")
		if line == "" {
			continue
		}
		parts := lo.FilterMap(strings.Split(line, ","), func(p string, _ int) (string, bool) {
			p = strings.ToLower(strings.TrimSpace(p))
			return p, p != ""
		})
		return strings.Join(lo.Uniq(parts), ", ")
	}
	return ""
}

// Fallback tries each interrogator in order and returns the first answer.
type Fallback struct {
	chain  []repository.Interrogator
	logger *zap.Logger
}

func NewFallback(logger *zap.Logger, chain ...repository.Interrogator) *Fallback {
	return &Fallback{chain: chain, logger: logger}
}

func (f *Fallback) Name() string {
	names := lo.Map(f.chain, func(i repository.Interrogator, _ int) string { return i.Name() })
	return strings.Join(names, ">")
}

func (f *Fallback) Interrogate(ctx context.Context, imagePath string) (string, error) {
	var lastErr error
	for i, in := range f.chain {
		tags, err := in.Interrogate(ctx, imagePath)
		if err == nil {
			if i > 0 {
				metrics.InterrogationsTotal.WithLabelValues("fallback").Inc()
			}
			return tags, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		f.logger.Warn("Interrogator failed", zap.String("interrogator", in.Name()), zap.String("path", imagePath), zap.Error(err))
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no interrogator configured")
	}
	return "", lastErr
}
