// Package memory holds process-local stores used when Redis is not configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/viralesveras/lora-tag-helper/internal/repository"
)

type cachedLists struct {
	lists   map[string][]string
	expires time.Time
}

// ChecklistCache is an in-process ChecklistCacheRepository.
type ChecklistCache struct {
	mu      sync.Mutex
	entries map[string]cachedLists
	now     func() time.Time
}

func NewChecklistCache() *ChecklistCache {
	return &ChecklistCache{entries: map[string]cachedLists{}, now: time.Now}
}

func (c *ChecklistCache) Put(_ context.Context, fingerprint string, lists map[string][]string, expiry time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = cachedLists{lists: copyLists(lists), expires: c.now().Add(expiry)}
	return nil
}

func (c *ChecklistCache) Get(_ context.Context, fingerprint string) (map[string][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[fingerprint]
	if !ok || !c.now().Before(e.expires) {
		delete(c.entries, fingerprint)
		return nil, repository.ErrNotFound
	}
	return copyLists(e.lists), nil
}

func (c *ChecklistCache) Invalidate(_ context.Context, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fingerprint)
	return nil
}

func copyLists(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string{}, v...)
	}
	return out
}

// Presets is an in-process PresetRepository.
type Presets struct {
	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

func NewPresets() *Presets {
	return &Presets{sets: map[string]map[string]struct{}{}}
}

func (p *Presets) Add(_ context.Context, name string, paths ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(paths) == 0 {
		return nil
	}
	set, ok := p.sets[name]
	if !ok {
		set = map[string]struct{}{}
		p.sets[name] = set
	}
	for _, path := range paths {
		set[path] = struct{}{}
	}
	return nil
}

func (p *Presets) Remove(_ context.Context, name string, paths ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, path := range paths {
		delete(p.sets[name], path)
	}
	return nil
}

func (p *Presets) List(_ context.Context, name string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := lo.Keys(p.sets[name])
	sort.Strings(out)
	return out, nil
}

func (p *Presets) Delete(_ context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sets, name)
	return nil
}

// Selection is an in-process SelectionRepository.
type Selection struct {
	mu     sync.Mutex
	images []string
}

func NewSelection() *Selection {
	return &Selection{}
}

func (s *Selection) Replace(_ context.Context, images []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = lo.Uniq(images)
	return nil
}

func (s *Selection) Add(_ context.Context, images ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = lo.Uniq(append(s.images, images...))
	return nil
}

func (s *Selection) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.images...), nil
}

func (s *Selection) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = nil
	return nil
}
