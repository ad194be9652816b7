package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/viralesveras/lora-tag-helper/internal/repository"
	"github.com/viralesveras/lora-tag-helper/pkg/utils"
)

const checklistKeyPrefix = "taghelper:checklists:"

// ChecklistCacheRepoImpl provides a concrete implementation for the
// ChecklistCacheRepository interface using Redis strings.
type ChecklistCacheRepoImpl struct {
	client *redis.Client
}

// NewChecklistCacheRepo creates a new instance of ChecklistCacheRepoImpl.
func NewChecklistCacheRepo(client *redis.Client) *ChecklistCacheRepoImpl {
	return &ChecklistCacheRepoImpl{client: client}
}

// generateKey hashes the fingerprint so keys stay short and safe.
func (r *ChecklistCacheRepoImpl) generateKey(fingerprint string) string {
	return fmt.Sprintf("%s%s", checklistKeyPrefix, utils.HashPath(fingerprint))
}

// Put stores the checklists as JSON with an expiry time.
func (r *ChecklistCacheRepoImpl) Put(ctx context.Context, fingerprint string, lists map[string][]string, expiry time.Duration) error {
	data, err := json.Marshal(lists)
	if err != nil {
		return err
	}
	// SET with an expiry is atomic, like SETEX.
	return r.client.Set(ctx, r.generateKey(fingerprint), data, expiry).Err()
}

// Get returns the cached checklists or repository.ErrNotFound.
func (r *ChecklistCacheRepoImpl) Get(ctx context.Context, fingerprint string) (map[string][]string, error) {
	data, err := r.client.Get(ctx, r.generateKey(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var lists map[string][]string
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// Invalidate removes a cached entry.
func (r *ChecklistCacheRepoImpl) Invalidate(ctx context.Context, fingerprint string) error {
	return r.client.Del(ctx, r.generateKey(fingerprint)).Err()
}
