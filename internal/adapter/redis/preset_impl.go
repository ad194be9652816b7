package redis

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

const presetKeyPrefix = "taghelper:preset:"

// PresetRepoImpl provides a concrete implementation for the PresetRepository interface using Redis sets.
type PresetRepoImpl struct {
	client *redis.Client
}

// NewPresetRepo creates a new instance of PresetRepoImpl.
func NewPresetRepo(client *redis.Client) *PresetRepoImpl {
	return &PresetRepoImpl{client: client}
}

func (r *PresetRepoImpl) generateKey(name string) string {
	return presetKeyPrefix + name
}

// Add puts paths into the preset set.
func (r *PresetRepoImpl) Add(ctx context.Context, name string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	return r.client.SAdd(ctx, r.generateKey(name), lo.ToAnySlice(paths)...).Err()
}

// Remove takes paths out of the preset set.
func (r *PresetRepoImpl) Remove(ctx context.Context, name string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	return r.client.SRem(ctx, r.generateKey(name), lo.ToAnySlice(paths)...).Err()
}

// List returns the members sorted, since sets have no order.
func (r *PresetRepoImpl) List(ctx context.Context, name string) ([]string, error) {
	paths, err := r.client.SMembers(ctx, r.generateKey(name)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Delete drops the whole preset.
func (r *PresetRepoImpl) Delete(ctx context.Context, name string) error {
	return r.client.Del(ctx, r.generateKey(name)).Err()
}
