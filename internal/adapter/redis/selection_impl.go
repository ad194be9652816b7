package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

const selectionKey = "taghelper:selection"

// SelectionRepoImpl provides a concrete implementation for the SelectionRepository interface using a Redis list.
type SelectionRepoImpl struct {
	client *redis.Client
}

// NewSelectionRepo creates a new instance of SelectionRepoImpl.
func NewSelectionRepo(client *redis.Client) *SelectionRepoImpl {
	return &SelectionRepoImpl{client: client}
}

// Replace swaps the whole list in one transaction.
func (r *SelectionRepoImpl) Replace(ctx context.Context, images []string) error {
	images = lo.Uniq(images)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, selectionKey)
		if len(images) > 0 {
			pipe.RPush(ctx, selectionKey, lo.ToAnySlice(images)...)
		}
		return nil
	})
	return err
}

// Add appends images to the right side of the list, skipping ones already selected.
func (r *SelectionRepoImpl) Add(ctx context.Context, images ...string) error {
	current, err := r.List(ctx)
	if err != nil {
		return err
	}
	missing := lo.Without(lo.Uniq(images), current...)
	if len(missing) == 0 {
		return nil
	}
	return r.client.RPush(ctx, selectionKey, lo.ToAnySlice(missing)...).Err()
}

// List returns the selection in insertion order.
func (r *SelectionRepoImpl) List(ctx context.Context) ([]string, error) {
	return r.client.LRange(ctx, selectionKey, 0, -1).Result()
}

// Clear removes the list.
func (r *SelectionRepoImpl) Clear(ctx context.Context) error {
	return r.client.Del(ctx, selectionKey).Err()
}
