package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubInterrogator struct {
	tags   string
	failOn string
}

func (s stubInterrogator) Name() string { return "stub" }

func (s stubInterrogator) Interrogate(ctx context.Context, imagePath string) (string, error) {
	if s.failOn != "" && strings.HasSuffix(imagePath, s.failOn) {
		return "", errors.New("model unavailable")
	}
	return s.tags, ctx.Err()
}

func TestInterrogationRun(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"1.png": "",
		"2.png": `{"automatic_tags": "already, tagged"}`,
		"3.png": "",
		"4.png": "",
	})
	ctx := context.Background()
	_, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)
	snap, err := env.manager.Snapshot()
	require.NoError(t, err)

	pool := NewInterrogation(stubInterrogator{tags: "cat, sofa", failOn: "4.png"}, 3, zaptest.NewLogger(t))
	var mu sync.Mutex
	var calls []int
	summary, err := pool.Run(ctx, snap, false, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 4, total)
		calls = append(calls, done)
	})
	require.NoError(t, err)
	assert.Equal(t, InterrogateSummary{Tagged: 2, Skipped: 1, Failed: 1}, summary)
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, calls)

	for i, want := range []string{"cat, sofa", "already, tagged", "cat, sofa", ""} {
		view, err := env.manager.Item(i)
		require.NoError(t, err)
		assert.Equal(t, want, view.Item.AutomaticTags, "image %d", i)
	}

	summary, err = pool.Run(ctx, snap, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Tagged)
}

func TestInterrogationWithoutInterrogator(t *testing.T) {
	_, err := NewInterrogation(nil, 2, zaptest.NewLogger(t)).Run(context.Background(), DatasetSnapshot{}, false, nil)
	assert.ErrorIs(t, err, ErrNoInterrogator)
}

func TestInterrogateSingleItem(t *testing.T) {
	env := newTestEnv(t, map[string]string{"1.png": ""})
	ctx := context.Background()
	_, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)

	_, err = env.manager.Interrogate(ctx, 0, nil)
	assert.ErrorIs(t, err, ErrNoInterrogator)

	env.manager.caps.Interrogator = stubInterrogator{tags: "cat"}
	view, err := env.manager.Interrogate(ctx, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "cat", view.Item.AutomaticTags)

	stored, err := env.manager.Item(0)
	require.NoError(t, err)
	assert.Empty(t, stored.Item.AutomaticTags)
}
