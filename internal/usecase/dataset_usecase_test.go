package usecase

import (
	"bytes"
	"context"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
	"github.com/viralesveras/lora-tag-helper/internal/feature"
)

const redHat = `{"features": {"clothes": "red hat"}}`

func entryPaths(entries []entity.ChecklistEntry) map[string]bool {
	out := map[string]bool{}
	for _, e := range entries {
		out[e.Path] = e.Checked
	}
	return out
}

func TestOpenAndNavigate(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"a/1.png":  "",
		"a/2.png":  "",
		"b/3.png":  "",
		"root.png": "",
		"notes.md": "",
	})
	ctx := context.Background()

	status, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)
	assert.Equal(t, 4, status.ImageCount)
	assert.Equal(t, "a/1.png", status.CurrentImage)
	assert.Equal(t, "lexicon", status.TaggerName)
	assert.Equal(t, "words", status.TokenizerName)

	images, err := env.manager.Images()
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1.png", "a/2.png", "b/3.png", "root.png"}, images)

	i, err := env.manager.Goto("b")
	require.NoError(t, err)
	assert.Equal(t, 2, i)
	i, err = env.manager.Goto("a/2.png")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	_, err = env.manager.Goto("c")
	assert.ErrorIs(t, err, ErrImageNotFound)
	_, err = env.manager.Goto("../elsewhere")
	assert.ErrorIs(t, err, ErrOutsideDataset)

	i, _ = env.manager.First()
	assert.Equal(t, 0, i)
	i, _ = env.manager.Prev()
	assert.Equal(t, 0, i)
	i, _ = env.manager.Last()
	assert.Equal(t, 3, i)
	i, _ = env.manager.Next()
	assert.Equal(t, 3, i)

	_, err = env.manager.Item(4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestOpenErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.manager.Open(context.Background(), env.root)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = env.manager.Item(0)
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestOpenRestoresChecklistsFromCache(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a/1.png": redHat})
	ctx := context.Background()
	_, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)

	fp := env.manager.fingerprint
	cached, err := env.stores.Cache.Get(ctx, fp)
	require.NoError(t, err)
	assert.Contains(t, cached["a"], "clothes→hat→red")

	// A poisoned cache entry proves the second open reads from the cache.
	cached["a"] = append(cached["a"], "cached→only")
	require.NoError(t, env.stores.Cache.Put(ctx, fp, cached, time.Hour))
	_, err = env.manager.Open(ctx, env.root)
	require.NoError(t, err)
	known, err := env.manager.KnownChecklist("a")
	require.NoError(t, err)
	assert.Contains(t, known, "cached→only")
}

func TestClickToggleEditsAndSave(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a/1.png": redHat})
	ctx := context.Background()
	_, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)

	view, err := env.manager.Item(0)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		"clothes":         true,
		"clothes→hat":     true,
		"clothes→hat→red": true,
	}, entryPaths(view.Checklist))

	view, err = env.manager.Click(ctx, 0, Click{Path: "clothes→hat→red"})
	require.NoError(t, err)
	desc, _ := view.Item.Features.Get("clothes")
	assert.Equal(t, "hat", desc)
	checks := entryPaths(view.Checklist)
	assert.False(t, checks["clothes→hat→red"])
	assert.True(t, checks["clothes→hat"])

	// Clicking again on the edited copy puts the adjective back.
	again, err := env.manager.Click(ctx, 0, Click{Path: "clothes→hat→red", Item: &view.Item})
	require.NoError(t, err)
	desc, _ = again.Item.Features.Get("clothes")
	assert.Equal(t, "red hat", desc)

	// Unsaved clicks leave the sidecar alone.
	stored, err := env.manager.Item(0)
	require.NoError(t, err)
	desc, _ = stored.Item.Features.Get("clothes")
	assert.Equal(t, "red hat", desc)

	_, err = env.manager.SaveItem(ctx, 0, view.Item)
	require.NoError(t, err)
	stored, err = env.manager.Item(0)
	require.NoError(t, err)
	desc, _ = stored.Item.Features.Get("clothes")
	assert.Equal(t, "hat", desc)

	_, err = env.manager.Click(ctx, 0, Click{Path: "clothes→scarf"})
	assert.ErrorIs(t, err, feature.ErrUnknownNode)
	_, err = env.manager.Click(ctx, 0, Click{Path: "clothes", Action: "explode"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestClickDeleteSuppressesKnownEntry(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"a/1.png": redHat,
		"a/2.png": `{"features": {"clothes": "blue hat"}}`,
	})
	ctx := context.Background()
	_, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)

	view, err := env.manager.Click(ctx, 0, Click{Path: "clothes→hat→blue", Action: ClickDelete})
	require.NoError(t, err)
	assert.NotContains(t, entryPaths(view.Checklist), "clothes→hat→blue")
	known, err := env.manager.KnownChecklist("a")
	require.NoError(t, err)
	assert.NotContains(t, known, "clothes→hat→blue")
	assert.Contains(t, known, "clothes→hat→red")
}

func TestDeletedEntryStaysGoneAfterSave(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a/1.png": `{"features": {"hair": "long hair"}}`})
	ctx := context.Background()
	_, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)

	view, err := env.manager.Click(ctx, 0, Click{Path: "hair→hair→long", Action: ClickDelete})
	require.NoError(t, err)
	desc, _ := view.Item.Features.Get("hair")
	assert.Equal(t, "hair", desc)

	_, err = env.manager.SaveItem(ctx, 0, view.Item)
	require.NoError(t, err)
	known, err := env.manager.KnownChecklist("a")
	require.NoError(t, err)
	assert.NotContains(t, known, "hair→hair→long")
	assert.Contains(t, known, "hair→hair")

	stored, err := env.manager.Item(0)
	require.NoError(t, err)
	assert.NotContains(t, entryPaths(stored.Checklist), "hair→hair→long")

	// Unchecking the whole feature and saving drops it from the known list too.
	view, err = env.manager.Click(ctx, 0, Click{Path: "hair", Item: &stored.Item})
	require.NoError(t, err)
	_, err = env.manager.SaveItem(ctx, 0, view.Item)
	require.NoError(t, err)
	known, err = env.manager.KnownChecklist("a")
	require.NoError(t, err)
	assert.NotContains(t, known, "hair")
}

func TestRenameFeatureAcrossDataset(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"a/1.png": redHat,
		"b/2.png": `{"features": {"clothes": "red hat, scarf"}}`,
		"b/3.png": `{"features": {"pose": "sitting"}}`,
	})
	ctx := context.Background()
	_, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)

	changed, err := env.manager.RenameFeature(ctx, feature.Rename{Path: "clothes→hat", Replacement: "cap"})
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	known, err := env.manager.KnownChecklist("")
	require.NoError(t, err)
	assert.Contains(t, known, "clothes→cap→red")
	assert.NotContains(t, known, "clothes→hat")

	view, err := env.manager.Item(1)
	require.NoError(t, err)
	desc, _ := view.Item.Features.Get("clothes")
	assert.Equal(t, "red cap, scarf", desc)

	_, err = env.manager.RenameFeature(ctx, feature.Rename{Path: "clothes"})
	assert.ErrorIs(t, err, feature.ErrEmptyReplacement)

	changed, err = env.manager.RenameFeature(ctx, feature.Rename{Path: "pose", Delete: true})
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
}

func TestClickApplySelection(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"a/1.png": redHat,
		"a/2.png": redHat,
		"a/3.png": redHat,
	})
	ctx := context.Background()
	_, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)

	_, err = env.manager.Click(ctx, 0, Click{Path: "clothes→hat→red", Action: ClickApplySelection})
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = env.manager.SelectImages(ctx, []string{"a/missing.png"}, false)
	assert.ErrorIs(t, err, ErrImageNotFound)
	selected, err := env.manager.SelectImages(ctx, []string{"a/2.png"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/2.png"}, selected)

	_, err = env.manager.Click(ctx, 0, Click{Path: "clothes→hat→red", Action: ClickApplySelection})
	require.NoError(t, err)

	for i, want := range []string{"red hat", "hat", "red hat"} {
		view, err := env.manager.Item(i)
		require.NoError(t, err)
		desc, _ := view.Item.Features.Get("clothes")
		assert.Equal(t, want, desc, "image %d", i)
	}
}

func TestClickAddPreset(t *testing.T) {
	env := newTestEnv(t, map[string]string{"1.png": redHat})
	ctx := context.Background()
	_, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)

	_, err = env.manager.Click(ctx, 0, Click{Path: "clothes→hat", Action: ClickAddPreset})
	assert.ErrorIs(t, err, ErrMissingPreset)
	_, err = env.manager.Click(ctx, 0, Click{Path: "clothes→hat", Action: ClickAddPreset, Preset: "hats"})
	require.NoError(t, err)

	paths, err := env.manager.AddToPreset(ctx, "hats", "clothes→hat→red")
	require.NoError(t, err)
	assert.Equal(t, []string{"clothes→hat", "clothes→hat→red"}, paths)

	require.NoError(t, env.manager.RemoveFromPreset(ctx, "hats", "clothes→hat"))
	paths, err = env.manager.Preset(ctx, "hats")
	require.NoError(t, err)
	assert.Equal(t, []string{"clothes→hat→red"}, paths)
}

func TestFeaturesFromSummary(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"1.png": `{"features": {"woman": ""}}`,
		"2.png": `{"summary": "a woman in a park"}`,
	})
	ctx := context.Background()
	_, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)

	view, err := env.manager.FeaturesFromSummary(1, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"woman"}, view.Item.Features.Names())
	assert.True(t, entryPaths(view.Checklist)["woman"])
}

func TestSaveDefaultsAndReset(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a/1.png": `{"artist": "someone"}`})
	ctx := context.Background()
	_, err := env.manager.Open(ctx, env.root)
	require.NoError(t, err)

	artist := "studio"
	require.NoError(t, env.manager.SaveDefaults(ctx, "a", entity.DefaultsPatch{Artist: &artist}))

	view, err := env.manager.ResetItem(0)
	require.NoError(t, err)
	assert.Equal(t, "studio", view.Item.Artist)
	assert.Equal(t, "1", view.Item.Title)

	stored, err := env.manager.Item(0)
	require.NoError(t, err)
	assert.Equal(t, "someone", stored.Item.Artist)
}

func TestThumbnail(t *testing.T) {
	env := newTestEnv(t, map[string]string{"1.png": ""})
	_, err := env.manager.Open(context.Background(), env.root)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.manager.Thumbnail(&buf, 0, 4))
	img, err := jpeg.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestSearchCatalogDisabled(t *testing.T) {
	env := newTestEnv(t, map[string]string{"1.png": ""})
	_, err := env.manager.SearchCatalog(context.Background(), "hat", 10)
	assert.ErrorIs(t, err, ErrCatalogDisabled)
}
