package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
	"github.com/viralesveras/lora-tag-helper/internal/feature/featuretest"
)

func newTestIndex() *Index {
	return NewIndex(NewSegmenter(featuretest.NewTagger()))
}

func sampleDataset() map[string]entity.Features {
	return map[string]entity.Features{
		"a.png": {{Name: "hair", Description: "long black hair"}},
		"sub/b.png": {
			{Name: "hair", Description: "long black hair, ponytail"},
			{Name: "outfit", Description: "blue t-shirt"},
		},
		"sub/deep/c.png": {},
	}
}

func buildIndex(t *testing.T, order []string, data map[string]entity.Features) *Index {
	t.Helper()
	x := newTestIndex()
	for _, img := range order {
		fs, ok := data[img]
		require.True(t, ok, img)
		x.Add(img, fs)
	}
	x.Build()
	return x
}

func TestIndexBuildInheritsFromAncestors(t *testing.T) {
	x := buildIndex(t, []string{"a.png", "sub/b.png", "sub/deep/c.png"}, sampleDataset())

	lists := x.Lists()
	assert.Equal(t, []string{"hair", "hair→hair", "hair→hair→black", "hair→hair→long"}, lists["."])
	assert.Equal(t, []string{"hair→ponytail", "outfit", "outfit→t-shirt", "outfit→t-shirt→blue"}, lists["sub"])
	assert.Empty(t, lists["sub/deep"])
	assert.Equal(t, 8, x.Size())
}

func TestIndexBuildIgnoresInsertionOrder(t *testing.T) {
	data := sampleDataset()
	a := buildIndex(t, []string{"a.png", "sub/b.png", "sub/deep/c.png"}, data)
	b := buildIndex(t, []string{"sub/deep/c.png", "sub/b.png", "a.png"}, data)
	assert.Equal(t, a.Lists(), b.Lists())
}

func TestIndexBuildIdempotent(t *testing.T) {
	x := buildIndex(t, []string{"a.png", "sub/b.png"}, sampleDataset())
	first := x.Lists()
	x.Build()
	assert.Equal(t, first, x.Lists())

	for dir, l := range first {
		assert.Len(t, l, len(uniq(l)), dir)
	}
}

func TestIndexChecklistUnionsAncestors(t *testing.T) {
	x := buildIndex(t, []string{"a.png", "sub/b.png", "sub/deep/c.png"}, sampleDataset())

	assert.Equal(t, []string{
		"hair", "hair→hair", "hair→hair→black", "hair→hair→long",
		"hair→ponytail", "outfit", "outfit→t-shirt", "outfit→t-shirt→blue",
	}, x.Checklist("sub/deep"))
	assert.Equal(t, x.Lists()["."], x.Checklist("."))
	assert.Equal(t, x.Checklist("sub"), x.FullChecklist())
}

func TestIndexForItem(t *testing.T) {
	x := buildIndex(t, []string{"a.png", "sub/b.png"}, sampleDataset())

	got := x.ForItem(".", entity.Features{{Name: "hair", Description: "long black hair"}}, false)
	assert.Equal(t, []entity.ChecklistEntry{
		{Path: "hair", Checked: true},
		{Path: "hair→hair", Checked: true},
		{Path: "hair→hair→black", Checked: true},
		{Path: "hair→hair→long", Checked: true},
	}, got)

	full := x.ForItem(".", entity.Features{{Name: "outfit", Description: ""}}, true)
	require.Len(t, full, 8)
	for _, e := range full {
		assert.Equal(t, e.Path == "outfit", e.Checked, e.Path)
	}
}

func TestIndexSuppress(t *testing.T) {
	x := buildIndex(t, []string{"a.png", "sub/b.png"}, sampleDataset())

	x.Suppress("sub", "outfit→t-shirt")
	assert.Equal(t, []string{"hair→ponytail", "outfit"}, x.Lists()["sub"])

	x.Suppress("sub", "hair")
	assert.Empty(t, x.Lists()["."])
	assert.Equal(t, []string{"outfit"}, x.Lists()["sub"])

	x.Build()
	assert.Contains(t, x.Lists()["sub"], "outfit→t-shirt→blue")
}

func TestAncestors(t *testing.T) {
	assert.Equal(t, []string{"a/b", "a", "."}, Ancestors("a/b"))
	assert.Equal(t, []string{"."}, Ancestors("."))
	assert.Equal(t, ".", ImageDir("x.png"))
	assert.Equal(t, "a/b", ImageDir("a/b/x.png"))
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func TestIndexAddReplacesImage(t *testing.T) {
	x := buildIndex(t, []string{"a.png", "sub/b.png"}, sampleDataset())
	require.Contains(t, x.FullChecklist(), "outfit→t-shirt→blue")

	x.Add("sub/b.png", entity.Features{{Name: "hair", Description: "ponytail"}})
	x.Build()
	assert.NotContains(t, x.FullChecklist(), "outfit")
	assert.Contains(t, x.FullChecklist(), "hair→ponytail")

	x.Suppress("sub", "hair→ponytail")
	assert.NotContains(t, x.Checklist("sub"), "hair→ponytail")
	x.Add("sub/b.png", entity.Features{})
	x.Build()
	assert.NotContains(t, x.Checklist("sub"), "hair→ponytail")
	assert.Contains(t, x.Lists(), "sub")
}
