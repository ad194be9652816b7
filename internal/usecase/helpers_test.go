package usecase

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/viralesveras/lora-tag-helper/internal/adapter/memory"
	"github.com/viralesveras/lora-tag-helper/internal/adapter/sidecar"
	"github.com/viralesveras/lora-tag-helper/internal/feature/featuretest"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writePNG(t *testing.T, path string, size int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		img.Set(x, x, color.RGBA{G: 255, A: 255})
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

type testEnv struct {
	root    string
	manager *DatasetManager
	stores  Stores
	caps    Capabilities
}

// newTestEnv creates a dataset from a map of relative image path to sidecar
// JSON ("" means no sidecar) and opens it.
func newTestEnv(t *testing.T, images map[string]string) *testEnv {
	t.Helper()
	root := t.TempDir()
	for rel, sidecarJSON := range images {
		img := filepath.Join(root, filepath.FromSlash(rel))
		writePNG(t, img, 8)
		if sidecarJSON != "" {
			writeFile(t, img[:len(img)-len(filepath.Ext(img))]+".json", sidecarJSON)
		}
	}

	logger := zaptest.NewLogger(t)
	env := &testEnv{
		root: root,
		stores: Stores{
			Cache:     memory.NewChecklistCache(),
			Presets:   memory.NewPresets(),
			Selection: memory.NewSelection(),
		},
		caps: Capabilities{Tagger: featuretest.NewTagger()},
	}
	env.manager = NewDatasetManager(env.caps, sidecar.Factory(logger), env.stores, time.Hour, logger)
	return env
}
