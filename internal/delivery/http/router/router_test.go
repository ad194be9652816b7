package router

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/viralesveras/lora-tag-helper/internal/adapter/memory"
	"github.com/viralesveras/lora-tag-helper/internal/adapter/sidecar"
	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/handler"
	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/response"
	"github.com/viralesveras/lora-tag-helper/internal/entity"
	"github.com/viralesveras/lora-tag-helper/internal/feature/featuretest"
	"github.com/viralesveras/lora-tag-helper/internal/usecase"
)

type apiEnv struct {
	server  *httptest.Server
	dataset string
	output  string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	dataset := t.TempDir()
	for rel, sidecarJSON := range map[string]string{
		"a/1.png": `{"features": {"clothes": "red hat"}}`,
		"b/2.png": "",
	} {
		p := filepath.Join(dataset, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		f, err := os.Create(p)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))))
		require.NoError(t, f.Close())
		if sidecarJSON != "" {
			require.NoError(t, os.WriteFile(p[:len(p)-len(".png")]+".json", []byte(sidecarJSON), 0644))
		}
	}

	logger := zaptest.NewLogger(t)
	stores := usecase.Stores{
		Cache:     memory.NewChecklistCache(),
		Presets:   memory.NewPresets(),
		Selection: memory.NewSelection(),
	}
	caps := usecase.Capabilities{Tagger: featuretest.NewTagger()}
	datasets := usecase.NewDatasetManager(caps, sidecar.Factory(logger), stores, time.Hour, logger)
	exporter := usecase.NewSubsetExporter(caps, stores.Presets, nil, logger)
	output := t.TempDir()
	h := handler.NewHandler(datasets, exporter, nil, output, logger)

	srv := httptest.NewServer(New(h, logger, time.Minute))
	t.Cleanup(srv.Close)
	return &apiEnv{server: srv, dataset: dataset, output: output}
}

func (e *apiEnv) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *apiEnv) open(t *testing.T) {
	t.Helper()
	var status entity.DatasetStatus
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/dataset/open", map[string]string{"path": e.dataset}, &status))
	require.Equal(t, 2, status.ImageCount)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newAPIEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/health", nil, nil))

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequiresOpenDataset(t *testing.T) {
	env := newAPIEnv(t)
	var status entity.DatasetStatus
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/status", nil, &status))
	assert.Zero(t, status.ImageCount)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodGet, "/api/items", nil, nil))
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/subsets", map[string]string{"name": "x"}, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/dataset/open", map[string]string{"path": filepath.Join(env.dataset, "nope")}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, "/api/dataset/open", map[string]string{"path": t.TempDir()}, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/dataset/open", map[string]string{}, nil))
}

func TestItemsAndClicks(t *testing.T) {
	env := newAPIEnv(t)
	env.open(t)

	var images response.ImagesResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/items", nil, &images))
	assert.Equal(t, []string{"a/1.png", "b/2.png"}, images.Images)

	var view usecase.ItemView
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/items/0", nil, &view))
	assert.Equal(t, "a/1.png", view.Path)
	assert.Len(t, view.Checklist, 3)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/items/first", nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/items/7", nil, nil))

	click := map[string]string{"path": "clothes→hat→red"}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/items/0/click", click, &view))
	desc, _ := view.Item.Features.Get("clothes")
	assert.Equal(t, "hat", desc)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/items/0/click", map[string]string{"path": "pose"}, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/items/0/click", map[string]string{"path": "clothes", "action": "explode"}, nil))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/items/0", view.Item, &view))
	var reloaded usecase.ItemView
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/items/0", nil, &reloaded))
	desc, _ = reloaded.Item.Features.Get("clothes")
	assert.Equal(t, "hat", desc)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/goto?to=last", nil, &view))
	assert.Equal(t, "b/2.png", view.Path)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/goto?path=a", nil, &view))
	assert.Equal(t, 0, view.Index)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/goto", nil, nil))

	resp, err := http.Get(env.server.URL + "/api/items/1/thumbnail?size=4")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
}

func TestRenameSelectionAndPresets(t *testing.T) {
	env := newAPIEnv(t)
	env.open(t)

	var renamed response.RenameResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/features/rename", map[string]string{"path": "clothes→hat", "replacement": "cap"}, &renamed))
	assert.Equal(t, 1, renamed.Changed)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/features/rename", map[string]string{"path": "clothes"}, nil))

	var checklist response.ChecklistResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/checklist?dir=a", nil, &checklist))
	assert.Contains(t, checklist.Entries, "clothes→cap→red")

	var selection response.SelectionResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/selection", map[string]interface{}{"paths": []string{"b/2.png"}}, &selection))
	assert.Equal(t, []string{"b/2.png"}, selection.Images)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/selection", map[string]interface{}{"paths": []string{"zzz.png"}}, nil))
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/selection", nil, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/selection", nil, &selection))
	assert.Empty(t, selection.Images)

	var preset response.PresetResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/presets/caps", map[string]interface{}{"paths": []string{"clothes→cap"}}, &preset))
	assert.Equal(t, []string{"clothes→cap"}, preset.Paths)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/presets/caps", nil, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/presets/caps", nil, &preset))
	assert.Empty(t, preset.Paths)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/defaults", map[string]string{"dir": "b", "artist": "studio"}, nil))
	var view usecase.ItemView
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/items/1", nil, &view))
	assert.Equal(t, "studio", view.Item.Artist)
}

func TestExportAndReview(t *testing.T) {
	env := newAPIEnv(t)
	env.open(t)

	var result entity.ExportResult
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/subsets", map[string]interface{}{
		"name":            "hats",
		"steps_per_image": 5,
	}, &result))
	assert.Equal(t, filepath.Join(env.output, "5_hats"), result.SubsetPath)
	assert.Equal(t, []string{"a_1.png", "b_2.png"}, result.Images)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/subsets", map[string]interface{}{"name": "hats", "stale_files": "shred"}, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/subsets", map[string]interface{}{"name": "hats", "output_dir": env.dataset}, nil))
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/subsets", map[string]interface{}{"name": "hats", "steps_per_image": 5, "stale_files": "abort"}, nil))

	var newest response.NewestSubsetResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/subsets/newest?name=hats", nil, &newest))
	assert.Equal(t, "5_hats", newest.Subset)
	assert.Equal(t, entity.Steps(5), newest.Info.StepsPerImage)

	var caption response.CaptionResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/subsets/caption", map[string]string{
		"subset": "5_hats",
		"image":  "a_1.png",
		"text":   "hats,  red hat ",
	}, &caption))
	assert.Equal(t, "hats, red hat", caption.Text)
	assert.False(t, caption.OverBudget)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/subsets/caption", map[string]string{"subset": "5_hats", "image": "x.png"}, nil))
}

func TestOptionalBackends(t *testing.T) {
	env := newAPIEnv(t)
	env.open(t)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/interrogate", nil, nil))
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/items/0/interrogate", nil, nil))
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/api/catalog/search?feature=clothes", nil, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/catalog/search", nil, nil))
}
