package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, "red hat, woman", normalizeTags("\n  Red hat,  woman , , red hat.\nsecond line"))
	assert.Equal(t, "", normalizeTags(" \n "))
}

func TestInterrogateRetriesUntilAnswer(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llava", req["model"])
		resp := map[string]any{"model": "llava", "done": true, "response": ""}
		if calls.Add(1) > 1 {
			resp["response"] = "cat, Sofa"
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	img := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o644))

	o, err := NewInterrogator(srv.URL, "llava", time.Second, zaptest.NewLogger(t))
	require.NoError(t, err)
	tags, err := o.Interrogate(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, "cat, sofa", tags)
	assert.Equal(t, int32(2), calls.Load())
}

type stubInterrogator struct {
	name string
	tags string
	err  error
}

func (s stubInterrogator) Name() string { return s.name }

func (s stubInterrogator) Interrogate(context.Context, string) (string, error) {
	return s.tags, s.err
}

func TestFallback(t *testing.T) {
	f := NewFallback(zaptest.NewLogger(t),
		stubInterrogator{name: "a", err: errors.New("down")},
		stubInterrogator{name: "b", tags: "x, y"},
	)
	assert.Equal(t, "a>b", f.Name())
	tags, err := f.Interrogate(context.Background(), "img.png")
	require.NoError(t, err)
	assert.Equal(t, "x, y", tags)

	_, err = NewFallback(zaptest.NewLogger(t), stubInterrogator{name: "a", err: errors.New("down")}).Interrogate(context.Background(), "img.png")
	assert.EqualError(t, err, "down")
}
