package handler

import (
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/request"
	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/response"
	"github.com/viralesveras/lora-tag-helper/internal/entity"
	"github.com/viralesveras/lora-tag-helper/internal/usecase"
)

func (h *Handler) HandleExportSubset(w http.ResponseWriter, r *http.Request) {
	opts := entity.ExportOptions{SubsetInfo: entity.DefaultSubsetInfo()}
	if !h.decode(w, r, &opts, false) {
		return
	}
	if opts.OutputDir == "" {
		opts.OutputDir = h.outputDir
	}
	if opts.StaleFiles == "" {
		opts.StaleFiles = entity.StaleKeep
	}
	switch opts.StaleFiles {
	case entity.StaleKeep, entity.StaleDelete, entity.StaleAbort:
	default:
		h.writeJSONError(w, "stale_files must be keep, delete or abort", http.StatusBadRequest)
		return
	}

	ds, err := h.datasets.Snapshot()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.exporter.Export(r.Context(), ds, opts, nil)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("Subset exported", zap.String("subset", result.SubsetPath), zap.Int("images", len(result.Images)))
	h.writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) HandleNewestSubset(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	output := q.Get("output")
	if output == "" {
		output = h.outputDir
	}
	name := q.Get("name")
	h.writeJSON(w, http.StatusOK, response.NewestSubsetResponse{
		Subset: h.exporter.NewestSubset(output, name),
		Info:   h.exporter.Populate(output, name),
	})
}

// HandleWriteCaption stores a reviewed caption. A relative subset is looked up
// in the default output directory.
func (h *Handler) HandleWriteCaption(w http.ResponseWriter, r *http.Request) {
	var req request.CaptionRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	subset := req.Subset
	if subset == "" {
		h.writeJSONError(w, "subset is required", http.StatusBadRequest)
		return
	}
	if !filepath.IsAbs(subset) {
		subset = filepath.Join(h.outputDir, subset)
	}

	text, truncated := req.Text, false
	if req.Truncate {
		text, truncated = h.exporter.TruncateCaption(text)
	}
	if err := h.exporter.WriteCaption(subset, req.Image, text); err != nil {
		h.writeError(w, r, err)
		return
	}
	stored, err := h.exporter.ReadCaption(subset, req.Image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tokens := h.exporter.CountTokens(stored)
	h.writeJSON(w, http.StatusOK, response.CaptionResponse{
		Subset:     subset,
		Image:      req.Image,
		Text:       stored,
		Tokens:     tokens,
		Truncated:  truncated,
		OverBudget: tokens > h.exporter.TokenBudget(),
	})
}

func (h *Handler) HandleInterrogateDataset(w http.ResponseWriter, r *http.Request) {
	if h.interrogation == nil {
		h.writeError(w, r, usecase.ErrNoInterrogator)
		return
	}
	var req request.InterrogateRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	ds, err := h.datasets.Snapshot()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	summary, err := h.interrogation.Run(r.Context(), ds, req.Overwrite, nil)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}
