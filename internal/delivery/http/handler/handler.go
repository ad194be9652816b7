package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/response"
	"github.com/viralesveras/lora-tag-helper/internal/feature"
	"github.com/viralesveras/lora-tag-helper/internal/repository"
	"github.com/viralesveras/lora-tag-helper/internal/usecase"
)

type Handler struct {
	datasets      *usecase.DatasetManager
	exporter      *usecase.SubsetExporter
	interrogation *usecase.Interrogation
	outputDir     string
	logger        *zap.Logger
}

// NewHandler wires the use cases to HTTP. interrogation may be nil when no
// interrogator is configured; outputDir is the default subset location.
func NewHandler(datasets *usecase.DatasetManager, exporter *usecase.SubsetExporter, interrogation *usecase.Interrogation, outputDir string, logger *zap.Logger) *Handler {
	return &Handler{
		datasets:      datasets,
		exporter:      exporter,
		interrogation: interrogation,
		outputDir:     outputDir,
		logger:        logger,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.datasets.Status())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}

// writeError maps use case errors to status codes. Anything unknown is logged
// and reported as an internal error.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		h.writeJSONError(w, "Internal server error", status)
		return
	}
	h.writeJSONError(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrIndexOutOfRange),
		errors.Is(err, usecase.ErrImageNotFound),
		errors.Is(err, feature.ErrUnknownNode),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrDirNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrOutsideDataset),
		errors.Is(err, repository.ErrOutsideRoot),
		errors.Is(err, usecase.ErrUnknownAction),
		errors.Is(err, usecase.ErrMissingPreset),
		errors.Is(err, usecase.ErrInvalidOptions),
		errors.Is(err, usecase.ErrSubsetInsideDataset),
		errors.Is(err, feature.ErrDepth),
		errors.Is(err, feature.ErrEmptyPath),
		errors.Is(err, feature.ErrEmptyReplacement):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNoDataset),
		errors.Is(err, usecase.ErrEmptySelection),
		errors.Is(err, usecase.ErrNotASubset),
		errors.Is(err, usecase.ErrStaleFiles):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrEmptyDataset),
		errors.Is(err, usecase.ErrNoImagesMatched):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrCatalogDisabled),
		errors.Is(err, usecase.ErrNoInterrogator):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decode reads a JSON body into v. An empty body leaves v untouched when
// optional is set.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
	return false
}

func (h *Handler) indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeJSONError(w, "Item index must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}
