package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/request"
	"github.com/viralesveras/lora-tag-helper/internal/entity"
	"github.com/viralesveras/lora-tag-helper/internal/usecase"
)

const (
	defaultThumbnailSize = 512
	maxThumbnailSize     = 2048
)

func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	view, err := h.datasets.Item(index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleSaveItem(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	var item entity.Item
	if !h.decode(w, r, &item, false) {
		return
	}
	view, err := h.datasets.SaveItem(r.Context(), index, item)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleResetItem(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	view, err := h.datasets.ResetItem(index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleClick(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	var req request.ClickRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	view, err := h.datasets.Click(r.Context(), index, usecase.Click{
		Path:        req.Path,
		Action:      usecase.ClickAction(req.Action),
		Item:        req.Item,
		Replacement: req.Replacement,
		Preset:      req.Preset,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleFeaturesFromSummary(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	var req request.WorkingItemRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	view, err := h.datasets.FeaturesFromSummary(index, req.Item)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleInterrogateItem(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	var req request.WorkingItemRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	view, err := h.datasets.Interrogate(r.Context(), index, req.Item)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	size := defaultThumbnailSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxThumbnailSize {
			h.writeJSONError(w, "size must be between 1 and 2048", http.StatusBadRequest)
			return
		}
		size = n
	}

	// Encode into memory first so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.datasets.Thumbnail(&buf, index, size); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
