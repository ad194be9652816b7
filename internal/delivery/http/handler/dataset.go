package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/request"
	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/response"
	"github.com/viralesveras/lora-tag-helper/internal/feature"
)

func (h *Handler) HandleOpenDataset(w http.ResponseWriter, r *http.Request) {
	var req request.OpenDatasetRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	if req.Path == "" {
		h.writeJSONError(w, "Dataset path is required", http.StatusBadRequest)
		return
	}
	h.datasets.SetFullChecklist(req.FullChecklist)
	status, err := h.datasets.Open(r.Context(), req.Path)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) HandleListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.datasets.Images()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.ImagesResponse{
		Images:       images,
		CurrentIndex: h.datasets.Status().CurrentIndex,
	})
}

// HandleGoto moves the cursor, either to ?path= (an image or a directory) or
// by ?to=first|last|next|prev, and returns the item it lands on.
func (h *Handler) HandleGoto(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		index int
		err   error
	)
	switch to := q.Get("to"); {
	case q.Has("path"):
		index, err = h.datasets.Goto(q.Get("path"))
	case to == "first":
		index, err = h.datasets.First()
	case to == "last":
		index, err = h.datasets.Last()
	case to == "next":
		index, err = h.datasets.Next()
	case to == "prev":
		index, err = h.datasets.Prev()
	default:
		h.writeJSONError(w, "Either path or to=first|last|next|prev is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.datasets.Item(index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleKnownChecklist(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	entries, err := h.datasets.KnownChecklist(dir)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.ChecklistResponse{Dir: dir, Entries: entries})
}

func (h *Handler) HandleRenameFeature(w http.ResponseWriter, r *http.Request) {
	var req feature.Rename
	if !h.decode(w, r, &req, false) {
		return
	}
	changed, err := h.datasets.RenameFeature(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.RenameResponse{Changed: changed})
}

func (h *Handler) HandleSaveDefaults(w http.ResponseWriter, r *http.Request) {
	var req request.DefaultsRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	if err := h.datasets.SaveDefaults(r.Context(), req.Dir, req.DefaultsPatch); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetSelection(w http.ResponseWriter, r *http.Request) {
	images, err := h.datasets.Selection(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.SelectionResponse{Images: images})
}

func (h *Handler) HandlePutSelection(w http.ResponseWriter, r *http.Request) {
	var req request.SelectionRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	images, err := h.datasets.SelectImages(r.Context(), req.Paths, req.Add)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.SelectionResponse{Images: images})
}

func (h *Handler) HandleClearSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.datasets.ClearSelection(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	paths, err := h.datasets.Preset(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.PresetResponse{Name: name, Paths: paths})
}

func (h *Handler) HandleAddToPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req request.PresetRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	paths, err := h.datasets.AddToPreset(r.Context(), name, req.Paths...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.PresetResponse{Name: name, Paths: paths})
}

// HandleRemoveFromPreset removes the ?path= entries, or the whole preset when none are given.
func (h *Handler) HandleRemoveFromPreset(w http.ResponseWriter, r *http.Request) {
	if err := h.datasets.RemoveFromPreset(r.Context(), chi.URLParam(r, "name"), r.URL.Query()["path"]...); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("feature")
	if name == "" {
		h.writeJSONError(w, "feature query parameter is required", http.StatusBadRequest)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeJSONError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	items, err := h.datasets.SearchCatalog(r.Context(), name, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := response.CatalogSearchResponse{Feature: name, Items: make([]response.CatalogItem, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, response.CatalogItem{
			Dataset:  it.Dataset,
			Path:     it.Path,
			Title:    it.Title,
			Rating:   it.Rating,
			Features: it.Features,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}
