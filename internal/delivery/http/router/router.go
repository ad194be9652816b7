package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/handler"
	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/middleware"
)

// New builds the API router. timeout bounds every request; exports of large
// datasets need a generous value.
func New(h *handler.Handler, logger *zap.Logger, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", h.HandleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.HandleStatus)
		r.Post("/dataset/open", h.HandleOpenDataset)

		r.Get("/items", h.HandleListImages)
		r.Route("/items/{index}", func(r chi.Router) {
			r.Get("/", h.HandleGetItem)
			r.Put("/", h.HandleSaveItem)
			r.Post("/reset", h.HandleResetItem)
			r.Post("/click", h.HandleClick)
			r.Post("/features/from-summary", h.HandleFeaturesFromSummary)
			r.Post("/interrogate", h.HandleInterrogateItem)
			r.Get("/thumbnail", h.HandleThumbnail)
		})

		r.Get("/goto", h.HandleGoto)
		r.Get("/checklist", h.HandleKnownChecklist)
		r.Post("/features/rename", h.HandleRenameFeature)
		r.Post("/defaults", h.HandleSaveDefaults)

		r.Get("/selection", h.HandleGetSelection)
		r.Put("/selection", h.HandlePutSelection)
		r.Delete("/selection", h.HandleClearSelection)

		r.Get("/presets/{name}", h.HandleGetPreset)
		r.Post("/presets/{name}", h.HandleAddToPreset)
		r.Delete("/presets/{name}", h.HandleRemoveFromPreset)

		r.Post("/subsets", h.HandleExportSubset)
		r.Get("/subsets/newest", h.HandleNewestSubset)
		r.Put("/subsets/caption", h.HandleWriteCaption)

		r.Post("/interrogate", h.HandleInterrogateDataset)
		r.Get("/catalog/search", h.HandleCatalogSearch)
	})

	return r
}
