package handlers

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the probes and the command API on r.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET", "HEAD")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET", "HEAD")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/thumbnail", h.GetThumbnail).Methods("GET").Name("load_image")
	api.HandleFunc("/thumbnails", h.PostThumbnails).Methods("POST").Name("load_images")
	api.HandleFunc("/image", h.GetImage).Methods("GET").Name("load_full_image")
	api.HandleFunc("/histogram", h.GetHistogram).Methods("GET").Name("compute_histogram")
	api.HandleFunc("/export", h.PostExport).Methods("POST").Name("export_images")
	api.HandleFunc("/cache/stats", h.GetCacheStats).Methods("GET").Name("cache_stats")
	api.HandleFunc("/cache/{handle}", h.GetCachedImage).Methods("GET").Name("cached_image")
}
