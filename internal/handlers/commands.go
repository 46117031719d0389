package handlers

import (
	"net/http"
	"strconv"

	"image-viewer/internal/pipeline"

	"github.com/gorilla/mux"
)

type thumbnailsRequest struct {
	Paths  []string `json:"paths"`
	MaxDim int      `json:"maxDim"`
}

type exportRequest struct {
	Destination string   `json:"destination"`
	Paths       []string `json:"paths"`
}

type exportResponse struct {
	Status   string `json:"status"`
	Exported int    `json:"exported"`
}

// parseMaxDim reads the maxDim query parameter. A missing value is passed
// through as 0 so the pipeline rejects it like any other non-positive size.
func parseMaxDim(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("maxDim")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetThumbnail loads one image and returns its metadata and thumbnail.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	maxDim, ok := parseMaxDim(r)
	if !ok {
		writeJSONError(w, "maxDim must be an integer", pipeline.KindInvalidArgument, http.StatusBadRequest)
		return
	}

	md, err := h.svc.LoadImage(r.URL.Query().Get("path"), maxDim)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSONResponse(w, md)
}

// PostThumbnails loads a batch of images. Results are in request order; any
// failure fails the whole batch.
func (h *Handlers) PostThumbnails(w http.ResponseWriter, r *http.Request) {
	var req thumbnailsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	results, err := h.svc.LoadImages(r.Context(), req.Paths, req.MaxDim)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSONResponse(w, results)
}

// GetImage returns the raw file as a data URL.
func (h *Handlers) GetImage(w http.ResponseWriter, r *http.Request) {
	dataURL, err := h.svc.LoadFullImage(r.URL.Query().Get("path"))
	if err != nil {
		writeCommandError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSONResponse(w, map[string]string{"dataUrl": dataURL})
}

// GetHistogram returns the channel histograms of an image.
func (h *Handlers) GetHistogram(w http.ResponseWriter, r *http.Request) {
	hist, err := h.svc.ComputeHistogram(r.URL.Query().Get("path"))
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSONResponse(w, hist)
}

// PostExport copies the selected files into a destination directory.
func (h *Handlers) PostExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	n, err := h.svc.ExportImages(req.Destination, req.Paths)
	if err != nil {
		kind := pipeline.Kind(err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusForError(kind, err))
		writeJSON(w, errorResponse{Error: err.Error(), Kind: kind, Exported: &n})
		return
	}
	writeJSONResponse(w, exportResponse{Status: "ok", Exported: n})
}

// GetCacheStats reports cache occupancy and counters.
func (h *Handlers) GetCacheStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSONResponse(w, h.svc.CacheStats())
}

// GetCachedImage describes one cache entry.
func (h *Handlers) GetCachedImage(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.CachedImage(mux.Vars(r)["handle"])
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSONResponse(w, entry)
}
