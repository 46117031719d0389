package main

import (
	"compress/gzip"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"image-viewer/internal/handlers"
	"image-viewer/internal/pipeline"
	"image-viewer/internal/startup"

	"github.com/gorilla/mux"
)

func newTestHandlers() *handlers.Handlers {
	return handlers.New(pipeline.New(pipeline.Options{}), nil)
}

func TestSetupRouterRoutes(t *testing.T) {
	router := setupRouter(newTestHandlers())

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health"},
		{http.MethodHead, "/healthz"},
		{http.MethodGet, "/livez"},
		{http.MethodGet, "/version"},
		{http.MethodGet, "/api/thumbnail"},
		{http.MethodPost, "/api/thumbnails"},
		{http.MethodGet, "/api/image"},
		{http.MethodGet, "/api/histogram"},
		{http.MethodPost, "/api/export"},
		{http.MethodGet, "/api/cache/stats"},
		{http.MethodGet, "/api/cache/01HZXJ4Q0W2S6K8M9N0P1R2T3V"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			var match mux.RouteMatch
			if !router.Match(req, &match) {
				t.Fatalf("no route for %s %s", tt.method, tt.path)
			}
			if match.MatchErr != nil {
				t.Fatalf("match error for %s %s: %v", tt.method, tt.path, match.MatchErr)
			}
		})
	}
}

func TestSetupRouterUnknownPath(t *testing.T) {
	router := setupRouter(newTestHandlers())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestWrapHandlerCompressesLargeJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gradient.png")

	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	handler := wrapHandler(setupRouter(newTestHandlers()), &startup.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/histogram?path="+url.QueryEscape(path), nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}

	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}

	var hist struct {
		Red []uint64 `json:"red"`
		Lum []uint64 `json:"lum"`
	}
	if err := json.Unmarshal(body, &hist); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(hist.Red) != 256 || len(hist.Lum) != 256 {
		t.Errorf("bins = %d/%d, want 256", len(hist.Red), len(hist.Lum))
	}
}

func TestWrapHandlerHealthUncompressed(t *testing.T) {
	handler := wrapHandler(setupRouter(newTestHandlers()), &startup.Config{LogHealthChecks: false})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("small health response should not be compressed, got %q", got)
	}
}
