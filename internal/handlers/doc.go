// Package handlers exposes the viewer command set over local HTTP/JSON.
//
// Each command is one synchronous request/response:
//   - Thumbnails: single (GET) and batch (POST) image loading
//   - Full images as data URLs
//   - Histograms
//   - Exporting selected files to a directory
//   - Cache inspection
//   - Health, liveness, and version probes
//
// Failures are reported as {"error": "...", "kind": "..."} where kind is one
// of the pipeline error kinds.
package handlers
