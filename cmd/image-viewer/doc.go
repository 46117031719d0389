// Package main provides the entry point for the Image Viewer backend.
//
// Image Viewer is the local image-processing backend of a desktop viewer. The
// shell calls it over a loopback HTTP/JSON boundary to decode images, produce
// thumbnails and histograms, serve full-resolution images, and copy selected
// files to an export directory.
//
// # Application Lifecycle
//
//  1. Memory Configuration: sets GOMEMLIMIT from MEMORY_LIMIT and derives the
//     default decoded-image cache budget
//  2. Configuration Loading: reads environment variables and validates them
//  3. Component Initialization:
//     - libvips decode fallback (if VIPS_ENABLED)
//     - Image cache with LRU eviction
//     - Memory Monitor: pauses batch decodes under memory pressure
//     - Metrics Collector: publishes cache gauges periodically
//  4. HTTP Server Setup: routes, middleware, optional metrics server
//  5. Graceful Shutdown: handles SIGINT/SIGTERM and stops components cleanly
//
// # Command Routes
//
//	GET  /api/thumbnail?path=&maxDim=   decode and thumbnail one image
//	POST /api/thumbnails                decode and thumbnail a batch
//	GET  /api/image?path=               full image as a data URL
//	GET  /api/histogram?path=           per-channel and luminance histogram
//	POST /api/export                    copy files to a directory
//	GET  /api/cache/stats               cache statistics
//	GET  /api/cache/{handle}            metadata of a cached decode
//
// # Environment Variables
//
//	LISTEN_ADDR             Bind address (default: 127.0.0.1)
//	PORT                    HTTP server port (default: 8080)
//	METRICS_PORT            Prometheus metrics port (default: 9090)
//	METRICS_ENABLED         Enable the metrics server (default: true)
//	CACHE_MAX_BYTES         Decoded-image cache budget, 0 = unbounded
//	CACHE_MAX_ENTRIES       Decoded-image entry budget, 0 = unbounded
//	CACHE_STATS_INTERVAL    Cache gauge refresh interval (default: 1m)
//	FULL_IMAGE_LEGACY_MIME  Label every full image as image/jpeg (default: false)
//	VIPS_ENABLED            Enable the libvips decode fallback (default: false)
//	LOG_HEALTH_CHECKS       Log health check requests (default: true)
//	LOG_LEVEL               debug, info, warn, error (default: info)
//	MEMORY_LIMIT            Container memory limit used to derive GOMEMLIMIT
package main
