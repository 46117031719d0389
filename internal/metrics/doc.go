// Package metrics provides Prometheus instrumentation for the image viewer
// backend. All metrics are prefixed with "image_viewer_".
//
// # Metric Categories
//
// HTTP: request counts, durations and in-flight requests for the command
// boundary.
//
// Decoder: decodes by container format and status, decode duration, decoded
// pixel counts, and libvips fallback usage.
//
// Thumbnails: generations by status, duration per phase (resize, encode) and
// encoded size.
//
// Histograms: computation count and duration.
//
// Cache: resident entries and bytes, configured budget, hits, misses and
// evictions. Entries and bytes are updated on every mutation and refreshed
// periodically by [Collector].
//
// Export: commands by status, files and bytes copied.
//
// Filesystem: per-operation duration and errors plus NFS retry counters,
// recorded through the observer returned by [NewFilesystemObserver].
//
// Memory: usage ratio and pause state of the memory monitor.
//
// # Usage
//
// Metrics are registered with the default registry at package init. Call
// [InitializeMetrics] once at startup so every label combination appears on
// the first scrape, and serve promhttp.Handler() on the metrics port.
package metrics
