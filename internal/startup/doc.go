// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - LISTEN_ADDR: Interface the command and metrics servers bind to (default: 127.0.0.1)
//   - PORT: Command server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - CACHE_MAX_BYTES: Decoded-image cache byte budget, 0 for unbounded
//     (default: a quarter of GOMEMLIMIT, or 512 MiB)
//   - CACHE_MAX_ENTRIES: Decoded-image cache entry budget, 0 for unbounded (default: 0)
//   - CACHE_STATS_INTERVAL: How often cache gauges are refreshed (default: 1m)
//   - FULL_IMAGE_LEGACY_MIME: Label every full image as image/jpeg (default: false)
//   - VIPS_ENABLED: Fall back to libvips for formats Go cannot decode (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - THUMBNAIL_WORKERS: Pin the batch thumbnail worker count
//   - MEMORY_LIMIT / MEMORY_RATIO / GOMEMLIMIT: see package memory
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [LogMemoryConfig]: Memory limit and default cache budget
//   - [LogVipsInit]: libvips fallback availability
//   - [LogCacheInit]: Cache budgets
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownComplete]: Graceful shutdown
package startup
