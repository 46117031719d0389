// Package logging provides the leveled logger used across the image viewer
// backend.
//
// Levels, from most to least verbose:
//   - DEBUG: per-request decode, cache and resize details
//   - INFO: startup configuration and lifecycle messages
//   - WARN: recoverable problems (retries, failed cleanup)
//   - ERROR: failed commands
//
// The level comes from LOG_LEVEL, or DEBUG=true for debug output. Tests and
// embedders may override it with SetLevel.
package logging
