/*
Package filesystem wraps the file operations of the image pipeline (stat,
open, whole-file read, copy) with retry logic for NFS stale file handles.

Images are frequently opened from network shares. An ESTALE error (errno 116)
there is usually transient, so each operation is retried with exponential
backoff. Every other error is returned immediately, unchanged, so callers can
still test it with errors.Is(err, fs.ErrNotExist) and friends.

# Usage

	data, err := filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())

	n, err := filesystem.CopyFileWithRetry(src, dst, 0o644, filesystem.DefaultRetryConfig())

# Metrics

Operation durations, retries and stale-handle counts are reported through an
[Observer]. The metrics package provides the Prometheus implementation and
main installs it with [SetObserver]; without one, nothing is recorded.
*/
package filesystem
