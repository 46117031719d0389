// Package filesystem provides file access with retry logic for stale NFS handles
package filesystem

import (
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	"image-viewer/internal/logging"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	if err == nil {
		return false
	}

	// ESTALE is errno 116 on Linux
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}

	return false
}

// withRetry runs fn until it succeeds, fails with a non-ESTALE error, or the
// retry budget is exhausted. Backoff doubles up to MaxBackoff.
func withRetry(operation, path string, config RetryConfig, fn func() error) error {
	start := time.Now()
	obs := observe()
	backoff := config.InitialBackoff

	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", operation, attempt, path)
				obs.ObserveRetrySuccess(operation)
			}
			obs.ObserveOperation(operation, time.Since(start).Seconds(), nil)
			return nil
		}

		lastErr = err
		if !isNFSStaleError(err) {
			obs.ObserveOperation(operation, time.Since(start).Seconds(), err)
			return err
		}

		obs.ObserveStaleError(operation)

		if attempt < config.MaxRetries {
			obs.ObserveRetryAttempt(operation)
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				operation, path, backoff, attempt+1, config.MaxRetries)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", operation, config.MaxRetries, path, lastErr)
	obs.ObserveRetryFailure(operation)
	obs.ObserveOperation(operation, time.Since(start).Seconds(), lastErr)
	return lastErr
}

// StatWithRetry performs os.Stat with retry logic for NFS stale file handle errors
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	var info os.FileInfo
	err := withRetry("stat", path, config, func() error {
		var err error
		info, err = os.Stat(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// OpenWithRetry performs os.Open with retry logic for NFS stale file handle errors
func OpenWithRetry(path string, config RetryConfig) (*os.File, error) {
	var file *os.File
	err := withRetry("open", path, config, func() error {
		var err error
		file, err = os.Open(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// ReadFileWithRetry reads a whole file. A stale handle during the read
// reopens the file and starts over, so the returned bytes are never partial.
func ReadFileWithRetry(path string, config RetryConfig) ([]byte, error) {
	var data []byte
	err := withRetry("read", path, config, func() error {
		var err error
		data, err = os.ReadFile(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// CopyFileWithRetry copies src to dst, truncating dst if it exists. The whole
// copy is retried when either side reports a stale handle.
func CopyFileWithRetry(src, dst string, perm os.FileMode, config RetryConfig) (int64, error) {
	var written int64
	err := withRetry("copy", src, config, func() error {
		in, err := os.Open(src)
		if err != nil {
			return err
		}
		defer func() {
			if err := in.Close(); err != nil {
				logging.Warn("failed to close %s: %v", src, err)
			}
		}()

		out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
		if err != nil {
			return err
		}

		written, err = io.Copy(out, in)
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		return err
	})
	return written, err
}
