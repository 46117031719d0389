// Package export copies selected source files into a destination directory.
//
// Files are copied byte for byte under their base name, overwriting anything
// already there. Processing is sequential and stops at the first failure;
// files copied before the failure are left in place.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"image-viewer/internal/filesystem"
	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"
)

var (
	// ErrInvalidFileName is returned for sources with no usable base name.
	ErrInvalidFileName = errors.New("source path has no file name")
	// ErrNotDirectory is returned when the destination is not a directory.
	ErrNotDirectory = errors.New("destination is not a directory")
	// ErrNotRegularFile is returned for sources that are directories or devices.
	ErrNotRegularFile = errors.New("source is not a regular file")
)

// ExportError reports the path that stopped an export.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Copy copies each path into destination and returns how many files were
// written. On failure the count covers only the files copied before it.
func Copy(destination string, paths []string) (int, error) {
	start := time.Now()
	retry := filesystem.DefaultRetryConfig()

	info, err := filesystem.StatWithRetry(destination, retry)
	if err != nil {
		metrics.ExportRequestsTotal.WithLabelValues("error").Inc()
		return 0, &ExportError{Path: destination, Err: err}
	}
	if !info.IsDir() {
		metrics.ExportRequestsTotal.WithLabelValues("error").Inc()
		return 0, &ExportError{Path: destination, Err: ErrNotDirectory}
	}

	copied := 0
	var totalBytes int64
	for _, src := range paths {
		n, err := copyOne(src, destination, retry)
		if err != nil {
			metrics.ExportRequestsTotal.WithLabelValues("error").Inc()
			logging.Warn("Export to %s stopped after %d of %d files: %v", destination, copied, len(paths), err)
			return copied, err
		}
		copied++
		totalBytes += n
		metrics.ExportFilesTotal.Inc()
		metrics.ExportBytesTotal.Add(float64(n))
	}

	metrics.ExportRequestsTotal.WithLabelValues("success").Inc()
	logging.Info("Exported %d files (%d bytes) to %s in %v", copied, totalBytes, destination, time.Since(start))
	return copied, nil
}

func copyOne(src, destination string, retry filesystem.RetryConfig) (int64, error) {
	name, err := BaseName(src)
	if err != nil {
		return 0, &ExportError{Path: src, Err: err}
	}

	srcInfo, err := filesystem.StatWithRetry(src, retry)
	if err != nil {
		return 0, &ExportError{Path: src, Err: err}
	}
	if !srcInfo.Mode().IsRegular() {
		return 0, &ExportError{Path: src, Err: ErrNotRegularFile}
	}

	dst := filepath.Join(destination, name)

	// Source already lives at the target
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
		logging.Debug("Export skipped %s: already in %s", src, destination)
		return 0, nil
	}

	n, err := filesystem.CopyFileWithRetry(src, dst, srcInfo.Mode().Perm(), retry)
	if err != nil {
		return 0, &ExportError{Path: src, Err: err}
	}
	logging.Debug("Exported %s -> %s (%d bytes)", src, dst, n)
	return n, nil
}

// BaseName returns the final element of path, rejecting names that cannot
// be used as a file in the destination.
func BaseName(path string) (string, error) {
	if path == "" {
		return "", ErrInvalidFileName
	}
	name := filepath.Base(path)
	switch name {
	case ".", "..", string(filepath.Separator):
		return "", ErrInvalidFileName
	}
	return name, nil
}
