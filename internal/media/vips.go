package media

import (
	"bytes"
	"fmt"
	"image/png"
	"sync"
	"time"

	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// InitVips starts libvips so Decode can fall back to it for containers the
// Go codecs do not recognize (HEIC, AVIF, JPEG XL, ...). Safe to call more
// than once; libvips cannot be restarted after ShutdownVips.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Must be configured before Startup
	vips.LoggingSettings(vipsLogHandler, vipsLogLevel(logging.GetLevel()))

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// ShutdownVips cleans up libvips resources
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// vipsLogLevel picks the most verbose libvips level worth forwarding at the
// given application level.
func vipsLogLevel(level logging.LogLevel) vips.LogLevel {
	switch level {
	case logging.LevelDebug:
		return vips.LogLevelInfo
	case logging.LevelInfo:
		return vips.LogLevelWarning
	case logging.LevelWarn:
		return vips.LogLevelError
	case logging.LevelError:
		return vips.LogLevelCritical
	default:
		return vips.LogLevelWarning
	}
}

func vipsLogHandler(domain string, level vips.LogLevel, msg string) {
	switch level {
	case vips.LogLevelError, vips.LogLevelCritical:
		logging.Error("[%s] %s", domain, msg)
	case vips.LogLevelWarning:
		logging.Warn("[%s] %s", domain, msg)
	default:
		logging.Debug("[%s] %s", domain, msg)
	}
}

// decodeWithVips loads data through libvips, applies EXIF orientation, and
// hands the pixels back as a lossless PNG round trip.
func decodeWithVips(data []byte) (*Image, error) {
	start := time.Now()

	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		metrics.VipsFallbackTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer ref.Close()

	format, ok := vips.ImageTypes[ref.Format()]
	if !ok || format == "" {
		format = "unknown"
	}

	if err := ref.AutoRotate(); err != nil {
		metrics.VipsFallbackTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("vips autorotate %s: %w", format, err)
	}

	buf, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		metrics.VipsFallbackTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("vips export %s: %w", format, err)
	}

	src, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		metrics.VipsFallbackTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode vips output for %s: %w", format, err)
	}

	metrics.VipsFallbackTotal.WithLabelValues("success").Inc()
	logging.Debug("libvips decoded %s image %dx%d in %v",
		format, src.Bounds().Dx(), src.Bounds().Dy(), time.Since(start))

	return NewImage(src, format)
}
