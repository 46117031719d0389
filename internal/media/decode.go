package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"time"

	"image-viewer/internal/filesystem"
	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUnsupportedFormat means no registered codec recognized the file.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrEmptyImage means the file decoded to zero width or height.
	ErrEmptyImage = errors.New("image has no pixels")
)

// DecodeError reports a file that could not be turned into an Image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode reads the file at path and decodes it into an Image. It either
// returns a complete image or a *DecodeError; partial results are never
// returned.
func Decode(path string) (*Image, error) {
	start := time.Now()

	data, err := filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		metrics.DecodesTotal.WithLabelValues("unknown", "error").Inc()
		return nil, &DecodeError{Path: path, Err: err}
	}

	img, err := DecodeBytes(data)
	if err != nil {
		metrics.DecodesTotal.WithLabelValues("unknown", "error").Inc()
		logging.Debug("Decode failed for %s: %v", path, err)
		return nil, &DecodeError{Path: path, Err: err}
	}

	metrics.DecodesTotal.WithLabelValues(img.Format, "success").Inc()
	metrics.DecodeDuration.WithLabelValues(img.Format).Observe(time.Since(start).Seconds())
	metrics.DecodedPixels.Observe(float64(img.Width * img.Height))

	logging.Debug("Decoded %s: %dx%d %s (%d bytes in, %d bytes resident) in %v",
		path, img.Width, img.Height, img.Format, len(data), img.SizeBytes(), time.Since(start))

	return img, nil
}

// DecodeBytes decodes an in-memory file. The container is identified from
// its header; EXIF orientation is applied.
func DecodeBytes(data []byte) (*Image, error) {
	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if !errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("read %s header: %w", format, err)
		}
		if IsVipsAvailable() {
			return decodeWithVips(data)
		}
		return nil, ErrUnsupportedFormat
	}

	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: %s header declares %dx%d", ErrEmptyImage, format, config.Width, config.Height)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}

	return NewImage(src, format)
}
