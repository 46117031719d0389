package thumbnail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"
	"time"

	"image-viewer/internal/logging"
	"image-viewer/internal/media"
	"image-viewer/internal/metrics"

	"github.com/disintegration/imaging"
)

const (
	// Quality is the JPEG quality used for every thumbnail.
	Quality = 80

	// DataURLPrefix precedes the base64 payload of every thumbnail.
	DataURLPrefix = "data:image/jpeg;base64,"
)

// ErrInvalidMaxDimension is returned when the bounding box is not positive.
var ErrInvalidMaxDimension = &InvalidArgumentError{
	Argument: "maxDimension",
	Reason:   "must be a positive number of pixels",
}

// InvalidArgumentError reports a caller-supplied value that cannot be used.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Argument, e.Reason)
}

// EncodeError reports a failure to compress the resized image.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode thumbnail: %v", e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Thumbnail is an encoded preview.
type Thumbnail struct {
	Width   int
	Height  int
	JPEG    []byte
	DataURL string
}

// Generate scales img to fit within a maxDimension x maxDimension box,
// preserving aspect ratio, and encodes the result as JPEG. Images already
// inside the box keep their size. The output depends only on the inputs.
func Generate(img *media.Image, maxDimension int) (*Thumbnail, error) {
	if maxDimension <= 0 {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error_invalid").Inc()
		return nil, ErrInvalidMaxDimension
	}
	if img == nil || img.Pixels == nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error_invalid").Inc()
		return nil, &InvalidArgumentError{Argument: "image", Reason: "no pixels"}
	}

	start := time.Now()
	resized := imaging.Fit(img.Pixels, maxDimension, maxDimension, imaging.Lanczos)
	resizeTime := time.Since(start)
	metrics.ThumbnailGenerationDuration.WithLabelValues("resize").Observe(resizeTime.Seconds())

	encodeStart := time.Now()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: Quality}); err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error_encode").Inc()
		return nil, &EncodeError{Err: err}
	}
	metrics.ThumbnailGenerationDuration.WithLabelValues("encode").Observe(time.Since(encodeStart).Seconds())

	bounds := resized.Bounds()
	thumb := &Thumbnail{
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		JPEG:    buf.Bytes(),
		DataURL: DataURL(buf.Bytes()),
	}

	metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()
	metrics.ThumbnailBytes.Observe(float64(len(thumb.JPEG)))

	logging.Debug("Thumbnail %dx%d -> %dx%d (%d bytes): resize=%v encode=%v",
		img.Width, img.Height, thumb.Width, thumb.Height, len(thumb.JPEG), resizeTime, time.Since(encodeStart))

	return thumb, nil
}

// DataURL wraps JPEG bytes as a data URL.
func DataURL(jpegBytes []byte) string {
	return DataURLPrefix + base64.StdEncoding.EncodeToString(jpegBytes)
}

// IsInvalidArgument reports whether err was caused by a bad caller value.
func IsInvalidArgument(err error) bool {
	var argErr *InvalidArgumentError
	return errors.As(err, &argErr)
}
