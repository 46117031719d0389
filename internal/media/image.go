package media

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// BytesPerPixel is the size of one NRGBA pixel record.
const BytesPerPixel = 4

// Image is a fully decoded image normalized to non-premultiplied RGBA.
// Pixels is row-major, top-to-bottom, with Stride == Width*BytesPerPixel and
// bounds starting at (0, 0). An Image is never modified after construction,
// so it may be shared between goroutines without locking.
type Image struct {
	Width  int
	Height int
	// Format is the container format reported by the codec ("jpeg", "png", ...).
	Format string
	Pixels *image.NRGBA
}

// NewImage normalizes src into an Image. Sources that are already tightly
// packed NRGBA at the origin are adopted without copying.
func NewImage(src image.Image, format string) (*Image, error) {
	if src == nil {
		return nil, ErrEmptyImage
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, b.Dx(), b.Dy())
	}

	var pix *image.NRGBA
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == b.Dx()*BytesPerPixel {
		pix = n
	} else {
		pix = imaging.Clone(src)
	}

	return &Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: format,
		Pixels: pix,
	}, nil
}

// SizeBytes returns the resident size of the pixel buffer.
func (img *Image) SizeBytes() int64 {
	return int64(len(img.Pixels.Pix))
}

// FormatLabel derives the user-facing format label from a file name: the
// text after the last "." in the path, lower-cased, or "unknown" when the
// path has no ".". It never looks at file contents.
func FormatLabel(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return "unknown"
	}
	return strings.ToLower(path[i+1:])
}
