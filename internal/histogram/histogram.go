// Package histogram computes per-channel intensity distributions of decoded
// images.
package histogram

import (
	"time"

	"image-viewer/internal/media"
	"image-viewer/internal/metrics"
)

// Bins is the number of buckets per channel, one per 8-bit intensity.
const Bins = 256

// Histogram holds per-channel pixel counts. For an image with N pixels each
// channel sums to N. Alpha is not considered.
type Histogram struct {
	Red   [Bins]uint64 `json:"red"`
	Green [Bins]uint64 `json:"green"`
	Blue  [Bins]uint64 `json:"blue"`
	Lum   [Bins]uint64 `json:"lum"`
}

// Compute walks every pixel of img once. Luminance uses the Rec. 601 weights
// in floating point, truncated toward zero and clamped to 255.
func Compute(img *media.Image) *Histogram {
	start := time.Now()
	h := &Histogram{}

	pix := img.Pixels.Pix
	stride := img.Pixels.Stride
	rowBytes := img.Width * media.BytesPerPixel

	for y := 0; y < img.Height; y++ {
		row := pix[y*stride : y*stride+rowBytes]
		for i := 0; i < len(row); i += media.BytesPerPixel {
			r, g, b := row[i], row[i+1], row[i+2]
			h.Red[r]++
			h.Green[g]++
			h.Blue[b]++
			h.Lum[Luminance(r, g, b)]++
		}
	}

	metrics.HistogramComputationsTotal.Inc()
	metrics.HistogramDuration.Observe(time.Since(start).Seconds())
	return h
}

// Luminance returns the luminance bucket for one pixel.
func Luminance(r, g, b uint8) uint8 {
	// Explicit conversions keep the products from being fused.
	l := float64(0.299*float64(r)) + float64(0.587*float64(g)) + float64(0.114*float64(b))
	if l >= 255 {
		return 255
	}
	return uint8(l)
}

// Total returns the number of pixels counted in the red channel.
func (h *Histogram) Total() uint64 {
	var n uint64
	for _, c := range h.Red {
		n += c
	}
	return n
}
