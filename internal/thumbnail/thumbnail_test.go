package thumbnail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"image-viewer/internal/media"
)

func gradient(t *testing.T, w, h int) *media.Image {
	t.Helper()
	src := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 100, A: 255})
		}
	}
	img, err := media.NewImage(src, "png")
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	return img
}

func TestGenerateBounds(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxDim        int
		wantW, wantH  int
	}{
		{"landscape", 400, 200, 100, 100, 50},
		{"portrait", 300, 600, 150, 75, 150},
		{"square", 500, 500, 64, 64, 64},
		{"already inside box", 40, 30, 100, 40, 30},
		{"exactly the box", 100, 50, 100, 100, 50},
		{"single pixel", 1, 1, 10, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumb, err := Generate(gradient(t, tt.width, tt.height), tt.maxDim)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if thumb.Width != tt.wantW || thumb.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", thumb.Width, thumb.Height, tt.wantW, tt.wantH)
			}
			if thumb.Width > tt.maxDim || thumb.Height > tt.maxDim {
				t.Errorf("size %dx%d exceeds box %d", thumb.Width, thumb.Height, tt.maxDim)
			}

			decoded, err := jpeg.Decode(bytes.NewReader(thumb.JPEG))
			if err != nil {
				t.Fatalf("thumbnail is not a valid JPEG: %v", err)
			}
			if b := decoded.Bounds(); b.Dx() != thumb.Width || b.Dy() != thumb.Height {
				t.Errorf("decoded JPEG is %dx%d, Thumbnail says %dx%d", b.Dx(), b.Dy(), thumb.Width, thumb.Height)
			}
		})
	}
}

func TestGenerateDataURL(t *testing.T) {
	thumb, err := Generate(gradient(t, 64, 48), 32)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(thumb.DataURL, DataURLPrefix) {
		t.Fatalf("DataURL lacks %q prefix", DataURLPrefix)
	}
	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(thumb.DataURL, DataURLPrefix))
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	if !bytes.Equal(payload, thumb.JPEG) {
		t.Error("DataURL payload differs from JPEG bytes")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	img := gradient(t, 300, 200)

	first, err := Generate(img, 120)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Generate(img, 120)
	if err != nil {
		t.Fatal(err)
	}
	if first.DataURL != second.DataURL {
		t.Error("identical inputs produced different thumbnails")
	}
}

func TestGenerateDoesNotModifySource(t *testing.T) {
	img := gradient(t, 50, 50)
	before := append([]byte(nil), img.Pixels.Pix...)

	if _, err := Generate(img, 10); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, img.Pixels.Pix) {
		t.Error("Generate modified the source pixels")
	}
}

func TestGenerateInvalidMaxDimension(t *testing.T) {
	img := gradient(t, 10, 10)
	for _, maxDim := range []int{0, -1, -500} {
		_, err := Generate(img, maxDim)
		if !errors.Is(err, ErrInvalidMaxDimension) {
			t.Errorf("Generate(maxDim=%d) error = %v, want ErrInvalidMaxDimension", maxDim, err)
		}
		if !IsInvalidArgument(err) {
			t.Errorf("IsInvalidArgument(%v) = false", err)
		}
	}
}

func TestGenerateNilImage(t *testing.T) {
	if _, err := Generate(nil, 10); !IsInvalidArgument(err) {
		t.Errorf("Generate(nil) error = %v, want invalid argument", err)
	}
}

func TestEncodeErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&EncodeError{Err: cause})
	if !errors.Is(err, cause) {
		t.Error("EncodeError does not unwrap to its cause")
	}
	if IsInvalidArgument(err) {
		t.Error("EncodeError reported as invalid argument")
	}
}
