package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"image-viewer/internal/imagecache"
	"image-viewer/internal/thumbnail"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Photo.PNG")
	writePNG(t, path, 400, 200, color.NRGBA{R: 200, A: 255})

	svc := New(Options{})
	md, err := svc.LoadImage(path, 100)
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}

	if md.Width != 400 || md.Height != 200 {
		t.Errorf("dimensions = %dx%d, want 400x200", md.Width, md.Height)
	}
	if md.Format != "png" {
		t.Errorf("Format = %q, want png", md.Format)
	}
	if !strings.HasPrefix(md.Thumbnail, thumbnail.DataURLPrefix) {
		t.Errorf("Thumbnail does not start with %q", thumbnail.DataURLPrefix)
	}
	if md.Handle == "" {
		t.Error("Handle is empty")
	}

	entry, err := svc.CachedImage(md.Handle)
	if err != nil {
		t.Fatalf("CachedImage() error = %v", err)
	}
	if entry.Width != 400 || entry.Height != 200 || entry.Format != "png" {
		t.Errorf("CachedImage() = %+v", entry)
	}
}

func TestLoadImageFormatLabelFromName(t *testing.T) {
	dir := t.TempDir()
	// PNG content under a misleading name
	path := filepath.Join(dir, "picture.JPG")
	writePNG(t, path, 10, 10, color.NRGBA{A: 255})

	md, err := New(Options{}).LoadImage(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if md.Format != "jpg" {
		t.Errorf("Format = %q, want jpg", md.Format)
	}
}

func TestLoadImageReusesDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writePNG(t, path, 20, 20, color.NRGBA{G: 255, A: 255})

	svc := New(Options{})
	first, err := svc.LoadImage(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.LoadImage(path, 5)
	if err != nil {
		t.Fatal(err)
	}

	if first.Handle != second.Handle {
		t.Errorf("unchanged file decoded twice: %s != %s", first.Handle, second.Handle)
	}
	if n := svc.CacheStats().Entries; n != 1 {
		t.Errorf("cache holds %d entries, want 1", n)
	}
}

func TestLoadImageRedecodesChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writePNG(t, path, 20, 20, color.NRGBA{A: 255})

	svc := New(Options{})
	first, err := svc.LoadImage(path, 10)
	if err != nil {
		t.Fatal(err)
	}

	writePNG(t, path, 30, 10, color.NRGBA{A: 255})
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	second, err := svc.LoadImage(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if first.Handle == second.Handle {
		t.Error("changed file reused the stale decode")
	}
	if second.Width != 30 || second.Height != 10 {
		t.Errorf("dimensions = %dx%d, want 30x10", second.Width, second.Height)
	}
}

func TestLoadImageRedecodesAfterEviction(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writePNG(t, a, 4, 4, color.NRGBA{A: 255})
	writePNG(t, b, 4, 4, color.NRGBA{A: 255})

	svc := New(Options{Cache: imagecache.New(imagecache.Config{MaxEntries: 1})})
	first, err := svc.LoadImage(a, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LoadImage(b, 4); err != nil {
		t.Fatal(err)
	}

	again, err := svc.LoadImage(a, 4)
	if err != nil {
		t.Fatalf("LoadImage() after eviction error = %v", err)
	}
	if again.Handle == first.Handle {
		t.Error("evicted handle was returned")
	}
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writePNG(t, good, 2, 2, color.NRGBA{A: 255})
	text := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(text, []byte("just some text"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		maxDim   int
		wantKind string
	}{
		{"missing file", filepath.Join(dir, "missing.png"), 10, KindDecode},
		{"not an image", text, 10, KindDecode},
		{"zero max dimension", good, 0, KindInvalidArgument},
		{"negative max dimension", good, -4, KindInvalidArgument},
		{"empty path", "", 10, KindInvalidArgument},
	}

	svc := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := svc.LoadImage(tt.path, tt.maxDim)
			if err == nil {
				t.Fatalf("LoadImage() = %+v, want error", md)
			}
			if got := Kind(err); got != tt.wantKind {
				t.Errorf("Kind(%v) = %q, want %q", err, got, tt.wantKind)
			}
		})
	}
}

func TestLoadImages(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, w := range []int{10, 20, 30, 40, 50} {
		p := filepath.Join(dir, string(rune('a'+i))+".png")
		writePNG(t, p, w, 10, color.NRGBA{B: 255, A: 255})
		paths = append(paths, p)
	}

	results, err := New(Options{MaxWorkers: 3}).LoadImages(context.Background(), paths, 25)
	if err != nil {
		t.Fatalf("LoadImages() error = %v", err)
	}
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	for i, md := range results {
		if want := (i + 1) * 10; md.Width != want {
			t.Errorf("results[%d].Width = %d, want %d (order not preserved)", i, md.Width, want)
		}
	}
}

func TestLoadImagesFailsAsAWhole(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writePNG(t, good, 4, 4, color.NRGBA{A: 255})

	results, err := New(Options{}).LoadImages(context.Background(), []string{good, filepath.Join(dir, "missing.png")}, 10)
	if err == nil {
		t.Fatal("LoadImages() succeeded with a missing file")
	}
	if results != nil {
		t.Errorf("LoadImages() returned partial results: %v", results)
	}
	if Kind(err) != KindDecode {
		t.Errorf("Kind = %q, want decode", Kind(err))
	}
}

func TestLoadImagesCanceled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	writePNG(t, p, 4, 4, color.NRGBA{A: 255})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(Options{}).LoadImages(ctx, []string{p}, 10); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadImages() error = %v, want context.Canceled", err)
	}
}

func TestConcurrentLoadsShareOneDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shared.png")
	writePNG(t, path, 64, 64, color.NRGBA{R: 1, A: 255})

	svc := New(Options{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.LoadImage(path, 16); err != nil {
				t.Errorf("LoadImage() error = %v", err)
			}
		}()
	}
	wg.Wait()

	// Late arrivals may miss the in-flight call but then hit the index
	if n := svc.CacheStats().Entries; n < 1 || n > 8 {
		t.Errorf("cache holds %d entries", n)
	}
}

func TestLoadFullImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "full.png")
	writePNG(t, path, 3, 3, color.NRGBA{A: 255})
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	payload := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name   string
		legacy bool
		want   string
	}{
		{"sniffed", false, "data:image/png;base64," + payload},
		{"legacy label", true, "data:image/jpeg;base64," + payload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(Options{LegacyFullImageMIME: tt.legacy}).LoadFullImage(path)
			if err != nil {
				t.Fatalf("LoadFullImage() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LoadFullImage() prefix = %q", got[:strings.Index(got, ",")])
			}
		})
	}
}

func TestLoadFullImageDoesNotDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.jpg")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := New(Options{LegacyFullImageMIME: true})
	got, err := svc.LoadFullImage(path)
	if err != nil {
		t.Fatalf("LoadFullImage() error = %v", err)
	}
	want := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("plain text"))
	if got != want {
		t.Errorf("LoadFullImage() = %q, want %q", got, want)
	}
	if svc.CacheStats().Entries != 0 {
		t.Error("LoadFullImage populated the decode cache")
	}
}

func TestLoadFullImageMissing(t *testing.T) {
	_, err := New(Options{}).LoadFullImage(filepath.Join(t.TempDir(), "gone.png"))
	if Kind(err) != KindNotFound {
		t.Errorf("Kind(%v) = %q, want not_found", err, Kind(err))
	}
}

func TestComputeHistogram(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "red.png")
	writePNG(t, path, 5, 4, color.NRGBA{R: 255, A: 255})

	svc := New(Options{})
	h, err := svc.ComputeHistogram(path)
	if err != nil {
		t.Fatalf("ComputeHistogram() error = %v", err)
	}
	if h.Red[255] != 20 || h.Green[0] != 20 || h.Blue[0] != 20 {
		t.Errorf("unexpected buckets: red[255]=%d green[0]=%d blue[0]=%d", h.Red[255], h.Green[0], h.Blue[0])
	}

	// Histogram after a thumbnail reuses the same decode
	if _, err := svc.LoadImage(path, 2); err != nil {
		t.Fatal(err)
	}
	if n := svc.CacheStats().Entries; n != 1 {
		t.Errorf("cache holds %d entries, want 1", n)
	}
}

func TestExportImages(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	a := filepath.Join(src, "a.png")
	writePNG(t, a, 2, 2, color.NRGBA{A: 255})

	svc := New(Options{})
	n, err := svc.ExportImages(dest, []string{a})
	if err != nil || n != 1 {
		t.Fatalf("ExportImages() = %d, %v; want 1, nil", n, err)
	}

	_, err = svc.ExportImages(dest, []string{filepath.Join(src, "missing.png")})
	if Kind(err) != KindExport {
		t.Errorf("Kind(%v) = %q, want export", err, Kind(err))
	}

	_, err = svc.ExportImages("", []string{a})
	if Kind(err) != KindInvalidArgument {
		t.Errorf("Kind(%v) = %q, want invalid_argument", err, Kind(err))
	}
}

func TestCachedImageUnknownHandle(t *testing.T) {
	_, err := New(Options{}).CachedImage("nope")
	if !errors.Is(err, imagecache.ErrNotFound) {
		t.Errorf("CachedImage() error = %v, want ErrNotFound", err)
	}
	if Kind(err) != KindNotFound {
		t.Errorf("Kind = %q, want not_found", Kind(err))
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&thumbnail.EncodeError{Err: errors.New("x")}, KindEncode},
		{thumbnail.ErrInvalidMaxDimension, KindInvalidArgument},
		{errors.New("boom"), KindInternal},
		{os.ErrNotExist, KindNotFound},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
