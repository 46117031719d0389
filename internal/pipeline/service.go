package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"image-viewer/internal/export"
	"image-viewer/internal/filesystem"
	"image-viewer/internal/histogram"
	"image-viewer/internal/imagecache"
	"image-viewer/internal/logging"
	"image-viewer/internal/media"
	"image-viewer/internal/memory"
	"image-viewer/internal/metrics"
	"image-viewer/internal/thumbnail"
	"image-viewer/internal/workers"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// LegacyFullImageMIME is the MIME type every full image was labelled with
// before content sniffing.
const LegacyFullImageMIME = "image/jpeg"

// Metadata describes one loaded image.
type Metadata struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Thumbnail string `json:"thumbnail"`
	Handle    string `json:"handle"`
}

// CacheEntry describes a cached decode without its pixels.
type CacheEntry struct {
	Handle string `json:"handle"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Options configures a Service.
type Options struct {
	Cache *imagecache.Cache
	Retry filesystem.RetryConfig
	// LegacyFullImageMIME labels every full image as image/jpeg.
	LegacyFullImageMIME bool
	// Monitor, when set, pauses batch work while memory is critical.
	Monitor *memory.Monitor
	// MaxWorkers caps batch parallelism; 0 means one worker per CPU.
	MaxWorkers int
}

type indexEntry struct {
	handle  imagecache.Handle
	size    int64
	modTime time.Time
}

type decoded struct {
	image  *media.Image
	handle imagecache.Handle
}

// Service executes viewer commands.
type Service struct {
	cache      *imagecache.Cache
	retry      filesystem.RetryConfig
	legacyMIME bool
	monitor    *memory.Monitor
	maxWorkers int

	mu    sync.Mutex
	index map[string]indexEntry

	decodes singleflight.Group
}

// New creates a Service. A nil cache is replaced by an unbounded one.
func New(opts Options) *Service {
	cache := opts.Cache
	if cache == nil {
		cache = imagecache.New(imagecache.Config{})
	}
	retry := opts.Retry
	if retry == (filesystem.RetryConfig{}) {
		retry = filesystem.DefaultRetryConfig()
	}
	return &Service{
		cache:      cache,
		retry:      retry,
		legacyMIME: opts.LegacyFullImageMIME,
		monitor:    opts.Monitor,
		maxWorkers: opts.MaxWorkers,
		index:      make(map[string]indexEntry),
	}
}

// Cache returns the cache backing the service.
func (s *Service) Cache() *imagecache.Cache {
	return s.cache
}

// LoadImage decodes path (or reuses its cached decode) and returns its
// dimensions, filename-derived format label, thumbnail, and cache handle.
func (s *Service) LoadImage(path string, maxDimension int) (md *Metadata, err error) {
	defer observe("load_image", time.Now(), &err)
	return s.loadImage(path, maxDimension)
}

func (s *Service) loadImage(path string, maxDimension int) (*Metadata, error) {
	if path == "" {
		return nil, errEmptyPath
	}
	if maxDimension <= 0 {
		return nil, thumbnail.ErrInvalidMaxDimension
	}

	d, err := s.decode(path)
	if err != nil {
		return nil, err
	}

	thumb, err := thumbnail.Generate(d.image, maxDimension)
	if err != nil {
		return nil, err
	}

	return &Metadata{
		Width:     d.image.Width,
		Height:    d.image.Height,
		Format:    media.FormatLabel(path),
		Thumbnail: thumb.DataURL,
		Handle:    string(d.handle),
	}, nil
}

// LoadImages loads every path in parallel and returns the results in input
// order. The first failure cancels the remaining work and is returned alone.
func (s *Service) LoadImages(ctx context.Context, paths []string, maxDimension int) (results []*Metadata, err error) {
	defer observe("load_images", time.Now(), &err)

	if maxDimension <= 0 {
		return nil, thumbnail.ErrInvalidMaxDimension
	}

	results = make([]*Metadata, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers.ForBatch(len(paths), s.maxWorkers))

	for i, path := range paths {
		g.Go(func() error {
			if err := s.monitor.WaitIfPaused(ctx); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			md, err := s.loadImage(path, maxDimension)
			if err != nil {
				return err
			}
			results[i] = md
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// LoadFullImage returns the raw file bytes as a data URL. The file is not
// decoded.
func (s *Service) LoadFullImage(path string) (dataURL string, err error) {
	defer observe("load_full_image", time.Now(), &err)

	if path == "" {
		return "", errEmptyPath
	}

	data, err := filesystem.ReadFileWithRetry(path, s.retry)
	if err != nil {
		return "", fmt.Errorf("read full image: %w", err)
	}

	return "data:" + s.mimeType(data) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (s *Service) mimeType(data []byte) string {
	if s.legacyMIME {
		return LegacyFullImageMIME
	}
	mediaType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return strings.TrimSpace(mediaType)
}

// ComputeHistogram returns the channel histograms of the image at path.
func (s *Service) ComputeHistogram(path string) (h *histogram.Histogram, err error) {
	defer observe("compute_histogram", time.Now(), &err)

	if path == "" {
		return nil, errEmptyPath
	}

	d, err := s.decode(path)
	if err != nil {
		return nil, err
	}
	return histogram.Compute(d.image), nil
}

// ExportImages copies paths into destination and returns the number copied.
func (s *Service) ExportImages(destination string, paths []string) (n int, err error) {
	defer observe("export_images", time.Now(), &err)

	if destination == "" {
		return 0, errEmptyDestination
	}
	return export.Copy(destination, paths)
}

// CachedImage describes the cache entry behind handle.
func (s *Service) CachedImage(handle string) (entry *CacheEntry, err error) {
	defer observe("cached_image", time.Now(), &err)

	img, err := s.cache.Get(imagecache.Handle(handle))
	if err != nil {
		return nil, err
	}
	return &CacheEntry{
		Handle: handle,
		Width:  img.Width,
		Height: img.Height,
		Format: img.Format,
	}, nil
}

// CacheStats reports cache occupancy and counters.
func (s *Service) CacheStats() imagecache.Stats {
	return s.cache.Stats()
}

// decode returns the cached decode of path when the file is unchanged since
// it was decoded, and otherwise decodes and caches it.
func (s *Service) decode(path string) (decoded, error) {
	info, err := filesystem.StatWithRetry(path, s.retry)
	if err != nil {
		return decoded{}, &media.DecodeError{Path: path, Err: err}
	}

	if d, ok := s.lookup(path, info); ok {
		return d, nil
	}

	v, err, shared := s.decodes.Do(path, func() (interface{}, error) {
		img, err := media.Decode(path)
		if err != nil {
			return nil, err
		}
		handle := s.cache.Insert(img)

		s.mu.Lock()
		s.index[path] = indexEntry{handle: handle, size: info.Size(), modTime: info.ModTime()}
		s.mu.Unlock()

		return decoded{image: img, handle: handle}, nil
	})
	if err != nil {
		return decoded{}, err
	}
	if shared {
		logging.Debug("Shared in-flight decode of %s", path)
	}
	return v.(decoded), nil
}

func (s *Service) lookup(path string, info os.FileInfo) (decoded, bool) {
	s.mu.Lock()
	entry, ok := s.index[path]
	s.mu.Unlock()

	if !ok || entry.size != info.Size() || !entry.modTime.Equal(info.ModTime()) {
		return decoded{}, false
	}

	img, err := s.cache.Get(entry.handle)
	if err != nil {
		// Evicted
		s.mu.Lock()
		if s.index[path].handle == entry.handle {
			delete(s.index, path)
		}
		s.mu.Unlock()
		return decoded{}, false
	}
	return decoded{image: img, handle: entry.handle}, true
}

func observe(command string, start time.Time, errp *error) {
	result := "ok"
	if *errp != nil {
		result = Kind(*errp)
		logging.Debug("Command %s failed (%s): %v", command, result, *errp)
	}
	metrics.CommandsTotal.WithLabelValues(command, result).Inc()
	metrics.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}
