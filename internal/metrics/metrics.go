package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_viewer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_viewer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Decoder metrics
var (
	DecodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_decodes_total",
			Help: "Total number of image decodes by container format and status",
		},
		[]string{"format", "status"},
	)

	DecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_viewer_decode_duration_seconds",
			Help:    "Image decode duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"format"},
	)

	DecodedPixels = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_viewer_decoded_pixels",
			Help:    "Pixel count (width * height) of decoded images",
			Buckets: prometheus.ExponentialBuckets(1<<16, 4, 8),
		},
	)

	VipsFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_vips_fallback_total",
			Help: "Decodes handed to libvips because no Go codec recognized the file",
		},
		[]string{"status"},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_viewer_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds by phase",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"phase"},
	)

	ThumbnailBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_viewer_thumbnail_bytes",
			Help:    "Size of encoded JPEG thumbnails in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
		},
	)
)

// Histogram engine metrics
var (
	HistogramComputationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_histogram_computations_total",
			Help: "Total number of full-frame histogram computations",
		},
	)

	HistogramDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_viewer_histogram_duration_seconds",
			Help:    "Histogram computation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// Image cache metrics
var (
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_viewer_cache_entries",
			Help: "Number of decoded images resident in the cache",
		},
	)

	CacheBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_viewer_cache_bytes",
			Help: "Resident pixel bytes held by the cache",
		},
	)

	CacheBudgetBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_viewer_cache_budget_bytes",
			Help: "Configured cache byte budget (0 = unbounded)",
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_cache_hits_total",
			Help: "Total number of cache lookups that found an entry",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_cache_misses_total",
			Help: "Total number of cache lookups for unknown or evicted handles",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_cache_evictions_total",
			Help: "Total number of entries evicted to stay within budget",
		},
	)
)

// Export metrics
var (
	ExportRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_export_requests_total",
			Help: "Total number of export commands by status",
		},
		[]string{"status"},
	)

	ExportFilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_export_files_total",
			Help: "Total number of files copied by export commands",
		},
	)

	ExportBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_export_bytes_total",
			Help: "Total number of bytes copied by export commands",
		},
	)
)

// Command metrics
var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_commands_total",
			Help: "Total number of pipeline commands by command and result kind",
		},
		[]string{"command", "result"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_viewer_command_duration_seconds",
			Help:    "Pipeline command duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_viewer_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations including retries",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_filesystem_retry_attempts_total",
			Help: "Total number of retries after a stale NFS file handle",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_filesystem_retry_success_total",
			Help: "Total number of operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_filesystem_retry_failures_total",
			Help: "Total number of operations that failed after exhausting retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors observed",
		},
		[]string{"operation"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_viewer_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_viewer_memory_paused",
			Help: "Whether batch work is paused due to memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_memory_gc_pauses_total",
			Help: "Total number of forced GCs triggered by critical memory usage",
		},
	)
)

// AppInfo exposes build information as labels
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "image_viewer_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)
