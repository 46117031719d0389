package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup.
func InitializeMetrics() {
	for _, op := range []string{"stat", "open", "read", "copy"} {
		FilesystemOperationDuration.WithLabelValues(op)
		FilesystemOperationErrors.WithLabelValues(op)
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}

	for _, format := range []string{"jpeg", "png", "gif", "webp", "bmp", "tiff", "vips", "unknown"} {
		DecodesTotal.WithLabelValues(format, "success")
		DecodeDuration.WithLabelValues(format)
	}
	DecodesTotal.WithLabelValues("unknown", "error")

	for _, status := range []string{"success", "error"} {
		VipsFallbackTotal.WithLabelValues(status)
		ExportRequestsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"success", "error_invalid", "error_encode"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
	}
	for _, phase := range []string{"resize", "encode"} {
		ThumbnailGenerationDuration.WithLabelValues(phase)
	}

	commands := []string{"load_image", "load_images", "load_full_image", "compute_histogram", "export_images", "cached_image"}
	results := []string{"ok", "decode", "encode", "export", "not_found", "invalid_argument", "internal"}
	for _, cmd := range commands {
		CommandDuration.WithLabelValues(cmd)
		for _, result := range results {
			CommandsTotal.WithLabelValues(cmd, result)
		}
	}
}
