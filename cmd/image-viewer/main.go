package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"image-viewer/internal/filesystem"
	"image-viewer/internal/handlers"
	"image-viewer/internal/imagecache"
	"image-viewer/internal/logging"
	"image-viewer/internal/media"
	"image-viewer/internal/memory"
	"image-viewer/internal/metrics"
	"image-viewer/internal/middleware"
	"image-viewer/internal/pipeline"
	"image-viewer/internal/startup"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// Must run before anything allocates heavily
	memResult := memory.ConfigureFromEnv()
	cacheBudget := memory.CacheBudget(memResult)

	config, err := startup.LoadConfig(cacheBudget)
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	startup.LogMemoryConfig(memResult, cacheBudget)

	metrics.InitializeMetrics()
	metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	if config.VipsEnabled {
		err := media.InitVips()
		startup.LogVipsInit(true, err)
		if err == nil {
			defer media.ShutdownVips()
		}
	} else {
		startup.LogVipsInit(false, nil)
	}

	cache := imagecache.New(imagecache.Config{
		MaxBytes:   config.CacheMaxBytes,
		MaxEntries: config.CacheMaxEntries,
	})
	startup.LogCacheInit(config.CacheMaxBytes, config.CacheMaxEntries)

	monitorConfig := memory.DefaultConfig()
	monitorConfig.MemoryLimitBytes = memResult.GoMemLimit
	monitor := memory.NewMonitor(monitorConfig)
	monitor.Start()

	svc := pipeline.New(pipeline.Options{
		Cache:               cache,
		LegacyFullImageMIME: config.LegacyFullImageMIME,
		Monitor:             monitor,
	})

	collector := metrics.NewCollector(cache, config.CacheStatsInterval)
	collector.Start()

	h := handlers.New(svc, monitor)
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	srv := &http.Server{
		Addr:         config.Addr(),
		Handler:      wrapHandler(router, config),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = startMetricsServer(config.MetricsAddr(), h)
	}

	go handleShutdown(srv, metricsSrv, monitor, collector)

	startup.LogServerStarted(startup.ServerConfig{
		Addr:            config.Addr(),
		MetricsAddr:     config.MetricsAddr(),
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.RegisterRoutes(r)
	return r
}

// wrapHandler applies logging outside compression so logged byte counts
// reflect what went over the wire.
func wrapHandler(router http.Handler, config *startup.Config) http.Handler {
	compressed := middleware.Compression(middleware.DefaultCompressionConfig())(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	return middleware.Logger(loggingConfig)(compressed)
}

func startMetricsServer(addr string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()

	return srv
}

func handleShutdown(srv, metricsSrv *http.Server, monitor *memory.Monitor, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping memory monitor")
	monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
