package startup

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"image-viewer/internal/logging"
	"image-viewer/internal/memory"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	ListenAddr          string
	Port                string
	MetricsPort         string
	MetricsEnabled      bool
	LogHealthChecks     bool
	CacheMaxBytes       int64
	CacheMaxEntries     int
	CacheStatsInterval  time.Duration
	LegacyFullImageMIME bool
	VipsEnabled         bool
}

// Addr returns the command server listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ListenAddr, c.Port)
}

// MetricsAddr returns the metrics server listen address.
func (c *Config) MetricsAddr() string {
	return net.JoinHostPort(c.ListenAddr, c.MetricsPort)
}

// LoadConfig loads and validates configuration from environment variables.
// defaultCacheBytes is used when CACHE_MAX_BYTES is unset.
func LoadConfig(defaultCacheBytes int64) (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	listenAddr := getEnv("LISTEN_ADDR", "127.0.0.1")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	legacyMIME := getEnvBool("FULL_IMAGE_LEGACY_MIME", false)
	vipsEnabled := getEnvBool("VIPS_ENABLED", false)
	statsIntervalStr := getEnv("CACHE_STATS_INTERVAL", "1m")

	cacheMaxBytes, err := getEnvInt64("CACHE_MAX_BYTES", defaultCacheBytes)
	if err != nil {
		return nil, err
	}
	cacheMaxEntries, err := getEnvInt64("CACHE_MAX_ENTRIES", 0)
	if err != nil {
		return nil, err
	}
	if cacheMaxBytes < 0 || cacheMaxEntries < 0 {
		return nil, fmt.Errorf("cache budgets must not be negative (CACHE_MAX_BYTES=%d, CACHE_MAX_ENTRIES=%d)",
			cacheMaxBytes, cacheMaxEntries)
	}

	for name, value := range map[string]string{"PORT": port, "METRICS_PORT": metricsPort} {
		if _, err := strconv.ParseUint(value, 10, 16); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	statsInterval, err := time.ParseDuration(statsIntervalStr)
	if err != nil || statsInterval <= 0 {
		logging.Warn("  Invalid CACHE_STATS_INTERVAL, using default: 1m")
		statsInterval = time.Minute
	}

	logging.Info("  LISTEN_ADDR:            %s", listenAddr)
	logging.Info("  PORT:                   %s", port)
	logging.Info("  METRICS_PORT:           %s", metricsPort)
	logging.Info("  METRICS_ENABLED:        %v", metricsEnabled)
	logging.Info("  CACHE_MAX_BYTES:        %s", budgetString(cacheMaxBytes, memory.FormatBytes(cacheMaxBytes)))
	logging.Info("  CACHE_MAX_ENTRIES:      %s", budgetString(cacheMaxEntries, strconv.FormatInt(cacheMaxEntries, 10)))
	logging.Info("  CACHE_STATS_INTERVAL:   %s", statsInterval)
	logging.Info("  FULL_IMAGE_LEGACY_MIME: %v", legacyMIME)
	logging.Info("  VIPS_ENABLED:           %v", vipsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:      %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:              %s", logging.GetLevel())

	if ip := net.ParseIP(listenAddr); ip != nil && !ip.IsLoopback() {
		logging.Warn("  LISTEN_ADDR %s is not a loopback address; commands accept arbitrary file paths", listenAddr)
	}

	config := &Config{
		ListenAddr:          listenAddr,
		Port:                port,
		MetricsPort:         metricsPort,
		MetricsEnabled:      metricsEnabled,
		LogHealthChecks:     logHealthChecks,
		CacheMaxBytes:       cacheMaxBytes,
		CacheMaxEntries:     int(cacheMaxEntries),
		CacheStatsInterval:  statsInterval,
		LegacyFullImageMIME: legacyMIME,
		VipsEnabled:         vipsEnabled,
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    libvips fallback:  %s", enabledString(config.VipsEnabled))
	logging.Info("    Metrics:           %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func budgetString(n int64, formatted string) string {
	if n == 0 {
		return "unbounded"
	}
	return formatted
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogMemoryConfig logs how the Go memory limit and cache budget were derived.
func LogMemoryConfig(result memory.ConfigResult, cacheBudget int64) {
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY")
	logging.Info("------------------------------------------------------------")
	if !result.Configured {
		logging.Info("  GOMEMLIMIT:      not configured")
	} else {
		logging.Info("  GOMEMLIMIT:      %s (source: %s)", memory.FormatBytes(result.GoMemLimit), result.Source)
		if result.ContainerLimit > 0 {
			logging.Info("  MEMORY_LIMIT:    %s (ratio %.2f)", memory.FormatBytes(result.ContainerLimit), result.Ratio)
		}
	}
	logging.Info("  Default cache:   %s", memory.FormatBytes(cacheBudget))
	logging.Info("")
}

// LogVipsInit logs the outcome of libvips initialization.
func LogVipsInit(enabled bool, err error) {
	switch {
	case !enabled:
		logging.Info("  libvips fallback disabled (set VIPS_ENABLED=true to enable)")
	case err != nil:
		logging.Warn("  libvips initialization failed, continuing without fallback: %v", err)
	default:
		logging.Info("  [OK] libvips fallback ready")
	}
}

// LogCacheInit logs the configured cache budgets.
func LogCacheInit(maxBytes int64, maxEntries int) {
	logging.Info("  [OK] Image cache ready (bytes: %s, entries: %s)",
		budgetString(maxBytes, memory.FormatBytes(maxBytes)),
		budgetString(int64(maxEntries), strconv.Itoa(maxEntries)))
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Addr            string
	MetricsAddr     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Commands:      http://%s/api", config.Addr)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://%s/metrics", config.MetricsAddr)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____                              _    ___
   /  _/___ ___  ____ _____ ____     | |  / (_)__ _      _____  _____
   / // __ '__ \/ __ '/ __ '/ _ \    | | / / / _ \ | /| / / _ \/ ___/
 _/ // / / / / / /_/ / /_/ /  __/    | |/ / /  __/ |/ |/ /  __/ /
/___/_/ /_/ /_/\__,_/\__, /\___/     |___/_/\___/|__/|__/\___/_/
                    /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
	}

	logging.Info("")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}
