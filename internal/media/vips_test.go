package media

import (
	"sync"
	"testing"

	"image-viewer/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

// NOTE: govips cannot restart vips after vips.Shutdown() in the same
// process, so the shutdown test runs last in this file.

func TestIsVipsAvailable(t *testing.T) {
	t.Logf("libvips available: %v", IsVipsAvailable())
}

func TestVipsLogLevel(t *testing.T) {
	tests := []struct {
		level logging.LogLevel
		want  vips.LogLevel
	}{
		{logging.LevelDebug, vips.LogLevelInfo},
		{logging.LevelInfo, vips.LogLevelWarning},
		{logging.LevelWarn, vips.LogLevelError},
		{logging.LevelError, vips.LogLevelCritical},
		{logging.LogLevel(99), vips.LogLevelWarning},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := vipsLogLevel(tt.level); got != tt.want {
				t.Errorf("vipsLogLevel(%v) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestInitVipsIdempotency(t *testing.T) {
	if err := InitVips(); err != nil {
		t.Skipf("libvips not available in test environment: %v", err)
	}
	if err := InitVips(); err != nil {
		t.Errorf("second InitVips() call failed: %v", err)
	}
	if !IsVipsAvailable() {
		t.Error("after successful InitVips, IsVipsAvailable should return true")
	}
}

func TestVipsInitializationConcurrency(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = InitVips()
			_ = IsVipsAvailable()
		}()
	}
	wg.Wait()
}

func TestShutdownVips(t *testing.T) {
	ShutdownVips()
	if IsVipsAvailable() {
		t.Error("IsVipsAvailable should return false after ShutdownVips")
	}
	// Second call is a no-op
	ShutdownVips()
}
