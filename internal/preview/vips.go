package preview

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/metrics"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// InitVips initializes the libvips library.
// This should be called once at startup; it is idempotent.
func InitVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return
	}

	// Configure vips logging BEFORE Startup() so it follows LOG_LEVEL
	vipsLogLevel := vips.LogLevelWarning
	switch logging.GetLevel() {
	case logging.LevelDebug:
		vipsLogLevel = vips.LogLevelInfo
	case logging.LevelError:
		vipsLogLevel = vips.LogLevelCritical
	}
	vips.LoggingSettings(bridgeVipsLog, vipsLogLevel)

	// One thread per call: the thumbnail pool already runs several renders
	// in parallel.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
}

func bridgeVipsLog(domain string, level vips.LogLevel, msg string) {
	switch level {
	case vips.LogLevelError, vips.LogLevelCritical:
		logging.Error("[%s] %s", domain, msg)
	case vips.LogLevelWarning:
		logging.Warn("[%s] %s", domain, msg)
	default:
		logging.Debug("[%s] %s", domain, msg)
	}
}

// ShutdownVips cleans up libvips resources
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// loadWithVips decodes path with libvips, shrinking during decode to roughly
// the target box. The result still goes through Letterbox for exact geometry.
func loadWithVips(path string, size Size) (image.Image, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("libvips not available")
	}

	// Truncated or corrupt input must fail here instead of yielding a
	// partially decoded image.
	params := vips.NewImportParams()
	params.FailOnError.Set(true)

	ref, err := vips.LoadImageFromFile(path, params)
	if err != nil {
		metrics.VipsDecodesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	logging.Debug("Vips loaded %s: %dx%d, shrinking to %s",
		filepath.Base(path), ref.Width(), ref.Height(), size)

	if err := ref.Thumbnail(size.Width, size.Height, vips.InterestingNone); err != nil {
		metrics.VipsDecodesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("vips resize failed: %w", err)
	}

	// PNG keeps the alpha channel that the letterbox canvas relies on
	imgBytes, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		metrics.VipsDecodesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("vips export failed: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		metrics.VipsDecodesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode vips output: %w", err)
	}

	metrics.VipsDecodesTotal.WithLabelValues("success").Inc()
	return img, nil
}
