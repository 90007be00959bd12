package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/gallery"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/loader"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/preview"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/viewport"

	"github.com/pelletier/go-toml/v2"
)

// Thumbnails configures rendering and the worker pool.
type Thumbnails struct {
	Size             string `toml:"size"`
	Workers          int    `toml:"workers"` // 0 = automatic
	RenderTimeout    string `toml:"render_timeout"`
	ShutdownTimeout  string `toml:"shutdown_timeout"`
	VideoFrameOffset string `toml:"video_frame_offset"`
	FFmpegPath       string `toml:"ffmpeg_path"`
	UseVips          bool   `toml:"use_vips"`
}

// Viewport configures scroll-driven loading.
type Viewport struct {
	Debounce string `toml:"debounce"`
	Buffer   int    `toml:"buffer"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Addr string `toml:"addr"` // empty disables the endpoint
}

// Logging configures the log level.
type Logging struct {
	Level string `toml:"level"`
}

// Config is the complete configuration. Durations are Go duration strings
// ("500ms", "30s"); Validate parses them.
type Config struct {
	Thumbnails Thumbnails `toml:"thumbnails"`
	Viewport   Viewport   `toml:"viewport"`
	Metrics    Metrics    `toml:"metrics"`
	Logging    Logging    `toml:"logging"`

	size             preview.Size
	renderTimeout    time.Duration
	shutdownTimeout  time.Duration
	videoFrameOffset time.Duration
	debounce         time.Duration
	level            logging.LogLevel
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Thumbnails: Thumbnails{
			Size:             preview.DefaultSize.String(),
			RenderTimeout:    "30s",
			ShutdownTimeout:  "1s",
			VideoFrameOffset: "1s",
			FFmpegPath:       "ffmpeg",
			UseVips:          true,
		},
		Viewport: Viewport{
			Debounce: "500ms",
			Buffer:   10,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the TOML file at path when
// path is not empty, then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decodeFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file).DisallowUnknownFields()
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// applyEnv overrides file values with environment variables. Worker count
// is left to the workers package, which reads THUMBNAIL_WORKERS itself.
func (c *Config) applyEnv() {
	c.Thumbnails.Size = getEnv("THUMBNAIL_SIZE", c.Thumbnails.Size)
	c.Thumbnails.RenderTimeout = getEnv("RENDER_TIMEOUT", c.Thumbnails.RenderTimeout)
	c.Thumbnails.ShutdownTimeout = getEnv("SHUTDOWN_TIMEOUT", c.Thumbnails.ShutdownTimeout)
	c.Thumbnails.VideoFrameOffset = getEnv("VIDEO_FRAME_OFFSET", c.Thumbnails.VideoFrameOffset)
	c.Thumbnails.FFmpegPath = getEnv("FFMPEG_PATH", c.Thumbnails.FFmpegPath)
	c.Thumbnails.UseVips = getEnvBool("USE_VIPS", c.Thumbnails.UseVips)
	c.Viewport.Debounce = getEnv("SCROLL_DEBOUNCE", c.Viewport.Debounce)
	c.Viewport.Buffer = getEnvInt("VIEWPORT_BUFFER", c.Viewport.Buffer)
	c.Metrics.Addr = getEnv("METRICS_ADDR", c.Metrics.Addr)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
}

// Validate checks every field and caches the parsed values.
func (c *Config) Validate() error {
	var errs []error

	size, err := preview.ParseSize(c.Thumbnails.Size)
	if err != nil {
		errs = append(errs, fmt.Errorf("thumbnails.size: %w", err))
	}
	c.size = size

	if c.Thumbnails.Workers < 0 {
		errs = append(errs, fmt.Errorf("thumbnails.workers must not be negative, got %d", c.Thumbnails.Workers))
	}
	if strings.TrimSpace(c.Thumbnails.FFmpegPath) == "" {
		errs = append(errs, errors.New("thumbnails.ffmpeg_path must not be empty"))
	}

	c.renderTimeout = parseDuration(&errs, "thumbnails.render_timeout", c.Thumbnails.RenderTimeout, true)
	c.shutdownTimeout = parseDuration(&errs, "thumbnails.shutdown_timeout", c.Thumbnails.ShutdownTimeout, false)
	c.videoFrameOffset = parseDuration(&errs, "thumbnails.video_frame_offset", c.Thumbnails.VideoFrameOffset, true)
	c.debounce = parseDuration(&errs, "viewport.debounce", c.Viewport.Debounce, true)

	if c.Viewport.Buffer < 0 {
		errs = append(errs, fmt.Errorf("viewport.buffer must not be negative, got %d", c.Viewport.Buffer))
	}

	level, ok := logging.ParseLevel(c.Logging.Level)
	if !ok {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	c.level = level

	return errors.Join(errs...)
}

func parseDuration(errs *[]error, field, value string, zeroOK bool) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	switch {
	case err != nil:
		*errs = append(*errs, fmt.Errorf("%s: %w", field, err))
	case d < 0 || (d == 0 && !zeroOK):
		*errs = append(*errs, fmt.Errorf("%s must be positive, got %s", field, value))
	}
	return d
}

// ThumbnailSize returns the parsed thumbnail size.
func (c *Config) ThumbnailSize() preview.Size {
	return c.size
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.LogLevel {
	return c.level
}

// RendererConfig returns the settings for preview.NewFileRenderer.
func (c *Config) RendererConfig() preview.RendererConfig {
	return preview.RendererConfig{
		RenderTimeout:    c.renderTimeout,
		VideoFrameOffset: c.videoFrameOffset,
		FFmpegPath:       c.Thumbnails.FFmpegPath,
		UseVips:          c.Thumbnails.UseVips,
	}
}

// GalleryConfig returns the settings for gallery.New.
func (c *Config) GalleryConfig() gallery.Config {
	pool := loader.DefaultConfig()
	if c.Thumbnails.Workers > 0 {
		pool.Workers = c.Thumbnails.Workers
	}
	pool.ShutdownTimeout = c.shutdownTimeout

	return gallery.Config{
		Size: c.size,
		Pool: pool,
		Viewport: viewport.Config{
			Debounce: c.debounce,
			Buffer:   c.Viewport.Buffer,
		},
	}
}

// Log prints the effective configuration.
func (c *Config) Log() {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  THUMBNAIL_SIZE:      %s", c.size)
	if c.Thumbnails.Workers > 0 {
		logging.Info("  THUMBNAIL_WORKERS:   %d", c.Thumbnails.Workers)
	} else {
		logging.Info("  THUMBNAIL_WORKERS:   auto (%d)", loader.DefaultConfig().Workers)
	}
	logging.Info("  RENDER_TIMEOUT:      %v", c.renderTimeout)
	logging.Info("  SHUTDOWN_TIMEOUT:    %v", c.shutdownTimeout)
	logging.Info("  VIDEO_FRAME_OFFSET:  %v", c.videoFrameOffset)
	logging.Info("  FFMPEG_PATH:         %s", c.Thumbnails.FFmpegPath)
	logging.Info("  USE_VIPS:            %v", c.Thumbnails.UseVips)
	logging.Info("  SCROLL_DEBOUNCE:     %v", c.debounce)
	logging.Info("  VIEWPORT_BUFFER:     %d", c.Viewport.Buffer)
	if c.Metrics.Addr != "" {
		logging.Info("  METRICS_ADDR:        %s", c.Metrics.Addr)
	} else {
		logging.Info("  METRICS_ADDR:        DISABLED")
	}
	logging.Info("  LOG_LEVEL:           %s", c.level)
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

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
