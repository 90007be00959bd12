package preview

import (
	"context"
	"time"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/mediatypes"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/metrics"
)

// Renderer produces a preview for one file. Implementations must be safe
// for concurrent use and must always return an image of exactly size; a
// failure is reported through the placeholder outcome, never as nil.
type Renderer interface {
	Render(ctx context.Context, path string, size Size) *Image
}

// RendererConfig tunes FileRenderer.
type RendererConfig struct {
	// RenderTimeout bounds a single render. Zero disables the limit.
	RenderTimeout time.Duration
	// VideoFrameOffset is where the video frame is taken from.
	VideoFrameOffset time.Duration
	// FFmpegPath is the ffmpeg binary, looked up in PATH when bare.
	FFmpegPath string
	// UseVips decodes still images with libvips when it is initialized.
	UseVips bool
}

// DefaultRendererConfig returns the renderer defaults.
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		RenderTimeout:    30 * time.Second,
		VideoFrameOffset: time.Second,
		FFmpegPath:       "ffmpeg",
		UseVips:          true,
	}
}

// FileRenderer renders previews from files on disk. Still images are decoded
// in-process (or by libvips); videos go through ffmpeg.
type FileRenderer struct {
	config RendererConfig
}

// NewFileRenderer creates a renderer with cfg. An empty FFmpegPath falls back
// to the default.
func NewFileRenderer(cfg RendererConfig) *FileRenderer {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = DefaultRendererConfig().FFmpegPath
	}
	return &FileRenderer{config: cfg}
}

// Render implements Renderer.
func (r *FileRenderer) Render(ctx context.Context, path string, size Size) *Image {
	if !size.Valid() {
		size = DefaultSize
	}

	kind := mediatypes.Classify(path)
	start := time.Now()

	result := r.render(ctx, kind, path, size)

	metrics.RendersTotal.WithLabelValues(kind.String(), result.Outcome.String()).Inc()
	metrics.RenderDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
	return result
}

func (r *FileRenderer) render(ctx context.Context, kind mediatypes.Kind, path string, size Size) *Image {
	if kind == mediatypes.KindUnknown {
		logging.Debug("No preview for unsupported file %s", path)
		return Placeholder(OutcomeUnsupported, size)
	}

	if r.config.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.RenderTimeout)
		defer cancel()
	}

	switch kind {
	case mediatypes.KindVideo:
		frame, err := r.extractFrame(ctx, path)
		if err != nil {
			logging.Warn("Video preview unavailable for %s: %v", path, err)
			return Placeholder(OutcomeVideoUnavailable, size)
		}
		return &Image{Bitmap: Letterbox(frame, size), Outcome: OutcomeRendered}

	default:
		img, err := r.decodeStill(ctx, path, size)
		if err != nil {
			logging.Warn("Failed to decode %s: %v", path, err)
			return Placeholder(OutcomeDecodeFailed, size)
		}
		return &Image{Bitmap: Letterbox(img, size), Outcome: OutcomeRendered}
	}
}
