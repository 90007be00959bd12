package preview

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/filesystem"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // WebP format support
)

// MaxImagePixels is the largest source the in-process decoder accepts.
// Bigger files go through libvips when available and fail otherwise.
const MaxImagePixels = 50_000_000

// decodeResult carries a decode across the goroutine boundary.
type decodeResult struct {
	img image.Image
	err error
}

// decodeStill decodes path into an image ready for Letterbox. The decode
// runs in its own goroutine so ctx can bound it; an abandoned decode
// finishes in the background and its result is dropped.
func (r *FileRenderer) decodeStill(ctx context.Context, path string, size Size) (image.Image, error) {
	done := make(chan decodeResult, 1)
	go func() {
		img, err := r.loadStill(path, size)
		done <- decodeResult{img: img, err: err}
	}()

	select {
	case res := <-done:
		return res.img, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), ctx.Err())
	}
}

func (r *FileRenderer) loadStill(path string, size Size) (image.Image, error) {
	if r.config.UseVips && IsVipsAvailable() {
		img, err := loadWithVips(path, size)
		if err == nil {
			return img, nil
		}
		logging.Debug("Vips decode failed for %s: %v, falling back to Go decoder", path, err)
	}

	pixels, err := imagePixels(path)
	if err != nil {
		return nil, err
	}
	if pixels > MaxImagePixels {
		return nil, fmt.Errorf("image %s too large to decode in-process (%d pixels)", filepath.Base(path), pixels)
	}

	return decodeImageFile(path)
}

// imagePixels reads only the header of path.
func imagePixels(path string) (int, error) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, fmt.Errorf("read image header: %w", err)
	}

	logging.Debug("Image %s header: %s %dx%d", filepath.Base(path), format, cfg.Width, cfg.Height)
	return cfg.Width * cfg.Height, nil
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
