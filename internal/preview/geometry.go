package preview

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// FitSize returns the largest size with the source aspect ratio that fits
// inside box. Sources smaller than the box are scaled up. Both dimensions
// are at least 1 for a non-empty source.
func FitSize(srcWidth, srcHeight int, box Size) (int, int) {
	if srcWidth <= 0 || srcHeight <= 0 || !box.Valid() {
		return 0, 0
	}

	// Scale to the box height first and fall back to the box width when
	// that overflows horizontally.
	w := int(int64(box.Height) * int64(srcWidth) / int64(srcHeight))
	h := box.Height
	if w > box.Width {
		w = box.Width
		h = int(int64(box.Width) * int64(srcHeight) / int64(srcWidth))
	}

	return max(w, 1), max(h, 1)
}

// Letterbox scales src to fit size preserving its aspect ratio and centers
// it on a transparent canvas of exactly size.
func Letterbox(src image.Image, size Size) *image.NRGBA {
	b := src.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), size)

	canvas := imaging.New(size.Width, size.Height, color.NRGBA{})
	if w == 0 || h == 0 {
		return canvas
	}

	scaled := imaging.Resize(src, w, h, imaging.Lanczos)
	return imaging.PasteCenter(canvas, scaled)
}
