package preview

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder colours. The UI and tests tell outcomes apart by these.
var (
	// PendingColor fills rows that have no result yet.
	PendingColor = color.NRGBA{R: 0xa0, G: 0xa0, B: 0xa4, A: 0xff}
	// DecodeFailedColor marks a recognized image that failed to decode.
	DecodeFailedColor = color.NRGBA{R: 0xb0, G: 0x30, B: 0x30, A: 0xff}
	// VideoUnavailableColor marks a video whose frame could not be extracted.
	VideoUnavailableColor = color.NRGBA{R: 0x20, G: 0x30, B: 0x60, A: 0xff}
	// UnsupportedColor marks a file type that is never previewed.
	UnsupportedColor = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

	markerColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// VideoMarker is the text drawn on the video placeholder.
const VideoMarker = "VIDEO"

// Placeholder builds the stand-in bitmap for a non-rendered outcome.
func Placeholder(outcome Outcome, size Size) *Image {
	var bitmap *image.NRGBA
	switch outcome {
	case OutcomeDecodeFailed:
		bitmap = imaging.New(size.Width, size.Height, DecodeFailedColor)
	case OutcomeVideoUnavailable:
		bitmap = imaging.New(size.Width, size.Height, VideoUnavailableColor)
		drawMarker(bitmap, VideoMarker)
	default:
		outcome = OutcomeUnsupported
		bitmap = imaging.New(size.Width, size.Height, UnsupportedColor)
	}
	return &Image{Bitmap: bitmap, Outcome: outcome}
}

// Pending returns the bitmap shown for rows that have not been rendered.
func Pending(size Size) *image.NRGBA {
	return imaging.New(size.Width, size.Height, PendingColor)
}

// drawMarker centers text on dst. Text that does not fit is skipped; the
// fill colour alone still identifies the placeholder.
func drawMarker(dst *image.NRGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(markerColor),
		Face: face,
	}

	b := dst.Bounds()
	width := d.MeasureString(text).Ceil()
	height := face.Height
	if width > b.Dx() || height > b.Dy() {
		return
	}

	x := b.Min.X + (b.Dx()-width)/2
	y := b.Min.Y + (b.Dy()-height)/2 + face.Ascent
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
