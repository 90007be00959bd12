package preview

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Size is a thumbnail bounding box in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is the thumbnail size of the dataset list.
var DefaultSize = Size{Width: 180, Height: 100}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// ParseSize parses "WIDTHxHEIGHT", e.g. "180x100".
func ParseSize(value string) (Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return Size{}, fmt.Errorf("invalid size %q: want WIDTHxHEIGHT", value)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: width: %w", value, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: height: %w", value, err)
	}
	size := Size{Width: width, Height: height}
	if !size.Valid() {
		return Size{}, fmt.Errorf("invalid size %q: dimensions must be positive", value)
	}
	return size, nil
}

// Outcome classifies how a preview was produced.
type Outcome int

const (
	// OutcomeRendered is a decoded, scaled preview of the file.
	OutcomeRendered Outcome = iota
	// OutcomeDecodeFailed is a recognized still image that could not be decoded.
	OutcomeDecodeFailed
	// OutcomeVideoUnavailable is a recognized video whose frame could not be
	// extracted (missing ffmpeg, bad stream or timeout).
	OutcomeVideoUnavailable
	// OutcomeUnsupported is a file type that is never previewed.
	OutcomeUnsupported
)

// String returns the metric label of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeRendered:
		return "rendered"
	case OutcomeDecodeFailed:
		return "decode_failed"
	case OutcomeVideoUnavailable:
		return "video_unavailable"
	case OutcomeUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Retryable reports whether another attempt could produce a different
// result. Unsupported files never will; failed decodes might after the file
// changes on disk.
func (o Outcome) Retryable() bool {
	return o == OutcomeDecodeFailed || o == OutcomeVideoUnavailable
}

// Image is a displayable preview. Bitmap is always exactly the requested
// size, whether it holds a real thumbnail or a placeholder.
type Image struct {
	Bitmap  *image.NRGBA
	Outcome Outcome
}

// IsPlaceholder reports whether the image is a synthesized stand-in.
func (img *Image) IsPlaceholder() bool {
	return img.Outcome != OutcomeRendered
}

// Size returns the bitmap dimensions.
func (img *Image) Size() Size {
	b := img.Bitmap.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}
