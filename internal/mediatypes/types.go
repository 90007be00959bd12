package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind is the closed set of media categories the renderer knows how to handle.
type Kind int

const (
	// KindUnknown is any file whose extension is not recognized.
	KindUnknown Kind = iota
	// KindStillImage is a file decoded in-process.
	KindStillImage
	// KindVideo is a file whose preview comes from an extracted frame.
	KindVideo
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindStillImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// kinds maps lower-case extensions (with the leading dot) to their Kind.
var kinds = map[string]Kind{
	// Still images
	".jpg":  KindStillImage,
	".jpeg": KindStillImage,
	".png":  KindStillImage,
	".bmp":  KindStillImage,
	".gif":  KindStillImage,
	".webp": KindStillImage,
	".tiff": KindStillImage,
	".tif":  KindStillImage,

	// Videos
	".mp4":  KindVideo,
	".mkv":  KindVideo,
	".webm": KindVideo,
	".avi":  KindVideo,
	".mov":  KindVideo,
	".m4v":  KindVideo,
	".wmv":  KindVideo,
	".flv":  KindVideo,
	".mpeg": KindVideo,
	".mpg":  KindVideo,
	".3gp":  KindVideo,
	".ts":   KindVideo,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",

	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".m4v":  "video/x-m4v",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",
}

// Classify resolves the Kind of a path from its extension. Matching is
// case-insensitive; the file is not opened.
func Classify(path string) Kind {
	return kinds[strings.ToLower(filepath.Ext(path))]
}

// IsMedia returns true if the path has a recognized image or video extension.
func IsMedia(path string) bool {
	return Classify(path) != KindUnknown
}

// MimeType returns the MIME type for a path.
// Returns "application/octet-stream" if the extension is not recognized.
func MimeType(path string) string {
	if mime, ok := MimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// Extensions returns the recognized extensions of the given kind.
func Extensions(kind Kind) []string {
	var exts []string
	for ext, k := range kinds {
		if k == kind {
			exts = append(exts, ext)
		}
	}
	return exts
}
