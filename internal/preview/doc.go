// Package preview turns dataset files into fixed-size thumbnail bitmaps.
//
// Every render yields an Image of exactly the requested Size:
//   - Still images: decoded (libvips when available, Go decoders otherwise),
//     scaled to fit and centered on a transparent canvas
//   - Videos: one frame extracted with FFmpeg, then letterboxed the same way
//   - Anything else, or a failed decode: a coloured placeholder whose
//     Outcome tells the caller what happened
package preview
