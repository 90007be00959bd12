// Package mediatypes classifies dataset files by extension.
//
// It is a dependency-free foundation imported by the renderer, the library
// scanner and the CLI without creating import cycles.
//
// # Kinds
//
// Every path resolves to exactly one Kind:
//
//	mediatypes.KindStillImage // decoded in-process (jpg, png, webp, ...)
//	mediatypes.KindVideo      // preview taken from an extracted frame
//	mediatypes.KindUnknown    // never previewed
//
// Resolve the kind once and switch on it:
//
//	switch mediatypes.Classify(path) {
//	case mediatypes.KindStillImage:
//	    // decode
//	case mediatypes.KindVideo:
//	    // extract a frame
//	default:
//	    // placeholder
//	}
package mediatypes
