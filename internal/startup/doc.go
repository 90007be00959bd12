// Package startup handles build information and the startup and shutdown
// log sections of haigaku-thumbs.
//
// Build-time variables are injected via ldflags and exposed via
// [GetBuildInfo]:
//
//	go build -ldflags "-X .../internal/startup.Version=1.2.0" ./cmd/haigaku-thumbs
//
// The log helpers print one framed section per subsystem:
//   - [PrintBanner]: banner, build and system information
//   - [LogRendererInit]: libvips and FFmpeg availability
//   - [LogPoolInit]: worker count and shutdown grace period
//   - [LogMetricsServer]: metrics address and routes (debug level)
//   - [LogShutdownInitiated], [LogShutdownStep], [LogShutdownComplete]
package startup
