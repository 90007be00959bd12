// Package config loads the thumbnail settings.
//
// Values are layered: built-in defaults, then an optional TOML file, then
// environment variables (THUMBNAIL_SIZE, RENDER_TIMEOUT, SHUTDOWN_TIMEOUT,
// VIDEO_FRAME_OFFSET, FFMPEG_PATH, USE_VIPS, SCROLL_DEBOUNCE,
// VIEWPORT_BUFFER, METRICS_ADDR, LOG_LEVEL). The worker count falls back to
// THUMBNAIL_WORKERS through the workers package when the file leaves it at 0.
package config
