package model

import (
	"image"
	"sync"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/metrics"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/preview"
)

// Observer is notified of cache changes. Calls are made without the cache
// lock held, on the goroutine that made the change.
//
// Notifications from different goroutines are not ordered: a RowChanged
// from a completion may arrive after a RowsReset that already replaced the
// row. A notification only says where to look; read the current state
// through Result or Preview.
type Observer interface {
	// RowsReset means the row set or every preview changed.
	RowsReset()
	// RowChanged means only the preview of row changed.
	RowChanged(row int)
}

type entry struct {
	path    string
	preview *preview.Image
}

// Cache holds the file list and the latest preview per row. Readers may be
// on any goroutine; completions should come from a single writer.
type Cache struct {
	mu        sync.RWMutex
	rows      []entry
	size      preview.Size
	pending   *image.NRGBA
	observers []Observer
}

// New creates an empty cache producing previews of size.
func New(size preview.Size) *Cache {
	if !size.Valid() {
		size = preview.DefaultSize
	}
	return &Cache{
		size:    size,
		pending: preview.Pending(size),
	}
}

// AddObserver registers o for change notifications.
func (c *Cache) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// SetFilePaths replaces the row list. Every row starts without a preview.
func (c *Cache) SetFilePaths(paths []string) {
	c.mu.Lock()
	rows := make([]entry, len(paths))
	for i, path := range paths {
		rows[i].path = path
	}
	c.rows = rows
	observers := c.observers
	c.mu.Unlock()

	logging.Debug("Preview cache reset with %d rows", len(paths))
	for _, o := range observers {
		o.RowsReset()
	}
}

// Clear removes every row.
func (c *Cache) Clear() {
	c.SetFilePaths(nil)
}

// RowCount returns the number of rows.
func (c *Cache) RowCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// FilePathAt returns the path of row, or "" when row is out of range.
func (c *Cache) FilePathAt(row int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if row < 0 || row >= len(c.rows) {
		return ""
	}
	return c.rows[row].path
}

// IsRendered reports whether row holds a result, placeholder or not.
func (c *Cache) IsRendered(row int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if row < 0 || row >= len(c.rows) {
		return false
	}
	return c.rows[row].preview != nil
}

// OnRenderCompleted stores img for row. Completions can outlive the row
// they were requested for, so the result is dropped when row is out of
// range, when the row now holds a different file, or when the thumbnail
// size changed since the request. It reports whether img was stored.
//
// A late result for a row that is still valid but off screen is kept.
func (c *Cache) OnRenderCompleted(row int, path string, img *preview.Image) bool {
	if img == nil {
		return false
	}

	c.mu.Lock()
	switch {
	case row < 0 || row >= len(c.rows):
		n := len(c.rows)
		c.mu.Unlock()
		logging.Debug("Dropping preview for row %d: only %d rows", row, n)
		metrics.CacheCompletionsTotal.WithLabelValues("out_of_range").Inc()
		return false
	case c.rows[row].path != path:
		c.mu.Unlock()
		logging.Debug("Dropping stale preview for row %d (%s)", row, path)
		metrics.CacheCompletionsTotal.WithLabelValues("stale_path").Inc()
		return false
	case img.Size() != c.size:
		c.mu.Unlock()
		logging.Debug("Dropping %s preview for row %d: size is now %s", img.Size(), row, c.size)
		metrics.CacheCompletionsTotal.WithLabelValues("stale_size").Inc()
		return false
	}

	c.rows[row].preview = img
	observers := c.observers
	c.mu.Unlock()

	metrics.CacheCompletionsTotal.WithLabelValues("stored").Inc()
	for _, o := range observers {
		o.RowChanged(row)
	}
	return true
}

// ClearCache forgets every preview but keeps the rows.
func (c *Cache) ClearCache() {
	c.mu.Lock()
	for i := range c.rows {
		c.rows[i].preview = nil
	}
	observers := c.observers
	c.mu.Unlock()

	for _, o := range observers {
		o.RowsReset()
	}
}

// Preview returns the bitmap to display for row: its result, or the pending
// placeholder when it has none. It returns nil when row is out of range.
func (c *Cache) Preview(row int) *image.NRGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if row < 0 || row >= len(c.rows) {
		return nil
	}
	if img := c.rows[row].preview; img != nil {
		return img.Bitmap
	}
	return c.pending
}

// Result returns the stored result of row, if any.
func (c *Cache) Result(row int) (*preview.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if row < 0 || row >= len(c.rows) || c.rows[row].preview == nil {
		return nil, false
	}
	return c.rows[row].preview, true
}

// ThumbnailSize returns the size previews are requested at.
func (c *Cache) ThumbnailSize() preview.Size {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// SetThumbnailSize changes the preview size. Existing previews no longer
// match and are cleared.
func (c *Cache) SetThumbnailSize(size preview.Size) {
	if !size.Valid() {
		return
	}

	c.mu.Lock()
	if size == c.size {
		c.mu.Unlock()
		return
	}
	c.size = size
	c.pending = preview.Pending(size)
	for i := range c.rows {
		c.rows[i].preview = nil
	}
	observers := c.observers
	c.mu.Unlock()

	logging.Info("Thumbnail size changed to %s", size)
	for _, o := range observers {
		o.RowsReset()
	}
}

// CacheStats implements metrics.StatsProvider.
func (c *Cache) CacheStats() metrics.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := metrics.CacheStats{
		Rows:     len(c.rows),
		Rendered: make(map[string]int),
	}
	for _, e := range c.rows {
		if e.preview != nil {
			stats.Rendered[e.preview.Outcome.String()]++
		}
	}
	return stats
}
