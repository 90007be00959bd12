package gallery

import (
	"context"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/loader"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/model"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/preview"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/viewport"
)

// Config groups the settings of the three parts of a gallery.
type Config struct {
	Size     preview.Size
	Pool     loader.Config
	Viewport viewport.Config
}

// DefaultConfig returns the gallery defaults.
func DefaultConfig() Config {
	return Config{
		Size:     preview.DefaultSize,
		Pool:     loader.DefaultConfig(),
		Viewport: viewport.DefaultConfig(),
	}
}

// Gallery wires a preview cache, a render pool and a viewport driver for
// one list view. Run must be running for results to reach the cache.
//
// Render results are written only by Run. Structural changes (LoadFiles,
// Refresh, SetThumbnailSize, Clear) are applied to the cache directly on
// the caller's goroutine; the cache drops any result they made stale.
type Gallery struct {
	cache  *model.Cache
	pool   *loader.Pool
	driver *viewport.Driver
}

// New builds a gallery and starts its workers.
func New(cfg Config, renderer preview.Renderer, view viewport.View) *Gallery {
	cache := model.New(cfg.Size)
	pool := loader.New(renderer, cfg.Pool)
	return &Gallery{
		cache:  cache,
		pool:   pool,
		driver: viewport.New(view, pool, cache, cfg.Viewport),
	}
}

// Cache returns the preview cache for the view to read.
func (g *Gallery) Cache() *model.Cache {
	return g.cache
}

// Pool returns the render pool.
func (g *Gallery) Pool() *loader.Pool {
	return g.pool
}

// Run writes completions into the cache until ctx is done or the pool has
// shut down. It is the only writer of render results; see Gallery for the
// structural changes made by other methods.
func (g *Gallery) Run(ctx context.Context) error {
	completions := g.pool.Completions()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-completions:
			if !ok {
				logging.Debug("Gallery controller stopped: pool closed")
				return nil
			}
			g.cache.OnRenderCompleted(c.Row, c.Path, c.Image)
		}
	}
}

// LoadFiles replaces the rows and loads the visible ones right away.
func (g *Gallery) LoadFiles(paths []string) {
	g.pool.ClearQueue()
	g.cache.SetFilePaths(paths)
	logging.Info("Loaded %d files", len(paths))
	g.driver.LoadVisible()
}

// Refresh drops every preview and renders the visible rows again.
func (g *Gallery) Refresh() {
	g.cache.ClearCache()
	g.pool.ClearQueue()
	g.driver.LoadVisible()
}

// SetThumbnailSize changes the preview size and re-renders the visible rows.
func (g *Gallery) SetThumbnailSize(size preview.Size) {
	if size == g.cache.ThumbnailSize() || !size.Valid() {
		return
	}
	g.pool.ClearQueue()
	g.cache.SetThumbnailSize(size)
	g.driver.LoadVisible()
}

// Scrolled reports a scroll of the view; loading is debounced.
func (g *Gallery) Scrolled() {
	g.driver.Scrolled()
}

// LoadVisible loads the visible rows without waiting for the debounce.
func (g *Gallery) LoadVisible() int {
	return g.driver.LoadVisible()
}

// Clear removes every row.
func (g *Gallery) Clear() {
	g.pool.ClearQueue()
	g.cache.Clear()
}

// Close stops the driver and shuts the pool down. Run returns once the
// pool's workers have exited.
func (g *Gallery) Close() error {
	g.driver.Stop()
	return g.pool.Shutdown()
}
