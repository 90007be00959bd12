package viewport

import (
	"sync"
	"time"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/loader"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/metrics"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/preview"
)

// View reports which rows are on screen. ok is false when nothing is
// visible, e.g. an empty or hidden list.
type View interface {
	VisibleRange() (first, last int, ok bool)
}

// Loader is the part of the pool the driver submits to.
type Loader interface {
	ClearQueue() int
	RequestBatch(reqs []loader.Request) int
}

// Rows is the part of the cache the driver reads.
type Rows interface {
	RowCount() int
	FilePathAt(row int) string
	IsRendered(row int) bool
	ThumbnailSize() preview.Size
}

// Config configures a Driver.
type Config struct {
	// Debounce is the quiet period after the last scroll before loading.
	Debounce time.Duration
	// Buffer is how many rows beyond each edge of the view are loaded.
	Buffer int
}

// DefaultConfig returns the driver defaults.
func DefaultConfig() Config {
	return Config{
		Debounce: 500 * time.Millisecond,
		Buffer:   10,
	}
}

// Driver turns scrolling into render requests for the rows around the view.
type Driver struct {
	view   View
	loader Loader
	rows   Rows
	config Config

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New creates a driver. A negative buffer is treated as zero.
func New(view View, l Loader, rows Rows, cfg Config) *Driver {
	if cfg.Buffer < 0 {
		cfg.Buffer = 0
	}
	return &Driver{
		view:   view,
		loader: l,
		rows:   rows,
		config: cfg,
	}
}

// Scrolled restarts the debounce timer. LoadVisible runs once the view has
// been still for the debounce period.
func (d *Driver) Scrolled() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.config.Debounce, d.settle)
		return
	}
	d.timer.Reset(d.config.Debounce)
}

func (d *Driver) settle() {
	d.mu.Lock()
	stopped := d.stopped
	d.mu.Unlock()

	if !stopped {
		d.LoadVisible()
	}
}

// LoadVisible requests every unrendered row in the visible range plus the
// buffer. The pool queue is cleared first so rows that scrolled away are
// not rendered ahead of the new ones. It returns the number of rows
// requested.
func (d *Driver) LoadVisible() int {
	first, last, ok := d.view.VisibleRange()
	if !ok {
		return 0
	}

	start, end, ok := Window(first, last, d.config.Buffer, d.rows.RowCount())
	if !ok {
		return 0
	}

	d.loader.ClearQueue()
	metrics.ViewportSettlesTotal.Inc()

	size := d.rows.ThumbnailSize()
	reqs := make([]loader.Request, 0, end-start+1)
	for row := start; row <= end; row++ {
		if d.rows.IsRendered(row) {
			continue
		}
		path := d.rows.FilePathAt(row)
		if path == "" {
			continue
		}
		reqs = append(reqs, loader.Request{Row: row, Path: path, Size: size})
	}

	if len(reqs) == 0 {
		return 0
	}
	queued := d.loader.RequestBatch(reqs)
	logging.Debug("Viewport rows %d-%d: requested %d previews, %d queued", start, end, len(reqs), queued)
	return len(reqs)
}

// Stop cancels a pending debounce. Later scrolls are ignored.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Window returns the inclusive row range [first-buffer, last+buffer]
// clamped to rowCount. ok is false when the range is empty.
func Window(first, last, buffer, rowCount int) (start, end int, ok bool) {
	if rowCount <= 0 || last < first {
		return 0, 0, false
	}
	start = max(first-buffer, 0)
	end = min(last+buffer, rowCount-1)
	if start > end {
		return 0, 0, false
	}
	return start, end, true
}
