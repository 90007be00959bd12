package loader

import (
	"context"
	"errors"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/metrics"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/preview"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/workers"
)

// ErrShutdownTimeout is returned by Shutdown when workers were still
// rendering after the grace period and had to be cancelled.
var ErrShutdownTimeout = errors.New("thumbnail pool shutdown timed out")

// Request asks for the preview of one row. Rows are the dedup key.
type Request struct {
	Row  int
	Path string
	Size preview.Size
}

// Completion is a finished render. Row may no longer exist by the time the
// completion is read; consumers must check it against their current rows.
type Completion struct {
	Row   int
	Path  string
	Image *preview.Image
}

// Gate holds workers back before each render, e.g. while memory is short.
// Wait must return once ctx is done.
type Gate interface {
	Wait(ctx context.Context)
}

// Config configures a Pool.
type Config struct {
	// Workers is the number of parallel renders. Zero picks
	// workers.ForThumbnails().
	Workers int
	// CompletionBuffer is the capacity of the completion channel. Workers
	// block on a full channel until the consumer catches up.
	CompletionBuffer int
	// ShutdownTimeout bounds how long Shutdown waits for in-flight renders.
	ShutdownTimeout time.Duration
	// Gate is optional.
	Gate Gate
}

// DefaultConfig returns the pool defaults.
func DefaultConfig() Config {
	return Config{
		Workers:          workers.ForThumbnails(),
		CompletionBuffer: 64,
		ShutdownTimeout:  time.Second,
	}
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Workers int
	Idle    int
	Busy    int
	Queued  int
	Pending int
}

// Pool renders previews on a fixed set of workers. Requests wait in a FIFO
// queue and are handed to idle workers as soon as one is free. A row that
// is already queued or rendering is not queued again.
//
// Request methods never block; results arrive on Completions.
type Pool struct {
	renderer preview.Renderer
	config   Config

	// ctx is passed to every render and cancelled when Shutdown gives up.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	queue   []Request
	queued  map[int]struct{}
	pending map[int]struct{}
	idle    []*worker
	busy    map[*worker]Request
	workers []*worker
	closed  bool

	completions chan Completion
	stopping    chan struct{}
	wg          sync.WaitGroup
}

// New starts a pool rendering with renderer.
func New(renderer preview.Renderer, cfg Config) *Pool {
	defaults := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.CompletionBuffer < 0 {
		cfg.CompletionBuffer = 0
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		renderer:    renderer,
		config:      cfg,
		ctx:         ctx,
		cancel:      cancel,
		queued:      make(map[int]struct{}),
		pending:     make(map[int]struct{}),
		busy:        make(map[*worker]Request),
		completions: make(chan Completion, cfg.CompletionBuffer),
		stopping:    make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		w := newWorker()
		p.workers = append(p.workers, w)
		p.idle = append(p.idle, w)
		p.wg.Add(1)
		go p.run(w)
	}

	metrics.PoolWorkers.Set(float64(cfg.Workers))
	p.updateGaugesLocked()
	logging.Info("Thumbnail pool started with %d workers", cfg.Workers)
	return p
}

// Completions delivers finished renders. The channel is closed once every
// worker has exited after Shutdown.
func (p *Pool) Completions() <-chan Completion {
	return p.completions
}

// RequestOne queues a render for req.Row unless that row is already queued
// or rendering. It reports whether the request was queued.
func (p *Pool) RequestOne(req Request) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enqueueLocked(req) {
		return false
	}
	p.dispatchLocked()
	return true
}

// RequestBatch queues every request whose row is not already pending and
// dispatches once. It returns how many were queued.
func (p *Pool) RequestBatch(reqs []Request) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	added := 0
	for _, req := range reqs {
		if p.enqueueLocked(req) {
			added++
		}
	}
	if added > 0 {
		p.dispatchLocked()
	}
	return added
}

func (p *Pool) enqueueLocked(req Request) bool {
	if p.closed || req.Row < 0 {
		metrics.PoolRequestsTotal.WithLabelValues("rejected").Inc()
		return false
	}
	if _, ok := p.pending[req.Row]; ok {
		metrics.PoolRequestsTotal.WithLabelValues("deduplicated").Inc()
		return false
	}

	p.queue = append(p.queue, req)
	p.queued[req.Row] = struct{}{}
	p.pending[req.Row] = struct{}{}
	metrics.PoolRequestsTotal.WithLabelValues("enqueued").Inc()
	return true
}

// ClearQueue drops every request that has not reached a worker and forgets
// all pending rows. Renders already in flight still complete and deliver
// their results. It returns the number of dropped requests.
func (p *Pool) ClearQueue() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	dropped := len(p.queue)
	p.queue = nil
	clear(p.queued)
	clear(p.pending)

	metrics.PoolQueueClearsTotal.Inc()
	metrics.PoolDiscardedRequestsTotal.Add(float64(dropped))
	p.updateGaugesLocked()

	if dropped > 0 {
		logging.Debug("Thumbnail queue cleared, dropped %d requests", dropped)
	}
	return dropped
}

// dispatchLocked hands queued requests to idle workers in FIFO order until
// one of the two runs out.
func (p *Pool) dispatchLocked() {
	for len(p.idle) > 0 && len(p.queue) > 0 {
		req := p.queue[0]
		p.queue[0] = Request{}
		p.queue = p.queue[1:]
		delete(p.queued, req.Row)

		w := p.idle[0]
		p.idle = p.idle[1:]
		p.busy[w] = req

		// Never blocks: an idle worker's slot is empty.
		w.assign <- req
	}
	p.updateGaugesLocked()
}

// finish returns w to the idle set after it delivered req and dispatches
// whatever is waiting.
func (p *Pool) finish(w *worker, req Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.busy, w)
	if p.stillPendingLocked(req.Row) {
		logging.Debug("Row %d was requested again while rendering, keeping it pending", req.Row)
	} else {
		delete(p.pending, req.Row)
	}

	if p.closed {
		p.updateGaugesLocked()
		return
	}
	p.idle = append(p.idle, w)
	p.dispatchLocked()
}

// stillPendingLocked reports whether row has been queued again, or handed
// to another worker, since a clear.
func (p *Pool) stillPendingLocked(row int) bool {
	if _, ok := p.queued[row]; ok {
		return true
	}
	for _, req := range p.busy {
		if req.Row == row {
			return true
		}
	}
	return false
}

func (p *Pool) updateGaugesLocked() {
	metrics.PoolBusyWorkers.Set(float64(len(p.busy)))
	metrics.PoolQueueDepth.Set(float64(len(p.queue)))
	metrics.PoolPendingRows.Set(float64(len(p.pending)))
}

// deliver sends c to the consumer. Once shutdown starts a full channel no
// longer holds the worker back.
func (p *Pool) deliver(c Completion) {
	select {
	case p.completions <- c:
		return
	default:
	}

	select {
	case p.completions <- c:
	case <-p.stopping:
		logging.Debug("Dropping completion for row %d during shutdown", c.Row)
	}
}

// render calls the renderer, turning a panic or a nil result into a
// decode-failed placeholder so one bad file cannot take a worker down.
func (p *Pool) render(w *worker, req Request) (img *preview.Image) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Thumbnail worker %s panicked rendering %s: %v\n%s", w.id, req.Path, r, debug.Stack())
			img = preview.Placeholder(preview.OutcomeDecodeFailed, req.Size)
		}
	}()

	img = p.renderer.Render(p.ctx, req.Path, req.Size)
	if img == nil {
		logging.Warn("Renderer returned no image for %s", req.Path)
		img = preview.Placeholder(preview.OutcomeDecodeFailed, req.Size)
	}
	return img
}

// Shutdown stops accepting requests, drops the queue and waits for
// in-flight renders. Renders still running after the configured timeout are
// cancelled and ErrShutdownTimeout is returned. Calling Shutdown again is a
// no-op.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	dropped := len(p.queue)
	p.queue = nil
	clear(p.queued)
	clear(p.pending)
	inFlight := len(p.busy)
	p.updateGaugesLocked()
	p.mu.Unlock()

	logging.Info("Stopping thumbnail pool (%d in flight, %d queued dropped)", inFlight, dropped)
	close(p.stopping)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(p.completions)
		close(done)
	}()

	timer := time.NewTimer(p.config.ShutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		p.cancel()
		metrics.PoolWorkers.Set(0)
		logging.Info("Thumbnail pool stopped")
		return nil
	case <-timer.C:
		metrics.PoolShutdownTimeoutsTotal.Inc()
		logging.Warn("Thumbnail pool did not stop within %v, cancelling in-flight renders", p.config.ShutdownTimeout)
		p.cancel()
		metrics.PoolWorkers.Set(0)
		return ErrShutdownTimeout
	}
}

// Stats returns current pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Workers: len(p.workers),
		Idle:    len(p.idle),
		Busy:    len(p.busy),
		Queued:  len(p.queue),
		Pending: len(p.pending),
	}
}

// InFlight returns the rows currently being rendered, sorted.
func (p *Pool) InFlight() []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows := make([]int, 0, len(p.busy))
	for _, req := range p.busy {
		rows = append(rows, req.Row)
	}
	slices.Sort(rows)
	return rows
}

// Queued returns the queued rows in dispatch order.
func (p *Pool) Queued() []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows := make([]int, len(p.queue))
	for i, req := range p.queue {
		rows[i] = req.Row
	}
	return rows
}

// IsPending reports whether row is queued or rendering.
func (p *Pool) IsPending(row int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.pending[row]
	return ok
}
