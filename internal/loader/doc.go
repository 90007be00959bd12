// Package loader runs thumbnail renders on a bounded worker pool.
//
// Requests are keyed by row. A row that is already queued or rendering is
// not queued twice, the queue is served in FIFO order, and an idle worker
// never sits next to a non-empty queue. Results are delivered over a single
// channel so that one goroutine can own whatever consumes them:
//
//	pool := loader.New(renderer, loader.DefaultConfig())
//	defer pool.Shutdown()
//
//	pool.RequestBatch(reqs)
//	for c := range pool.Completions() {
//	    cache.OnRenderCompleted(c.Row, c.Path, c.Image)
//	}
//
// ClearQueue only drops work that has not started; renders already in
// flight finish and are delivered.
package loader
