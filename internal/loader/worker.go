package loader

import (
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"

	"github.com/google/uuid"
)

// worker renders one request at a time. The pool is the only sender on
// assign and only sends while the worker is idle.
type worker struct {
	id     string
	assign chan Request
}

func newWorker() *worker {
	return &worker{
		id:     uuid.NewString(),
		assign: make(chan Request, 1),
	}
}

func (p *Pool) run(w *worker) {
	defer p.wg.Done()
	logging.Debug("Thumbnail worker %s started", w.id)

	for {
		select {
		case <-p.stopping:
			logging.Debug("Thumbnail worker %s stopped", w.id)
			return
		case req := <-w.assign:
			if p.config.Gate != nil {
				p.config.Gate.Wait(p.ctx)
			}
			logging.Debug("Thumbnail worker %s rendering row %d (%s)", w.id, req.Row, req.Path)
			img := p.render(w, req)
			p.deliver(Completion{Row: req.Row, Path: req.Path, Image: img})
			p.finish(w, req)
		}
	}
}
