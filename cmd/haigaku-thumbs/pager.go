package main

import (
	"sync"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/model"
)

// pager is a headless view that shows one page of rows at a time.
type pager struct {
	mu          sync.Mutex
	first, last int
	shown       bool
}

func (p *pager) show(first, last int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.first, p.last, p.shown = first, last, true
}

// VisibleRange implements viewport.View.
func (p *pager) VisibleRange() (first, last int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.first, p.last, p.shown
}

// rowSignal wakes the page loop whenever the cache changes.
type rowSignal struct {
	ch chan struct{}
}

var _ model.Observer = (*rowSignal)(nil)

func newRowSignal() *rowSignal {
	return &rowSignal{ch: make(chan struct{}, 1)}
}

func (s *rowSignal) notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *rowSignal) RowsReset()      { s.notify() }
func (s *rowSignal) RowChanged(int) { s.notify() }
