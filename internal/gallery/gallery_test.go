package gallery

import (
	"context"
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/loader"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/preview"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/viewport"

	"github.com/disintegration/imaging"
)

type countingRenderer struct {
	renders atomic.Int32
}

func (r *countingRenderer) Render(_ context.Context, _ string, size preview.Size) *preview.Image {
	r.renders.Add(1)
	return &preview.Image{
		Bitmap:  imaging.New(size.Width, size.Height, color.NRGBA{G: 255, A: 255}),
		Outcome: preview.OutcomeRendered,
	}
}

type fixedView struct {
	mu          sync.Mutex
	first, last int
}

func (v *fixedView) VisibleRange() (int, int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.first, v.last, true
}

func (v *fixedView) scrollTo(first, last int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.first, v.last = first, last
}

func testConfig() Config {
	return Config{
		Size:     preview.Size{Width: 18, Height: 10},
		Pool:     loader.Config{Workers: 2, CompletionBuffer: 16, ShutdownTimeout: time.Second},
		Viewport: viewport.Config{Debounce: 20 * time.Millisecond, Buffer: 2},
	}
}

func paths(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("/data/%02d.png", i)
	}
	return out
}

func startGallery(t *testing.T, r preview.Renderer, view viewport.View) *Gallery {
	t.Helper()
	g := New(testConfig(), r, view)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	t.Cleanup(func() {
		_ = g.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after Close")
		}
		cancel()
	})
	return g
}

func waitRendered(t *testing.T, g *Gallery, rows ...int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for _, row := range rows {
		for !g.Cache().IsRendered(row) {
			if time.Now().After(deadline) {
				t.Fatalf("row %d never rendered", row)
			}
			time.Sleep(time.Millisecond)
		}
	}
}

func TestLoadFilesRendersVisibleWindow(t *testing.T) {
	r := &countingRenderer{}
	view := &fixedView{first: 0, last: 3}
	g := startGallery(t, r, view)

	g.LoadFiles(paths(20))
	// View 0..3 plus a buffer of 2
	waitRendered(t, g, 0, 1, 2, 3, 4, 5)

	time.Sleep(20 * time.Millisecond)
	for row := 6; row < 20; row++ {
		if g.Cache().IsRendered(row) {
			t.Errorf("row %d outside the window was rendered", row)
		}
	}
	if got := r.renders.Load(); got != 6 {
		t.Errorf("renders = %d, want 6", got)
	}
}

func TestScrollLoadsNewWindow(t *testing.T) {
	r := &countingRenderer{}
	view := &fixedView{first: 0, last: 1}
	g := startGallery(t, r, view)

	g.LoadFiles(paths(30))
	waitRendered(t, g, 0, 1, 2, 3)

	view.scrollTo(20, 21)
	g.Scrolled()
	waitRendered(t, g, 18, 19, 20, 21, 22, 23)

	// Rows 0..3 were already rendered and are not requested again
	if got := r.renders.Load(); got != 10 {
		t.Errorf("renders = %d, want 10", got)
	}
}

func TestRefreshRerenders(t *testing.T) {
	r := &countingRenderer{}
	g := startGallery(t, r, &fixedView{first: 0, last: 1})

	g.LoadFiles(paths(4))
	waitRendered(t, g, 0, 1, 2, 3)
	before := r.renders.Load()

	g.Refresh()
	waitRendered(t, g, 0, 1, 2, 3)
	if got := r.renders.Load(); got != before*2 {
		t.Errorf("renders after refresh = %d, want %d", got, before*2)
	}
}

func TestSetThumbnailSize(t *testing.T) {
	r := &countingRenderer{}
	g := startGallery(t, r, &fixedView{first: 0, last: 0})

	g.LoadFiles(paths(1))
	waitRendered(t, g, 0)

	bigger := preview.Size{Width: 36, Height: 20}
	g.SetThumbnailSize(bigger)
	waitRendered(t, g, 0)

	res, ok := g.Cache().Result(0)
	if !ok || res.Size() != bigger {
		t.Errorf("Result(0) size = %v, want %v", res.Size(), bigger)
	}
}

func TestClear(t *testing.T) {
	g := startGallery(t, &countingRenderer{}, &fixedView{first: 0, last: 0})
	g.LoadFiles(paths(3))
	g.Clear()
	if n := g.Cache().RowCount(); n != 0 {
		t.Errorf("RowCount() = %d after Clear", n)
	}
}

func TestRunStopsOnContext(t *testing.T) {
	g := New(testConfig(), &countingRenderer{}, &fixedView{})
	defer g.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx); err != context.Canceled {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestResultsOnlyArriveThroughRun(t *testing.T) {
	r := &countingRenderer{}
	g := New(testConfig(), r, &fixedView{first: 0, last: 1})
	defer g.Close()

	// Structural changes apply on the caller's goroutine without Run
	g.LoadFiles(paths(2))
	if n := g.Cache().RowCount(); n != 2 {
		t.Fatalf("RowCount() = %d, want 2", n)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.renders.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("renders never ran")
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if g.Cache().IsRendered(0) || g.Cache().IsRendered(1) {
		t.Fatal("results reached the cache without Run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = g.Run(ctx) }()
	waitRendered(t, g, 0, 1)
}
