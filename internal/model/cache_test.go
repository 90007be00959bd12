package model

import (
	"image/color"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/preview"

	"github.com/disintegration/imaging"
)

var testSize = preview.Size{Width: 18, Height: 10}

type recordingObserver struct {
	mu      sync.Mutex
	resets  int
	changed []int
}

func (r *recordingObserver) RowsReset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func (r *recordingObserver) RowChanged(row int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, row)
}

func renderedImage(size preview.Size) *preview.Image {
	return &preview.Image{
		Bitmap:  imaging.New(size.Width, size.Height, color.NRGBA{R: 1, A: 255}),
		Outcome: preview.OutcomeRendered,
	}
}

func newTestCache(paths ...string) (*Cache, *recordingObserver) {
	c := New(testSize)
	obs := &recordingObserver{}
	c.AddObserver(obs)
	c.SetFilePaths(paths)
	return c, obs
}

func TestSetFilePaths(t *testing.T) {
	c, obs := newTestCache("/a.png", "/b.png", "/c.mp4")

	if c.RowCount() != 3 {
		t.Fatalf("RowCount() = %d, want 3", c.RowCount())
	}
	if got := c.FilePathAt(1); got != "/b.png" {
		t.Errorf("FilePathAt(1) = %q", got)
	}
	for _, row := range []int{-1, 3, 100} {
		if got := c.FilePathAt(row); got != "" {
			t.Errorf("FilePathAt(%d) = %q, want empty", row, got)
		}
		if c.IsRendered(row) {
			t.Errorf("IsRendered(%d) = true", row)
		}
		if c.Preview(row) != nil {
			t.Errorf("Preview(%d) != nil", row)
		}
	}
	if obs.resets != 1 {
		t.Errorf("resets = %d, want 1", obs.resets)
	}

	c.Clear()
	if c.RowCount() != 0 {
		t.Errorf("RowCount() after Clear = %d", c.RowCount())
	}
}

func TestOnRenderCompleted(t *testing.T) {
	c, obs := newTestCache("/a.png", "/b.png")

	if !c.OnRenderCompleted(1, "/b.png", renderedImage(testSize)) {
		t.Fatal("completion was not stored")
	}
	if !c.IsRendered(1) || c.IsRendered(0) {
		t.Error("IsRendered mismatch")
	}
	if len(obs.changed) != 1 || obs.changed[0] != 1 {
		t.Errorf("changed = %v, want [1]", obs.changed)
	}
	if res, ok := c.Result(1); !ok || res.Outcome != preview.OutcomeRendered {
		t.Errorf("Result(1) = %v, %v", res, ok)
	}

	// Last write wins
	placeholder := preview.Placeholder(preview.OutcomeDecodeFailed, testSize)
	c.OnRenderCompleted(1, "/b.png", placeholder)
	if res, _ := c.Result(1); res != placeholder {
		t.Error("second completion did not replace the first")
	}
}

func TestCompletionDrops(t *testing.T) {
	tests := []struct {
		name string
		row  int
		path string
		img  *preview.Image
	}{
		{"out of range", 9, "/j.png", renderedImage(testSize)},
		{"negative row", -1, "/a.png", renderedImage(testSize)},
		{"path changed", 0, "/old.png", renderedImage(testSize)},
		{"size changed", 0, "/a.png", renderedImage(preview.Size{Width: 5, Height: 5})},
		{"nil image", 0, "/a.png", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, obs := newTestCache("/a.png", "/b.png")
			if c.OnRenderCompleted(tt.row, tt.path, tt.img) {
				t.Error("completion was stored")
			}
			if c.IsRendered(0) || c.IsRendered(1) {
				t.Error("a row was mutated")
			}
			if len(obs.changed) != 0 {
				t.Errorf("changed = %v, want none", obs.changed)
			}
		})
	}
}

func TestShrinkWhileRendering(t *testing.T) {
	paths := make([]string, 12)
	for i := range paths {
		paths[i] = "/f" + string(rune('a'+i)) + ".png"
	}
	c, _ := newTestCache(paths...)
	c.OnRenderCompleted(2, paths[2], renderedImage(testSize))

	// The list shrinks while row 9 is still rendering
	c.SetFilePaths(paths[:5])
	c.OnRenderCompleted(1, paths[1], renderedImage(testSize))

	if c.OnRenderCompleted(9, paths[9], renderedImage(testSize)) {
		t.Error("row 9 stored after shrink")
	}
	if !c.IsRendered(1) {
		t.Error("row 1 lost its preview")
	}
	for _, row := range []int{0, 2, 3, 4} {
		if c.IsRendered(row) {
			t.Errorf("row %d rendered", row)
		}
	}
}

func TestClearCacheIdempotent(t *testing.T) {
	c, obs := newTestCache("/a.png", "/b.png")
	c.OnRenderCompleted(0, "/a.png", renderedImage(testSize))

	c.ClearCache()
	c.ClearCache()

	if c.IsRendered(0) {
		t.Error("row 0 still rendered")
	}
	if c.RowCount() != 2 || c.FilePathAt(0) != "/a.png" {
		t.Error("ClearCache changed the rows")
	}
	if obs.resets != 3 {
		t.Errorf("resets = %d, want 3", obs.resets)
	}
}

func TestPreviewFallsBackToPending(t *testing.T) {
	c, _ := newTestCache("/a.png")

	bitmap := c.Preview(0)
	if bitmap == nil {
		t.Fatal("Preview(0) = nil")
	}
	if got := bitmap.NRGBAAt(0, 0); got != preview.PendingColor {
		t.Errorf("pending pixel = %v, want %v", got, preview.PendingColor)
	}

	img := renderedImage(testSize)
	c.OnRenderCompleted(0, "/a.png", img)
	if c.Preview(0) != img.Bitmap {
		t.Error("Preview(0) did not return the stored bitmap")
	}
}

func TestSetThumbnailSize(t *testing.T) {
	c, obs := newTestCache("/a.png")
	c.OnRenderCompleted(0, "/a.png", renderedImage(testSize))

	c.SetThumbnailSize(testSize)
	if !c.IsRendered(0) || obs.resets != 1 {
		t.Error("same size cleared the cache")
	}

	bigger := preview.Size{Width: 36, Height: 20}
	c.SetThumbnailSize(bigger)
	if c.IsRendered(0) {
		t.Error("size change kept a stale preview")
	}
	if c.ThumbnailSize() != bigger {
		t.Errorf("ThumbnailSize() = %v", c.ThumbnailSize())
	}
	if b := c.Preview(0).Bounds(); b.Dx() != 36 || b.Dy() != 20 {
		t.Errorf("pending placeholder is %dx%d", b.Dx(), b.Dy())
	}

	c.SetThumbnailSize(preview.Size{})
	if c.ThumbnailSize() != bigger {
		t.Error("invalid size was applied")
	}
}

func TestCacheStats(t *testing.T) {
	c, _ := newTestCache("/a.png", "/b.png", "/c.xyz", "/d.png")
	c.OnRenderCompleted(0, "/a.png", renderedImage(testSize))
	c.OnRenderCompleted(1, "/b.png", renderedImage(testSize))
	c.OnRenderCompleted(2, "/c.xyz", preview.Placeholder(preview.OutcomeUnsupported, testSize))

	stats := c.CacheStats()
	if stats.Rows != 4 {
		t.Errorf("Rows = %d, want 4", stats.Rows)
	}
	if stats.Rendered["rendered"] != 2 || stats.Rendered["unsupported"] != 1 {
		t.Errorf("Rendered = %v", stats.Rendered)
	}
}

func TestConcurrentReaders(t *testing.T) {
	c, _ := newTestCache("/a.png", "/b.png")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = c.IsRendered(j % 3)
				_ = c.Preview(j % 3)
				_ = c.RowCount()
			}
		}()
	}
	for j := 0; j < 200; j++ {
		c.OnRenderCompleted(j%2, c.FilePathAt(j%2), renderedImage(testSize))
	}
	wg.Wait()
}

// rereadingObserver re-reads the cache on every notification, the way a
// view repaints.
type rereadingObserver struct {
	cache *Cache
	reads atomic.Int32
}

func (o *rereadingObserver) RowsReset() {
	_ = o.cache.RowCount()
	o.reads.Add(1)
}

func (o *rereadingObserver) RowChanged(row int) {
	// The row may be gone by now; Result must say so rather than panic.
	_, _ = o.cache.Result(row)
	_ = o.cache.Preview(row)
	o.reads.Add(1)
}

func TestNotificationAfterResetIsReread(t *testing.T) {
	c := New(testSize)
	obs := &rereadingObserver{cache: c}
	c.AddObserver(obs)

	c.SetFilePaths([]string{"/a.png", "/b.png"})
	if !c.OnRenderCompleted(1, "/b.png", renderedImage(testSize)) {
		t.Fatal("completion for a current row was dropped")
	}

	// A reset replaces row 1 before the view handles the earlier change
	c.SetFilePaths([]string{"/c.png"})

	if _, ok := c.Result(1); ok {
		t.Error("Result(1) should report no row after the reset")
	}
	if got := c.Preview(1); got != nil {
		t.Error("Preview(1) should be nil after the reset")
	}
	if c.OnRenderCompleted(1, "/b.png", renderedImage(testSize)) {
		t.Error("late completion for a removed row was stored")
	}
}

func TestConcurrentResetsAndCompletions(t *testing.T) {
	c := New(testSize)
	obs := &rereadingObserver{cache: c}
	c.AddObserver(obs)
	c.SetFilePaths([]string{"/a.png", "/b.png", "/c.png"})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			if j%2 == 0 {
				c.SetFilePaths([]string{"/a.png"})
			} else {
				c.SetFilePaths([]string{"/a.png", "/b.png", "/c.png"})
			}
		}
	}()
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			row := j % 3
			c.OnRenderCompleted(row, []string{"/a.png", "/b.png", "/c.png"}[row], renderedImage(testSize))
		}
	}()
	wg.Wait()

	if obs.reads.Load() == 0 {
		t.Error("observer was never notified")
	}
	for row := 0; row < c.RowCount(); row++ {
		if img, ok := c.Result(row); ok && img.Size() != testSize {
			t.Errorf("Result(%d) size = %v, want %v", row, img.Size(), testSize)
		}
	}
}
