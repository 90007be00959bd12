package preview

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// NOTE: govips cannot restart libvips after vips.Shutdown() in the same
// process, so these tests never call ShutdownVips.

// requireVips starts libvips or skips the test when it cannot start.
func requireVips(t *testing.T) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("libvips not available in test environment: %v", r)
		}
	}()
	InitVips()
	if !IsVipsAvailable() {
		t.Skip("libvips not available in test environment")
	}
}

func vipsRenderer() *FileRenderer {
	cfg := DefaultRendererConfig()
	cfg.UseVips = true
	cfg.RenderTimeout = 10 * time.Second
	return NewFileRenderer(cfg)
}

func TestInitVipsIdempotency(t *testing.T) {
	requireVips(t)

	InitVips()
	if !IsVipsAvailable() {
		t.Error("After a second InitVips, IsVipsAvailable should still return true")
	}
}

func TestLoadWithVipsShrinksToBox(t *testing.T) {
	requireVips(t)

	path := filepath.Join(t.TempDir(), "large.png")
	writePNG(t, path, 800, 400)

	img, err := loadWithVips(path, Size{Width: 180, Height: 100})
	if err != nil {
		t.Fatalf("loadWithVips: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > 180 || b.Dy() > 100 {
		t.Errorf("vips output %dx%d exceeds the 180x100 box", b.Dx(), b.Dy())
	}
}

func TestRenderWithVipsLetterboxes(t *testing.T) {
	requireVips(t)

	path := filepath.Join(t.TempDir(), "wide.png")
	writePNG(t, path, 640, 480)

	size := Size{Width: 180, Height: 100}
	img := vipsRenderer().Render(context.Background(), path, size)

	if img.Outcome != OutcomeRendered {
		t.Fatalf("Outcome = %v, want rendered", img.Outcome)
	}
	if img.Size() != size {
		t.Errorf("Size() = %v, want %v", img.Size(), size)
	}
	// 640x480 fits as 133x100, so the edges are transparent bars
	if c := img.Bitmap.NRGBAAt(0, 50); c.A != 0 {
		t.Errorf("bar pixel = %v, want transparent", c)
	}
	if c := img.Bitmap.NRGBAAt(90, 50); c.A == 0 {
		t.Errorf("center pixel = %v, want opaque", c)
	}
}

func TestRenderWithVipsFailures(t *testing.T) {
	requireVips(t)

	dir := t.TempDir()

	full := filepath.Join(dir, "full.png")
	writePNG(t, full, 640, 480)
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatal(err)
	}
	truncated := filepath.Join(dir, "truncated.png")
	if err := os.WriteFile(truncated, data[:len(data)/2], 0o644); err != nil {
		t.Fatal(err)
	}

	garbage := filepath.Join(dir, "garbage.jpg")
	if err := os.WriteFile(garbage, []byte("not an image at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	unsupported := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unsupported, []byte("caption"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		expected Outcome
	}{
		{"truncated image", truncated, OutcomeDecodeFailed},
		{"garbage image", garbage, OutcomeDecodeFailed},
		{"missing image", filepath.Join(dir, "missing.png"), OutcomeDecodeFailed},
		{"unsupported type", unsupported, OutcomeUnsupported},
	}

	r := vipsRenderer()
	size := Size{Width: 90, Height: 50}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := r.Render(context.Background(), tt.path, size)
			if img.Outcome != tt.expected {
				t.Errorf("Outcome = %v, want %v", img.Outcome, tt.expected)
			}
			if img.Size() != size {
				t.Errorf("Size() = %v, want %v", img.Size(), size)
			}
		})
	}
}
