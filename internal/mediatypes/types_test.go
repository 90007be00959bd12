package mediatypes

import (
	"sort"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path     string
		expected Kind
	}{
		{"/data/cat.jpg", KindStillImage},
		{"/data/cat.JPEG", KindStillImage},
		{"dog.png", KindStillImage},
		{"scan.tif", KindStillImage},
		{"scan.tiff", KindStillImage},
		{"anim.webp", KindStillImage},
		{"clip.mp4", KindVideo},
		{"clip.MKV", KindVideo},
		{"clip.webm", KindVideo},
		{"clip.mov", KindVideo},
		{"caption.txt", KindUnknown},
		{"weights.xyz", KindUnknown},
		{"no_extension", KindUnknown},
		{"", KindUnknown},
		{"archive.tar.gz", KindUnknown},
		{"dir.png/caption", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Classify(tt.path); got != tt.expected {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestIsMedia(t *testing.T) {
	if !IsMedia("a.gif") {
		t.Error("IsMedia(a.gif) = false")
	}
	if !IsMedia("a.ts") {
		t.Error("IsMedia(a.ts) = false")
	}
	if IsMedia("a.json") {
		t.Error("IsMedia(a.json) = true")
	}
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"a.jpg", "image/jpeg"},
		{"a.PNG", "image/png"},
		{"a.mkv", "video/x-matroska"},
		{"a.txt", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := MimeType(tt.path); got != tt.expected {
			t.Errorf("MimeType(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

func TestEveryKnownExtensionHasMimeType(t *testing.T) {
	for ext := range kinds {
		if _, ok := MimeTypes[ext]; !ok {
			t.Errorf("extension %s has no MIME type", ext)
		}
	}
}

func TestExtensions(t *testing.T) {
	images := Extensions(KindStillImage)
	sort.Strings(images)
	want := []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff", ".webp"}
	if len(images) != len(want) {
		t.Fatalf("Extensions(KindStillImage) = %v, want %v", images, want)
	}
	for i := range want {
		if images[i] != want[i] {
			t.Errorf("Extensions(KindStillImage)[%d] = %s, want %s", i, images[i], want[i])
		}
	}

	if len(Extensions(KindUnknown)) != 0 {
		t.Error("Extensions(KindUnknown) should be empty")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindStillImage, "image"},
		{KindVideo, "video"},
		{KindUnknown, "unknown"},
		{Kind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.expected)
		}
	}
}
