package workers

import (
	"runtime"
	"testing"
)

func TestScale(t *testing.T) {
	tests := []struct {
		name       string
		available  int
		multiplier float64
		limit      int
		expected   int
	}{
		{"single CPU halves to zero, floored to 1", 1, 0.5, ThumbnailLimit, 1},
		{"two CPUs", 2, 0.5, ThumbnailLimit, 1},
		{"three CPUs rounds down", 3, 0.5, ThumbnailLimit, 1},
		{"four CPUs", 4, 0.5, ThumbnailLimit, 2},
		{"eight CPUs", 8, 0.5, ThumbnailLimit, 4},
		{"sixty-four CPUs capped", 64, 0.5, ThumbnailLimit, 4},
		{"no limit", 64, 1.0, 0, 64},
		{"negative multiplier", 8, -1.0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scale(tt.available, tt.multiplier, tt.limit); got != tt.expected {
				t.Errorf("scale(%d, %v, %d) = %d, want %d", tt.available, tt.multiplier, tt.limit, got, tt.expected)
			}
		})
	}
}

func TestForThumbnails(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	got := ForThumbnails()
	want := scale(runtime.GOMAXPROCS(0), 0.5, ThumbnailLimit)
	if got != want {
		t.Errorf("ForThumbnails() = %d, want %d", got, want)
	}
	if got < 1 || got > ThumbnailLimit {
		t.Errorf("ForThumbnails() = %d, outside [1, %d]", got, ThumbnailLimit)
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int
	}{
		{"valid override", "3", 0, 3},
		{"override capped by limit", "20", ThumbnailLimit, ThumbnailLimit},
		{"override below limit", "2", ThumbnailLimit, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(OverrideEnv, tt.envValue)
			if got := Count(0.5, tt.limit); got != tt.expected {
				t.Errorf("Count with %s=%s = %d, want %d", OverrideEnv, tt.envValue, got, tt.expected)
			}
		})
	}
}

func TestCountIgnoresInvalidOverride(t *testing.T) {
	fallback := scale(runtime.GOMAXPROCS(0), 0.5, ThumbnailLimit)

	for _, value := range []string{"invalid", "0", "-5"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv(OverrideEnv, value)
			if got := Count(0.5, ThumbnailLimit); got != fallback {
				t.Errorf("Count with %s=%q = %d, want fallback %d", OverrideEnv, value, got, fallback)
			}
		})
	}
}

func BenchmarkForThumbnails(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = ForThumbnails()
	}
}
