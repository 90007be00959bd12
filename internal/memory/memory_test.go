package memory

import (
	"context"
	"testing"
	"time"
)

func testMonitor(limit int64, alloc *uint64) *Monitor {
	m := NewMonitor(Config{
		MemoryLimitBytes:  limit,
		ResumeWaterMark:   0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     time.Hour,
	})
	m.readAlloc = func() uint64 { return *alloc }
	return m
}

func TestMonitorPausesAndResumes(t *testing.T) {
	alloc := uint64(50)
	m := testMonitor(100, &alloc)

	m.checkMemory()
	if m.IsPaused() {
		t.Fatal("paused at 50%")
	}
	if u := m.Usage(); u != 0.5 {
		t.Errorf("Usage() = %v, want 0.5", u)
	}

	alloc = 90
	m.checkMemory()
	if !m.IsPaused() {
		t.Fatal("not paused at 90%")
	}

	released := make(chan struct{})
	go func() {
		m.Wait(context.Background())
		close(released)
	}()

	// Between the marks nothing changes
	alloc = 80
	m.checkMemory()
	select {
	case <-released:
		t.Fatal("Wait returned while still above the resume mark")
	case <-time.After(20 * time.Millisecond):
	}

	alloc = 60
	m.checkMemory()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after memory recovered")
	}
	if m.IsPaused() {
		t.Error("still paused after recovery")
	}
}

func TestWaitNotPausedReturnsImmediately(t *testing.T) {
	alloc := uint64(0)
	m := testMonitor(100, &alloc)

	done := make(chan struct{})
	go func() {
		m.Wait(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked while not paused")
	}
}

func TestWaitReleasedByContextAndStop(t *testing.T) {
	alloc := uint64(99)
	m := testMonitor(100, &alloc)
	m.checkMemory()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Wait(ctx)

	done := make(chan struct{})
	go func() {
		m.Wait(context.Background())
		close(done)
	}()
	m.Stop()
	m.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not release Wait")
	}
}

func TestMonitorWithoutLimit(t *testing.T) {
	alloc := uint64(1 << 40)
	m := testMonitor(0, &alloc)
	m.limit = 0

	m.Start()
	defer m.Stop()
	m.checkMemory()

	if m.IsPaused() || m.Usage() != 0 {
		t.Error("monitor without a limit must never pause")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ResumeWaterMark >= cfg.CriticalWaterMark {
		t.Errorf("resume mark %.2f must be below critical mark %.2f", cfg.ResumeWaterMark, cfg.CriticalWaterMark)
	}
	if cfg.CheckInterval <= 0 {
		t.Errorf("CheckInterval = %v", cfg.CheckInterval)
	}
}
