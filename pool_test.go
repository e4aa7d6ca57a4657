package shmio

import (
	"path/filepath"
	"testing"
)

func TestPoolAcquireSharesSegment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seg")
	opts := OpenOptions{Path: path, Writable: true, CapacityBytes: 4096}

	pool := NewPool()

	first, err := pool.Acquire(opts)
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	second, err := pool.Acquire(opts)
	if err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	if first != second {
		t.Fatal("Acquire() returned distinct Segments for the same path")
	}

	if err := pool.Release(path); err != nil {
		t.Fatalf("first Release() error = %v", err)
	}
	// Still referenced once; operations must keep working.
	if _, err := first.CreateIterator(); err != nil {
		t.Errorf("CreateIterator() after partial release error = %v", err)
	}

	if err := pool.Release(path); err != nil {
		t.Fatalf("second Release() error = %v", err)
	}
	if _, err := first.CreateIterator(); err == nil {
		t.Error("CreateIterator() after final release = nil error, want ErrMappingGone")
	}
}

func TestPoolAcquireRejectsMismatchedWritability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seg")

	pool := NewPool()
	if _, err := pool.Acquire(OpenOptions{Path: path, Writable: true, CapacityBytes: 4096}); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer pool.CloseAll()

	if _, err := pool.Acquire(OpenOptions{Path: path, Writable: false}); err == nil {
		t.Error("Acquire() with mismatched writable = nil error, want ErrBadArgument")
	}
}

func TestPoolCloseAllReleasesEverything(t *testing.T) {
	pathA := filepath.Join(t.TempDir(), "a")
	pathB := filepath.Join(t.TempDir(), "b")

	pool := NewPool()
	segA, err := pool.Acquire(OpenOptions{Path: pathA, Writable: true, CapacityBytes: 4096})
	if err != nil {
		t.Fatalf("Acquire(a) error = %v", err)
	}
	if _, err := pool.Acquire(OpenOptions{Path: pathB, Writable: true, CapacityBytes: 4096}); err != nil {
		t.Fatalf("Acquire(b) error = %v", err)
	}

	if err := pool.CloseAll(); err != nil {
		t.Fatalf("CloseAll() error = %v", err)
	}

	if _, err := segA.CreateIterator(); err == nil {
		t.Error("CreateIterator() after CloseAll = nil error, want ErrMappingGone")
	}
}
