package shmio

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestSegment(t *testing.T, capacity uint64) *Segment {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seg")
	seg, err := Open(OpenOptions{Path: path, Writable: true, CapacityBytes: capacity})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { seg.Close() })
	return seg
}

func TestWriterAllocateCommitRoundTrip(t *testing.T) {
	seg := newTestSegment(t, 4096)

	w, err := seg.CreateWriter()
	if err != nil {
		t.Fatalf("CreateWriter() error = %v", err)
	}

	payload, err := w.Allocate(5)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	copy(payload, "hello")

	// Reader sees nothing until Commit runs.
	it, err := seg.CreateIterator()
	if err != nil {
		t.Fatalf("CreateIterator() error = %v", err)
	}
	got, err := it.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Next() before Commit = %q, want nil", got)
	}

	if err := w.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	got, err = it.Next()
	if err != nil {
		t.Fatalf("Next() after Commit error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Next() = %q, want %q", got, "hello")
	}
}

func TestWriterAllocateRejectsInvalidSize(t *testing.T) {
	seg := newTestSegment(t, 4096)
	w, err := seg.CreateWriter()
	if err != nil {
		t.Fatalf("CreateWriter() error = %v", err)
	}

	if _, err := w.Allocate(0); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Allocate(0) error = %v, want ErrInvalidSize", err)
	}
	if _, err := w.Allocate(MaxPayloadSize + 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Allocate(MaxPayloadSize+1) error = %v, want ErrInvalidSize", err)
	}
}

func TestWriterAllocateSegmentFull(t *testing.T) {
	// HeaderSize (24) + one frame of 12 bytes leaves no room for a second.
	seg := newTestSegment(t, HeaderSize+12)
	w, err := seg.CreateWriter()
	if err != nil {
		t.Fatalf("CreateWriter() error = %v", err)
	}

	if _, err := w.Allocate(8); err != nil {
		t.Fatalf("first Allocate() error = %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if _, err := w.Allocate(8); !errors.Is(err, ErrSegmentFull) {
		t.Errorf("second Allocate() error = %v, want ErrSegmentFull", err)
	}
}

func TestWriterCommitWithNoPendingBytesIsNoop(t *testing.T) {
	seg := newTestSegment(t, 4096)
	w, err := seg.CreateWriter()
	if err != nil {
		t.Fatalf("CreateWriter() error = %v", err)
	}

	before := seg.committedRelativeSize()
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if after := seg.committedRelativeSize(); after != before {
		t.Errorf("committedRelativeSize() after no-op Commit = %d, want %d", after, before)
	}
}

func TestWriterCloseDiscardsUncommittedReservation(t *testing.T) {
	seg := newTestSegment(t, 4096)
	w, err := seg.CreateWriter()
	if err != nil {
		t.Fatalf("CreateWriter() error = %v", err)
	}

	if _, err := w.Allocate(5); err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if _, err := w.Allocate(5); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("Allocate() after Close error = %v, want ErrWriterClosed", err)
	}
	if err := w.Commit(); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("Commit() after Close error = %v, want ErrWriterClosed", err)
	}
}

func TestWriterAllocateCommitByteLayout(t *testing.T) {
	seg := newTestSegment(t, 256)
	w, err := seg.CreateWriter()
	if err != nil {
		t.Fatalf("CreateWriter() error = %v", err)
	}

	payload, err := w.Allocate(3)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	copy(payload, []byte{0xAA, 0xBB, 0xCC})
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if got := seg.committedRelativeSize(); got != 7 {
		t.Fatalf("committedRelativeSize() = %d, want 7", got)
	}

	want := []byte{0x07, 0x00, 0xAA, 0xBB, 0xCC, 0x07, 0x00}
	got := seg.mem[seg.dataOffset : seg.dataOffset+7]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame bytes = % X, want % X", got, want)
		}
	}
}

func TestWriterDebugChecksDetectCorruptPreviousFrame(t *testing.T) {
	seg := newTestSegment(t, 4096)
	w, err := seg.CreateWriter(true)
	if err != nil {
		t.Fatalf("CreateWriter() error = %v", err)
	}

	if _, err := w.Allocate(4); err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	// Stomp the committed frame's suffix so prefix != suffix.
	seg.mem[seg.dataOffset+8-1] ^= 0xFF

	if _, err := w.Allocate(4); !errors.Is(err, ErrFrameCorrupt) {
		t.Errorf("Allocate() after corruption error = %v, want ErrFrameCorrupt", err)
	}
}
