package shmio

import "errors"

// Sentinel errors returned by Open, Segment, Writer and Iterator. Call sites
// wrap these with extra context via fmt.Errorf("...: %w", Err...); callers
// should compare with errors.Is, not string matching.
var (
	// ErrBadArgument is returned when a caller-supplied option is malformed.
	ErrBadArgument = errors.New("shmio: bad argument")

	// ErrNotFound is returned when opening a segment read-only that does not exist.
	ErrNotFound = errors.New("shmio: segment not found")

	// ErrIOFailure wraps an underlying file or mmap syscall failure.
	ErrIOFailure = errors.New("shmio: io failure")

	// ErrReadOnly is returned when a writer is requested on a non-writable segment.
	ErrReadOnly = errors.New("shmio: segment is read-only")

	// ErrSegmentFull is returned when a frame allocation would exceed the mapping length.
	ErrSegmentFull = errors.New("shmio: segment is full")

	// ErrInvalidSize is returned when a payload size is outside [1, MaxPayloadSize].
	ErrInvalidSize = errors.New("shmio: invalid payload size")

	// ErrCursorOutOfRange is returned when a cursor or seek target is past the committed size.
	ErrCursorOutOfRange = errors.New("shmio: cursor out of range")

	// ErrFrameCorrupt is returned, in debug mode, when a frame's prefix and suffix disagree.
	ErrFrameCorrupt = errors.New("shmio: frame corrupt")

	// ErrMappingGone is returned when an iterator or writer outlives its segment's Close.
	ErrMappingGone = errors.New("shmio: mapping is gone")

	// ErrIteratorClosed is returned by a closed Iterator.
	ErrIteratorClosed = errors.New("shmio: iterator is closed")

	// ErrWriterClosed is returned by a closed Writer.
	ErrWriterClosed = errors.New("shmio: writer is closed")
)
