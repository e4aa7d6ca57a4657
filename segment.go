// Package shmio implements a single-writer, multi-reader shared-memory
// append log: a producer process memory-maps a file and appends
// length-framed binary messages to it, and one or more consumer processes
// map the same file read-only and iterate committed frames without
// copying. Publication is made visible through a single atomic 64-bit
// counter stored inside the file header, establishing a release/acquire
// boundary so that readers only observe frames whose bytes have been fully
// written.
//
// There is exactly one writer per segment; a second concurrent writer
// races on the committed-size cell and corrupts the log. Durability is
// whatever the operating system provides for a shared mmap — shmio never
// calls fsync/msync itself. The wire format is little-endian only.
package shmio

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
)

// Header layout (first 24 bytes of the mapping, all little-endian):
const (
	// HeaderSize is the normative default byte count of the header region.
	HeaderSize = 24

	headerSizeFieldOffset    = 0
	dataOffsetFieldOffset    = 8
	committedSizeFieldOffset = 16
)

// OpenOptions configures Open. CapacityBytes of zero means "not provided":
// it defaults to HeaderSize for a read-only, metadata-only inspection, and
// is an error when Writable is set.
type OpenOptions struct {
	// Path is the filesystem path of the backing file. Required.
	Path string

	// Writable requests a read-write mapping. A writer may only be
	// created on a writable segment.
	Writable bool

	// CapacityBytes is the size to truncate a newly created file to.
	// Required when Writable is set; must be at least HeaderSize.
	CapacityBytes uint64

	// DebugChecks is the default for writers created by CreateWriter,
	// which can override it. Iterators do not consult it; they check
	// frames only when BatchOptions.DebugChecks is set for a call.
	DebugChecks bool
}

// Segment owns one memory-mapped file: the open file descriptor, the mapped
// byte region, the header fields, and the atomic committed-size cell.
// Only the owning Writer ever mutates bytes at or after the committed size;
// only the Writer mutates the committed size itself.
type Segment struct {
	file *os.File
	mem  []byte

	length     uint64
	writable   bool
	headerSize uint64
	dataOffset uint64

	debugChecks bool
	closed      atomic.Bool
}

// Open maps opts.Path into a Segment. If the file does not exist and
// Writable is requested, it is created with mode 0664 and truncated to
// CapacityBytes; in read-only mode a missing file fails with ErrNotFound.
// The mapping is always sized to the file's current on-disk length, never
// shrunk to CapacityBytes if the file was already larger. On first open the
// header fields are normalized: any of the three that is zero or exceeds
// the mapping length is reset to its default (HeaderSize for header_size
// and data_offset, data_offset for committed_size) and written back.
func Open(opts OpenOptions) (*Segment, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("%w: path is required", ErrBadArgument)
	}

	capacity := opts.CapacityBytes
	if capacity != 0 && capacity < HeaderSize {
		return nil, fmt.Errorf("%w: capacity_bytes must be at least %d", ErrBadArgument, HeaderSize)
	}
	if capacity == 0 {
		if opts.Writable {
			return nil, fmt.Errorf("%w: capacity_bytes is required when writable", ErrBadArgument)
		}
		capacity = HeaderSize
	}

	file, created, err := openOrCreateSegmentFile(opts.Path, opts.Writable, capacity)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, wrapIOFailure(err, "stat segment file")
	}

	size := info.Size()
	if size < HeaderSize {
		file.Close()
		return nil, fmt.Errorf("%w: segment file %s is smaller than the minimum header size", ErrIOFailure, opts.Path)
	}

	mem, err := mmapFile(int(file.Fd()), int(size), opts.Writable)
	if err != nil {
		file.Close()
		if created {
			os.Remove(opts.Path)
		}
		return nil, wrapIOFailure(err, "mmap segment")
	}

	seg := &Segment{
		file:        file,
		mem:         mem,
		length:      uint64(size),
		writable:    opts.Writable,
		debugChecks: opts.DebugChecks,
	}

	if err := seg.normalizeHeader(); err != nil {
		munmapFile(mem)
		file.Close()
		return nil, err
	}

	return seg, nil
}

// openOrCreateSegmentFile opens path for the requested access mode, creating
// and truncating it to capacity when writable and the file is missing.
func openOrCreateSegmentFile(path string, writable bool, capacity uint64) (file *os.File, created bool, err error) {
	flags := os.O_RDONLY
	if writable {
		flags = os.O_RDWR
	}

	f, openErr := os.OpenFile(path, flags, 0664)
	if openErr == nil {
		return f, false, nil
	}
	if !writable {
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0664)
	if err != nil {
		return nil, false, wrapIOFailure(err, "create segment file")
	}
	if err := f.Truncate(int64(capacity)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, false, wrapIOFailure(err, "truncate segment file")
	}
	return f, true, nil
}

// normalizeHeader resets zero or out-of-range header fields to their
// defaults, writes them back, and rejects the dataOffset < headerSize case
// the Open Question in spec.md §9 calls out as unguarded in the source.
func (s *Segment) normalizeHeader() error {
	headerSize := binary.LittleEndian.Uint64(s.mem[headerSizeFieldOffset : headerSizeFieldOffset+8])
	if headerSize == 0 || headerSize > s.length {
		headerSize = HeaderSize
		binary.LittleEndian.PutUint64(s.mem[headerSizeFieldOffset:headerSizeFieldOffset+8], headerSize)
	}

	dataOffset := binary.LittleEndian.Uint64(s.mem[dataOffsetFieldOffset : dataOffsetFieldOffset+8])
	if dataOffset == 0 || dataOffset > s.length {
		dataOffset = HeaderSize
		binary.LittleEndian.PutUint64(s.mem[dataOffsetFieldOffset:dataOffsetFieldOffset+8], dataOffset)
	}

	if dataOffset < headerSize {
		return fmt.Errorf("%w: data_offset %d precedes header_size %d", ErrCursorOutOfRange, dataOffset, headerSize)
	}

	s.headerSize = headerSize
	s.dataOffset = dataOffset

	committed := atomic.LoadUint64(s.committedSizePtr())
	if committed < dataOffset || committed > s.length {
		atomic.StoreUint64(s.committedSizePtr(), dataOffset)
	}

	return nil
}

// committedSizePtr returns a pointer to the atomic committed-size cell at
// byte offset 16 of the mapping. The mapping is page-aligned, so this
// offset is always 8-byte aligned.
func (s *Segment) committedSizePtr() *uint64 {
	return (*uint64)(unsafe.Pointer(&s.mem[committedSizeFieldOffset]))
}

// HeaderView returns a read-only-by-convention view of the first
// header_size bytes of the mapping. Like every other view shmio hands out,
// it aliases the mapping; callers must not retain it past Close.
func (s *Segment) HeaderView() ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrMappingGone
	}
	return s.mem[:s.headerSize:s.headerSize], nil
}

// HeaderSizeField returns this segment's normalized header_size field.
func (s *Segment) HeaderSizeField() uint64 {
	return s.headerSize
}

// DataOffsetField returns this segment's normalized data_offset field.
func (s *Segment) DataOffsetField() uint64 {
	return s.dataOffset
}

// CreateIterator returns a fresh Iterator. startCursor defaults to 0 and
// must be at most the segment's currently committed size (relative to
// data_offset), or construction fails with ErrCursorOutOfRange.
func (s *Segment) CreateIterator(startCursor ...uint64) (*Iterator, error) {
	if s.closed.Load() {
		return nil, ErrMappingGone
	}

	var start uint64
	if len(startCursor) > 0 {
		start = startCursor[0]
	}

	committedRel := s.committedRelativeSize()
	if start > committedRel {
		return nil, fmt.Errorf("%w: start cursor %d is beyond committed size %d", ErrCursorOutOfRange, start, committedRel)
	}

	return &Iterator{seg: s, cursor: start}, nil
}

// CreateWriter fails with ErrReadOnly if the segment is not writable;
// otherwise it returns a Writer initialised at the segment's current
// committed size. debugChecks, if given, overrides the segment's default.
func (s *Segment) CreateWriter(debugChecks ...bool) (*Writer, error) {
	if s.closed.Load() {
		return nil, ErrMappingGone
	}
	if !s.writable {
		return nil, ErrReadOnly
	}

	dc := s.debugChecks
	if len(debugChecks) > 0 {
		dc = debugChecks[0]
	}

	return &Writer{
		seg:         s,
		cursor:      atomic.LoadUint64(s.committedSizePtr()),
		debugChecks: dc,
	}, nil
}

// Close unmaps the memory and closes the file descriptor. It is idempotent;
// calling it any number of times after the first has no further effect.
// Iterators and writers derived from this segment fail with ErrMappingGone
// on their next operation.
func (s *Segment) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	var firstErr error
	if err := munmapFile(s.mem); err != nil {
		firstErr = wrapIOFailure(err, "munmap segment")
	}
	s.mem = nil
	if err := s.file.Close(); err != nil && firstErr == nil {
		firstErr = wrapIOFailure(err, "close segment file")
	}

	return firstErr
}

// committedRelativeSize returns the acquire-loaded committed size, relative
// to data_offset. A committed size below data_offset (a corrupted header)
// is reported as zero so construction-time bound checks remain well-defined.
func (s *Segment) committedRelativeSize() uint64 {
	committed := atomic.LoadUint64(s.committedSizePtr())
	if committed <= s.dataOffset {
		return 0
	}
	return committed - s.dataOffset
}

// wrapIOFailure attaches syscall/file context to ErrIOFailure so callers can
// still match with errors.Is(err, ErrIOFailure) while the message keeps the
// underlying OS text and a stack trace for diagnostics.
func wrapIOFailure(cause error, context string) error {
	return errors.Wrap(ErrIOFailure, fmt.Sprintf("%s: %v", context, cause))
}
