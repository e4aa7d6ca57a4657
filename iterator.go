package shmio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// Default batch limits used by NextBatch when a zero value is passed for
// either field of BatchOptions.
const (
	DefaultMaxMessages = 64
	DefaultMaxBytes    = 262144
)

// BatchOptions bounds one NextBatch call. A zero MaxMessages or MaxBytes is
// treated as "use the default" rather than as an error, so callers can pass
// a partially-populated struct.
type BatchOptions struct {
	// MaxMessages caps the number of frames returned; defaults to DefaultMaxMessages.
	MaxMessages uint32

	// MaxBytes caps the total frame bytes (not payload bytes) consumed; defaults to DefaultMaxBytes.
	MaxBytes uint32

	// DebugChecks enables prefix/suffix verification for every frame decoded in this call.
	DebugChecks bool
}

// Iterator is a cursor over a Segment's committed bytes. It decodes frames
// and hands out zero-copy views into the mapping; it is not safe for
// concurrent use by multiple goroutines, though independent iterators over
// the same segment may run concurrently.
type Iterator struct {
	seg *Segment

	// cursor is relative to the segment's data_offset.
	cursor uint64

	closed atomic.Bool
}

// Next returns a single payload view, or nil if no committed frame is
// available at the current cursor. It is equivalent to NextBatch with
// MaxMessages: 1 and an unbounded MaxBytes.
func (it *Iterator) Next() ([]byte, error) {
	frames, err := it.NextBatch(BatchOptions{MaxMessages: 1, MaxBytes: math.MaxUint32})
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, nil
	}
	return frames[0], nil
}

// NextBatch decodes up to opts.MaxMessages frames, stopping early if the
// accumulated frame bytes would exceed opts.MaxBytes or a partial
// (not-yet-committed) frame is encountered. Returned views alias the
// mapping and are valid only while the segment stays mapped and the
// iterator is not closed.
//
// A FrameCorrupt or CursorOutOfRange error is fatal: the cursor stays where
// it was when the call began and no frames are returned, not even those
// decoded earlier in the same call, so the call makes no progress at all.
func (it *Iterator) NextBatch(opts BatchOptions) ([][]byte, error) {
	if it.closed.Load() {
		return nil, ErrIteratorClosed
	}
	if it.seg.closed.Load() {
		return nil, ErrMappingGone
	}

	maxMessages := opts.MaxMessages
	if maxMessages == 0 {
		maxMessages = DefaultMaxMessages
	}
	maxBytes := uint64(opts.MaxBytes)
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}

	committed := atomic.LoadUint64(it.seg.committedSizePtr())
	if committed < it.seg.dataOffset {
		return nil, ErrCursorOutOfRange
	}
	committedRel := committed - it.seg.dataOffset

	if it.cursor > committedRel {
		return nil, ErrCursorOutOfRange
	}

	var frames [][]byte
	local := it.cursor
	var messages uint32
	var accumulated uint64

	for local < committedRel && messages < maxMessages {
		if committedRel-local < FrameMetadataBytes {
			break // partial frame; wait for more data
		}

		absOffset := it.seg.dataOffset + local
		prefix := binary.LittleEndian.Uint16(it.seg.mem[absOffset : absOffset+LengthFieldBytes])

		if prefix < FrameMetadataBytes {
			if opts.DebugChecks {
				return nil, ErrFrameCorrupt
			}
			return nil, ErrCursorOutOfRange
		}

		if local+uint64(prefix) > committedRel {
			break // partial frame
		}

		if accumulated+uint64(prefix) > maxBytes {
			break
		}

		if opts.DebugChecks {
			suffix := binary.LittleEndian.Uint16(it.seg.mem[absOffset+uint64(prefix)-LengthFieldBytes : absOffset+uint64(prefix)])
			if suffix != prefix {
				return nil, ErrFrameCorrupt
			}
		}

		payload := it.seg.mem[absOffset+LengthFieldBytes : absOffset+uint64(prefix)-LengthFieldBytes]
		frames = append(frames, payload)

		messages++
		accumulated += uint64(prefix)
		local += uint64(prefix)
	}

	it.cursor = local
	return frames, nil
}

// Cursor returns the iterator's current relative offset.
func (it *Iterator) Cursor() uint64 {
	return it.cursor
}

// CommittedSize returns the segment's currently committed size, relative to
// data_offset, via an acquire load.
func (it *Iterator) CommittedSize() (uint64, error) {
	if it.closed.Load() {
		return 0, ErrIteratorClosed
	}
	if it.seg.closed.Load() {
		return 0, ErrMappingGone
	}

	committed := atomic.LoadUint64(it.seg.committedSizePtr())
	if committed < it.seg.dataOffset {
		return 0, ErrCursorOutOfRange
	}
	return committed - it.seg.dataOffset, nil
}

// Seek repositions the cursor. It fails with ErrCursorOutOfRange if position
// exceeds the current committed size.
func (it *Iterator) Seek(position uint64) error {
	committedRel, err := it.CommittedSize()
	if err != nil {
		return err
	}
	if position > committedRel {
		return ErrCursorOutOfRange
	}
	it.cursor = position
	return nil
}

// Close is idempotent; subsequent Next, NextBatch, CommittedSize and Seek
// calls fail with ErrIteratorClosed. Cursor still returns the last position.
func (it *Iterator) Close() error {
	it.closed.Store(true)
	return nil
}
