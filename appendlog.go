package shmio

// AppendLog bundles a Segment with the single Writer a typical producer
// needs, mirroring the convenience the original
// SharedLog wrapper gave callers over the lower-level segment/iterator/writer
// triad: one call to open, one handle to write through, one to close.
type AppendLog struct {
	segment *Segment
	writer  *Writer
}

// AppendLogOptions configures OpenAppendLog. It is the writable-only subset
// of OpenOptions; a caller that only needs to read should use Open and
// CreateIterator directly.
type AppendLogOptions struct {
	Path          string
	CapacityBytes uint64
	DebugChecks   bool
}

// OpenAppendLog opens or creates the segment at opts.Path and attaches a
// Writer to it in one step.
func OpenAppendLog(opts AppendLogOptions) (*AppendLog, error) {
	seg, err := Open(OpenOptions{
		Path:          opts.Path,
		Writable:      true,
		CapacityBytes: opts.CapacityBytes,
		DebugChecks:   opts.DebugChecks,
	})
	if err != nil {
		return nil, err
	}

	w, err := seg.CreateWriter()
	if err != nil {
		seg.Close()
		return nil, err
	}

	return &AppendLog{segment: seg, writer: w}, nil
}

// Append reserves a frame for payload, copies payload into it, and commits
// immediately. It is equivalent to Allocate+copy+Commit for the common case
// of one message per commit; callers batching several messages per commit
// should use Writer/CreateWriter directly instead.
func (l *AppendLog) Append(payload []byte) error {
	dst, err := l.writer.Allocate(len(payload))
	if err != nil {
		return err
	}
	copy(dst, payload)
	return l.writer.Commit()
}

// CreateIterator returns a fresh Iterator over the underlying segment.
func (l *AppendLog) CreateIterator(startCursor ...uint64) (*Iterator, error) {
	return l.segment.CreateIterator(startCursor...)
}

// Writer exposes the underlying Writer for callers that want to batch
// several Allocate calls under one Commit.
func (l *AppendLog) Writer() *Writer {
	return l.writer
}

// Close closes the writer and the underlying segment.
func (l *AppendLog) Close() error {
	l.writer.Close()
	return l.segment.Close()
}
