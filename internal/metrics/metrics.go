// Package metrics collects the Prometheus instrumentation shmioctl's
// produce and consume subcommands report against a segment.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Segment holds the counters and histograms exercised while appending to
// and iterating a segment. All names are registered under the
// "shmio_segment_" prefix.
type Segment struct {
	FramesWritten    prometheus.Counter
	BytesCommitted   prometheus.Counter
	FramesRead       prometheus.Counter
	SegmentFullErrs  prometheus.Counter
	FrameCorruptErrs prometheus.Counter
	CommitLatency    prometheus.Histogram
}

// NewSegment registers a fresh Segment metric set against registerer, which
// may be prometheus.NewRegistry() or the default global registry. runID is
// attached to every collector as a constant "run_id" label, the same
// correlation ID shmioctl writes onto its log lines, so a run's metrics and
// log output can be joined in aggregation.
func NewSegment(registerer prometheus.Registerer, runID string) *Segment {
	reg := prometheus.WrapRegistererWithPrefix("shmio_segment_", registerer)
	constLabels := prometheus.Labels{"run_id": runID}

	m := &Segment{
		FramesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "frames_written_total",
			Help:        "Total number of frames committed by a Writer.",
			ConstLabels: constLabels,
		}),
		BytesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bytes_committed_total",
			Help:        "Total number of frame bytes (including metadata) committed.",
			ConstLabels: constLabels,
		}),
		FramesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "frames_read_total",
			Help:        "Total number of frames returned by an Iterator.",
			ConstLabels: constLabels,
		}),
		SegmentFullErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "segment_full_errors_total",
			Help:        "Total number of Allocate calls that failed with ErrSegmentFull.",
			ConstLabels: constLabels,
		}),
		FrameCorruptErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "frame_corrupt_errors_total",
			Help:        "Total number of debug-mode frame corruption detections.",
			ConstLabels: constLabels,
		}),
		CommitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "commit_latency_seconds",
			Help:        "Latency of Writer.Commit calls.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		m.FramesWritten,
		m.BytesCommitted,
		m.FramesRead,
		m.SegmentFullErrs,
		m.FrameCorruptErrs,
		m.CommitLatency,
	)

	return m
}
