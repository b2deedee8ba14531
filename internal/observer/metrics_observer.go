package observer

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsObserver collects metrics from motion events and exports them to Prometheus
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalSnapshots      int64
	failedSnapshots     int64
	totalComparisons    int64
	totalMotions        int64
	totalProcessingTime time.Duration

	snapshots      *prometheus.CounterVec
	decodeTime     prometheus.Histogram
	encodedSize    prometheus.Histogram
	diffBlocks     prometheus.Histogram
	motions        prometheus.Counter
	archived       prometheus.Counter
	captureFailure prometheus.Counter
}

// NewMetricsObserver creates a new metrics observer registered on reg
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	factory := promauto.With(reg)
	return &MetricsObserver{
		snapshots: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motion_snapshots_total",
				Help: "Snapshots created, by result",
			},
			[]string{"result"},
		),
		decodeTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name: "motion_snapshot_decode_seconds",
				Help: "Time to decode a frame and extract its features (seconds)",
				Buckets: []float64{
					0.001, 0.005, 0.010, 0.030, 0.060, 0.120, 0.250, 0.500,
				},
			},
		),
		encodedSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name: "motion_snapshot_encoded_bytes",
				Help: "Size of encoded frames (bytes)",
				Buckets: []float64{
					16384, 32768, 65535, 262144, 524288, 1048576, 4194304,
				},
			},
		),
		diffBlocks: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "motion_comparison_diff_blocks",
				Help:    "Differing blocks per comparison",
				Buckets: []float64{0, 1, 4, 16, 64, 256, 1024},
			},
		),
		motions: factory.NewCounter(prometheus.CounterOpts{
			Name: "motion_detected_total",
			Help: "Motions detected",
		}),
		archived: factory.NewCounter(prometheus.CounterOpts{
			Name: "motion_frames_archived_total",
			Help: "Motion frames written to the archive",
		}),
		captureFailure: factory.NewCounter(prometheus.CounterOpts{
			Name: "motion_capture_failures_total",
			Help: "Camera captures that failed",
		}),
	}
}

// OnEvent handles motion events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event MotionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case SnapshotCreated:
		o.totalSnapshots++
		o.totalProcessingTime += event.ProcessingTime
		o.snapshots.WithLabelValues("ok").Inc()
		o.decodeTime.Observe(event.ProcessingTime.Seconds())
		o.encodedSize.Observe(float64(event.EncodedSize))
	case SnapshotFailed:
		o.failedSnapshots++
		o.snapshots.WithLabelValues("failed").Inc()
	case ComparisonCompleted:
		o.totalComparisons++
		o.diffBlocks.Observe(float64(event.DiffCount))
	case MotionDetected:
		o.totalMotions++
		o.motions.Inc()
	case FrameArchived:
		o.archived.Inc()
	case CaptureFailed:
		o.captureFailure.Inc()
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.totalSnapshots > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.totalSnapshots)
	}

	return map[string]interface{}{
		"total_snapshots":     o.totalSnapshots,
		"failed_snapshots":    o.failedSnapshots,
		"total_comparisons":   o.totalComparisons,
		"total_motions":       o.totalMotions,
		"avg_processing_time": avgProcessingTime,
	}
}
