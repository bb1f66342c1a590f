// Package metric exposes pipeline counters to Prometheus.
package metric

import (
	"sync"

	"github.com/LdDl/facemesh-go/facemesh"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metric implements facemesh.FrameObserver
type Metric struct {
	mu sync.Mutex

	frames              *prometheus.CounterVec
	detectorInvocations prometheus.Counter
	meshInvocations     prometheus.Counter
	rejectedDetections  prometheus.Counter
	fallbacks           prometheus.Counter
	errors              *prometheus.CounterVec
	meshConfidence      prometheus.Histogram
	procTimeHistogram   prometheus.Histogram
	procTime            prometheus.Gauge
}

var _ facemesh.FrameObserver = (*Metric)(nil)

// NewMetric creates collectors and registers them in reg.
// procTimeBuckets defaults to prometheus.DefBuckets when nil.
func NewMetric(reg prometheus.Registerer, procTimeBuckets []float64) (*Metric, error) {
	if procTimeBuckets == nil {
		procTimeBuckets = prometheus.DefBuckets
	}
	m := &Metric{
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facemesh_frames_total",
				Help: "Committed frames by the mode they were processed in.",
			},
			[]string{"mode"},
		),
		detectorInvocations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "facemesh_detector_invocations_total",
				Help: "Frames on which the face detector ran.",
			},
		),
		meshInvocations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "facemesh_mesh_invocations_total",
				Help: "Frames on which the face mesh model ran.",
			},
		),
		rejectedDetections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "facemesh_rejected_detections_total",
				Help: "Detections below the detector confidence threshold.",
			},
		),
		fallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "facemesh_fallbacks_total",
				Help: "Tracking frames that lost the face and fell back to detection.",
			},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facemesh_frame_errors_total",
				Help: "Frames aborted with an error, by kind.",
			},
			[]string{"kind"},
		),
		meshConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "facemesh_mesh_confidence",
				Help:    "Histogram of mesh model confidences.",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		procTimeHistogram: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "facemesh_processing_time_ms_histogram",
				Help:    "Histogram of per-frame processing times.",
				Buckets: procTimeBuckets,
			},
		),
		procTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "facemesh_processing_time_ms",
				Help: "Gauge of the last per-frame processing time.",
			},
		),
	}
	collectors := []prometheus.Collector{
		m.frames,
		m.detectorInvocations,
		m.meshInvocations,
		m.rejectedDetections,
		m.fallbacks,
		m.errors,
		m.meshConfidence,
		m.procTimeHistogram,
		m.procTime,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "Can't register collector")
		}
	}
	return m, nil
}

// ObserveFrame implements facemesh.FrameObserver
func (m *Metric) ObserveFrame(result facemesh.FrameResult) {
	m.lock()
	defer m.unlock()
	m.frames.WithLabelValues(result.Mode.String()).Inc()
	if result.Detected {
		m.detectorInvocations.Inc()
		if !result.MeshInvoked {
			m.rejectedDetections.Inc()
		}
	}
	if result.MeshInvoked {
		m.meshInvocations.Inc()
		m.meshConfidence.Observe(result.MeshConfidence)
	}
	if result.Mode == facemesh.Tracking && result.Next == facemesh.Detecting {
		m.fallbacks.Inc()
	}
}

// AddError counts aborted frame
func (m *Metric) AddError(err error) {
	m.lock()
	defer m.unlock()
	m.errors.WithLabelValues(errorKind(err)).Inc()
}

// AddProcessingTime records per-frame processing time in milliseconds
func (m *Metric) AddProcessingTime(ms float64) {
	m.lock()
	defer m.unlock()
	m.procTimeHistogram.Observe(ms)
	m.procTime.Set(ms)
}

func errorKind(err error) string {
	switch {
	case facemesh.IsGeometryError(err):
		return "geometry"
	case facemesh.IsContractViolation(err):
		return "contract"
	default:
		return "collaborator"
	}
}

func (m *Metric) lock() {
	m.mu.Lock()
}

func (m *Metric) unlock() {
	m.mu.Unlock()
}
