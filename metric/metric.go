// Package metric exposes prometheus counters of module runs.
package metric

import (
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace   = "aim"
	moduleLabel = "module"
	typeLabel   = "type"
)

// MeasureFunc captures metrics when node processed a frame.
type MeasureFunc func(samples int64, elapsed time.Duration)

// Metric holds collectors of a run. A nil Metric measures nothing.
type Metric struct {
	frames   *prometheus.CounterVec
	samples  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates collectors and registers them. If reg is nil, collectors are
// not registered.
func New(reg prometheus.Registerer) *Metric {
	m := Metric{
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Number of frames processed by module.",
		}, []string{moduleLabel}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_samples_total",
			Help:      "Number of samples processed by node type.",
		}, []string{typeLabel}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_process_seconds",
			Help:      "Duration of node process calls.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{typeLabel}),
	}
	if reg != nil {
		reg.MustRegister(m.frames, m.samples, m.duration)
	}
	return &m
}

// Meter creates new measure closure for component. Label is the type name
// of the component.
func (m *Metric) Meter(component interface{}) MeasureFunc {
	if m == nil {
		return nil
	}
	t := getType(component)
	samples := m.samples.WithLabelValues(t)
	duration := m.duration.WithLabelValues(t)
	return func(s int64, elapsed time.Duration) {
		samples.Add(float64(s))
		duration.Observe(elapsed.Seconds())
	}
}

// Frame counts a frame of the module.
func (m *Metric) Frame(module string) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(module).Inc()
}

// Collectors returns all collectors of the metric.
func (m *Metric) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{m.frames, m.samples, m.duration}
}

func getType(component interface{}) string {
	rv := reflect.ValueOf(component)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv.Type().String()
}
