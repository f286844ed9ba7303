package aim

import (
	"io"

	"github.com/sirupsen/logrus"

	"pipelined.dev/aim/metric"
)

const defaultBuffers = 4

// Option provides a way to set runner properties.
type Option func(*Runner)

// WithLogger sets logger to Runner. If this option is not provided, silent
// logger is used.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMetric enables metrics of the run.
func WithMetric(m *metric.Metric) Option {
	return func(r *Runner) {
		r.metric = m
	}
}

// WithBuffers sets how many finished frames can wait for the sink. Values
// below one are ignored.
func WithBuffers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.buffers = n
		}
	}
}

func silentLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
