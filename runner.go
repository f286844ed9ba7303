package aim

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"pipelined.dev/aim/metric"
	"pipelined.dev/aim/node"
	"pipelined.dev/aim/signal"
)

type (
	// Sink receives finished frames of the module.
	Sink interface {
		// Sink returns the function called with every frame. The buffer
		// must not be retained after the function returns.
		Sink(moduleID string, sampleRate, numChannels, bufferSize int) (func(signal.Float64) error, error)
	}

	// Flusher is implemented by sinks that need to be flushed after the
	// run.
	Flusher interface {
		Flush(moduleID string) error
	}

	// Runner executes the module frame by frame and hands the mixed
	// output to the sink.
	Runner struct {
		module  *Module
		env     node.Environment
		sink    Sink
		logger  logrus.FieldLogger
		metric  *metric.Metric
		buffers int
	}
)

// NewRunner plans and initializes the module. The module can be run only
// by one runner.
func NewRunner(m *Module, env node.Environment, sink Sink, options ...Option) (*Runner, error) {
	if err := validateEnvironment(env); err != nil {
		return nil, err
	}
	if err := m.Plan(); err != nil {
		return nil, fmt.Errorf("plan module %s: %w", m.ID, err)
	}
	if err := m.Init(env); err != nil {
		return nil, err
	}
	r := Runner{
		module:  m,
		env:     env,
		sink:    sink,
		logger:  silentLogger(),
		buffers: defaultBuffers,
	}
	for _, option := range options {
		option(&r)
	}
	return &r, nil
}

// Run processes frames until the counter is reached or the context is
// done. Negative frames run until the context is done. Context
// cancellation is a normal stop. Sink is flushed after the run if it
// implements Flusher.
func (r *Runner) Run(ctx context.Context, frames int) error {
	logger := r.logger.WithFields(logrus.Fields{
		"module": r.module.ID,
		"run":    xid.New().String(),
	})
	channels := r.module.Channels()
	sinkFn, err := r.sink.Sink(r.module.ID, r.env.SampleRate, channels, r.env.BufferSize)
	if err != nil {
		return fmt.Errorf("sink module %s: %w", r.module.ID, err)
	}

	meters := make(map[string]metric.MeasureFunc, len(r.module.Nodes))
	for id, n := range r.module.Nodes {
		if n != nil {
			meters[id] = r.metric.Meter(n)
		}
	}
	for _, msg := range r.module.Errors {
		logger.Warn(msg)
	}

	// at most buffers frames wait in the channel and one is in the sink,
	// so the frame being mixed never aliases them.
	ring := make([]signal.Float64, r.buffers+2)
	for i := range ring {
		ring[i] = signal.EmptyFloat64(channels, r.env.BufferSize)
	}
	out := make(chan signal.Float64, r.buffers)
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for b := range out {
			if err := sinkFn(b); err != nil {
				errc <- fmt.Errorf("sink: %w", err)
				return
			}
		}
	}()

	logger.WithField("channels", channels).Info("run started")
	var (
		errExec error
		n       int
	)
loop:
	for ; frames < 0 || n < frames; n++ {
		select {
		case <-ctx.Done():
			break loop
		case errExec = <-errc:
			break loop
		default:
		}
		f, err := r.module.process(r.env, meters)
		if err != nil {
			errExec = err
			break
		}
		r.metric.Frame(r.module.ID)
		if len(f.Holds) > 0 {
			logger.WithField("frame", n).Debugf("%d voices held", len(f.Holds))
		}

		b := ring[n%len(ring)]
		r.module.mix(b)
		select {
		case out <- b:
		case errExec = <-errc:
			break loop
		case <-ctx.Done():
			break loop
		}
	}
	close(out)
	// wait for the sink goroutine to finish.
	if err, ok := <-errc; ok && errExec == nil {
		errExec = err
	}

	var errFlush error
	if flusher, ok := r.sink.(Flusher); ok {
		if err := flusher.Flush(r.module.ID); err != nil {
			errFlush = fmt.Errorf("flush: %w", err)
		}
	}
	logger.WithField("frames", n).Info("run finished")
	return runError(errExec, errFlush)
}
