package aim

import (
	"fmt"
	"time"

	"pipelined.dev/aim/metric"
	"pipelined.dev/aim/node"
	"pipelined.dev/aim/port"
	"pipelined.dev/aim/signal"
)

// Frame is the result of one pass through the execution order.
type Frame struct {
	// Holds are the voices nodes still refer to after the frame.
	Holds []port.Hold
}

// Unheld returns voices of the module nobody holds after the frame.
func (m *Module) Unheld(f Frame) []port.Hold {
	return port.Unheld(m.Ports, f.Holds)
}

func validateEnvironment(env node.Environment) error {
	if env.BufferSize <= 0 || env.SampleRate <= 0 {
		return fmt.Errorf("%w: buffer size %d, sample rate %d", ErrInvalidEnvironment, env.BufferSize, env.SampleRate)
	}
	return nil
}

// Init initializes every constructed node. It must be called exactly once
// before the first frame.
func (m *Module) Init(env node.Environment) error {
	if m.initialized {
		return fmt.Errorf("init module %s: %w", m.ID, ErrInvalidState)
	}
	if err := validateEnvironment(env); err != nil {
		return err
	}
	for _, id := range m.ids {
		n := m.Nodes[id]
		if n == nil {
			continue
		}
		if err := n.Init(env); err != nil {
			return fmt.Errorf("init node %s: %w", id, err)
		}
	}
	m.initialized = true
	return nil
}

// Process runs every node once in execution order. Nodes that failed to
// build are skipped.
func (m *Module) Process(env node.Environment) (Frame, error) {
	return m.process(env, nil)
}

// process calls the measure function of a node, if there is one, after the
// node processed the frame.
func (m *Module) process(env node.Environment, meters map[string]metric.MeasureFunc) (Frame, error) {
	if len(m.Order) != len(m.Nodes) {
		return Frame{}, fmt.Errorf("%w: %d ordered, %d nodes", ErrInvariant, len(m.Order), len(m.Nodes))
	}
	if !m.initialized {
		return Frame{}, fmt.Errorf("process module %s: %w", m.ID, ErrInvalidState)
	}
	var f Frame
	for _, id := range m.Order {
		n, ok := m.Nodes[id]
		if !ok {
			return Frame{}, fmt.Errorf("%w: node %s is not declared", ErrInvariant, id)
		}
		if n == nil {
			continue
		}
		start := time.Now()
		holds, err := n.Process(id, env, m.Ports)
		if err != nil {
			return Frame{}, fmt.Errorf("node %s: %w", id, err)
		}
		if measure := meters[id]; measure != nil {
			measure(int64(env.BufferSize), time.Since(start))
		}
		f.Holds = append(f.Holds, holds...)
	}
	return f, nil
}

// mix sums outputs of all outputters into dst. Outputs with less channels
// are spread over dst channels.
func (m *Module) mix(dst signal.Float64) {
	dst.Clear()
	for _, id := range m.Order {
		o, ok := m.Nodes[id].(node.Outputter)
		if !ok {
			continue
		}
		src := o.Output()
		n := src.NumChannels()
		switch {
		case n == 0:
			continue
		case n >= dst.NumChannels():
			dst.Add(src)
			continue
		}
		for c := range dst {
			s := src[c%n]
			for i := 0; i < len(dst[c]) && i < len(s); i++ {
				dst[c][i] += s[i]
			}
		}
	}
}
