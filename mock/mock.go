// Package mock provides mocks for nodes and sinks and allows to execute
// integration tests.
package mock

import (
	"pipelined.dev/aim/node"
	"pipelined.dev/aim/port"
	"pipelined.dev/aim/signal"
)

const (
	inlet  = "in"
	outlet = "out"
)

type (
	// Factory builds mock nodes and keeps them by id. Use its New method
	// as a node constructor.
	Factory struct {
		Nodes map[string]*Node
		// Calls is the sequence of processed node ids.
		Calls       []string
		ErrorOnCall error
		ErrorOnInit error
	}

	// Node mocks a node.Node. It has inlet in and signal outlet out. If
	// the inlet is connected, every input voice is copied to the output
	// with Value added, otherwise Voices voices of Value are written.
	Node struct {
		counter
		factory     *Factory
		Value       float64
		Voices      int
		Initialized int
	}

	// Sink mocks up aim.Sink interface.
	// Buffer is not thread-safe, so should not be checked while module is running.
	Sink struct {
		counter
		buffer      signal.Float64
		ModuleID    string
		SampleRate  int
		NumChannels int
		Discard     bool
		ErrorOnCall error
		ErrorOnSink error
		Hooks
	}

	// Hooks allows to mock sink hooks.
	Hooks struct {
		Flushed      bool
		ErrorOnFlush error
	}
)

// New implements node.Constructor. Parameter value is a constant,
// parameter voices sets the number of voices.
func (f *Factory) New(def *node.Definition) node.Node {
	if f.Nodes == nil {
		f.Nodes = make(map[string]*Node)
	}
	n := Node{factory: f, Voices: 1}
	def.Ports.Inlet(inlet)
	def.Ports.Outlet(outlet, port.Signal)
	for _, p := range def.Params() {
		switch p.Key {
		case inlet, outlet:
			def.Bind(p, nil)
		case "value":
			def.Bind(p, node.Float(&n.Value))
		case "voices":
			def.Bind(p, node.Positive(&n.Voices))
		default:
			def.Unknown(p)
		}
	}
	f.Nodes[def.ID] = &n
	return &n
}

// Init implements node.Node.
func (m *Node) Init(node.Environment) error {
	m.Initialized++
	return m.factory.ErrorOnInit
}

// Process implements node.Node.
func (m *Node) Process(id string, env node.Environment, ports port.Table) ([]port.Hold, error) {
	m.factory.Calls = append(m.factory.Calls, id)
	if m.factory.ErrorOnCall != nil {
		return nil, m.factory.ErrorOnCall
	}
	out := ports.Own(id, outlet)
	in, ok := ports.Input(id, inlet)
	if ok && in.Kind == port.Signal {
		out.SetVoices(in.Voices(), env.BufferSize)
		for v := range in.Signal {
			for i := range out.Signal[v] {
				out.Signal[v][i] = in.Signal[v][i] + m.Value
			}
		}
	} else {
		out.SetVoices(m.Voices, env.BufferSize)
		for v := range out.Signal {
			for i := range out.Signal[v] {
				out.Signal[v][i] = m.Value
			}
		}
	}
	m.advance(env.BufferSize)
	return ports.HoldAll(port.Ref{Node: id, Outlet: outlet}), nil
}

// Sink implementation for runner.
func (m *Sink) Sink(moduleID string, sampleRate, numChannels, bufferSize int) (func(signal.Float64) error, error) {
	if m.ErrorOnSink != nil {
		return nil, m.ErrorOnSink
	}
	m.ModuleID, m.SampleRate, m.NumChannels = moduleID, sampleRate, numChannels
	m.buffer = make(signal.Float64, numChannels)
	return func(b signal.Float64) error {
		if m.ErrorOnCall != nil {
			return m.ErrorOnCall
		}
		if !m.Discard {
			for c := range b {
				m.buffer[c] = append(m.buffer[c], b[c]...)
			}
		}
		m.advance(b.Size())
		return nil
	}, nil
}

// Flush implements aim.Flusher.
func (m *Sink) Flush(string) error {
	m.Flushed = true
	return m.ErrorOnFlush
}

// Buffer returns sink's buffer.
func (m *Sink) Buffer() signal.Float64 {
	return m.buffer
}

// counter counts messages and samples.
type counter struct {
	messages int
	samples  int
}

// Advance counter's metrics.
func (c *counter) advance(size int) {
	c.messages++
	c.samples = c.samples + size
}

// Count returns messages and samples metrics.
func (c *counter) Count() (int, int) {
	return c.messages, c.samples
}
