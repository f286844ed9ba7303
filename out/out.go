// Package out provides the node that sends a signal out of the module.
//
//	out id2
//		in <- id1:out
//		channels 2
//
// All voices of the connected outlet are summed into the output buffer, the
// runner hands that buffer to the audio sink.
package out

import (
	"fmt"

	"pipelined.dev/aim/node"
	"pipelined.dev/aim/port"
	"pipelined.dev/aim/signal"
)

const inlet = "in"

// Out mixes its inlet into a buffer of Channels channels.
type Out struct {
	Channels int
	buffer   signal.Float64
}

// New builds an out node from its definition.
func New(def *node.Definition) node.Node {
	o := Out{Channels: 1}
	def.Ports.Inlet(inlet)
	for _, p := range def.Params() {
		switch p.Key {
		case inlet:
			def.Bind(p, nil)
		case "channels":
			def.Bind(p, node.Positive(&o.Channels))
		default:
			def.Unknown(p)
		}
	}
	return &o
}

// Init allocates the output buffer.
func (o *Out) Init(env node.Environment) error {
	o.buffer = signal.EmptyFloat64(o.Channels, env.BufferSize)
	return nil
}

// Process implements node.Node. An unconnected inlet gives silence.
func (o *Out) Process(id string, env node.Environment, ports port.Table) ([]port.Hold, error) {
	in, ok := ports.Input(id, inlet)
	if !ok {
		o.buffer.Clear()
		return nil, nil
	}
	if err := port.Mix(o.buffer, in); err != nil {
		return nil, fmt.Errorf("%s inlet: %w", inlet, err)
	}
	return ports.HoldAll(*ports[id].Inlets[inlet]), nil
}

// Output returns the buffer mixed in the last frame. It's reused between
// frames.
func (o *Out) Output() signal.Float64 {
	return o.buffer
}
