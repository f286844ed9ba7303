// Package pan provides a node that places a mono signal into a stereo
// field.
//
//	pan id4
//		in <- id1:out
//		position -0.5
//
// Position goes from -1 (left) to 1 (right), panning keeps equal power.
package pan

import (
	"fmt"
	"math"

	"pipelined.dev/aim/node"
	"pipelined.dev/aim/port"
)

const (
	inlet    = "in"
	outlet   = "out"
	channels = 2
)

// Pan turns every signal voice into a stereo audio voice.
type Pan struct {
	Position    float64
	left, right float64
}

// New builds a pan node from its definition.
func New(def *node.Definition) node.Node {
	p := Pan{}
	def.Ports.Inlet(inlet)
	def.Ports.AudioOutlet(outlet, channels)
	for _, param := range def.Params() {
		switch param.Key {
		case inlet, outlet:
			def.Bind(param, nil)
		case "position":
			def.Bind(param, node.FloatRange(&p.Position, -1, 1))
		default:
			def.Unknown(param)
		}
	}
	return &p
}

// Init computes channel gains.
func (p *Pan) Init(node.Environment) error {
	angle := (p.Position + 1) * math.Pi / 4
	p.left, p.right = math.Cos(angle), math.Sin(angle)
	return nil
}

// Process implements node.Node.
func (p *Pan) Process(id string, env node.Environment, ports port.Table) ([]port.Hold, error) {
	out := ports.Own(id, outlet)
	in, ok := ports.Input(id, inlet)
	if !ok {
		out.SetVoices(0, env.BufferSize)
		return nil, nil
	}
	if in.Kind != port.Signal {
		return nil, fmt.Errorf("%s inlet %v: %w", inlet, in.Kind, port.ErrUnsupportedKind)
	}
	out.SetVoices(in.Voices(), env.BufferSize)
	for v, src := range in.Signal {
		dst := out.Audio[v]
		for i := range src {
			dst[0][i] = src[i] * p.left
			dst[1][i] = src[i] * p.right
		}
	}
	holds := ports.HoldAll(*ports[id].Inlets[inlet])
	return append(holds, ports.HoldAll(port.Ref{Node: id, Outlet: outlet})...), nil
}
