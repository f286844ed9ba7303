// Package gain provides a node that scales a signal.
//
//	gain id3
//		in <- id1:out
//		amount 0.5
//
// Amount can be a constant or connected to another signal, then it's read
// per sample from the voice with the same index, or from the last voice if
// it has fewer voices than the input.
package gain

import (
	"fmt"

	"pipelined.dev/aim/node"
	"pipelined.dev/aim/port"
)

const (
	inlet       = "in"
	amountInlet = "amount"
	outlet      = "out"
)

// Gain multiplies every voice of its input.
type Gain struct {
	Amount float64
}

// New builds a gain node from its definition.
func New(def *node.Definition) node.Node {
	g := Gain{Amount: 1}
	def.Ports.Inlet(inlet)
	def.Ports.Inlet(amountInlet)
	def.Ports.Outlet(outlet, port.Signal)
	for _, p := range def.Params() {
		switch p.Key {
		case inlet, outlet:
			def.Bind(p, nil)
		case amountInlet:
			def.Bind(p, node.Float(&g.Amount))
		default:
			def.Unknown(p)
		}
	}
	return &g
}

// Init implements node.Node.
func (g *Gain) Init(node.Environment) error {
	return nil
}

// Process implements node.Node. Output has as many voices as the input.
func (g *Gain) Process(id string, env node.Environment, ports port.Table) ([]port.Hold, error) {
	out := ports.Own(id, outlet)
	in, ok := ports.Input(id, inlet)
	if !ok {
		out.SetVoices(0, env.BufferSize)
		return nil, nil
	}
	if in.Kind != port.Signal {
		return nil, fmt.Errorf("%s inlet %v: %w", inlet, in.Kind, port.ErrUnsupportedKind)
	}
	amount, modulated := ports.Input(id, amountInlet)
	if modulated && amount.Kind != port.Signal {
		return nil, fmt.Errorf("%s inlet %v: %w", amountInlet, amount.Kind, port.ErrUnsupportedKind)
	}

	out.SetVoices(in.Voices(), env.BufferSize)
	for v := range in.Signal {
		src, dst := in.Signal[v], out.Signal[v]
		var mod []float64
		if modulated && amount.Voices() > 0 {
			mod = amount.Signal[min(v, amount.Voices()-1)]
		}
		for i := range dst {
			a := g.Amount
			if mod != nil {
				a = mod[i]
			}
			dst[i] = src[i] * a
		}
	}

	holds := ports.HoldAll(*ports[id].Inlets[inlet])
	if modulated {
		holds = append(holds, ports.HoldAll(*ports[id].Inlets[amountInlet])...)
	}
	return append(holds, ports.HoldAll(port.Ref{Node: id, Outlet: outlet})...), nil
}
