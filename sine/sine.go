// Package sine provides a sine wave generator node.
//
//	sine id1
//		frequency 440
//		amplitude 0.5
//
// Frequency can be connected to a signal outlet, then the generator plays
// one voice per voice of that outlet and reads the frequency per sample.
package sine

import (
	"fmt"
	"math"

	"pipelined.dev/aim/node"
	"pipelined.dev/aim/port"
)

// DefaultFrequency is used when frequency is neither set nor connected.
const DefaultFrequency = 440.0

const (
	frequencyInlet = "frequency"
	outlet         = "out"
)

// Sine generates a sine wave into voices of its out outlet.
type Sine struct {
	Frequency float64
	Amplitude float64
	phases    []float64
}

// New builds a sine node from its definition.
func New(def *node.Definition) node.Node {
	s := Sine{
		Frequency: DefaultFrequency,
		Amplitude: 1,
	}
	def.Ports.Inlet(frequencyInlet)
	def.Ports.Outlet(outlet, port.Signal)
	for _, p := range def.Params() {
		switch p.Key {
		case frequencyInlet:
			def.Bind(p, node.Float(&s.Frequency))
		case "amplitude":
			def.Bind(p, node.Float(&s.Amplitude))
		case outlet:
			def.Bind(p, nil)
		default:
			def.Unknown(p)
		}
	}
	return &s
}

// Init implements node.Node.
func (s *Sine) Init(node.Environment) error {
	s.phases = s.phases[:0]
	return nil
}

// Process implements node.Node.
func (s *Sine) Process(id string, env node.Environment, ports port.Table) ([]port.Hold, error) {
	out := ports.Own(id, outlet)
	step := 2 * math.Pi / float64(env.SampleRate)
	in, connected := ports.Input(id, frequencyInlet)
	if connected && in.Kind != port.Signal {
		return nil, fmt.Errorf("%s inlet %v: %w", frequencyInlet, in.Kind, port.ErrUnsupportedKind)
	}
	if !connected {
		out.SetVoices(1, env.BufferSize)
		s.voices(1)
		s.phases[0] = s.generate(out.Signal[0], s.phases[0], func(int) float64 {
			return s.Frequency * step
		})
		return ports.HoldAll(port.Ref{Node: id, Outlet: outlet}), nil
	}

	out.SetVoices(in.Voices(), env.BufferSize)
	s.voices(in.Voices())
	for v := range in.Signal {
		frequency := in.Signal[v]
		s.phases[v] = s.generate(out.Signal[v], s.phases[v], func(i int) float64 {
			return frequency[i] * step
		})
	}
	holds := ports.HoldAll(*ports[id].Inlets[frequencyInlet])
	return append(holds, ports.HoldAll(port.Ref{Node: id, Outlet: outlet})...), nil
}

// generate fills buf advancing phase by increment(i) per sample and returns
// the phase wrapped into [0, 2π).
func (s *Sine) generate(buf []float64, phase float64, increment func(int) float64) float64 {
	for i := range buf {
		buf[i] = s.Amplitude * math.Sin(phase)
		phase = math.Mod(phase+increment(i), 2*math.Pi)
		if phase < 0 {
			phase += 2 * math.Pi
		}
	}
	return phase
}

// voices keeps one phase per voice.
func (s *Sine) voices(n int) {
	for len(s.phases) < n {
		s.phases = append(s.phases, 0)
	}
	s.phases = s.phases[:n]
}
