// Package port defines inlets, outlets and the table that owns every outlet
// buffer of a module.
//
// Nodes never keep references to buffers between frames. A consumer
// resolves the outlet it reads through the Table on every call, the owning
// node is the only one that writes an outlet or changes its voice count.
package port

import (
	"errors"
	"fmt"
	"sort"

	"pipelined.dev/aim/signal"
)

// Kind of data an outlet carries.
type Kind int

const (
	// Signal is mono data: [voice][sample].
	Signal Kind = iota
	// Audio is multi-channel data: [voice][channel][sample].
	Audio
	// Midi is a list of events per voice: [voice][byte].
	Midi
)

var (
	// ErrUnsupportedKind is returned when an operation can't handle the outlet kind.
	ErrUnsupportedKind = errors.New("unsupported outlet kind")
	// ErrNotFound is returned when a node or a port is not in the table.
	ErrNotFound = errors.New("port not found")
)

func (k Kind) String() string {
	switch k {
	case Signal:
		return "signal"
	case Audio:
		return "audio"
	case Midi:
		return "midi"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type (
	// Ref points to an outlet of a node.
	Ref struct {
		Node   string
		Outlet string
	}

	// Outlet holds the voices of one output. Only the field that matches
	// Kind is used.
	Outlet struct {
		Kind     Kind
		Channels int // number of channels of audio outlets
		Signal   [][]float64
		Audio    []signal.Float64
		Midi     [][]byte
	}

	// Ports are the inlets and outlets declared by a node. A nil inlet
	// reference means the inlet is not connected.
	Ports struct {
		Inlets  map[string]*Ref
		Outlets map[string]*Outlet
	}

	// Table maps node ids to their ports. It is the single owner of all
	// outlet buffers of a module.
	Table map[string]*Ports
)

func (r Ref) String() string {
	return r.Node + ":" + r.Outlet
}

// New returns empty ports.
func New() *Ports {
	return &Ports{
		Inlets:  make(map[string]*Ref),
		Outlets: make(map[string]*Outlet),
	}
}

// Inlet declares an unconnected inlet.
func (p *Ports) Inlet(name string) {
	if _, ok := p.Inlets[name]; !ok {
		p.Inlets[name] = nil
	}
}

// Outlet declares an outlet of provided kind. Audio outlets get a single
// channel, use AudioOutlet to set more.
func (p *Ports) Outlet(name string, kind Kind) *Outlet {
	o := &Outlet{Kind: kind}
	if kind == Audio {
		o.Channels = 1
	}
	p.Outlets[name] = o
	return o
}

// AudioOutlet declares an audio outlet with provided number of channels.
func (p *Ports) AudioOutlet(name string, channels int) *Outlet {
	o := p.Outlet(name, Audio)
	o.Channels = channels
	return o
}

// Connect points inlet to the outlet of another node.
func (p *Ports) Connect(inlet string, ref Ref) error {
	if _, ok := p.Inlets[inlet]; !ok {
		return fmt.Errorf("inlet %s: %w", inlet, ErrNotFound)
	}
	p.Inlets[inlet] = &ref
	return nil
}

// Voices returns the number of active voices.
func (o *Outlet) Voices() int {
	switch o.Kind {
	case Signal:
		return len(o.Signal)
	case Audio:
		return len(o.Audio)
	case Midi:
		return len(o.Midi)
	}
	return 0
}

// SetVoices grows or shrinks the outlet to n voices. Buffers are allocated
// lazily and reused when the count changes back. New voices are silent.
func (o *Outlet) SetVoices(n, bufferSize int) {
	switch o.Kind {
	case Signal:
		for len(o.Signal) < n {
			o.Signal = append(o.Signal, make([]float64, bufferSize))
		}
		o.Signal = o.Signal[:n]
	case Audio:
		for len(o.Audio) < n {
			o.Audio = append(o.Audio, signal.EmptyFloat64(o.Channels, bufferSize))
		}
		o.Audio = o.Audio[:n]
	case Midi:
		for len(o.Midi) < n {
			o.Midi = append(o.Midi, nil)
		}
		o.Midi = o.Midi[:n]
	}
}

// Outlet returns the outlet ref points to.
func (t Table) Outlet(ref Ref) (*Outlet, error) {
	p, ok := t[ref.Node]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", ref.Node, ErrNotFound)
	}
	o, ok := p.Outlets[ref.Outlet]
	if !ok {
		return nil, fmt.Errorf("outlet %s: %w", ref, ErrNotFound)
	}
	return o, nil
}

// Input resolves the inlet of node id to the outlet it is connected to. It
// returns false if the inlet is not connected.
func (t Table) Input(id, inlet string) (*Outlet, bool) {
	p, ok := t[id]
	if !ok {
		return nil, false
	}
	ref := p.Inlets[inlet]
	if ref == nil {
		return nil, false
	}
	o, err := t.Outlet(*ref)
	if err != nil {
		return nil, false
	}
	return o, true
}

// Own returns an outlet of node id, nil if it wasn't declared.
func (t Table) Own(id, outlet string) *Outlet {
	p, ok := t[id]
	if !ok {
		return nil
	}
	return p.Outlets[outlet]
}

// Dependencies returns ids of the nodes that node id reads from.
func (t Table) Dependencies(id string) []string {
	p, ok := t[id]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var deps []string
	for _, name := range sortedKeys(p.Inlets) {
		ref := p.Inlets[name]
		if ref == nil {
			continue
		}
		if _, ok := seen[ref.Node]; ok {
			continue
		}
		seen[ref.Node] = struct{}{}
		deps = append(deps, ref.Node)
	}
	return deps
}

func sortedKeys(m map[string]*Ref) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
