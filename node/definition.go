package node

import (
	"pipelined.dev/aim/indent"
	"pipelined.dev/aim/port"
)

type (
	// Definition is what a constructor gets to build a node and what it
	// leaves behind for the module: declared ports and connections.
	Definition struct {
		ID    string
		Type  string
		Block *indent.Block
		Ports *port.Ports
		Links []Link
	}

	// Link connects an outlet of the producer to an inlet of the consumer.
	// It's resolved after all nodes of the module are built.
	Link struct {
		Producer port.Ref
		Consumer string
		Inlet    string
		Line     *indent.Block
	}
)

// NewDefinition returns a definition for node block b.
func NewDefinition(nodeType, id string, b *indent.Block) *Definition {
	return &Definition{
		ID:    id,
		Type:  nodeType,
		Block: b,
		Ports: port.New(),
	}
}

// Params parses the children of the node block. Malformed lines are
// annotated and skipped.
func (d *Definition) Params() []Param {
	params := make([]Param, 0, len(d.Block.Children))
	for _, c := range d.Block.Children {
		if p, ok := ParseParam(c); ok {
			params = append(params, p)
		}
	}
	return params
}

// Bind applies parameter p. Constants are passed to set, a nil set means
// the key only accepts connections. Input connections must name a declared
// inlet, forward connections a declared outlet.
func (d *Definition) Bind(p Param, set func(string) error) {
	switch p.Kind {
	case Constant:
		if set == nil {
			p.Block.Annotate(MsgExpectedConnection)
			return
		}
		if err := set(p.Value); err != nil {
			p.Block.Annotate(MsgInvalidValue)
		}
	case Input:
		if _, ok := d.Ports.Inlets[p.Key]; !ok {
			p.Block.Annotate(MsgUnknownInlet)
			return
		}
		d.Links = append(d.Links, Link{
			Producer: p.Ref(),
			Consumer: d.ID,
			Inlet:    p.Key,
			Line:     p.Block,
		})
	case Forward:
		if _, ok := d.Ports.Outlets[p.Key]; !ok {
			p.Block.Annotate(MsgUnknownOutlet)
			return
		}
		d.Links = append(d.Links, Link{
			Producer: port.Ref{Node: d.ID, Outlet: p.Key},
			Consumer: p.Node,
			Inlet:    p.Port,
			Line:     p.Block,
		})
	}
}

// Unknown annotates a parameter the node doesn't have.
func (d *Definition) Unknown(p Param) {
	p.Block.Annotate(MsgUnknownParameter)
}
