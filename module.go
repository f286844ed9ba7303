package aim

import (
	"fmt"

	"pipelined.dev/aim/gain"
	"pipelined.dev/aim/ident"
	"pipelined.dev/aim/indent"
	"pipelined.dev/aim/node"
	"pipelined.dev/aim/out"
	"pipelined.dev/aim/pan"
	"pipelined.dev/aim/port"
	"pipelined.dev/aim/sine"
)

// Annotation messages of the graph builder.
const (
	MsgDuplicateID    = "Duplicate node id"
	MsgUnexpectedText = "Unexpected text after node id"
	MsgNodeNotFound   = "Node %s not found"
	MsgNodeInvalid    = "Node %s has errors"
	MsgOutletNotFound = "Node %s has no outlet %s"
	MsgInletNotFound  = "Node %s has no inlet %s"
	MsgInletConnected = "Inlet %s of node %s is already connected"
)

const defaultModuleID = "main"

// Nodes is the registry of node types available in modules.
var Nodes = node.Registry{
	"sine": sine.New,
	"out":  out.New,
	"gain": gain.New,
	"pan":  pan.New,
}

// Module is the graph of one document.
type Module struct {
	ID string
	// Nodes maps node ids to nodes. A nil node means the declaration
	// failed, the id stays reserved.
	Nodes map[string]node.Node
	// Types maps node ids to their declared type.
	Types map[string]string
	Ports port.Table
	// Order is the execution order computed by Plan.
	Order []string
	// Errors are recoverable errors found while parsing.
	Errors []string

	ids         []string // declaration order
	initialized bool
}

// Parse builds a module from text using the default registry. It returns
// the module and the text with ids allocated and errors annotated.
func Parse(text string) (*Module, string, error) {
	return ParseWith(Nodes, text)
}

// ParseWith builds a module from text using provided node registry. Only
// malformed indentation makes it fail, other errors are annotated and
// collected into Module.Errors.
func ParseWith(registry node.Registry, text string) (*Module, string, error) {
	tree, err := indent.Parse(ident.Allocate(text))
	if err != nil {
		return nil, "", fmt.Errorf("parse module: %w", err)
	}

	m := &Module{
		ID:    defaultModuleID,
		Nodes: make(map[string]node.Node),
		Types: make(map[string]string),
		Ports: make(port.Table),
	}
	var defs []*node.Definition
	for _, b := range tree.Blocks {
		if def := m.declare(registry, b); def != nil {
			defs = append(defs, def)
		}
	}
	for _, def := range defs {
		for _, l := range def.Links {
			m.connect(l)
		}
	}

	tree.Walk(func(b *indent.Block, _ int) {
		for _, msg := range b.Errors {
			m.Errors = append(m.Errors, fmt.Sprintf("line %d: %s: %s", b.Number, b.Text, msg))
		}
	})
	return m, tree.String(), nil
}

// declare registers the node of a header block. It returns nil if no node
// was built.
func (m *Module) declare(registry node.Registry, b *indent.Block) *node.Definition {
	fields := b.Fields()
	if len(fields) < 2 {
		b.Annotate(node.MsgMissingNodeID)
		return nil
	}
	nodeType, id := fields[0], fields[1]
	if _, ok := m.Nodes[id]; ok {
		b.Annotate(MsgDuplicateID)
		return nil
	}
	if len(fields) > 2 {
		b.Annotate(MsgUnexpectedText)
	}
	m.ids = append(m.ids, id)
	m.Types[id] = nodeType

	constructor, ok := registry[nodeType]
	if !ok {
		b.Annotate(node.MsgUnknownNode)
		m.Nodes[id] = nil
		return nil
	}
	def := node.NewDefinition(nodeType, id, b)
	m.Nodes[id] = constructor(def)
	m.Ports[id] = def.Ports
	return def
}

// connect resolves a link. Dangling links are annotated on their line and
// left unconnected.
func (m *Module) connect(l node.Link) {
	for _, id := range []string{l.Producer.Node, l.Consumer} {
		n, ok := m.Nodes[id]
		if !ok {
			l.Line.Annotatef(MsgNodeNotFound, id)
			return
		}
		if n == nil {
			l.Line.Annotatef(MsgNodeInvalid, id)
			return
		}
	}
	if _, ok := m.Ports[l.Producer.Node].Outlets[l.Producer.Outlet]; !ok {
		l.Line.Annotatef(MsgOutletNotFound, l.Producer.Node, l.Producer.Outlet)
		return
	}
	consumer := m.Ports[l.Consumer]
	ref, ok := consumer.Inlets[l.Inlet]
	if !ok {
		l.Line.Annotatef(MsgInletNotFound, l.Consumer, l.Inlet)
		return
	}
	if ref != nil {
		l.Line.Annotatef(MsgInletConnected, l.Inlet, l.Consumer)
		return
	}
	// inlet is declared, error is not possible.
	_ = consumer.Connect(l.Inlet, l.Producer)
}

// IDs returns node ids in declaration order.
func (m *Module) IDs() []string {
	return append([]string(nil), m.ids...)
}

// Channels returns the widest output of the module, at least one.
func (m *Module) Channels() int {
	channels := 1
	for _, id := range m.ids {
		if o, ok := m.Nodes[id].(node.Outputter); ok {
			if n := o.Output().NumChannels(); n > channels {
				channels = n
			}
		}
	}
	return channels
}
