// Package node defines the contract of processing nodes and the grammar of
// their parameters.
//
// A node block looks like:
//
//	<type> <id>
//		<key> <value...>
//		<key> <- <node_id>:<outlet>
//		<key> -> <node_id> <inlet>
//
// Constructors read the block through a Definition, declare ports and
// annotate lines they don't understand. Connections are collected as Links
// and resolved by the module once every node is built.
package node

import (
	"pipelined.dev/aim/port"
	"pipelined.dev/aim/signal"
)

type (
	// Environment is fixed for the lifetime of a module run.
	Environment struct {
		BufferSize int
		SampleRate int
	}

	// Node processes one frame at a time.
	//
	// Init is called exactly once before the first frame. Process is called
	// once per frame in execution order. The table is shared: a node writes
	// only its own outlets, reads outlets of other nodes and never keeps
	// references to them between calls. Process returns the voices the
	// node still holds after the frame.
	Node interface {
		Init(env Environment) error
		Process(id string, env Environment, ports port.Table) ([]port.Hold, error)
	}

	// Outputter is implemented by nodes that hand finished frames to the
	// audio sink.
	Outputter interface {
		Output() signal.Float64
	}

	// Constructor builds a node from its definition.
	Constructor func(def *Definition) Node

	// Registry maps node types to their constructors.
	Registry map[string]Constructor
)
