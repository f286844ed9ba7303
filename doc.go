/*
Package aim builds and runs audio graphs described in plain text.

Modules

A module is one document. Every top-level line declares a node, indented
lines below it set parameters and connections:

	sine id1
		frequency 440
	out id2
		in <- id1:out

Headers without an id get one allocated. Errors don't stop parsing, they are
written back into the text as annotations and collected in Module.Errors:

	sine id1
		volume 1  # ERROR: Unknown parameter

Only malformed indentation makes Parse fail.

Execution

Plan orders nodes so every node runs after the nodes it reads from. A
dependency cycle is an error and nothing runs. Init prepares the nodes once
and Process runs one frame:

	m, annotated, err := aim.Parse(text)
	...
	err = m.Plan()
	err = m.Init(env)
	frame, err := m.Process(env)

Nodes don't keep references to each other. They resolve their inputs
through the port table of the module on every call.

Runner

Runner repeats frames, mixes outputs of out nodes and hands them to a Sink
in a separate goroutine:

	sink, err := wav.NewSink("out.wav", signal.BitDepth16)
	r, err := aim.NewRunner(m, env, sink)
	err = r.Run(ctx, frames)
*/
package aim
