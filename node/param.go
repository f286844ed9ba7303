package node

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"pipelined.dev/aim/indent"
	"pipelined.dev/aim/port"
)

// Annotation messages.
const (
	MsgUnknownNode        = "Unknown node"
	MsgUnknownParameter   = "Unknown parameter"
	MsgUnknownInlet       = "Unknown inlet"
	MsgUnknownOutlet      = "Unknown outlet"
	MsgInvalidValue       = "Invalid value"
	MsgMissingValue       = "Missing value"
	MsgMissingNodeID      = "Missing node id"
	MsgMissingOutlet      = "Missing outlet, expected <node_id>:<outlet>"
	MsgMissingInlet       = "Missing inlet, expected <node_id> <inlet>"
	MsgExpectedConnection = "Expected connection"
	MsgUnexpectedText     = "Unexpected text after connection"
	MsgUnexpectedNesting  = "Unexpected nesting"
)

const (
	inputArrow   = "<-"
	forwardArrow = "->"
)

// ParamKind tells how a parameter line is written.
type ParamKind int

const (
	// Constant is "key value...".
	Constant ParamKind = iota
	// Input is "key <- node_id:outlet".
	Input
	// Forward is "key -> node_id inlet".
	Forward
)

// Param is one parsed parameter line.
type Param struct {
	Kind  ParamKind
	Key   string
	Value string // Constant: everything after the key
	Node  string // Input: producer, Forward: consumer
	Port  string // Input: producer outlet, Forward: consumer inlet
	Block *indent.Block
}

// ErrInvalidValue is returned by setters when a constant can't be used.
var ErrInvalidValue = errors.New("invalid value")

// ParseParam parses a parameter line. Malformed lines are annotated and
// false is returned.
func ParseParam(b *indent.Block) (Param, bool) {
	for _, c := range b.Children {
		c.Annotate(MsgUnexpectedNesting)
	}
	fields := b.Fields()
	p := Param{Key: fields[0], Block: b}
	if len(fields) == 1 {
		b.Annotate(MsgMissingValue)
		return p, false
	}
	switch fields[1] {
	case inputArrow:
		p.Kind = Input
		if len(fields) < 3 {
			b.Annotate(MsgMissingNodeID)
			return p, false
		}
		if len(fields) > 3 {
			b.Annotate(MsgUnexpectedText)
			return p, false
		}
		i := strings.IndexByte(fields[2], ':')
		if i == 0 {
			b.Annotate(MsgMissingNodeID)
			return p, false
		}
		if i < 0 || i == len(fields[2])-1 {
			b.Annotate(MsgMissingOutlet)
			return p, false
		}
		p.Node, p.Port = fields[2][:i], fields[2][i+1:]
	case forwardArrow:
		p.Kind = Forward
		if len(fields) < 3 {
			b.Annotate(MsgMissingNodeID)
			return p, false
		}
		if len(fields) < 4 {
			b.Annotate(MsgMissingInlet)
			return p, false
		}
		if len(fields) > 4 {
			b.Annotate(MsgUnexpectedText)
			return p, false
		}
		p.Node, p.Port = fields[2], fields[3]
	default:
		p.Kind = Constant
		p.Value = strings.Join(fields[1:], " ")
	}
	return p, true
}

// Ref returns the outlet an Input parameter reads from.
func (p Param) Ref() port.Ref {
	return port.Ref{Node: p.Node, Outlet: p.Port}
}

// Float returns a setter that parses a finite float into v.
func Float(v *float64) func(string) error {
	return func(s string) error {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return ErrInvalidValue
		}
		*v = f
		return nil
	}
}

// FloatRange returns a setter that parses a float within [min, max] into v.
func FloatRange(v *float64, min, max float64) func(string) error {
	return func(s string) error {
		var f float64
		if err := Float(&f)(s); err != nil {
			return err
		}
		if f < min || f > max {
			return ErrInvalidValue
		}
		*v = f
		return nil
	}
}

// Positive returns a setter that parses a positive integer into v.
func Positive(v *int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return ErrInvalidValue
		}
		*v = n
		return nil
	}
}
