package aim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is returned when nodes of a module depend on each other in a
// loop.
var ErrCycle = errors.New("dependency cycle")

// CycleError lists the nodes that could not be ordered.
type CycleError struct {
	IDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v between nodes: %s", ErrCycle, strings.Join(e.IDs, ", "))
}

// Is allows to check the error with errors.Is(err, ErrCycle).
func (e *CycleError) Is(err error) bool {
	return err == ErrCycle
}

// Plan computes the execution order: every node comes after all nodes its
// inlets are connected to. Nodes without connections are ordered freely.
// If nodes depend on each other in a loop, Plan fails with *CycleError and
// the order is left empty.
func (m *Module) Plan() error {
	m.Order = make([]string, 0, len(m.ids))
	remaining := make([]string, 0, len(m.ids))
	deps := make(map[string][]string, len(m.ids))
	for _, id := range m.ids {
		remaining = append(remaining, id)
		deps[id] = m.Ports.Dependencies(id)
	}

	done := make(map[string]struct{}, len(m.ids))
	for len(remaining) > 0 {
		left := remaining[:0]
		for _, id := range remaining {
			if satisfied(deps[id], done) {
				m.Order = append(m.Order, id)
				done[id] = struct{}{}
				continue
			}
			left = append(left, id)
		}
		if len(left) == len(remaining) {
			m.Order = nil
			return &CycleError{IDs: append([]string(nil), left...)}
		}
		remaining = left
	}
	return nil
}

func satisfied(deps []string, done map[string]struct{}) bool {
	for _, d := range deps {
		if _, ok := done[d]; !ok {
			return false
		}
	}
	return true
}
