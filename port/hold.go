package port

import "sort"

// Hold marks a voice of an outlet as still in use after a frame.
type Hold struct {
	Ref
	Voice int
}

// HoldAll returns holds for every voice of outlet ref.
func (t Table) HoldAll(ref Ref) []Hold {
	o, err := t.Outlet(ref)
	if err != nil {
		return nil
	}
	holds := make([]Hold, 0, o.Voices())
	for v := 0; v < o.Voices(); v++ {
		holds = append(holds, Hold{Ref: ref, Voice: v})
	}
	return holds
}

// Unheld lists the voices in the table that no hold refers to. Nothing is
// released, the result is ordered by node, outlet and voice.
func Unheld(t Table, holds []Hold) []Hold {
	held := make(map[Hold]struct{}, len(holds))
	for _, h := range holds {
		held[h] = struct{}{}
	}
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var unheld []Hold
	for _, id := range ids {
		outlets := t[id].Outlets
		names := make([]string, 0, len(outlets))
		for name := range outlets {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for v := 0; v < outlets[name].Voices(); v++ {
				h := Hold{Ref: Ref{Node: id, Outlet: name}, Voice: v}
				if _, ok := held[h]; !ok {
					unheld = append(unheld, h)
				}
			}
		}
	}
	return unheld
}
