package regexlib

import (
	"strconv"
	"strings"

	"langkit/internal/automaton"
)

// Minimize merges equivalent states by partition refinement: start from
// {accepting, non-accepting} and split classes by the classes of their
// successors until the number of classes stops growing. Missing transfers
// count as a move to a dead class.
func Minimize(d *FA) *FA {
	if d == nil || d.Len() == 0 {
		return d
	}
	alpha := symbols(d, nil)

	// --- 1. initial partition ---------------------------------------------
	class := make([]int, d.Len())
	count := 1
	for s := range class {
		if d.IsEnd(s) {
			class[s] = 1
		}
	}
	if len(d.Ends) > 0 && len(d.Ends) < d.Len() {
		count = 2
	} else {
		for s := range class {
			class[s] = 0
		}
	}

	// --- 2. refinement ----------------------------------------------------
	var sig strings.Builder
	for {
		ids := map[string]int{}
		next := make([]int, d.Len())
		for s := range class {
			sig.Reset()
			sig.WriteString(strconv.Itoa(class[s]))
			for _, c := range alpha {
				sig.WriteByte(',')
				if to, ok := d.Transition(s, c); ok {
					sig.WriteString(strconv.Itoa(class[to]))
				} else {
					sig.WriteByte('-')
				}
			}
			k := sig.String()
			id, ok := ids[k]
			if !ok {
				id = len(ids)
				ids[k] = id
			}
			next[s] = id
		}
		class = next
		if len(ids) == count {
			break
		}
		count = len(ids)
	}

	// --- 3. quotient automaton --------------------------------------------
	out := automaton.New[struct{}, byte]()
	rep := make([]int, count)
	for i := range rep {
		rep[i] = -1
		out.AddState()
	}
	for s, c := range class {
		if rep[c] < 0 {
			rep[c] = s
		}
	}
	for c, s := range rep {
		for _, ei := range d.Vertices[s].Out {
			e := d.Edges[ei]
			out.AddTransfer(c, class[e.To], e.Label)
		}
		if d.IsEnd(s) {
			out.MarkAsEnd(c)
		}
	}
	out.MarkAsStart(class[d.Start])
	return out
}
