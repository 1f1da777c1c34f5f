package regexlib

import "slices"

// Equivalent reports whether two DFAs accept the same language. It walks the
// product automaton from the pair of start states; a missing transfer moves
// that side into a dead state (-1). Any reachable pair whose sides disagree on
// acceptance is a witness of difference.
func Equivalent(a, b *FA) bool {
	_, ok := Distinguish(a, b)
	return !ok
}

// Distinguish returns the shortest input accepted by exactly one of a and b.
func Distinguish(a, b *FA) (string, bool) {
	type pair struct{ i, j int }
	alpha := unionBytes(symbols(a, nil), symbols(b, nil))

	accept := func(g *FA, s int) bool { return s >= 0 && g.IsEnd(s) }
	step := func(g *FA, s int, c byte) int {
		if s < 0 {
			return -1
		}
		if to, ok := g.Transition(s, c); ok {
			return to
		}
		return -1
	}

	start := pair{a.Start, b.Start}
	witness := map[pair]string{start: ""}
	queue := []pair{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if accept(a, p.i) != accept(b, p.j) {
			return witness[p], true
		}
		for _, c := range alpha {
			np := pair{step(a, p.i, c), step(b, p.j, c)}
			if np.i < 0 && np.j < 0 {
				continue
			}
			if _, seen := witness[np]; seen {
				continue
			}
			witness[np] = witness[p] + string(c)
			queue = append(queue, np)
		}
	}
	return "", false
}

func unionBytes(a, b []byte) []byte {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
}
