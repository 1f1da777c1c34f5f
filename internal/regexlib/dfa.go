package regexlib

import (
	"slices"

	"langkit/internal/automaton"
)

// symbols returns the non-epsilon labels of g restricted to charmap, sorted.
// A nil charmap keeps every label.
func symbols(g *FA, charmap []byte) []byte {
	var allowed [256]bool
	for _, c := range charmap {
		allowed[c] = true
	}
	var out []byte
	for _, c := range g.Labels() {
		if c == epsilonLabel {
			continue
		}
		if charmap == nil || allowed[c] {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

// NFAToDFA is the subset construction. A subset is accepting iff it contains
// an accepting NFA state.
func NFAToDFA(nfa *FA, charmap []byte) *FA {
	alpha := symbols(nfa, charmap)

	init := newPosSet(nfa.Len())
	init.add(nfa.Start)
	init = epsilonClosure(nfa, init)

	d := automaton.New[struct{}, byte]()
	seen := map[string]int{init.key(): d.AddState()}
	d.MarkAsStart(0)
	sets := []posSet{init}

	accepting := func(set posSet) bool {
		for _, e := range nfa.Ends {
			if set.has(e) {
				return true
			}
		}
		return false
	}
	if accepting(init) {
		d.MarkAsEnd(0)
	}

	for cur := 0; cur < len(sets); cur++ {
		for _, c := range alpha {
			next := move(nfa, sets[cur], c)
			if next.empty() {
				continue
			}
			next = epsilonClosure(nfa, next)
			k := next.key()
			to, ok := seen[k]
			if !ok {
				to = d.AddState()
				seen[k] = to
				sets = append(sets, next)
				if accepting(next) {
					d.MarkAsEnd(to)
				}
			}
			d.AddTransfer(cur, to, c)
		}
	}
	return d
}

// ---- followpos construction ------------------------------------------------

type posInfo struct {
	nullable bool
	first    posSet
	last     posSet
}

type followBuilder struct {
	chars  []byte // position -> symbol
	follow []posSet
	n      int
}

func countPositions(e *Expr) int {
	switch e.Kind {
	case Atomic:
		return 1
	case Epsilon:
		return 0
	}
	n := 0
	for _, op := range e.Operands {
		n += countPositions(op)
	}
	return n
}

func (b *followBuilder) visit(e *Expr) posInfo {
	switch e.Kind {
	case Epsilon:
		return posInfo{nullable: true, first: newPosSet(b.n), last: newPosSet(b.n)}
	case Atomic:
		p := len(b.chars)
		b.chars = append(b.chars, e.Char)
		b.follow = append(b.follow, newPosSet(b.n))
		s := newPosSet(b.n)
		s.add(p)
		return posInfo{first: s, last: s.clone()}
	case Union:
		out := posInfo{first: newPosSet(b.n), last: newPosSet(b.n)}
		for _, op := range e.Operands {
			in := b.visit(op)
			out.nullable = out.nullable || in.nullable
			out.first.union(in.first)
			out.last.union(in.last)
		}
		return out
	case Concatenation:
		out := posInfo{nullable: true, first: newPosSet(b.n), last: newPosSet(b.n)}
		for _, op := range e.Operands {
			in := b.visit(op)
			for _, p := range out.last.members() {
				b.follow[p].union(in.first)
			}
			if out.nullable {
				out.first.union(in.first)
			}
			if in.nullable {
				out.last.union(in.last)
			} else {
				out.last = in.last.clone()
			}
			out.nullable = out.nullable && in.nullable
		}
		return out
	case Iteration:
		in := b.visit(e.Operands[0])
		for _, p := range in.last.members() {
			b.follow[p].union(in.first)
		}
		return posInfo{nullable: true, first: in.first, last: in.last}
	}
	panic("regexlib: unexpected " + e.Kind.String() + " node")
}

// BuildDFA builds a DFA directly from the expression using followpos. The
// expression is augmented with an end-marker position that never appears in
// the alphabet; states containing it are accepting.
func BuildDFA(e *Expr, charmap []byte) (*FA, error) {
	if err := checkResolved(e); err != nil {
		return nil, err
	}

	b := &followBuilder{n: countPositions(e) + 1}
	root := b.visit(e)

	end := len(b.chars)
	b.chars = append(b.chars, epsilonLabel)
	b.follow = append(b.follow, newPosSet(b.n))
	for _, p := range root.last.members() {
		b.follow[p].add(end)
	}
	init := root.first.clone()
	if root.nullable {
		init.add(end)
	}

	var allowed [256]bool
	if charmap == nil {
		for _, c := range b.chars[:end] {
			allowed[c] = true
		}
	} else {
		for _, c := range charmap {
			allowed[c] = true
		}
	}

	d := automaton.New[struct{}, byte]()
	seen := map[string]int{init.key(): d.AddState()}
	d.MarkAsStart(0)
	if init.has(end) {
		d.MarkAsEnd(0)
	}
	sets := []posSet{init}

	for cur := 0; cur < len(sets); cur++ {
		// group the positions of the state by symbol, in symbol order
		var by [256]posSet
		var order []byte
		for _, p := range sets[cur].members() {
			c := b.chars[p]
			if p == end || !allowed[c] {
				continue
			}
			if by[c] == nil {
				by[c] = newPosSet(b.n)
				order = append(order, c)
			}
			by[c].union(b.follow[p])
		}
		slices.Sort(order)

		for _, c := range order {
			next := by[c]
			if next.empty() {
				continue
			}
			k := next.key()
			to, ok := seen[k]
			if !ok {
				to = d.AddState()
				seen[k] = to
				sets = append(sets, next)
				if next.has(end) {
					d.MarkAsEnd(to)
				}
			}
			d.AddTransfer(cur, to, c)
		}
	}
	return d, nil
}
