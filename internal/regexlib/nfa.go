package regexlib

import (
	"fmt"

	"langkit/internal/automaton"
)

// FA is a finite automaton over bytes. In an NFA the label 0 is an epsilon
// transfer; a DFA never uses it.
type FA = automaton.Graph[struct{}, byte]

const epsilonLabel byte = 0

// BuildNFA performs Thompson's construction. The result has a single
// accepting state, its End.
func BuildNFA(e *Expr) (*FA, error) {
	if err := checkResolved(e); err != nil {
		return nil, err
	}
	return buildNFA(e), nil
}

func buildNFA(node *Expr) *FA {
	g := automaton.New[struct{}, byte]()
	start := g.AddState()
	g.MarkAsStart(start)

	switch node.Kind {
	case Epsilon:
		g.MarkAsEnd(start)
	case Atomic:
		g.MarkAsEnd(g.AddStateAfter(start, node.Char))
	case Concatenation:
		state := start
		for _, op := range node.Operands {
			state = g.Extend(state, buildNFA(op))
		}
		g.MarkAsEnd(state)
	case Union:
		var outs []int
		for _, op := range node.Operands {
			mid := g.AddStateAfter(start, epsilonLabel)
			outs = append(outs, g.Extend(mid, buildNFA(op)))
		}
		end := g.AddState()
		for _, o := range outs {
			g.AddTransfer(o, end, epsilonLabel)
		}
		g.MarkAsEnd(end)
	case Iteration:
		mid := g.AddStateAfter(start, epsilonLabel)
		inner := g.Extend(mid, buildNFA(node.Operands[0]))
		end := g.AddStateAfter(inner, epsilonLabel)
		g.AddTransfer(inner, mid, epsilonLabel)
		g.AddTransfer(start, end, epsilonLabel)
		g.MarkAsEnd(end)
	default:
		panic(fmt.Sprintf("regexlib: unexpected %v node", node.Kind))
	}
	return g
}

func checkResolved(e *Expr) error {
	if e.Kind == Alias {
		return &SyntaxError{Err: ErrUnknownAlias, Detail: "unresolved alias " + e.Name}
	}
	for _, op := range e.Operands {
		if err := checkResolved(op); err != nil {
			return err
		}
	}
	return nil
}

// epsilonClosure extends set (indexed by state) with everything reachable
// over epsilon transfers.
func epsilonClosure(g *FA, set posSet) posSet {
	stack := set.members()
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, ei := range g.Vertices[s].Out {
			e := g.Edges[ei]
			if e.Label == epsilonLabel && !set.has(e.To) {
				set.add(e.To)
				stack = append(stack, e.To)
			}
		}
	}
	return set
}

func move(g *FA, set posSet, c byte) posSet {
	out := newPosSet(g.Len())
	for _, s := range set.members() {
		for _, ei := range g.Vertices[s].Out {
			if e := g.Edges[ei]; e.Label == c {
				out.add(e.To)
			}
		}
	}
	return out
}

// MatchNFA simulates nfa on input and reports whether it is accepted.
func MatchNFA(nfa *FA, input string) bool {
	cur := newPosSet(nfa.Len())
	cur.add(nfa.Start)
	cur = epsilonClosure(nfa, cur)
	for i := 0; i < len(input); i++ {
		if input[i] == epsilonLabel {
			return false
		}
		cur = epsilonClosure(nfa, move(nfa, cur, input[i]))
		if cur.empty() {
			return false
		}
	}
	for _, s := range nfa.Ends {
		if cur.has(s) {
			return true
		}
	}
	return false
}
