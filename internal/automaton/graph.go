// Package automaton holds the directed labelled multigraph shared by the
// regular-expression automata and the LR item automata.
package automaton

// Vertex is a graph state with the indices of its incoming and outgoing edges.
type Vertex[D any] struct {
	In   []int
	Out  []int
	Data D
}

// Edge is a labelled transfer between two states.
type Edge[L comparable] struct {
	From  int
	To    int
	Label L
}

// Graph is a directed multigraph with a start state and a set of accepting
// states. End is the most recently marked accepting state; Extend uses it as
// the exit of a spliced sub-graph.
type Graph[D any, L comparable] struct {
	Vertices []Vertex[D]
	Edges    []Edge[L]
	Start    int
	End      int
	Ends     []int
}

// New returns an empty graph.
func New[D any, L comparable]() *Graph[D, L] {
	return &Graph[D, L]{}
}

func (g *Graph[D, L]) Len() int { return len(g.Vertices) }

// AddState appends a state with a zero payload and returns its index.
func (g *Graph[D, L]) AddState() int {
	var zero D
	return g.AddStateWithData(zero)
}

func (g *Graph[D, L]) AddStateWithData(data D) int {
	g.Vertices = append(g.Vertices, Vertex[D]{Data: data})
	return len(g.Vertices) - 1
}

// AddStateAfter appends a state reached from prev on label.
func (g *Graph[D, L]) AddStateAfter(prev int, label L) int {
	s := g.AddState()
	g.AddTransfer(prev, s, label)
	return s
}

// AddTransfer adds an edge and returns its index.
func (g *Graph[D, L]) AddTransfer(from, to int, label L) int {
	g.Edges = append(g.Edges, Edge[L]{From: from, To: to, Label: label})
	e := len(g.Edges) - 1
	g.Vertices[from].Out = append(g.Vertices[from].Out, e)
	g.Vertices[to].In = append(g.Vertices[to].In, e)
	return e
}

func (g *Graph[D, L]) MarkAsStart(s int) { g.Start = s }

// MarkAsEnd adds s to the accepting set. Marking twice is a no-op apart from
// making s the current End.
func (g *Graph[D, L]) MarkAsEnd(s int) {
	g.End = s
	if !g.IsEnd(s) {
		g.Ends = append(g.Ends, s)
	}
}

func (g *Graph[D, L]) IsEnd(s int) bool {
	for _, e := range g.Ends {
		if e == s {
			return true
		}
	}
	return false
}

// Transition returns the target of the first edge leaving state with label.
func (g *Graph[D, L]) Transition(state int, label L) (int, bool) {
	for _, e := range g.Vertices[state].Out {
		if g.Edges[e].Label == label {
			return g.Edges[e].To, true
		}
	}
	return 0, false
}

// Extend splices rhs into g: rhs.Start is identified with cross and every
// other rhs state is copied. It returns the copy of rhs.End. Payloads of the
// copied states are carried over; the payload of cross is kept.
func (g *Graph[D, L]) Extend(cross int, rhs *Graph[D, L]) int {
	mapping := make([]int, len(rhs.Vertices))
	for i, v := range rhs.Vertices {
		if i == rhs.Start {
			mapping[i] = cross
			continue
		}
		mapping[i] = g.AddStateWithData(v.Data)
	}
	for _, e := range rhs.Edges {
		g.AddTransfer(mapping[e.From], mapping[e.To], e.Label)
	}
	return mapping[rhs.End]
}

// Labels returns the distinct edge labels in first-seen order.
func (g *Graph[D, L]) Labels() []L {
	seen := make(map[L]struct{})
	var out []L
	for _, e := range g.Edges {
		if _, ok := seen[e.Label]; ok {
			continue
		}
		seen[e.Label] = struct{}{}
		out = append(out, e.Label)
	}
	return out
}
