package automaton

import (
	"fmt"
	"io"
	"strings"
)

// ExportDOT prints a Graphviz representation of g to w. label renders an
// edge label; state, when non-nil, renders an extra line inside a state.
func ExportDOT[D any, L comparable](w io.Writer, g *Graph[D, L], label func(L) string, state func(D) string) error {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("    rankdir=LR;\n")

	for i, v := range g.Vertices {
		shape := "circle"
		if g.IsEnd(i) {
			shape = "doublecircle"
		}
		text := fmt.Sprintf("q%d", i)
		if state != nil {
			if extra := state(v.Data); extra != "" {
				text += "\\n" + escape(extra)
			}
		}
		fmt.Fprintf(&b, "    q%d [shape=%s, label=\"%s\"];\n", i, shape, text)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "    q%d -> q%d [label=\"%s\"];\n", e.From, e.To, escape(label(e.Label)))
	}
	if len(g.Vertices) > 0 {
		fmt.Fprintf(&b, "    _start [shape=point]; _start -> q%d;\n", g.Start)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return r.Replace(s)
}
