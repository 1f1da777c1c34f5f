package regexlib

import (
	"fmt"
	"io"

	"langkit/internal/automaton"
)

// ExportDOT prints a Graphviz representation of an NFA or DFA to w.
func ExportDOT(w io.Writer, g *FA) error {
	return automaton.ExportDOT(w, g, byteLabel, nil)
}

func byteLabel(c byte) string {
	switch {
	case c == epsilonLabel:
		return "ε"
	case c > ' ' && c < 0x7f:
		return string(c)
	}
	return fmt.Sprintf("\\x%02x", c)
}
