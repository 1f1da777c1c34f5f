package grammar

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// String renders the production in grammar-file syntax.
func (p Production) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString(" = ?")
	b.WriteString(p.Label)
	b.WriteString("? |")
	b.WriteString(strconv.Itoa(p.Precedence))
	if p.Associativity == Right {
		b.WriteString("<")
	} else {
		b.WriteString(">")
	}
	for _, t := range p.Expr.Terms {
		b.WriteByte(' ')
		b.WriteString(t.String())
	}
	b.WriteString(" .")
	return b.String()
}

func (e Expression) String() string {
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

func (t Term) String() string {
	var open, closing string
	switch t.Kind {
	case NonTerminal:
		if t.Unwrap {
			return "<" + t.Name + ">"
		}
		return t.Name
	case Terminal:
		s := quote(t.Name)
		if t.Value != nil {
			s += " <- " + quote(*t.Value)
		}
		return s
	case Group:
		open, closing = "(", ")"
	case Optional:
		open, closing = "[", "]"
	case Repetition:
		open, closing = "{", "}"
	}
	s := open + " " + t.Expr.String() + " " + closing
	if !t.Unwrap {
		s = "<" + s + ">"
	}
	return s
}

// Dump writes the grammar, one production per line.
func (g *Grammar) Dump(w io.Writer) error {
	for _, p := range g.Productions {
		if _, err := fmt.Fprintln(w, p.String()); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grammar) String() string {
	var b strings.Builder
	_ = g.Dump(&b)
	return b.String()
}

// quote wraps s in double quotes, or single quotes when s contains one.
func quote(s string) string {
	if strings.Contains(s, `"`) {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}
