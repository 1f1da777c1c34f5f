// Package tree holds concrete syntax trees produced by the parsing engines.
package tree

import (
	"fmt"
	"io"
	"strings"

	"langkit/internal/grammar"
	"langkit/internal/lexer"
)

type Kind int

const (
	Terminal Kind = iota
	NonTerminal
	Inner
	List
)

func (k Kind) String() string {
	switch k {
	case Terminal:
		return "Terminal"
	case NonTerminal:
		return "NonTerminal"
	case Inner:
		return "Inner"
	case List:
		return "List"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is a parse-tree node. Terminal nodes carry Token; NonTerminal nodes
// carry the production type and label plus the production they were built
// from. Inner is a transparent container whose children are spliced into
// the parent; List keeps the children of a non-unwrapped EBNF group. Index
// is the position of the node's first token in the input.
type Node struct {
	Kind     Kind
	Token    lexer.Token
	Type     string
	Label    string
	Rule     *grammar.Production
	Children []*Node
	Index    int
}

func NewTerminal(tok lexer.Token, index int) *Node {
	return &Node{Kind: Terminal, Token: tok, Index: index}
}

func NewNonTerminal(p *grammar.Production, index int) *Node {
	return &Node{Kind: NonTerminal, Type: p.Name, Label: p.Label, Rule: p, Index: index}
}

func NewInner(index int) *Node { return &Node{Kind: Inner, Index: index} }

func NewList(index int) *Node { return &Node{Kind: List, Index: index} }

// Push appends children and returns n.
func (n *Node) Push(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Tokens returns the terminal tokens of the subtree in order.
func (n *Node) Tokens() []lexer.Token {
	var out []lexer.Token
	var walk func(*Node)
	walk = func(x *Node) {
		if x.Kind == Terminal {
			out = append(out, x.Token)
			return
		}
		for _, c := range x.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// String renders the subtree on one line as nested s-expressions.
func (n *Node) String() string {
	var b strings.Builder
	n.sexpr(&b)
	return b.String()
}

func (n *Node) sexpr(b *strings.Builder) {
	switch n.Kind {
	case Terminal:
		fmt.Fprintf(b, "%q", n.Token.Value)
		return
	case NonTerminal:
		b.WriteString("(" + n.Type)
	case Inner:
		b.WriteString("(_")
	case List:
		b.WriteString("[")
	}
	for i, c := range n.Children {
		if i > 0 || n.Kind != List {
			b.WriteByte(' ')
		}
		c.sexpr(b)
	}
	if n.Kind == List {
		b.WriteString("]")
	} else {
		b.WriteString(")")
	}
}

// Fprint writes an indented rendering of the subtree to w.
func Fprint(w io.Writer, n *Node) error {
	var b strings.Builder
	var walk func(x *Node, depth int)
	walk = func(x *Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		switch x.Kind {
		case Terminal:
			fmt.Fprintf(&b, "%s %q (line %d)\n", x.Token.Type, x.Token.Value, x.Token.Line)
		case NonTerminal:
			fmt.Fprintf(&b, "%s ?%s?\n", x.Type, x.Label)
		case Inner:
			b.WriteString("<inner>\n")
		case List:
			b.WriteString("<list>\n")
		}
		for _, c := range x.Children {
			walk(c, depth+1)
		}
	}
	walk(n, 0)
	_, err := io.WriteString(w, b.String())
	return err
}
