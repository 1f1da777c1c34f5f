package tree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langkit/internal/grammar"
	"langkit/internal/lexer"
)

func tok(typ, val string) lexer.Token { return lexer.Token{Type: typ, Value: val, Line: 1} }

func sampleTree() *Node {
	sum := grammar.NewProduction("E", "add", grammar.NonTerm("E"), grammar.Tok("+"), grammar.NonTerm("T"))
	single := grammar.NewProduction("E", "#1", grammar.NonTerm("T"))
	id := grammar.NewProduction("T", "#0", grammar.Tok("id"))

	left := NewNonTerminal(&single, 0).Push(NewNonTerminal(&id, 0).Push(NewTerminal(tok("id", "a"), 0)))
	right := NewNonTerminal(&id, 2).Push(NewTerminal(tok("id", "b"), 2))
	return NewNonTerminal(&sum, 0).Push(left, NewTerminal(tok("+", "+"), 1), right)
}

func TestStringAndTokens(t *testing.T) {
	root := sampleTree()
	assert.Equal(t, `(E (E (T "a")) "+" (T "b"))`, root.String())
	assert.Equal(t, []lexer.Token{tok("id", "a"), tok("+", "+"), tok("id", "b")}, root.Tokens())

	list := NewList(0).Push(NewTerminal(tok("x", "x"), 0), NewTerminal(tok("x", "y"), 1))
	assert.Equal(t, `["x" "y"]`, list.String())
}

func TestZipperNavigation(t *testing.T) {
	root := sampleTree()
	z := NewZipper(root)
	assert.False(t, z.HasParent())
	assert.Equal(t, -1, z.Index())

	z.Child(2)
	assert.Equal(t, "T", z.Focus.Type)
	assert.Nil(t, root.Children[2], "child is detached while focused")
	assert.Equal(t, 2, z.Index())

	z.Sibling(-2)
	assert.Equal(t, "E", z.Focus.Type)
	assert.Equal(t, 0, z.Index())

	z.Child(0)
	assert.Equal(t, 2, z.Depth())
	z.Focus.Label = "changed"

	back := z.Finish()
	require.Same(t, root, back)
	assert.Equal(t, "changed", root.Children[0].Children[0].Label)
	assert.NotNil(t, root.Children[2])
}

func TestZipperPushChild(t *testing.T) {
	z := NewZipper(NewInner(0))
	p := grammar.NewProduction("S", "#0", grammar.Tok("a"))
	z.PushChild(NewNonTerminal(&p, 0))
	z.Focus.Push(NewTerminal(tok("a", "a"), 0))
	root := z.Finish()
	assert.Equal(t, `(_ (S "a"))`, root.String())
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, sampleTree()))
	want := "E ?add?\n" +
		"  E ?#1?\n" +
		"    T ?#0?\n" +
		"      id \"a\" (line 1)\n" +
		"  + \"+\" (line 1)\n" +
		"  T ?#0?\n" +
		"    id \"b\" (line 1)\n"
	assert.Equal(t, want, buf.String())
}
