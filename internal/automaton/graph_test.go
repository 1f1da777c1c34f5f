package automaton

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStateAfterAndTransition(t *testing.T) {
	g := New[struct{}, byte]()
	s := g.AddState()
	g.MarkAsStart(s)
	a := g.AddStateAfter(s, 'a')
	b := g.AddStateAfter(a, 'b')
	g.MarkAsEnd(b)

	next, ok := g.Transition(s, 'a')
	require.True(t, ok)
	assert.Equal(t, a, next)

	_, ok = g.Transition(s, 'b')
	assert.False(t, ok)

	assert.Equal(t, []int{0}, g.Vertices[a].In)
	assert.Equal(t, []int{1}, g.Vertices[a].Out)
}

func TestMarkAsEndIdempotent(t *testing.T) {
	g := New[struct{}, byte]()
	s := g.AddState()
	g.MarkAsEnd(s)
	g.MarkAsEnd(s)
	assert.Equal(t, []int{s}, g.Ends)
	assert.True(t, g.IsEnd(s))
}

func TestExtendSplicesAtCrossState(t *testing.T) {
	rhs := New[struct{}, byte]()
	r0 := rhs.AddState()
	r1 := rhs.AddStateAfter(r0, 'x')
	rhs.MarkAsStart(r0)
	rhs.MarkAsEnd(r1)

	g := New[struct{}, byte]()
	s := g.AddState()
	mid := g.AddStateAfter(s, 'a')
	end := g.Extend(mid, rhs)

	require.Equal(t, 3, g.Len())
	next, ok := g.Transition(mid, 'x')
	require.True(t, ok)
	assert.Equal(t, end, next)
}

func TestLabelsFirstSeenOrder(t *testing.T) {
	g := New[int, string]()
	s := g.AddStateWithData(7)
	g.AddStateAfter(s, "b")
	g.AddStateAfter(s, "a")
	g.AddStateAfter(s, "b")
	assert.Equal(t, []string{"b", "a"}, g.Labels())
	assert.Equal(t, 7, g.Vertices[s].Data)
}

func TestExportDOT(t *testing.T) {
	g := New[struct{}, byte]()
	s := g.AddState()
	e := g.AddStateAfter(s, '"')
	g.MarkAsEnd(e)

	var buf bytes.Buffer
	err := ExportDOT(&buf, g, func(c byte) string { return string(c) }, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "digraph G {"))
	assert.Contains(t, out, "q1 [shape=doublecircle")
	assert.Contains(t, out, `q0 -> q1 [label="\""];`)
	assert.Contains(t, out, "_start -> q0;")
}
