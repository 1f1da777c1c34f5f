package model

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langkit/internal/grammar"
	"langkit/internal/lexer"
	"langkit/internal/parser"
	"langkit/internal/regexlib"
	"langkit/internal/tree"
)

const lexSpec = `
digit  [0-9]
%
NUM    {digit}+
ID     [a-z]+
OP?    [+*]
-WS    [\ ]+
`

const exprGrammar = `
E = ?add? E "OP" <- "+" T | T .
T = "NUM" | "ID" .
`

func mustRules(t *testing.T) []lexer.RegularRule {
	t.Helper()
	rules, err := lexer.ReadSpec(strings.NewReader(lexSpec), regexlib.Followpos)
	require.NoError(t, err)
	return rules
}

func mustTable(t *testing.T) *parser.LRTable {
	t.Helper()
	g, err := grammar.Parse(exprGrammar)
	require.NoError(t, err)
	a, err := parser.BuildLALR1(g)
	require.NoError(t, err)
	table, err := parser.BuildLRTable(a, parser.Options{})
	require.NoError(t, err)
	return table
}

func TestRulesRoundTrip(t *testing.T) {
	rules := mustRules(t)

	var buf bytes.Buffer
	require.NoError(t, SaveRules(&buf, rules))
	loaded, err := LoadRules(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(rules, loaded); diff != "" {
		t.Fatalf("rules differ (-want +got):\n%s", diff)
	}
	const input = "x1 + 22*y"
	assert.Equal(t, lexer.Tokenize(input, rules), lexer.Tokenize(input, loaded))
}

func TestGrammarRoundTrip(t *testing.T) {
	g, err := grammar.Parse(`
S = ?x? A <{ "," A }> [ "OP" <- ";" ] .
A = |1> "ID" | |2< "NUM" .
`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, SaveGrammar(&buf, g))
	loaded, err := LoadGrammar(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(g, loaded); diff != "" {
		t.Fatalf("grammar differs (-want +got):\n%s", diff)
	}
}

func TestTableRoundTripParses(t *testing.T) {
	table := mustTable(t)
	tokens := lexer.Tokenize("1 + x + 3", mustRules(t))

	var buf bytes.Buffer
	require.NoError(t, SaveTable(&buf, Table{Engine: "lalr", LR: table}))
	loaded, err := LoadTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, "lalr", loaded.Engine)
	if diff := cmp.Diff(table, loaded.LR, cmpopts.IgnoreUnexported(parser.LRRow{})); diff != "" {
		t.Fatalf("table differs (-want +got):\n%s", diff)
	}

	want, err := parser.ParseLR(table, tokens, parser.Options{})
	require.NoError(t, err)
	got, err := parser.ParseLR(loaded.LR, tokens, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, want.String(), got.String())
}

func TestAutomatonRoundTrip(t *testing.T) {
	g, err := grammar.Parse(exprGrammar)
	require.NoError(t, err)
	a, err := parser.BuildLALR1(g)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, SaveAutomaton(&buf, a))
	loaded, err := LoadAutomaton(&buf)
	require.NoError(t, err)

	require.Equal(t, a.Graph.Len(), loaded.Graph.Len())
	assert.Equal(t, a.Graph.Ends, loaded.Graph.Ends)
	for i := range a.Graph.Vertices {
		assert.Equal(t, a.StateLabel(a.Graph.Vertices[i].Data), loaded.StateLabel(loaded.Graph.Vertices[i].Data), "state %d", i)
	}
}

func TestTokensAndTreeRoundTrip(t *testing.T) {
	tokens := lexer.Tokenize("a + 2", mustRules(t))
	root, err := parser.ParseLR(mustTable(t), tokens, parser.Options{})
	require.NoError(t, err)

	dir := t.TempDir()
	tokPath := filepath.Join(dir, "input.tokens")
	treePath := filepath.Join(dir, "input.tree")
	require.NoError(t, SaveFile(tokPath, KindTokens, tokens))
	require.NoError(t, SaveFile(treePath, KindTree, root))

	gotTokens, err := LoadFile[[]lexer.Token](tokPath, KindTokens)
	require.NoError(t, err)
	assert.Equal(t, tokens, gotTokens)

	gotRoot, err := LoadFile[*tree.Node](treePath, KindTree)
	require.NoError(t, err)
	if diff := cmp.Diff(root, gotRoot); diff != "" {
		t.Fatalf("tree differs (-want +got):\n%s", diff)
	}
	assert.Equal(t, root.Tokens(), gotRoot.Tokens())
}

func TestEncodingIsDeterministic(t *testing.T) {
	rules := mustRules(t)
	first, err := Encode(KindRules, rules)
	require.NoError(t, err)
	second, err := Encode(KindRules, rules)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeRejects(t *testing.T) {
	data, err := Encode(KindTokens, []lexer.Token{{Type: "ID", Value: "x", Line: 1}})
	require.NoError(t, err)

	_, err = Decode[[]lexer.RegularRule](data, KindRules)
	assert.ErrorIs(t, err, ErrKind)

	reencode := func(edit func(*Envelope)) []byte {
		env, err := Peek(data)
		require.NoError(t, err)
		edit(&env)
		out, err := cbor.Marshal(env)
		require.NoError(t, err)
		return out
	}

	tampered := reencode(func(e *Envelope) {
		e.Digest = append([]byte(nil), e.Digest...)
		e.Digest[0] ^= 0xff
	})
	_, err = Decode[[]lexer.Token](tampered, KindTokens)
	assert.ErrorIs(t, err, ErrDigest)

	for _, v := range []string{"v2.0.0", "v1.9.0", "1.0.0", ""} {
		future := reencode(func(e *Envelope) { e.Version = v })
		_, err = Decode[[]lexer.Token](future, KindTokens)
		assert.ErrorIs(t, err, ErrVersion, v)
	}

	older := reencode(func(e *Envelope) { e.Version = "v1.0.0-rc.1" })
	_, err = Decode[[]lexer.Token](older, KindTokens)
	assert.NoError(t, err)

	_, err = Decode[[]lexer.Token]([]byte("not cbor"), KindTokens)
	assert.Error(t, err)
}
