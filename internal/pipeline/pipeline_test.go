package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langkit/internal/grammar"
	"langkit/internal/lexer"
	"langkit/internal/parser"
	"langkit/internal/regexlib"
	"langkit/internal/tree"
)

const calcLex = `
NUM    [0-9]+
OP     [+*()]
-WS    [\ ]+
`

const calcGrammar = `
Expr   = ?add? Expr "OP" <- "+" Term | Term .
Term   = ?mul? Term "OP" <- "*" Factor | Factor .
Factor = "NUM" | ?paren? "OP" <- "(" Expr "OP" <- ")" .
`

func mustGrammar(t *testing.T, src string) *grammar.Grammar {
	t.Helper()
	g, err := grammar.Parse(src)
	require.NoError(t, err)
	return g
}

func toks(types ...string) []lexer.Token {
	out := make([]lexer.Token, len(types))
	for i, typ := range types {
		out[i] = lexer.Token{Type: typ, Value: typ, Line: 1}
	}
	return out
}

// shape renders the nonterminals of a tree with their labels.
func shape(n *tree.Node) string {
	var b strings.Builder
	var walk func(*tree.Node)
	walk = func(x *tree.Node) {
		switch x.Kind {
		case tree.Terminal:
			b.WriteString(x.Token.Value + " ")
			return
		case tree.NonTerminal:
			b.WriteString(x.Type + "?" + x.Label + "?[")
		default:
			b.WriteString("[")
		}
		for _, c := range x.Children {
			walk(c)
		}
		b.WriteString("] ")
	}
	walk(n)
	return b.String()
}

func TestParseEngine(t *testing.T) {
	e, err := ParseEngine("glr")
	require.NoError(t, err)
	assert.Equal(t, GLR, e)

	_, err = ParseEngine("lalr1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "lalr"`)
}

func TestLeftRecursiveGrammarThroughLL(t *testing.T) {
	g := mustGrammar(t, `
E = E "+" T | T .
T = "id" .
`)
	input := toks("id", "+", "id")
	root, err := Parse(g, input, LL, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, `(E (E (T "id")) "+" (T "id"))`, root.String())

	direct, err := Parse(g, input, LR0, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, shape(direct), shape(root))
}

func TestEnginesAgreeOnLexedInput(t *testing.T) {
	rules, err := lexer.ReadSpec(strings.NewReader(calcLex), regexlib.Thompson)
	require.NoError(t, err)
	tokens := lexer.Tokenize("1 + 2 * (3 + 4)", rules)
	require.Len(t, tokens, 9)

	g := mustGrammar(t, calcGrammar)
	const want = `(Expr (Expr (Term (Factor "1"))) "+" (Term (Term (Factor "2")) "*" (Factor "(" (Expr (Expr (Term (Factor "3"))) "+" (Term (Factor "4"))) ")")))`

	var reference string
	for _, e := range []Engine{LL, RD, LALR, GLR} {
		root, err := Parse(g, tokens, e, parser.Options{})
		require.NoError(t, err, e)
		assert.Equal(t, want, root.String(), e)
		assert.Equal(t, "add", root.Label, e)
		if reference == "" {
			reference = shape(root)
			continue
		}
		assert.Equal(t, reference, shape(root), e)
	}
}

func TestEnginesAgreeAfterFactoring(t *testing.T) {
	g := mustGrammar(t, `S = ?a? S "x" "y" | ?b? S "x" "z" | "w" .`)
	input := toks("w", "x", "z", "x", "y")

	for _, e := range []Engine{LL, RD, LR0, LALR, GLR} {
		root, err := Parse(g, input, e, parser.Options{})
		require.NoError(t, err, e)
		assert.Equal(t, `(S (S (S "w") "x" "z") "x" "y")`, root.String(), e)
		assert.Equal(t, `S?a?[S?b?[S?#2?[w ] x z ] x y ] `, shape(root), e)
		require.NotNil(t, root.Rule, e)
		assert.True(t, root.Rule.Equal(g.Productions[0]), "%s: %s", e, root.Rule)
	}
}

func TestEBNFTreesAgree(t *testing.T) {
	g := mustGrammar(t, `
Call = "id" "(" [ Args ] ")" .
Args = Expr <{ "," Expr }> .
Expr = "id" | "n" .
`)
	cases := map[string][]string{
		`(Call "id" "(" (Args (Expr "id") ["," (Expr "n") "," (Expr "id")]) ")")`: {"id", "(", "id", ",", "n", ",", "id", ")"},
		`(Call "id" "(" (Args (Expr "n") []) ")")`:                                {"id", "(", "n", ")"},
		`(Call "id" "(" ")")`:                                                     {"id", "(", ")"},
	}
	for _, e := range []Engine{LL, RD, LALR, GLR} {
		for want, input := range cases {
			root, err := Parse(g, toks(input...), e, parser.Options{})
			require.NoError(t, err, e)
			assert.Equal(t, want, root.String(), e)
		}
	}
}

func TestParseErrorsPerEngine(t *testing.T) {
	g := mustGrammar(t, calcGrammar)
	rules, err := lexer.ReadSpec(strings.NewReader(calcLex), regexlib.Followpos)
	require.NoError(t, err)
	tokens := lexer.Tokenize("1 + * 2", rules)

	for _, e := range []Engine{LL, RD, LALR, GLR} {
		_, err := Parse(g, tokens, e, parser.Options{})
		require.Error(t, err, e)
		assert.Contains(t, err.Error(), "token 2", e)
	}
}

func TestStrictConflicts(t *testing.T) {
	g := mustGrammar(t, `S = "if" "c" "then" S | "if" "c" "then" S "else" S | "x" .`)

	_, err := Compile(g, LALR, parser.Options{Strict: true})
	var conflict *parser.ConflictError
	require.ErrorAs(t, err, &conflict)

	p, err := Compile(g, GLR, parser.Options{Strict: true})
	require.NoError(t, err)
	assert.NotEmpty(t, p.Conflicts())

	input := toks("if", "c", "then", "if", "c", "then", "x", "else", "x")
	root, err := p.Parse(input)
	require.NoError(t, err)
	assert.Equal(t, input, root.Tokens())
}

func TestCompileRejectsUndefined(t *testing.T) {
	_, err := Compile(mustGrammar(t, `S = Missing .`), LALR, parser.Options{})
	require.ErrorIs(t, err, grammar.ErrUndefinedNonTerminal)
}

func TestIndirectLeftRecursionIsOptIn(t *testing.T) {
	g := mustGrammar(t, `
A = B "a" | "x" .
B = A "b" | "y" .
`)
	direct, err := Prepare(g, RD, parser.Options{})
	require.NoError(t, err)
	assert.Empty(t, direct.Substitutions)
	assert.Equal(t, []string{"A", "B"}, direct.NonTerminals())

	indirect, err := Prepare(g, RD, parser.Options{Indirect: true})
	require.NoError(t, err)
	assert.NotEmpty(t, indirect.Substitutions)
	assert.Contains(t, indirect.NonTerminals(), "B##")

	input := toks("x", "b", "a")
	want, err := Parse(g, input, LALR, parser.Options{})
	require.NoError(t, err)
	root, err := Parse(g, input, RD, parser.Options{Indirect: true})
	require.NoError(t, err)
	assert.Equal(t, `(A (B (A "x") "b") "a")`, root.String())
	assert.Equal(t, want.String(), root.String())
}
