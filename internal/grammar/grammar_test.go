package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langkit/internal/lexer"
	"langkit/internal/regexlib"
)

const sample = `
(* arithmetic with a few EBNF forms *)
Expr   = ?add? Expr "+" Term | Term .
Term   = |1> Term "*" Factor | Factor .
Factor = "NUM" | ?paren? |2< "(" <Expr> ")" ;
List   = { "ID" } [ "," ] <( "x" )> .
Op     = "OP" <- "+" .
Empty  = .
`

func TestParseSample(t *testing.T) {
	g, err := Parse(sample)
	require.NoError(t, err)

	want := &Grammar{
		Start: "Expr",
		Productions: []Production{
			NewProduction("Expr", "add", NonTerm("Expr"), Tok("+"), NonTerm("Term")),
			NewProduction("Expr", "#1", NonTerm("Term")),
			{Name: "Term", Label: "#0", Precedence: 1, Expr: Expression{Terms: []Term{NonTerm("Term"), Tok("*"), NonTerm("Factor")}}},
			NewProduction("Term", "#1", NonTerm("Factor")),
			NewProduction("Factor", "#0", Tok("NUM")),
			{Name: "Factor", Label: "paren", Precedence: 2, Associativity: Right,
				Expr: Expression{Terms: []Term{Tok("("), Unwrapped(NonTerm("Expr")), Tok(")")}}},
			NewProduction("List", "#0",
				Term{Kind: Repetition, Unwrap: true, Expr: Expression{Terms: []Term{Tok("ID")}}},
				Term{Kind: Optional, Unwrap: true, Expr: Expression{Terms: []Term{Tok(",")}}},
				Term{Kind: Group, Expr: Expression{Terms: []Term{Tok("x")}}},
			),
			NewProduction("Op", "#0", TokValue("OP", "+")),
			NewProduction("Empty", "#0"),
		},
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Fatalf("grammar mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpRoundTrip(t *testing.T) {
	g, err := Parse(sample)
	require.NoError(t, err)

	again, err := Parse(g.String())
	require.NoError(t, err)
	if diff := cmp.Diff(g, again); diff != "" {
		t.Fatalf("dump does not parse back (-first +second):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"A = @ .":           "unexpected input",
		`A = <"x"> .`:       "cannot be unwrapped",
		`A = "x" ?late? .`:  "must precede",
		`A = ?a? ?b? "x" .`: "duplicate label",
		`A = |1> |2< "x" .`: "duplicate precedence",
		`A = ( "x" ] .`:     "closed by",
		`A = <B .`:          "unbalanced",
		`A = "x"`:           "",
		"":                  "no productions",
	}
	for src, msg := range cases {
		_, err := Parse(src)
		require.Error(t, err, "source %q", src)
		if msg != "" {
			assert.ErrorContains(t, err, msg, "source %q", src)
		}
	}
}

func TestCommentsAndTerminators(t *testing.T) {
	g, err := Parse("(* a (* b *) S = \"a\" ; T = S .")
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "T"}, g.NonTerminals())
	assert.Equal(t, "S", g.Start)
}

func TestSymbolsAndLookups(t *testing.T) {
	g, err := Parse(sample)
	require.NoError(t, err)

	assert.Equal(t, []string{"Expr", "Term", "Factor", "List", "Op", "Empty"}, g.NonTerminals())
	assert.Equal(t, []Symbol{
		{Terminal: true, Name: "+"},
		{Terminal: true, Name: "*"},
		{Terminal: true, Name: "NUM"},
		{Terminal: true, Name: "("},
		{Terminal: true, Name: ")"},
		{Terminal: true, Name: "ID"},
		{Terminal: true, Name: ","},
		{Terminal: true, Name: "x"},
		{Terminal: true, Name: "OP", Value: "+", HasValue: true},
	}, g.Terminals())
	assert.Equal(t, []int{4, 5}, g.ProductionsOf("Factor"))
	assert.Len(t, g.Symbols(), 15)
}

func TestTermMatchesAndEquality(t *testing.T) {
	plus := lexer.Token{Type: "OP", Value: "+"}
	minus := lexer.Token{Type: "OP", Value: "-"}

	assert.True(t, Tok("OP").Matches(plus))
	assert.True(t, TokValue("OP", "+").Matches(plus))
	assert.False(t, TokValue("OP", "+").Matches(minus))
	assert.False(t, NonTerm("OP").Matches(plus))

	assert.True(t, NonTerm("A").Equal(Unwrapped(NonTerm("A"))))
	assert.False(t, Tok("A").Equal(NonTerm("A")))

	exact, byType := TokenSymbols(plus)
	set := NewSymbolSet(byType)
	assert.True(t, set.MatchToken(minus))
	assert.False(t, NewSymbolSet(exact).MatchToken(minus))
}

func TestSymbolSet(t *testing.T) {
	a, b, c := Tok("a").Symbol(), Tok("b").Symbol(), NonTerm("C").Symbol()
	s := NewSymbolSet(b, a)
	assert.False(t, s.Add(a))
	assert.True(t, s.Union(NewSymbolSet(c, a)))
	assert.Equal(t, []Symbol{b, a, c}, s.Items)
	assert.True(t, s.Remove(a))
	assert.False(t, s.Contains(a))
	assert.Equal(t, 2, s.Len())

	restored := &SymbolSet{Items: []Symbol{a}}
	assert.True(t, restored.Contains(a))
}

func TestValidate(t *testing.T) {
	g, err := Parse(`Expr = Expr "+" Trm | Term . Term = "NUM" .`)
	require.NoError(t, err)
	err = g.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUndefinedNonTerminal))
	assert.Contains(t, err.Error(), `did you mean "Term"`)

	ok, err := Parse(sample)
	require.NoError(t, err)
	assert.NoError(t, ok.Validate())
}

func TestSyntheticNames(t *testing.T) {
	assert.True(t, IsSynthetic("E$#0$group#1"))
	assert.True(t, IsSynthetic("E##"))
	assert.False(t, IsSynthetic("Expr"))
	assert.True(t, IsFactorHelper("A$#0"))
	assert.False(t, IsFactorHelper("E$#0$group#1"))
}

func TestCloneIsDeep(t *testing.T) {
	g, err := Parse(sample)
	require.NoError(t, err)
	c := g.Clone()
	c.Productions[0].Expr.Terms[0].Name = "Changed"
	assert.Equal(t, "Expr", g.Productions[0].Expr.Terms[0].Name)
}

func TestParseWithRules(t *testing.T) {
	spec := strings.Replace(metaSpec, "Alternation      \\|", "Alternation      /", 1)
	require.NotEqual(t, metaSpec, spec)
	rules, err := lexer.ReadSpec(strings.NewReader(spec), regexlib.Thompson)
	require.NoError(t, err)

	got, err := ParseWithRules("slash.grammar", `S = ?x? "a" / "b" .`, rules)
	require.NoError(t, err)
	want, err := Parse(`S = ?x? "a" | "b" .`)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("grammar differs (-want +got):\n%s", diff)
	}

	_, err = ParseWithRules("bar.grammar", `S = "a" | "b" .`, rules)
	require.Error(t, err)

	var partial []lexer.RegularRule
	for _, r := range rules {
		if r.Name != "Assign" {
			partial = append(partial, r)
		}
	}
	_, err = ParseWithRules("g", `S = "a" .`, partial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Assign")
}
