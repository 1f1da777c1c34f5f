package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// oracleRule is one token kind written for both engines; the two regex
// dialects differ in whitespace handling and class syntax.
type oracleRule struct {
	name   string
	ours   string
	theirs string
	skip   bool
}

var oracleRules = []oracleRule{
	{name: "IF", ours: "if", theirs: `if`},
	{name: "ID", ours: "[a-z_][a-z0-9_]*", theirs: `[a-z_][a-z0-9_]*`},
	{name: "NUM", ours: `[0-9]+(\.[0-9]+)?`, theirs: `[0-9]+(\.[0-9]+)?`},
	{name: "CMP", ours: "<=|>=|==|<|>", theirs: `<=|>=|==|<|>`},
	{name: "ASSIGN", ours: "=", theirs: `=`},
	{name: "ARITH", ours: `[+*/\-]`, theirs: `[+]|[*]|/|-`},
	{name: "WS", ours: `[\ \t\n]+`, theirs: `[ \t\n]+`, skip: true},
}

type oracleToken struct {
	Type  string
	Value string
}

func lexmachineTokens(t *testing.T, input string) []oracleToken {
	t.Helper()
	lx := lexmachine.NewLexer()
	for _, r := range oracleRules {
		if r.skip {
			lx.Add([]byte(r.theirs), func(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
				return nil, nil
			})
			continue
		}
		lx.Add([]byte(r.theirs), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
			return oracleToken{Type: r.name, Value: string(m.Bytes)}, nil
		})
	}
	require.NoError(t, lx.Compile())

	scanner, err := lx.Scanner([]byte(input))
	require.NoError(t, err)

	var out []oracleToken
	for tok, err, eof := scanner.Next(); !eof; tok, err, eof = scanner.Next() {
		require.NoError(t, err)
		out = append(out, tok.(oracleToken))
	}
	return out
}

func ourTokens(t *testing.T, input string) []oracleToken {
	t.Helper()
	rules := make([]RegularRule, 0, len(oracleRules))
	for _, r := range oracleRules {
		rule := MustRule(r.name, r.ours)
		rule.Ignore = r.skip
		rules = append(rules, rule)
	}
	var out []oracleToken
	for _, tok := range Tokenize(input, rules) {
		require.False(t, tok.IsError(), "unexpected error token %v", tok)
		out = append(out, oracleToken{Type: tok.Type, Value: tok.Value})
	}
	return out
}

func TestTokenizerAgreesWithLexmachine(t *testing.T) {
	inputs := []string{
		"if x1 = 42",
		"iffy <= 3.25 >= y\n  z==1",
		"a+b*c-d/e",
		"if if_ if1 ifif",
		"x = 10.5 + 7 <= 8\n\tend",
	}
	for _, in := range inputs {
		require.Equal(t, lexmachineTokens(t, in), ourTokens(t, in), "input %q", in)
	}
}
