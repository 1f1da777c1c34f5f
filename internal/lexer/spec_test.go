package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langkit/internal/regexlib"
)

const calcSpec = `
# arithmetic tokens
digit  [0-9]
letter [a-zA-Z_]
%
NUM    {digit}+
ID     {letter}({letter}|{digit})*
OP     [+*/()=\^\-]
CMT?   \#[^\n]*
-WS    [\ \t\r\n]+
`

func TestReadSpec(t *testing.T) {
	rules, err := ReadSpec(strings.NewReader(calcSpec), regexlib.Followpos)
	require.NoError(t, err)
	require.Len(t, rules, 5)

	assert.Equal(t, "NUM", rules[0].Name)
	assert.Equal(t, "CMT", rules[3].Name)
	assert.False(t, rules[3].Greedy)
	assert.True(t, rules[4].Ignore)
	assert.True(t, rules[4].Greedy)

	toks := Tokenize("x1 = 42*(y-3)\n", rules)
	assert.Equal(t, []string{"ID", "OP", "NUM", "OP", "OP", "ID", "OP", "NUM", "OP"}, types(toks))
}

func TestReadSpecWithoutSeparator(t *testing.T) {
	rules, err := ReadSpec(strings.NewReader("A a\nB b\n"), regexlib.Thompson)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestReadSpecErrors(t *testing.T) {
	_, err := ReadSpec(strings.NewReader("digit [0-9]\n%\nNUM {digt}+\n"), regexlib.Thompson)
	require.Error(t, err)
	assert.True(t, errors.Is(err, regexlib.ErrUnknownAlias))
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), `did you mean "digit"`)

	_, err = ReadSpec(strings.NewReader("%\nA\n"), regexlib.Thompson)
	assert.ErrorContains(t, err, "no pattern")

	_, err = ReadSpec(strings.NewReader("a x\na y\n%\nA {a}\n"), regexlib.Thompson)
	assert.ErrorContains(t, err, "redefined")

	_, err = ReadSpec(strings.NewReader("%\n%\n"), regexlib.Thompson)
	assert.ErrorContains(t, err, "separator")
}
