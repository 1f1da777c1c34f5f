package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langkit/internal/grammar"
)

const calcLex = `
NUM    [0-9]+
OP     [+*()]
-WS    [\ \n]+
`

const calcGrammar = `
Expr   = ?add? Expr "OP" <- "+" Term | Term .
Term   = ?mul? Term "OP" <- "*" Factor | Factor .
Factor = "NUM" | ?paren? "OP" <- "(" Expr "OP" <- ")" .
`

const onePlusTwo = `(Expr (Expr (Term (Factor "1"))) "+" (Term (Factor "2")))`

// project writes the calculator specification into a fresh directory.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.lex"), []byte(calcLex), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.grammar"), []byte(calcGrammar), 0o644))
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, log bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&log)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLex(t *testing.T) {
	dir := project(t)
	out, err := run(t, "1 + 23", "lex", "--lexer", filepath.Join(dir, "calc.lex"))
	require.NoError(t, err)
	assert.Equal(t, "#1 NUM \"1\"\n#1 OP \"+\"\n#1 NUM \"23\"\n", out)
}

func TestParseEveryEngine(t *testing.T) {
	dir := project(t)
	for _, e := range []string{"ll", "rd", "lr0", "lalr", "glr"} {
		out, err := run(t, "1 + 2",
			"parse", "--sexpr", "-e", e,
			"-l", filepath.Join(dir, "calc.lex"),
			"-g", filepath.Join(dir, "calc.grammar"))
		require.NoError(t, err, e)
		assert.Equal(t, onePlusTwo+"\n", out, e)
	}
}

func TestParseIndented(t *testing.T) {
	dir := project(t)
	out, err := run(t, "7", "parse", "-l", filepath.Join(dir, "calc.lex"), "-g", filepath.Join(dir, "calc.grammar"))
	require.NoError(t, err)
	assert.Equal(t, "Expr ?#1?\n  Term ?#1?\n    Factor ?#0?\n      NUM \"7\" (line 1)\n", out)
}

func TestSavedModels(t *testing.T) {
	dir := project(t)
	lex := filepath.Join(dir, "calc.lex")
	rules := filepath.Join(dir, "calc.rules")
	tokens := filepath.Join(dir, "input.tokens")
	table := filepath.Join(dir, "calc.table")

	_, err := run(t, "", "lex", "-l", lex, "--save-rules", rules)
	require.NoError(t, err)
	_, err = run(t, "1 + 2", "lex", "--rules", rules, "--save-tokens", tokens)
	require.NoError(t, err)
	_, err = run(t, "", "parse", "-e", "glr", "-g", filepath.Join(dir, "calc.grammar"), "--tokens", tokens, "--save-table", table, "--save-tree", filepath.Join(dir, "input.tree"))
	require.NoError(t, err)

	out, err := run(t, "", "parse", "--sexpr", "--table", table, "--tokens", tokens)
	require.NoError(t, err)
	assert.Equal(t, onePlusTwo+"\n", out)

	_, err = run(t, "", "parse", "--table", rules, "--tokens", tokens)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected document kind")
}

func TestProjectFile(t *testing.T) {
	dir := project(t)
	cfg := filepath.Join(dir, "langkit.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("lexer: calc.lex\ngrammar: calc.grammar\nengine: rd\nstrategy: followpos\n"), 0o644))

	out, err := run(t, "1 + 2", "parse", "--sexpr", "-c", cfg)
	require.NoError(t, err)
	assert.Equal(t, onePlusTwo+"\n", out)

	_, err = run(t, "1", "parse", "-c", cfg, "-e", "lalr1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "lalr"`)
}

func TestGrammarCommand(t *testing.T) {
	dir := project(t)
	g := filepath.Join(dir, "calc.grammar")

	out, err := run(t, "", "grammar", "-e", "ll", "-g", g, "--sets")
	require.NoError(t, err)
	assert.Contains(t, out, "Expr##")
	assert.Contains(t, out, "FIRST(Expr)")

	out, err = run(t, "", "grammar", "--raw", "-g", g)
	require.NoError(t, err)
	assert.NotContains(t, out, "##")
	assert.Equal(t, 6, strings.Count(out, "\n"))
}

func TestDotCommand(t *testing.T) {
	dir := project(t)

	out, err := run(t, "", "dot", "--re", "a|b", "--form", "nfa")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph G {"))
	assert.Contains(t, out, "ε")

	_, err = run(t, "", "dot", "--re", "a", "--form", "glushkov")
	require.Error(t, err)

	saved := filepath.Join(dir, "calc.lr")
	out, err = run(t, "", "dot", "--lr", "-g", filepath.Join(dir, "calc.grammar"), "--save-automaton", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "$accept")
	_, err = os.Stat(saved)
	require.NoError(t, err)
}

func TestMatchCommand(t *testing.T) {
	out, err := run(t, "", "match", "--re", "ab*", "abb", "a", "ba")
	require.NoError(t, err)
	assert.Equal(t, "\"abb\"\tOk\n\"a\"\tOk\n\"ba\"\tErr\n", out)

	out, err = run(t, "ab\nc\n", "match", "--re", "abc")
	require.NoError(t, err)
	assert.Equal(t, "\"ab\"\tUnfinished\n\"c\"\tErr\n", out)
}

func TestMatchShowsRecoveredExpr(t *testing.T) {
	out, err := run(t, "", "match", "--expr", "--re", "a", "a")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "a")
	assert.Equal(t, "\"a\"\tOk", lines[1])
}

func TestMetaLexerFlag(t *testing.T) {
	dir := project(t)
	meta := filepath.Join(dir, "slash.lex")
	spec := strings.Replace(grammar.MetaSpec(), "Alternation      \\|", "Alternation      /", 1)
	require.NoError(t, os.WriteFile(meta, []byte(spec), 0o644))
	slashed := filepath.Join(dir, "slash.grammar")
	require.NoError(t, os.WriteFile(slashed, []byte(strings.ReplaceAll(calcGrammar, " | ", " / ")), 0o644))

	out, err := run(t, "1 + 2", "parse", "--sexpr", "-l", filepath.Join(dir, "calc.lex"), "-g", slashed, "--meta-lexer", meta)
	require.NoError(t, err)
	assert.Equal(t, onePlusTwo+"\n", out)

	_, err = run(t, "1 + 2", "parse", "-l", filepath.Join(dir, "calc.lex"), "-g", filepath.Join(dir, "calc.grammar"), "--meta-lexer", meta)
	require.Error(t, err)
}
