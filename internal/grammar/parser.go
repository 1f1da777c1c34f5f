package grammar

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	plexer "github.com/alecthomas/participle/v2/lexer"

	"langkit/internal/lexer"
	"langkit/internal/regexlib"
)

//go:embed meta.lex
var metaSpec string

// ---- syntax tree of a grammar file -----------------------------------------

type grammarFile struct {
	Productions []*productionDecl `parser:"@@*"`
}

type productionDecl struct {
	Pos   plexer.Position
	Name  string      `parser:"@ProductionName Assign"`
	Items []*bodyItem `parser:"@@* Terminator"`
}

// bodyItem is one element between Assign and Terminator; alternatives are
// split on Bar when the declaration is converted.
type bodyItem struct {
	Pos   plexer.Position
	Bar   bool      `parser:"  @Alternation"`
	Label *string   `parser:"| @SpecialSequence"`
	Left  *string   `parser:"| @LeftPrecedence"`
	Right *string   `parser:"| @RightPrecedence"`
	Term  *termDecl `parser:"| @@"`
}

type termDecl struct {
	Pos   plexer.Position
	Open  bool       `parser:"@LeftUnwrap?"`
	Name  *string    `parser:"( @ProductionName"`
	Token *tokenDecl `parser:"| @@"`
	Group *groupDecl `parser:"| @@ )"`
	Close bool       `parser:"@RightUnwrap?"`
}

type tokenDecl struct {
	Type  string  `parser:"@Token"`
	Value *string `parser:"( TokenValue @Token )?"`
}

type groupDecl struct {
	Open  string      `parser:"@( LeftGroup | LeftOptional | LeftRepetition )"`
	Terms []*termDecl `parser:"@@+"`
	Close string      `parser:"@( RightGroup | RightOptional | RightRepetition )"`
}

// ---- meta lexer -------------------------------------------------------------

// metaTokens are the token types the specification syntax refers to.
var metaTokens = []string{
	"ProductionName", "Assign", "SpecialSequence", "LeftPrecedence", "RightPrecedence",
	"Alternation", "Terminator", "TokenValue", "LeftUnwrap", "RightUnwrap", "Token",
	"LeftGroup", "RightGroup", "LeftOptional", "RightOptional", "LeftRepetition", "RightRepetition",
}

// metaDefinition adapts the rule-based Tokenizer to participle.
type metaDefinition struct {
	tokenizer *lexer.Tokenizer
	symbols   map[string]plexer.TokenType
}

func newMetaDefinition(rules []lexer.RegularRule) (*metaDefinition, error) {
	symbols := map[string]plexer.TokenType{"EOF": plexer.EOF}
	for i, r := range rules {
		if _, dup := symbols[r.Name]; !dup {
			symbols[r.Name] = plexer.TokenType(i + 1)
		}
	}
	for _, name := range metaTokens {
		if _, ok := symbols[name]; !ok {
			return nil, fmt.Errorf("meta lexer: no rule for %s", name)
		}
	}
	return &metaDefinition{tokenizer: lexer.New(rules), symbols: symbols}, nil
}

func (d *metaDefinition) Symbols() map[string]plexer.TokenType { return d.symbols }

func (d *metaDefinition) Lex(filename string, r io.Reader) (plexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	toks := d.tokenizer.Tokenize(string(data))
	out := make([]plexer.Token, 0, len(toks))
	for _, t := range toks {
		pos := plexer.Position{Filename: filename, Line: t.Line, Column: 1}
		if t.IsError() {
			return nil, fmt.Errorf("%s: unexpected input %q", pos, t.Value)
		}
		out = append(out, plexer.Token{Type: d.symbols[t.Type], Value: t.Value, Pos: pos})
	}
	return &metaLexer{tokens: out, filename: filename}, nil
}

type metaLexer struct {
	tokens   []plexer.Token
	filename string
	next     int
}

func (l *metaLexer) Next() (plexer.Token, error) {
	if l.next >= len(l.tokens) {
		line := 1
		if n := len(l.tokens); n > 0 {
			line = l.tokens[n-1].Pos.Line
		}
		return plexer.Token{Type: plexer.EOF, Pos: plexer.Position{Filename: l.filename, Line: line, Column: 1}}, nil
	}
	t := l.tokens[l.next]
	l.next++
	return t, nil
}

// SpecParser reads grammar specifications with a given meta lexer.
type SpecParser struct {
	parser *participle.Parser[grammarFile]
}

// NewSpecParser builds a reader whose tokens come from rules. The rules must
// define every token type of MetaRules; they may change what each matches.
func NewSpecParser(rules []lexer.RegularRule) (*SpecParser, error) {
	def, err := newMetaDefinition(rules)
	if err != nil {
		return nil, err
	}
	p, err := participle.Build[grammarFile](participle.Lexer(def))
	if err != nil {
		return nil, err
	}
	return &SpecParser{parser: p}, nil
}

var defaultParser = sync.OnceValues(func() (*SpecParser, error) {
	rules, err := MetaRules()
	if err != nil {
		return nil, fmt.Errorf("meta lexer: %w", err)
	}
	return NewSpecParser(rules)
})

// MetaSpec returns the lexical specification of the grammar specification
// language, a starting point for a replacement meta lexer.
func MetaSpec() string { return metaSpec }

// MetaRules returns the token rules of the grammar specification language.
func MetaRules() ([]lexer.RegularRule, error) {
	return lexer.ReadSpec(strings.NewReader(metaSpec), regexlib.Followpos)
}

// ---- conversion --------------------------------------------------------------

// Parse reads a grammar specification. The first production names the start
// symbol.
func Parse(src string) (*Grammar, error) {
	return ParseNamed("grammar", src)
}

// ParseNamed is Parse with a file name used in error positions.
func ParseNamed(filename, src string) (*Grammar, error) {
	sp, err := defaultParser()
	if err != nil {
		return nil, err
	}
	return sp.Parse(filename, src)
}

// ParseWithRules is ParseNamed with the meta lexer replaced by rules.
func ParseWithRules(filename, src string, rules []lexer.RegularRule) (*Grammar, error) {
	sp, err := NewSpecParser(rules)
	if err != nil {
		return nil, err
	}
	return sp.Parse(filename, src)
}

// Parse reads the specification src; filename is used in error positions.
func (sp *SpecParser) Parse(filename, src string) (*Grammar, error) {
	file, err := sp.parser.ParseString(filename, src)
	if err != nil {
		return nil, err
	}
	if len(file.Productions) == 0 {
		return nil, fmt.Errorf("%s: grammar has no productions", filename)
	}

	g := &Grammar{Start: file.Productions[0].Name}
	for _, decl := range file.Productions {
		prods, err := decl.productions()
		if err != nil {
			return nil, err
		}
		g.Productions = append(g.Productions, prods...)
	}
	return g, nil
}

func (d *productionDecl) productions() ([]Production, error) {
	var alts [][]*bodyItem
	cur := []*bodyItem{}
	for _, it := range d.Items {
		if it.Bar {
			alts = append(alts, cur)
			cur = []*bodyItem{}
			continue
		}
		cur = append(cur, it)
	}
	alts = append(alts, cur)

	out := make([]Production, 0, len(alts))
	for i, items := range alts {
		p := Production{Name: d.Name, Label: "#" + strconv.Itoa(i)}
		labelled, ranked := false, false
		for _, it := range items {
			switch {
			case it.Term != nil:
				t, err := it.Term.term()
				if err != nil {
					return nil, err
				}
				p.Expr.Terms = append(p.Expr.Terms, t)
			case len(p.Expr.Terms) > 0:
				return nil, fmt.Errorf("%s: %s: label and precedence must precede the terms", it.Pos, d.Name)
			case it.Label != nil:
				if labelled {
					return nil, fmt.Errorf("%s: %s: duplicate label", it.Pos, d.Name)
				}
				labelled = true
				p.Label = strings.Trim(*it.Label, "?")
			default:
				if ranked {
					return nil, fmt.Errorf("%s: %s: duplicate precedence", it.Pos, d.Name)
				}
				ranked = true
				raw := it.Left
				if raw == nil {
					raw, p.Associativity = it.Right, Right
				}
				prec, err := precedence(*raw)
				if err != nil {
					return nil, fmt.Errorf("%s: %s: %w", it.Pos, d.Name, err)
				}
				p.Precedence = prec
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func precedence(raw string) (int, error) {
	digits := raw[1 : len(raw)-1]
	if digits == "" {
		return 0, nil
	}
	return strconv.Atoi(digits)
}

func unquote(s string) string { return s[1 : len(s)-1] }

func (t *termDecl) term() (Term, error) {
	if t.Open != t.Close {
		return Term{}, fmt.Errorf("%s: unbalanced < >", t.Pos)
	}
	switch {
	case t.Name != nil:
		return Term{Kind: NonTerminal, Name: *t.Name, Unwrap: t.Open}, nil
	case t.Token != nil:
		if t.Open {
			return Term{}, fmt.Errorf("%s: token %s cannot be unwrapped", t.Pos, t.Token.Type)
		}
		out := Tok(unquote(t.Token.Type))
		if t.Token.Value != nil {
			out = TokValue(out.Name, unquote(*t.Token.Value))
		}
		return out, nil
	}

	g := t.Group
	kinds := map[string]TermKind{"(": Group, "[": Optional, "{": Repetition}
	closers := map[string]string{"(": ")", "[": "]", "{": "}"}
	if closers[g.Open] != g.Close {
		return Term{}, fmt.Errorf("%s: %s closed by %s", t.Pos, g.Open, g.Close)
	}
	out := Term{Kind: kinds[g.Open], Unwrap: !t.Open}
	for _, inner := range g.Terms {
		it, err := inner.term()
		if err != nil {
			return Term{}, err
		}
		out.Expr.Terms = append(out.Expr.Terms, it)
	}
	return out, nil
}
