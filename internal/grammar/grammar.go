// Package grammar models context-free grammars with EBNF extensions,
// precedence and associativity, and reads them from text.
package grammar

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"langkit/internal/lexer"
	"langkit/internal/suggest"
)

var ErrUndefinedNonTerminal = errors.New("undefined nonterminal")

type TermKind int

const (
	NonTerminal TermKind = iota
	Terminal
	Group
	Optional
	Repetition
)

func (k TermKind) String() string {
	switch k {
	case NonTerminal:
		return "NonTerminal"
	case Terminal:
		return "Terminal"
	case Group:
		return "Group"
	case Optional:
		return "Optional"
	case Repetition:
		return "Repetition"
	}
	return fmt.Sprintf("TermKind(%d)", int(k))
}

// Term is one element of a production body. Name is the nonterminal name or
// the token type; Value restricts a terminal to one token text; Expr is the
// body of Group, Optional and Repetition. Unwrap asks tree builders to
// splice the node's children into the parent.
type Term struct {
	Kind   TermKind
	Name   string
	Value  *string
	Expr   Expression
	Unwrap bool
}

type Expression struct {
	Terms []Term
}

// NonTerm returns a nonterminal reference.
func NonTerm(name string) Term { return Term{Kind: NonTerminal, Name: name} }

// Unwrapped returns a copy of t with Unwrap set.
func Unwrapped(t Term) Term {
	t.Unwrap = true
	return t
}

// Tok returns a terminal matching any token of type typ.
func Tok(typ string) Term { return Term{Kind: Terminal, Name: typ} }

// TokValue returns a terminal matching tokens of type typ with text value.
func TokValue(typ, value string) Term {
	return Term{Kind: Terminal, Name: typ, Value: &value}
}

// Formal reports whether t is a plain terminal or nonterminal.
func (t Term) Formal() bool { return t.Kind == NonTerminal || t.Kind == Terminal }

// Symbol is the identity of a formal term. It ignores Unwrap.
func (t Term) Symbol() Symbol {
	s := Symbol{Terminal: t.Kind == Terminal, Name: t.Name}
	if t.Kind == Terminal && t.Value != nil {
		s.Value, s.HasValue = *t.Value, true
	}
	return s
}

// Equal compares two terms ignoring Unwrap.
func (t Term) Equal(o Term) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Formal() {
		return t.Symbol() == o.Symbol()
	}
	return t.Expr.Equal(o.Expr)
}

// Matches reports whether t is a terminal accepting tok.
func (t Term) Matches(tok lexer.Token) bool {
	if t.Kind != Terminal || t.Name != tok.Type {
		return false
	}
	return t.Value == nil || *t.Value == tok.Value
}

func (t Term) Clone() Term {
	out := t
	if t.Value != nil {
		v := *t.Value
		out.Value = &v
	}
	out.Expr = t.Expr.Clone()
	return out
}

func (e Expression) Clone() Expression {
	if e.Terms == nil {
		return Expression{}
	}
	out := Expression{Terms: make([]Term, len(e.Terms))}
	for i, t := range e.Terms {
		out.Terms[i] = t.Clone()
	}
	return out
}

func (e Expression) Equal(o Expression) bool {
	return slices.EqualFunc(e.Terms, o.Terms, Term.Equal)
}

type Associativity int

const (
	Left Associativity = iota
	Right
)

func (a Associativity) String() string {
	if a == Right {
		return "right"
	}
	return "left"
}

// Production is one alternative of a nonterminal. Lower Precedence values
// bind tighter when resolving LR conflicts.
type Production struct {
	Name          string
	Label         string
	Expr          Expression
	Precedence    int
	Associativity Associativity
}

// NewProduction builds a production with the default precedence.
func NewProduction(name, label string, terms ...Term) Production {
	return Production{Name: name, Label: label, Expr: Expression{Terms: terms}}
}

func (p Production) Clone() Production {
	p.Expr = p.Expr.Clone()
	return p
}

func (p Production) Equal(o Production) bool {
	return p.Name == o.Name && p.Label == o.Label &&
		p.Precedence == o.Precedence && p.Associativity == o.Associativity &&
		p.Expr.Equal(o.Expr)
}

// Substitution records one step of indirect left-recursion elimination:
// Rule had the nonterminal at Pos replaced by the body of Source, giving
// Target.
type Substitution struct {
	Rule   Production
	Source Production
	Target Production
	Pos    int
}

// Grammar is an ordered list of productions. Start names the start symbol.
type Grammar struct {
	Productions   []Production
	Substitutions []Substitution
	Start         string
}

func New(start string, productions ...Production) *Grammar {
	return &Grammar{Start: start, Productions: productions}
}

func (g *Grammar) Clone() *Grammar {
	out := &Grammar{Start: g.Start}
	out.Productions = make([]Production, len(g.Productions))
	for i, p := range g.Productions {
		out.Productions[i] = p.Clone()
	}
	out.Substitutions = slices.Clone(g.Substitutions)
	return out
}

// NonTerminals lists production names in order of first definition.
func (g *Grammar) NonTerminals() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range g.Productions {
		if !seen[p.Name] {
			seen[p.Name] = true
			out = append(out, p.Name)
		}
	}
	return out
}

// Terminals lists the terminal symbols in order of first use.
func (g *Grammar) Terminals() []Symbol {
	seen := map[Symbol]bool{}
	var out []Symbol
	var walk func(e Expression)
	walk = func(e Expression) {
		for _, t := range e.Terms {
			switch t.Kind {
			case Terminal:
				if s := t.Symbol(); !seen[s] {
					seen[s] = true
					out = append(out, s)
				}
			case Group, Optional, Repetition:
				walk(t.Expr)
			}
		}
	}
	for _, p := range g.Productions {
		walk(p.Expr)
	}
	return out
}

// Symbols lists the terminals followed by the nonterminals.
func (g *Grammar) Symbols() []Symbol {
	out := g.Terminals()
	for _, n := range g.NonTerminals() {
		out = append(out, Symbol{Name: n})
	}
	return out
}

// ProductionsOf returns the indices of the productions defining name.
func (g *Grammar) ProductionsOf(name string) []int {
	var out []int
	for i, p := range g.Productions {
		if p.Name == name {
			out = append(out, i)
		}
	}
	return out
}

// Validate checks that the start symbol and every referenced nonterminal
// have productions.
func (g *Grammar) Validate() error {
	names := g.NonTerminals()
	defined := map[string]bool{}
	for _, n := range names {
		defined[n] = true
	}
	undefined := func(name string) error {
		return fmt.Errorf("%w %s%s", ErrUndefinedNonTerminal, name, suggest.Hint(name, names))
	}
	if !defined[g.Start] {
		return undefined(g.Start)
	}

	var walk func(e Expression) error
	walk = func(e Expression) error {
		for _, t := range e.Terms {
			switch t.Kind {
			case NonTerminal:
				if !defined[t.Name] {
					return undefined(t.Name)
				}
			case Group, Optional, Repetition:
				if err := walk(t.Expr); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, p := range g.Productions {
		if err := walk(p.Expr); err != nil {
			return fmt.Errorf("production %s: %w", p.Name, err)
		}
	}
	return nil
}

// IsSynthetic reports whether name was generated by a grammar transform.
func IsSynthetic(name string) bool {
	return strings.Contains(name, "$") || strings.HasSuffix(name, "##")
}

// IsFactorHelper reports whether name was generated by left factoring.
func IsFactorHelper(name string) bool {
	i := strings.LastIndexByte(name, '$')
	return i >= 0 && strings.HasPrefix(name[i+1:], "#")
}
