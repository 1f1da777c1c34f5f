package parser

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"langkit/internal/grammar"
	"langkit/internal/lexer"
	"langkit/internal/tree"
)

type rdKey struct {
	name string
	pos  int
}

type rdParser struct {
	g        *grammar.Grammar
	tokens   []lexer.Token
	byName   map[string][]int
	active   map[rdKey]bool
	deepest  int
	expected *grammar.SymbolSet
	log      *slog.Logger
	verbose  bool
}

// ParseRD parses tokens by backtracking recursive descent. Alternatives
// are tried in declaration order and the first that succeeds is kept;
// Group, Optional and Repetition terms are handled directly, so the grammar
// does not need to be desugared. Entering a nonterminal again at the same
// offset fails that alternative, which keeps left-recursive rules from
// looping. On failure the error names the deepest offset any alternative
// reached and the terminals expected there.
func ParseRD(g *grammar.Grammar, tokens []lexer.Token, opts Options) (*tree.Node, error) {
	p := &rdParser{
		g:        g,
		tokens:   tokens,
		byName:   map[string][]int{},
		active:   map[rdKey]bool{},
		expected: grammar.NewSymbolSet(),
		log:      opts.logger(),
		verbose:  opts.Verbose,
	}
	for i, prod := range g.Productions {
		p.byName[prod.Name] = append(p.byName[prod.Name], i)
	}
	if _, ok := p.byName[g.Start]; !ok {
		return nil, fmt.Errorf("start symbol: %w %s", grammar.ErrUndefinedNonTerminal, g.Start)
	}

	for _, pi := range p.byName[g.Start] {
		node, next, ok := p.production(pi, 0)
		if !ok {
			continue
		}
		if next == len(tokens) {
			return node, nil
		}
		p.fail(next, grammar.EndOfInput)
	}

	msg := "unexpected end of input"
	if p.deepest < len(tokens) {
		tok := tokens[p.deepest]
		msg = fmt.Sprintf("unexpected %s %q", tok.Type, tok.Value)
	}
	expected := make([]string, 0, p.expected.Len())
	for _, s := range p.expected.Items {
		expected = append(expected, s.String())
	}
	slices.Sort(expected)
	return nil, &ParseError{Index: p.deepest, Message: msg, Expected: expected}
}

func (p *rdParser) fail(pos int, sym grammar.Symbol) {
	if pos > p.deepest {
		p.deepest = pos
		p.expected = grammar.NewSymbolSet()
	}
	if pos == p.deepest {
		p.expected.Add(sym)
	}
}

func (p *rdParser) nonTerminal(name string, pos int) (*tree.Node, int, bool) {
	key := rdKey{name, pos}
	if p.active[key] {
		return nil, pos, false
	}
	p.active[key] = true
	defer delete(p.active, key)

	for _, pi := range p.byName[name] {
		if node, next, ok := p.production(pi, pos); ok {
			return node, next, true
		}
	}
	return nil, pos, false
}

func (p *rdParser) production(pi, pos int) (*tree.Node, int, bool) {
	prod := &p.g.Productions[pi]
	if p.verbose {
		p.log.Debug("rd try", "nonterminal", prod.Name, "label", prod.Label, "index", pos)
	}
	node := tree.NewNonTerminal(prod, pos)
	next, ok := p.sequence(node, prod.Expr.Terms, pos)
	if !ok {
		return nil, pos, false
	}
	if isListHelper(prod.Name) {
		node.Kind, node.Type, node.Label, node.Rule = tree.List, "", "", nil
	}
	return node, next, true
}

// isListHelper reports whether nodes of name stand for a desugared EBNF
// term and become List nodes when kept.
func isListHelper(name string) bool {
	return grammar.IsSynthetic(name) && !grammar.IsFactorHelper(name) && !strings.HasSuffix(name, "##")
}

// sequence matches terms in order, appending to parent. On failure parent
// is restored.
func (p *rdParser) sequence(parent *tree.Node, terms []grammar.Term, pos int) (int, bool) {
	mark := len(parent.Children)
	for _, t := range terms {
		next, ok := p.term(parent, t, pos)
		if !ok {
			parent.Children = parent.Children[:mark]
			return pos, false
		}
		pos = next
	}
	return pos, true
}

func (p *rdParser) term(parent *tree.Node, t grammar.Term, pos int) (int, bool) {
	switch t.Kind {
	case grammar.Terminal:
		if pos < len(p.tokens) && t.Matches(p.tokens[pos]) {
			parent.Push(tree.NewTerminal(p.tokens[pos], pos))
			return pos + 1, true
		}
		p.fail(pos, t.Symbol())
		return pos, false

	case grammar.NonTerminal:
		child, next, ok := p.nonTerminal(t.Name, pos)
		if !ok {
			return pos, false
		}
		attach(parent, child, t.Unwrap)
		return next, true

	case grammar.Group:
		holder := tree.NewInner(pos)
		next, ok := p.sequence(holder, t.Expr.Terms, pos)
		if !ok {
			return pos, false
		}
		attachList(parent, holder, t.Unwrap)
		return next, true

	case grammar.Optional:
		holder := tree.NewInner(pos)
		next, ok := p.sequence(holder, t.Expr.Terms, pos)
		if !ok {
			next = pos
		}
		attachList(parent, holder, t.Unwrap)
		return next, true

	case grammar.Repetition:
		holder := tree.NewInner(pos)
		for {
			mark := len(holder.Children)
			next, ok := p.sequence(holder, t.Expr.Terms, pos)
			if !ok || next == pos {
				holder.Children = holder.Children[:mark]
				break
			}
			pos = next
		}
		attachList(parent, holder, t.Unwrap)
		return pos, true
	}
	return pos, false
}

func attach(parent, child *tree.Node, unwrap bool) {
	if unwrap || child.Kind == tree.Inner {
		parent.Push(child.Children...)
		return
	}
	parent.Push(child)
}

func attachList(parent, holder *tree.Node, unwrap bool) {
	if unwrap {
		parent.Push(holder.Children...)
		return
	}
	holder.Kind = tree.List
	parent.Push(holder)
}
