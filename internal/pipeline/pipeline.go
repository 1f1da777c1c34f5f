// Package pipeline prepares a grammar for one parsing engine, runs it and
// maps the tree back to the shape of the source grammar.
package pipeline

import (
	"fmt"
	"slices"

	"langkit/internal/grammar"
	"langkit/internal/lexer"
	"langkit/internal/parser"
	"langkit/internal/suggest"
	"langkit/internal/transform"
	"langkit/internal/tree"
)

type Engine string

const (
	LL   Engine = "ll"
	RD   Engine = "rd"
	LR0  Engine = "lr0"
	LALR Engine = "lalr"
	GLR  Engine = "glr"
)

// Engines lists the engine names in a stable order.
func Engines() []string {
	return []string{string(LL), string(RD), string(LR0), string(LALR), string(GLR)}
}

// ParseEngine resolves an engine name.
func ParseEngine(name string) (Engine, error) {
	if slices.Contains(Engines(), name) {
		return Engine(name), nil
	}
	return "", fmt.Errorf("unknown engine %q%s", name, suggest.Hint(name, Engines()))
}

// Prepare returns the grammar e runs on:
//
//	ll             desugar, eliminate left recursion, left factor
//	rd             eliminate left recursion
//	lr0 lalr glr   desugar
//
// Only immediate left recursion is removed unless opts.Indirect is set.
func Prepare(g *grammar.Grammar, e Engine, opts parser.Options) (*grammar.Grammar, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	eliminate := transform.EliminateLeftRecursion
	if opts.Indirect {
		eliminate = transform.EliminateIndirectLeftRecursion
	}
	switch e {
	case LL:
		return transform.LeftFactor(eliminate(transform.ConvertToFormal(g))), nil
	case RD:
		return eliminate(g), nil
	case LR0, LALR, GLR:
		return transform.ConvertToFormal(g), nil
	}
	_, err := ParseEngine(string(e))
	return nil, err
}

// Parser is a grammar compiled for one engine.
type Parser struct {
	Engine  Engine
	Grammar *grammar.Grammar
	LL      *parser.LLTable
	LR      *parser.LRTable
	opts    parser.Options
}

// Compile prepares g for e and builds the engine's tables.
func Compile(g *grammar.Grammar, e Engine, opts parser.Options) (*Parser, error) {
	prepared, err := Prepare(g, e, opts)
	if err != nil {
		return nil, err
	}
	p := &Parser{Engine: e, Grammar: prepared, opts: opts}
	switch e {
	case LL:
		p.LL, err = parser.BuildLLTable(prepared, opts)
	case LR0, LALR, GLR:
		build := parser.BuildLALR1
		if e == LR0 {
			build = parser.BuildLR0
		}
		// Conflicts never fail a GLR build.
		tableOpts := opts
		if e == GLR {
			tableOpts.Strict = false
		}
		var a *parser.LRAutomaton
		if a, err = build(prepared); err == nil {
			p.LR, err = parser.BuildLRTable(a, tableOpts)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e, err)
	}
	return p, nil
}

// FromTable wraps an LR table built earlier, for instance one loaded from
// a model file.
func FromTable(t *parser.LRTable, e Engine, opts parser.Options) *Parser {
	return &Parser{Engine: e, LR: t, opts: opts}
}

// Conflicts returns the conflicts recorded while building the tables.
func (p *Parser) Conflicts() []parser.Conflict {
	switch {
	case p.LL != nil:
		return p.LL.Conflicts
	case p.LR != nil:
		return p.LR.Conflicts
	}
	return nil
}

// Parse runs the engine and restores the tree shape of the source grammar.
func (p *Parser) Parse(tokens []lexer.Token) (*tree.Node, error) {
	var (
		root *tree.Node
		err  error
	)
	switch p.Engine {
	case LL:
		root, err = parser.ParseLL(p.LL, tokens, p.opts)
	case RD:
		root, err = parser.ParseRD(p.Grammar, tokens, p.opts)
	case LR0, LALR:
		root, err = parser.ParseLR(p.LR, tokens, p.opts)
	case GLR:
		root, err = parser.ParseGLR(p.LR, tokens, p.opts)
	default:
		_, err = ParseEngine(string(p.Engine))
	}
	if err != nil {
		return nil, err
	}

	if p.Engine != RD {
		root = transform.RetrieveUnwrap(root)
	}
	if p.Engine == LL || p.Engine == RD {
		root = transform.RetrieveLeftRecursion(root)
		root = transform.RetrieveIndirectLeftRecursion(root, p.Grammar.Substitutions)
	}
	return root, nil
}

// Parse compiles g for e and parses tokens.
func Parse(g *grammar.Grammar, tokens []lexer.Token, e Engine, opts parser.Options) (*tree.Node, error) {
	p, err := Compile(g, e, opts)
	if err != nil {
		return nil, err
	}
	return p.Parse(tokens)
}
