package parser

import (
	"fmt"

	"langkit/internal/grammar"
)

// Sets maps a nonterminal to its FIRST or FOLLOW set.
type Sets map[string]*grammar.SymbolSet

// ComputeFirst returns FIRST for every nonterminal of a formal grammar.
// Nullable nonterminals contain grammar.Epsilon.
func ComputeFirst(g *grammar.Grammar) (Sets, error) {
	if err := checkFormal(g); err != nil {
		return nil, err
	}
	first := Sets{}
	for _, nt := range g.NonTerminals() {
		first[nt] = grammar.NewSymbolSet()
	}
	for changed := true; changed; {
		changed = false
		for _, p := range g.Productions {
			seq, err := FirstOfSeq(first, p.Expr.Terms)
			if err != nil {
				return nil, fmt.Errorf("production %s: %w", p.Name, err)
			}
			if first[p.Name].Union(seq) {
				changed = true
			}
		}
	}
	return first, nil
}

// FirstOfSeq returns FIRST of a term sequence, including grammar.Epsilon
// when every term is nullable.
func FirstOfSeq(first Sets, terms []grammar.Term) (*grammar.SymbolSet, error) {
	out := grammar.NewSymbolSet()
	for _, t := range terms {
		if t.Kind == grammar.Terminal {
			out.Add(t.Symbol())
			return out, nil
		}
		set, ok := first[t.Name]
		if !ok {
			return nil, fmt.Errorf("%w %s", grammar.ErrUndefinedNonTerminal, t.Name)
		}
		for _, s := range set.Items {
			if s != grammar.Epsilon {
				out.Add(s)
			}
		}
		if !set.Contains(grammar.Epsilon) {
			return out, nil
		}
	}
	out.Add(grammar.Epsilon)
	return out, nil
}

// ComputeFollow returns FOLLOW for every nonterminal. The start symbol is
// followed by grammar.EndOfInput.
func ComputeFollow(g *grammar.Grammar, first Sets) (Sets, error) {
	follow := Sets{}
	for _, nt := range g.NonTerminals() {
		follow[nt] = grammar.NewSymbolSet()
	}
	start, ok := follow[g.Start]
	if !ok {
		return nil, fmt.Errorf("start symbol: %w %s", grammar.ErrUndefinedNonTerminal, g.Start)
	}
	start.Add(grammar.EndOfInput)

	for changed := true; changed; {
		changed = false
		for _, p := range g.Productions {
			for i, t := range p.Expr.Terms {
				if t.Kind != grammar.NonTerminal {
					continue
				}
				target, ok := follow[t.Name]
				if !ok {
					return nil, fmt.Errorf("production %s: %w %s", p.Name, grammar.ErrUndefinedNonTerminal, t.Name)
				}
				rest, err := FirstOfSeq(first, p.Expr.Terms[i+1:])
				if err != nil {
					return nil, err
				}
				for _, s := range rest.Items {
					if s != grammar.Epsilon && target.Add(s) {
						changed = true
					}
				}
				if rest.Contains(grammar.Epsilon) && target.Union(follow[p.Name]) {
					changed = true
				}
			}
		}
	}
	return follow, nil
}
