// Package transform rewrites grammars into forms the parsing engines accept
// and maps the resulting parse trees back to the shape of the source
// grammar.
package transform

import (
	"fmt"
	"slices"
	"strings"

	"langkit/internal/grammar"
)

// ConvertToFormal replaces every Group, Optional and Repetition term with a
// reference to a synthesized nonterminal:
//
//	group      X → α
//	optional   X → α | ε
//	repetition X → α X | ε
//
// X is named <name>$<label>$<kind>#<i> after the owning production and the
// term position, and inherits its precedence and associativity. The
// reference keeps the term's unwrap flag; the recursive reference inside a
// repetition is always unwrapped so the items come out flat.
func ConvertToFormal(g *grammar.Grammar) *grammar.Grammar {
	out := &grammar.Grammar{Start: g.Start, Substitutions: slices.Clone(g.Substitutions)}
	for _, p := range g.Productions {
		out.Productions = append(out.Productions, desugar(p, p.Name+"$"+p.Label)...)
	}
	return out
}

func desugar(p grammar.Production, prefix string) []grammar.Production {
	head := p
	head.Expr = grammar.Expression{}
	var extra []grammar.Production

	derived := func(name, label string, terms ...grammar.Term) grammar.Production {
		return grammar.Production{
			Name:          name,
			Label:         label,
			Expr:          grammar.Expression{Terms: terms},
			Precedence:    p.Precedence,
			Associativity: p.Associativity,
		}
	}

	for i, t := range p.Expr.Terms {
		if t.Formal() {
			head.Expr.Terms = append(head.Expr.Terms, t.Clone())
			continue
		}
		name := fmt.Sprintf("%s$%s#%d", prefix, helperKind(t.Kind), i)
		head.Expr.Terms = append(head.Expr.Terms, grammar.Term{Kind: grammar.NonTerminal, Name: name, Unwrap: t.Unwrap})

		body := t.Expr.Clone().Terms
		switch t.Kind {
		case grammar.Group:
			extra = append(extra, desugar(derived(name, "main", body...), name)...)
		case grammar.Optional:
			extra = append(extra, desugar(derived(name, "main", body...), name)...)
			extra = append(extra, derived(name, "epsilon"))
		case grammar.Repetition:
			self := grammar.Unwrapped(grammar.NonTerm(name))
			extra = append(extra, desugar(derived(name, "main", append(body, self)...), name)...)
			extra = append(extra, derived(name, "epsilon"))
		}
	}
	return append([]grammar.Production{head}, extra...)
}

func helperKind(k grammar.TermKind) string {
	switch k {
	case grammar.Optional:
		return "optional"
	case grammar.Repetition:
		return "repetition"
	}
	return "group"
}

// isEBNFHelper reports whether name was synthesized by ConvertToFormal.
func isEBNFHelper(name string) bool {
	i := strings.LastIndexByte(name, '$')
	if i < 0 {
		return false
	}
	last := name[i+1:]
	return strings.HasPrefix(last, "group#") ||
		strings.HasPrefix(last, "optional#") ||
		strings.HasPrefix(last, "repetition#")
}
