package transform

import (
	"fmt"
	"slices"

	"langkit/internal/grammar"
)

// LeftFactor pulls common leading symbols out of alternatives until no two
// productions of a nonterminal start with the same symbol:
//
//	A → x β1 | x β2   becomes   A → x A$#i ; A$#i → β1 | β2
//
// The helper is referenced unwrapped and its productions keep the labels,
// precedences and associativities of the productions they came from, so
// RetrieveUnwrap can restore the original rule on the tree. Expects a formal
// grammar.
func LeftFactor(g *grammar.Grammar) *grammar.Grammar {
	cur := g.Clone()
	for {
		next, changed := factorOnce(cur)
		if !changed {
			return cur
		}
		cur = next
	}
}

type factorGroup struct {
	key     grammar.Symbol
	members []grammar.Production
}

func factorOnce(g *grammar.Grammar) (*grammar.Grammar, bool) {
	out := &grammar.Grammar{Start: g.Start, Substitutions: slices.Clone(g.Substitutions)}
	taken := map[string]bool{}
	for _, nt := range g.NonTerminals() {
		taken[nt] = true
	}

	changed := false
	for _, nt := range g.NonTerminals() {
		var groups []*factorGroup
		var empty []grammar.Production
		for _, pi := range g.ProductionsOf(nt) {
			p := g.Productions[pi]
			if len(p.Expr.Terms) == 0 {
				empty = append(empty, p.Clone())
				continue
			}
			key := p.Expr.Terms[0].Symbol()
			idx := slices.IndexFunc(groups, func(fg *factorGroup) bool { return fg.key == key })
			if idx < 0 {
				groups = append(groups, &factorGroup{key: key})
				idx = len(groups) - 1
			}
			groups[idx].members = append(groups[idx].members, p.Clone())
		}

		next := 0
		for _, fg := range groups {
			if len(fg.members) == 1 {
				out.Productions = append(out.Productions, fg.members[0])
				continue
			}
			changed = true
			name := fmt.Sprintf("%s$#%d", nt, next)
			for taken[name] {
				next++
				name = fmt.Sprintf("%s$#%d", nt, next)
			}
			taken[name] = true
			next++

			first := fg.members[0]
			out.Productions = append(out.Productions, grammar.Production{
				Name:          nt,
				Label:         first.Label,
				Expr:          grammar.Expression{Terms: []grammar.Term{first.Expr.Terms[0].Clone(), grammar.Unwrapped(grammar.NonTerm(name))}},
				Precedence:    first.Precedence,
				Associativity: first.Associativity,
			})
			for _, m := range fg.members {
				out.Productions = append(out.Productions, grammar.Production{
					Name:          name,
					Label:         m.Label,
					Expr:          grammar.Expression{Terms: slices.Clone(m.Expr.Terms[1:])},
					Precedence:    m.Precedence,
					Associativity: m.Associativity,
				})
			}
		}
		out.Productions = append(out.Productions, empty...)
	}
	return out, changed
}
