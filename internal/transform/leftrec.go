package transform

import (
	"slices"

	"langkit/internal/grammar"
)

// HelperSuffix marks the nonterminals introduced by left-recursion
// elimination.
const HelperSuffix = "##"

// EliminateLeftRecursion removes immediate left recursion. For each
// nonterminal A with productions A → A α (alpha) and A → β (beta):
//
//	A   → β A##
//	A## → α A##
//	A## → ε          labelled "epsilon"
//
// Labels, precedences and associativities of the original productions are
// kept; the epsilon production takes the lowest precedence of the alphas.
func EliminateLeftRecursion(g *grammar.Grammar) *grammar.Grammar {
	out := &grammar.Grammar{Start: g.Start, Substitutions: slices.Clone(g.Substitutions)}
	for _, nt := range g.NonTerminals() {
		var prods []grammar.Production
		for _, i := range g.ProductionsOf(nt) {
			prods = append(prods, g.Productions[i].Clone())
		}
		out.Productions = append(out.Productions, eliminateDirect(nt, prods)...)
	}
	return out
}

func leftRecursive(nt string, p grammar.Production) bool {
	terms := p.Expr.Terms
	return len(terms) > 0 && terms[0].Kind == grammar.NonTerminal && terms[0].Name == nt
}

func eliminateDirect(nt string, prods []grammar.Production) []grammar.Production {
	var alpha, beta []grammar.Production
	for _, p := range prods {
		if leftRecursive(nt, p) {
			alpha = append(alpha, p)
		} else {
			beta = append(beta, p)
		}
	}
	if len(alpha) == 0 {
		return beta
	}

	helper := nt + HelperSuffix
	ref := grammar.NonTerm(helper)
	out := make([]grammar.Production, 0, len(prods)+1)
	for _, b := range beta {
		b.Expr.Terms = append(b.Expr.Terms, ref)
		out = append(out, b)
	}
	prec := alpha[0].Precedence
	for _, a := range alpha {
		a.Name = helper
		a.Expr.Terms = append(slices.Clone(a.Expr.Terms[1:]), ref)
		out = append(out, a)
		prec = min(prec, a.Precedence)
	}
	return append(out, grammar.Production{Name: helper, Label: "epsilon", Precedence: prec})
}

// EliminateIndirectLeftRecursion removes left recursion that goes through
// other nonterminals. Nonterminals are taken in definition order; a
// production Ai → Aj γ with j < i is expanded with every production
// Aj → δ into Ai → δ γ when Aj can derive Ai in leftmost position. Each
// expansion is recorded as a Substitution on the result so trees can be
// mapped back. Immediate left recursion is then removed as in
// EliminateLeftRecursion. Nullable left corners are not looked through.
func EliminateIndirectLeftRecursion(g *grammar.Grammar) *grammar.Grammar {
	order := g.NonTerminals()
	rank := make(map[string]int, len(order))
	byName := make(map[string][]grammar.Production, len(order))
	for i, nt := range order {
		rank[nt] = i
		for _, pi := range g.ProductionsOf(nt) {
			byName[nt] = append(byName[nt], g.Productions[pi].Clone())
		}
	}

	subs := slices.Clone(g.Substitutions)
	for i, ai := range order {
		for {
			changed := false
			var next []grammar.Production
			for _, p := range byName[ai] {
				terms := p.Expr.Terms
				if len(terms) == 0 || terms[0].Kind != grammar.NonTerminal {
					next = append(next, p)
					continue
				}
				aj := terms[0].Name
				j, known := rank[aj]
				if !known || j >= i || !reachesLeft(byName, aj, ai) {
					next = append(next, p)
					continue
				}
				for _, src := range byName[aj] {
					target := p.Clone()
					target.Expr.Terms = append(src.Clone().Expr.Terms, target.Expr.Terms[1:]...)
					subs = append(subs, grammar.Substitution{Rule: p.Clone(), Source: src.Clone(), Target: target.Clone(), Pos: 0})
					next = append(next, target)
				}
				changed = true
			}
			byName[ai] = next
			if !changed {
				break
			}
		}
		byName[ai] = eliminateDirect(ai, byName[ai])
	}

	out := &grammar.Grammar{Start: g.Start, Substitutions: subs}
	for _, nt := range order {
		out.Productions = append(out.Productions, byName[nt]...)
	}
	return out
}

// reachesLeft reports whether from derives a sentential form starting with
// target, following the first term of each production.
func reachesLeft(byName map[string][]grammar.Production, from, target string) bool {
	seen := map[string]bool{}
	stack := []string{from}
	for len(stack) > 0 {
		nt := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nt == target {
			return true
		}
		if seen[nt] {
			continue
		}
		seen[nt] = true
		for _, p := range byName[nt] {
			if t := p.Expr.Terms; len(t) > 0 && t[0].Kind == grammar.NonTerminal {
				stack = append(stack, t[0].Name)
			}
		}
	}
	return false
}
