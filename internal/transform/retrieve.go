package transform

import (
	"slices"
	"strings"

	"langkit/internal/grammar"
	"langkit/internal/tree"
)

// RetrieveUnwrap removes the traces of ConvertToFormal and LeftFactor from
// a tree built over the transformed grammar. Inner nodes and nodes
// referenced by an unwrapped term are spliced into their parent. A
// left-factoring helper spliced this way also gives the parent back its
// label, precedence and original production. EBNF helpers that stay in the
// tree become List nodes.
func RetrieveUnwrap(root *tree.Node) *tree.Node {
	unwrapNode(root)
	return root
}

func unwrapNode(n *tree.Node) {
	if n.Kind == tree.Terminal {
		return
	}
	for _, c := range n.Children {
		unwrapNode(c)
	}

	var terms []grammar.Term
	if n.Kind == tree.NonTerminal && n.Rule != nil && len(n.Rule.Expr.Terms) == len(n.Children) {
		terms = n.Rule.Expr.Terms
	}

	var (
		kids     []*tree.Node
		restored []grammar.Term
		from     *grammar.Production
	)
	for i, c := range n.Children {
		unwrap := terms != nil && terms[i].Unwrap
		switch {
		case c.Kind == tree.Inner:
			kids = append(kids, c.Children...)
		case c.Kind == tree.NonTerminal && unwrap:
			kids = append(kids, c.Children...)
			if grammar.IsFactorHelper(c.Type) && c.Rule != nil {
				restored = append(restored, c.Rule.Expr.Clone().Terms...)
				from = c.Rule
				continue
			}
		default:
			if c.Kind == tree.NonTerminal && isEBNFHelper(c.Type) {
				c.Kind, c.Type, c.Label, c.Rule = tree.List, "", "", nil
			}
			kids = append(kids, c)
		}
		if terms != nil {
			restored = append(restored, terms[i].Clone())
		}
	}
	n.Children = kids

	if from != nil {
		rule := grammar.Production{
			Name:          n.Rule.Name,
			Label:         from.Label,
			Expr:          grammar.Expression{Terms: restored},
			Precedence:    from.Precedence,
			Associativity: from.Associativity,
		}
		n.Rule, n.Label = &rule, rule.Label
	}
}

// RetrieveLeftRecursion turns the right-leaning chains produced by
// EliminateLeftRecursion back into left-recursive nodes:
//
//	A(β, A##(α1, A##(α2, A##())))  becomes  A(A(A(β), α1), α2)
func RetrieveLeftRecursion(n *tree.Node) *tree.Node {
	if n.Kind == tree.Terminal {
		return n
	}
	for i, c := range n.Children {
		n.Children[i] = RetrieveLeftRecursion(c)
	}
	if n.Kind != tree.NonTerminal || len(n.Children) == 0 {
		return n
	}
	helper := n.Children[len(n.Children)-1]
	if helper.Kind != tree.NonTerminal || helper.Type != n.Type+HelperSuffix {
		return n
	}

	cur := n
	cur.Children = cur.Children[:len(cur.Children)-1]
	cur.Rule = popLast(cur.Rule, "")
	for helper != nil && len(helper.Children) > 0 {
		body := helper.Children
		var chained *tree.Node
		if last := body[len(body)-1]; last.Kind == tree.NonTerminal && last.Type == helper.Type {
			body, chained = body[:len(body)-1], last
		}
		rule := popLast(helper.Rule, n.Type)
		if rule != nil {
			rule.Expr.Terms = slices.Insert(rule.Expr.Terms, 0, grammar.NonTerm(n.Type))
		}
		next := &tree.Node{Kind: tree.NonTerminal, Type: n.Type, Label: helper.Label, Rule: rule, Index: cur.Index}
		next.Children = append([]*tree.Node{cur}, body...)
		cur, helper = next, chained
	}
	return cur
}

// popLast returns a copy of p without its final term, renamed when name is
// not empty.
func popLast(p *grammar.Production, name string) *grammar.Production {
	if p == nil {
		return nil
	}
	out := p.Clone()
	if len(out.Expr.Terms) > 0 && strings.HasSuffix(out.Expr.Terms[len(out.Expr.Terms)-1].Name, HelperSuffix) {
		out.Expr.Terms = out.Expr.Terms[:len(out.Expr.Terms)-1]
	}
	if name != "" {
		out.Name = name
	}
	return &out
}

// RetrieveIndirectLeftRecursion undoes the substitutions recorded by
// EliminateIndirectLeftRecursion. A node built from a substitution target
// regains the production it was derived from, with the children that came
// from the substituted body moved into a new child node. Run it after
// RetrieveLeftRecursion.
func RetrieveIndirectLeftRecursion(n *tree.Node, subs []grammar.Substitution) *tree.Node {
	if n.Kind == tree.Terminal {
		return n
	}
	if n.Kind == tree.NonTerminal && n.Rule != nil {
		limit := len(subs)
		for {
			k := lastMatch(subs[:limit], *n.Rule)
			if k < 0 || !splitSubstitution(n, subs[k]) {
				break
			}
			limit = k
		}
	}
	for i, c := range n.Children {
		n.Children[i] = RetrieveIndirectLeftRecursion(c, subs)
	}
	return n
}

func lastMatch(subs []grammar.Substitution, rule grammar.Production) int {
	for k := len(subs) - 1; k >= 0; k-- {
		if subs[k].Target.Equal(rule) {
			return k
		}
	}
	return -1
}

func splitSubstitution(n *tree.Node, s grammar.Substitution) bool {
	after := len(s.Rule.Expr.Terms) - s.Pos - 1
	end := len(n.Children) - after
	if s.Pos > end || after < 0 {
		return false
	}
	source := s.Source.Clone()
	index := n.Index
	if s.Pos < len(n.Children) && s.Pos < end {
		index = n.Children[s.Pos].Index
	}
	inner := tree.NewNonTerminal(&source, index)
	inner.Children = slices.Clone(n.Children[s.Pos:end])

	kids := slices.Clone(n.Children[:s.Pos])
	kids = append(kids, inner)
	n.Children = append(kids, n.Children[end:]...)

	rule := s.Rule.Clone()
	n.Rule, n.Label = &rule, rule.Label
	return true
}
