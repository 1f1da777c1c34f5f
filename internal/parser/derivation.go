package parser

import (
	"errors"

	"langkit/internal/grammar"
	"langkit/internal/lexer"
	"langkit/internal/tree"
)

var errDerivation = errors.New("reductions do not derive the input")

// BuildRightmost rebuilds the tree of a bottom-up parse from its reductions
// in the order they happened. Read backwards they form a rightmost
// derivation, so the tree is grown with a zipper from the last reduction,
// filling each node's children right to left and taking tokens from the end
// of the input.
func BuildRightmost(prods []grammar.Production, reduced []int, tokens []lexer.Token) (*tree.Node, error) {
	if len(reduced) == 0 {
		return nil, errDerivation
	}
	next := len(reduced) - 1
	tok := len(tokens) - 1

	open := func() *tree.Node {
		p := &prods[reduced[next]]
		next--
		n := tree.NewNonTerminal(p, 0)
		if k := len(p.Expr.Terms); k > 0 {
			n.Children = make([]*tree.Node, k)
		}
		return n
	}

	z := tree.NewZipper(open())
	slots := []int{len(z.Focus.Children) - 1}
	for {
		j := slots[len(slots)-1]
		if j < 0 {
			n := z.Focus
			if len(n.Children) > 0 {
				n.Index = n.Children[0].Index
			} else {
				n.Index = tok + 1
			}
			if !z.HasParent() {
				break
			}
			z.Parent()
			slots = slots[:len(slots)-1]
			continue
		}
		slots[len(slots)-1]--

		term := z.Focus.Rule.Expr.Terms[j]
		if term.Kind == grammar.Terminal {
			if tok < 0 || !term.Matches(tokens[tok]) {
				return nil, errDerivation
			}
			z.Focus.Children[j] = tree.NewTerminal(tokens[tok], tok)
			tok--
			continue
		}
		if next < 0 || prods[reduced[next]].Name != term.Name {
			return nil, errDerivation
		}
		z.Focus.Children[j] = open()
		z.Child(j)
		slots = append(slots, len(z.Focus.Children)-1)
	}
	if next >= 0 || tok >= 0 {
		return nil, errDerivation
	}
	return z.Finish(), nil
}
