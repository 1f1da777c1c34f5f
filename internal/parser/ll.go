package parser

import (
	"fmt"
	"slices"

	"langkit/internal/grammar"
	"langkit/internal/lexer"
	"langkit/internal/tree"
)

// LLTable maps (nonterminal, lookahead) to a production index.
type LLTable struct {
	Grammar   *grammar.Grammar
	Cells     map[string]map[grammar.Symbol]int
	Conflicts []Conflict
}

// BuildLLTable fills the LL(1) table of a formal grammar. A cell that is
// already taken is overwritten by the later production and the collision is
// recorded; with opts.Strict any collision fails the build.
func BuildLLTable(g *grammar.Grammar, opts Options) (*LLTable, error) {
	log := opts.logger()
	first, err := ComputeFirst(g)
	if err != nil {
		return nil, err
	}
	follow, err := ComputeFollow(g, first)
	if err != nil {
		return nil, err
	}

	t := &LLTable{Grammar: g, Cells: map[string]map[grammar.Symbol]int{}}
	for _, nt := range g.NonTerminals() {
		t.Cells[nt] = map[grammar.Symbol]int{}
	}
	put := func(pi int, sym grammar.Symbol) {
		p := g.Productions[pi]
		row := t.Cells[p.Name]
		if prev, taken := row[sym]; taken && prev != pi {
			c := Conflict{
				Where:   "LL(1) " + p.Name,
				Symbol:  sym,
				Kept:    describe(p),
				Dropped: describe(g.Productions[prev]),
			}
			t.Conflicts = append(t.Conflicts, c)
			log.Debug("ll conflict", "cell", p.Name, "symbol", sym.String(), "kept", c.Kept, "dropped", c.Dropped)
		}
		row[sym] = pi
	}

	for pi, p := range g.Productions {
		seq, err := FirstOfSeq(first, p.Expr.Terms)
		if err != nil {
			return nil, err
		}
		for _, s := range seq.Items {
			if s != grammar.Epsilon {
				put(pi, s)
			}
		}
		if seq.Contains(grammar.Epsilon) {
			for _, s := range follow[p.Name].Items {
				put(pi, s)
			}
		}
	}
	if opts.Strict && len(t.Conflicts) > 0 {
		return nil, &ConflictError{Conflicts: t.Conflicts}
	}
	return t, nil
}

func describe(p grammar.Production) string {
	return fmt.Sprintf("%s ?%s?", p.Name, p.Label)
}

// Predict returns the production for nt on the lookahead token. The exact
// (type, value) cell is tried before the type-only cell. end selects the
// end-of-input column.
func (t *LLTable) Predict(nt string, tok lexer.Token, end bool) (int, bool) {
	row := t.Cells[nt]
	if end {
		pi, ok := row[grammar.EndOfInput]
		return pi, ok
	}
	exact, byType := grammar.TokenSymbols(tok)
	if pi, ok := row[exact]; ok {
		return pi, true
	}
	pi, ok := row[byType]
	return pi, ok
}

// Expected lists the lookaheads accepted for nt, sorted.
func (t *LLTable) Expected(nt string) []string {
	var out []string
	for s := range t.Cells[nt] {
		out = append(out, s.String())
	}
	slices.Sort(out)
	return out
}

type llEntry struct {
	term grammar.Term
	up   bool
	end  bool
}

// ParseLL drives the table over tokens. A terminal mismatch is recorded and
// the expected terminal skipped; a missing table entry ends the run. The
// tree follows the transformed grammar; callers apply the retrieve passes.
func ParseLL(t *LLTable, tokens []lexer.Token, opts Options) (*tree.Node, error) {
	log := opts.logger()
	g := t.Grammar
	z := tree.NewZipper(tree.NewInner(0))
	stack := []llEntry{{end: true}, {term: grammar.NonTerm(g.Start)}}
	var errs ParseErrors
	i := 0

	lookahead := func() string {
		if i >= len(tokens) {
			return "end of input"
		}
		return fmt.Sprintf("%s %q", tokens[i].Type, tokens[i].Value)
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch {
		case top.up:
			z.Parent()
		case top.end:
			if i < len(tokens) {
				errs = append(errs, &ParseError{Index: i, Message: "unexpected " + lookahead(), Expected: []string{grammar.EndOfInput.String()}})
			}
		case top.term.Kind == grammar.Terminal:
			if i < len(tokens) && top.term.Matches(tokens[i]) {
				z.Focus.Push(tree.NewTerminal(tokens[i], i))
				i++
				continue
			}
			errs = append(errs, &ParseError{Index: i, Message: "unexpected " + lookahead(), Expected: []string{top.term.Symbol().String()}})
		default:
			name := top.term.Name
			var tok lexer.Token
			if i < len(tokens) {
				tok = tokens[i]
			}
			pi, ok := t.Predict(name, tok, i >= len(tokens))
			if !ok {
				errs = append(errs, &ParseError{Index: i, Message: "unexpected " + lookahead() + " in " + name, Expected: t.Expected(name), Err: ErrNoAction})
				return nil, errs
			}
			p := &g.Productions[pi]
			if opts.Verbose {
				log.Debug("ll predict", "nonterminal", name, "label", p.Label, "index", i)
			}
			z.PushChild(tree.NewNonTerminal(p, i))
			stack = append(stack, llEntry{up: true})
			for j := len(p.Expr.Terms) - 1; j >= 0; j-- {
				stack = append(stack, llEntry{term: p.Expr.Terms[j]})
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return z.Finish().Children[0], nil
}
