package parser

import (
	"fmt"

	"langkit/internal/automaton"
	"langkit/internal/grammar"
)

// AcceptName names the augmented start production.
const AcceptName = "$accept"

// LRGraph is the item automaton: states carry item sets, edges are labelled
// with grammar symbols.
type LRGraph = automaton.Graph[*LRItems, grammar.Symbol]

// LRAutomaton is the canonical collection of an augmented grammar.
// Productions is the grammar's production list with the augmented
// production appended at index Augmented.
type LRAutomaton struct {
	Productions []grammar.Production
	Augmented   int
	Start       string
	Lookahead   bool
	Graph       *LRGraph
}

// BuildLR0 builds the LR(0) automaton of a formal grammar.
func BuildLR0(g *grammar.Grammar) (*LRAutomaton, error) { return buildLR(g, false) }

// BuildLALR1 builds the LALR(1) automaton of a formal grammar. Goto targets
// whose items match an existing state are merged into it; a state whose
// lookaheads grew is expanded again so the growth reaches its successors.
func BuildLALR1(g *grammar.Grammar) (*LRAutomaton, error) { return buildLR(g, true) }

type lrBuilder struct {
	prods     []grammar.Production
	byName    map[string][]int
	first     Sets
	lookahead bool
}

func buildLR(g *grammar.Grammar, lookahead bool) (*LRAutomaton, error) {
	if err := checkFormal(g); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	aug := g.Clone()
	aug.Productions = append(aug.Productions, grammar.NewProduction(AcceptName, "augmented", grammar.NonTerm(g.Start)))
	a := &LRAutomaton{
		Productions: aug.Productions,
		Augmented:   len(aug.Productions) - 1,
		Start:       g.Start,
		Lookahead:   lookahead,
		Graph:       automaton.New[*LRItems, grammar.Symbol](),
	}

	b := &lrBuilder{prods: aug.Productions, byName: map[string][]int{}, lookahead: lookahead}
	for i, p := range aug.Productions {
		b.byName[p.Name] = append(b.byName[p.Name], i)
	}
	if lookahead {
		first, err := ComputeFirst(aug)
		if err != nil {
			return nil, err
		}
		b.first = first
	}

	start := NewLRItems()
	var ahead *grammar.SymbolSet
	if lookahead {
		ahead = grammar.NewSymbolSet(grammar.EndOfInput)
	}
	start.Add(LRItem{Rule: a.Augmented}, ahead)
	if err := b.closure(start); err != nil {
		return nil, err
	}

	graph := a.Graph
	s0 := graph.AddStateWithData(start)
	graph.MarkAsStart(s0)
	cores := map[string]int{start.Core(): s0}
	work := []int{s0}
	for len(work) > 0 {
		st := work[0]
		work = work[1:]
		items := graph.Vertices[st].Data
		for _, sym := range b.nextSymbols(items) {
			target := b.advance(items, sym)
			if err := b.closure(target); err != nil {
				return nil, err
			}
			key := target.Core()
			id, seen := cores[key]
			if !seen {
				id = graph.AddStateWithData(target)
				cores[key] = id
				work = append(work, id)
			} else if lookahead && graph.Vertices[id].Data.Merge(target) && !queued(work, id) {
				work = append(work, id)
			}
			if _, ok := graph.Transition(st, sym); !ok {
				graph.AddTransfer(st, id, sym)
			}
		}
	}

	for s, v := range graph.Vertices {
		if _, ok := v.Data.Lookup(LRItem{Rule: a.Augmented, Pos: 1}); ok {
			graph.MarkAsEnd(s)
		}
	}
	return a, nil
}

func queued(work []int, id int) bool {
	for _, w := range work {
		if w == id {
			return true
		}
	}
	return false
}

// closure adds the initial items of every nonterminal that follows a dot,
// with lookaheads FIRST(rest · ahead) when building LALR(1).
func (b *lrBuilder) closure(items *LRItems) error {
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(items.Entries); i++ {
			e := items.Entries[i]
			terms := b.prods[e.Item.Rule].Expr.Terms
			if e.Item.Pos >= len(terms) || terms[e.Item.Pos].Kind != grammar.NonTerminal {
				continue
			}
			name := terms[e.Item.Pos].Name
			rules, ok := b.byName[name]
			if !ok {
				return fmt.Errorf("%w %s", grammar.ErrUndefinedNonTerminal, name)
			}
			var ahead *grammar.SymbolSet
			if b.lookahead {
				rest, err := FirstOfSeq(b.first, terms[e.Item.Pos+1:])
				if err != nil {
					return err
				}
				if rest.Remove(grammar.Epsilon) {
					rest.Union(e.Ahead)
				}
				ahead = rest
			}
			for _, r := range rules {
				if items.Add(LRItem{Rule: r}, ahead) {
					changed = true
				}
			}
		}
	}
	return nil
}

// nextSymbols lists the symbols after a dot in order of appearance.
func (b *lrBuilder) nextSymbols(items *LRItems) []grammar.Symbol {
	seen := map[grammar.Symbol]bool{}
	var out []grammar.Symbol
	for _, e := range items.Entries {
		terms := b.prods[e.Item.Rule].Expr.Terms
		if e.Item.Pos >= len(terms) {
			continue
		}
		if s := terms[e.Item.Pos].Symbol(); !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// advance moves the dot over sym in every item that allows it.
func (b *lrBuilder) advance(items *LRItems, sym grammar.Symbol) *LRItems {
	out := NewLRItems()
	for _, e := range items.Entries {
		terms := b.prods[e.Item.Rule].Expr.Terms
		if e.Item.Pos < len(terms) && terms[e.Item.Pos].Symbol() == sym {
			var ahead *grammar.SymbolSet
			if b.lookahead {
				ahead = e.Ahead
			}
			out.Add(LRItem{Rule: e.Item.Rule, Pos: e.Item.Pos + 1}, ahead)
		}
	}
	return out
}

// StateLabel renders the items of a state for diagnostics and DOT output.
func (a *LRAutomaton) StateLabel(items *LRItems) string { return items.Format(a.Productions) }
