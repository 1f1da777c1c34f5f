package parser

import (
	"fmt"
	"log/slog"
	"slices"

	"langkit/internal/grammar"
	"langkit/internal/lexer"
)

type ActionKind int

const (
	Shift ActionKind = iota
	Reduce
	Goto
)

func (k ActionKind) String() string {
	switch k {
	case Shift:
		return "shift"
	case Reduce:
		return "reduce"
	case Goto:
		return "goto"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is a table entry. Target is a state for Shift and Goto and a
// production index for Reduce.
type Action struct {
	Kind   ActionKind
	Target int
}

// LRCell holds the action chosen for a symbol and every candidate that was
// registered for it, in registration order.
type LRCell struct {
	Symbol grammar.Symbol
	Action Action
	All    []Action
}

// LRRow is the row of one state.
type LRRow struct {
	Cells []LRCell
	index map[grammar.Symbol]int
}

func (r *LRRow) ensure() {
	if r.index != nil {
		return
	}
	r.index = make(map[grammar.Symbol]int, len(r.Cells))
	for i, c := range r.Cells {
		r.index[c.Symbol] = i
	}
}

// Cell returns the cell for sym.
func (r *LRRow) Cell(sym grammar.Symbol) (*LRCell, bool) {
	r.ensure()
	i, ok := r.index[sym]
	if !ok {
		return nil, false
	}
	return &r.Cells[i], true
}

func (r *LRRow) cell(sym grammar.Symbol) *LRCell {
	if c, ok := r.Cell(sym); ok {
		return c
	}
	r.index[sym] = len(r.Cells)
	r.Cells = append(r.Cells, LRCell{Symbol: sym})
	return &r.Cells[len(r.Cells)-1]
}

// LRTable is the action/goto table of an LR automaton.
type LRTable struct {
	Productions []grammar.Production
	Augmented   int
	Start       int
	Rows        []LRRow
	Conflicts   []Conflict
}

// BuildLRTable derives the action table of a. Shifts and gotos come from
// the edges. A complete item reduces on its lookaheads, or on every
// terminal for an LR(0) automaton; the augmented production reduces on end
// of input only. Collisions are settled by precedence, where a lower value
// binds tighter:
//
//   - shift against reduce: the tighter side wins; on a tie Left
//     associativity reduces and Right shifts;
//   - reduce against reduce: the first registered reduce stays unless the
//     newcomer binds strictly tighter.
//
// Every collision is recorded in Conflicts. A collision counts as
// unresolved when both sides have precedence 0 and come from different
// productions; with opts.Strict unresolved collisions fail the build.
func BuildLRTable(a *LRAutomaton, opts Options) (*LRTable, error) {
	log := opts.logger()
	t := &LRTable{
		Productions: a.Productions,
		Augmented:   a.Augmented,
		Start:       a.Graph.Start,
		Rows:        make([]LRRow, a.Graph.Len()),
	}

	var terminals []grammar.Symbol
	if !a.Lookahead {
		g := &grammar.Grammar{Productions: a.Productions}
		terminals = append(g.Terminals(), grammar.EndOfInput)
	}

	for s, v := range a.Graph.Vertices {
		row := &t.Rows[s]
		row.ensure()
		for _, ei := range v.Out {
			e := a.Graph.Edges[ei]
			kind := Shift
			if !e.Label.Terminal {
				kind = Goto
			}
			c := row.cell(e.Label)
			c.Action = Action{Kind: kind, Target: e.To}
			c.All = append(c.All, c.Action)
		}

		for _, entry := range v.Data.Entries {
			rule := entry.Item.Rule
			if entry.Item.Pos != len(a.Productions[rule].Expr.Terms) {
				continue
			}
			ahead := terminals
			switch {
			case rule == a.Augmented:
				ahead = []grammar.Symbol{grammar.EndOfInput}
			case a.Lookahead:
				ahead = entry.Ahead.Items
			}
			for _, sym := range ahead {
				t.register(s, v.Data, row, sym, rule, log)
			}
		}
	}

	if opts.Strict {
		if bad := unresolved(t.Conflicts); len(bad) > 0 {
			return nil, &ConflictError{Conflicts: bad}
		}
	}
	return t, nil
}

func (t *LRTable) register(state int, items *LRItems, row *LRRow, sym grammar.Symbol, rule int, log *slog.Logger) {
	c := row.cell(sym)
	reduce := Action{Kind: Reduce, Target: rule}
	if slices.Contains(c.All, reduce) {
		return
	}
	c.All = append(c.All, reduce)
	if len(c.All) == 1 {
		c.Action = reduce
		return
	}

	incoming := t.Productions[rule]
	conflict := Conflict{Where: fmt.Sprintf("state %d", state), Symbol: sym}
	keep := c.Action
	switch c.Action.Kind {
	case Shift:
		owner := t.shiftOwner(items, sym)
		ps, pr := owner.Precedence, incoming.Precedence
		switch {
		case pr < ps:
			keep = reduce
		case pr == ps && incoming.Associativity == grammar.Left:
			keep = reduce
		}
		conflict.Resolved = pr != ps || pr != 0 || owner.Equal(incoming)
	case Reduce:
		existing := t.Productions[c.Action.Target]
		if incoming.Precedence < existing.Precedence {
			keep = reduce
		}
		conflict.Resolved = incoming.Precedence != existing.Precedence
	}

	dropped := reduce
	if keep == reduce {
		dropped = c.Action
	}
	c.Action = keep
	conflict.Kept, conflict.Dropped = t.describe(keep), t.describe(dropped)
	t.Conflicts = append(t.Conflicts, conflict)
	log.Debug("lr conflict", "state", state, "symbol", sym.String(), "kept", conflict.Kept, "dropped", conflict.Dropped)
}

// shiftOwner returns the tightest-binding production among the items of a
// state whose dot stands before sym.
func (t *LRTable) shiftOwner(items *LRItems, sym grammar.Symbol) grammar.Production {
	var owner grammar.Production
	found := false
	for _, e := range items.Entries {
		p := t.Productions[e.Item.Rule]
		if e.Item.Pos < len(p.Expr.Terms) && p.Expr.Terms[e.Item.Pos].Symbol() == sym {
			if !found || p.Precedence < owner.Precedence {
				owner, found = p, true
			}
		}
	}
	return owner
}

func (t *LRTable) describe(a Action) string {
	if a.Kind == Reduce {
		return "reduce " + describe(t.Productions[a.Target])
	}
	return fmt.Sprintf("%s %d", a.Kind, a.Target)
}

// Lookup returns the cell for the lookahead token in state, preferring the
// cell keyed by the token's text. end selects the end-of-input column.
func (t *LRTable) Lookup(state int, tok lexer.Token, end bool) (*LRCell, bool) {
	row := &t.Rows[state]
	if end {
		return row.Cell(grammar.EndOfInput)
	}
	exact, byType := grammar.TokenSymbols(tok)
	if c, ok := row.Cell(exact); ok {
		return c, true
	}
	return row.Cell(byType)
}

// Candidates returns every action registered for the lookahead token, from
// both the exact and the type-only cell.
func (t *LRTable) Candidates(state int, tok lexer.Token, end bool) []Action {
	row := &t.Rows[state]
	if end {
		if c, ok := row.Cell(grammar.EndOfInput); ok {
			return c.All
		}
		return nil
	}
	var out []Action
	exact, byType := grammar.TokenSymbols(tok)
	for _, sym := range []grammar.Symbol{exact, byType} {
		if c, ok := row.Cell(sym); ok {
			for _, a := range c.All {
				if !slices.Contains(out, a) {
					out = append(out, a)
				}
			}
		}
	}
	return out
}

// GotoState returns the state reached from state over nonterminal name.
func (t *LRTable) GotoState(state int, name string) (int, bool) {
	c, ok := t.Rows[state].Cell(grammar.Symbol{Name: name})
	if !ok || c.Action.Kind != Goto {
		return 0, false
	}
	return c.Action.Target, true
}

// Expected lists the terminals with an action in state, sorted.
func (t *LRTable) Expected(state int) []string {
	var out []string
	for _, c := range t.Rows[state].Cells {
		if c.Symbol.Terminal {
			out = append(out, c.Symbol.String())
		}
	}
	slices.Sort(out)
	return out
}
