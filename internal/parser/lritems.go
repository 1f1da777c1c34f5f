package parser

import (
	"fmt"
	"slices"
	"strings"

	"langkit/internal/grammar"
)

// LRItem is a production with a dot position. Rule indexes the augmented
// production list of the automaton.
type LRItem struct {
	Rule int
	Pos  int
}

// LREntry is an item with its lookahead set. LR(0) entries have an empty
// set.
type LREntry struct {
	Item  LRItem
	Ahead *grammar.SymbolSet
}

// LRItems is the item set of one automaton state. Two sets are the same
// state when their items match; lookaheads do not take part.
type LRItems struct {
	Entries []LREntry
	index   map[LRItem]int
}

func NewLRItems() *LRItems { return &LRItems{} }

func (s *LRItems) ensure() {
	if s.index != nil {
		return
	}
	s.index = make(map[LRItem]int, len(s.Entries))
	for i, e := range s.Entries {
		s.index[e.Item] = i
	}
}

func (s *LRItems) Lookup(it LRItem) (LREntry, bool) {
	s.ensure()
	i, ok := s.index[it]
	if !ok {
		return LREntry{}, false
	}
	return s.Entries[i], true
}

// Add inserts it or grows its lookahead set, and reports whether anything
// changed.
func (s *LRItems) Add(it LRItem, ahead *grammar.SymbolSet) bool {
	s.ensure()
	if i, ok := s.index[it]; ok {
		if ahead == nil {
			return false
		}
		return s.Entries[i].Ahead.Union(ahead)
	}
	set := grammar.NewSymbolSet()
	if ahead != nil {
		set.Union(ahead)
	}
	s.index[it] = len(s.Entries)
	s.Entries = append(s.Entries, LREntry{Item: it, Ahead: set})
	return true
}

// Merge unions the lookaheads of o into s, item by item.
func (s *LRItems) Merge(o *LRItems) bool {
	changed := false
	for _, e := range o.Entries {
		if s.Add(e.Item, e.Ahead) {
			changed = true
		}
	}
	return changed
}

// Core is a canonical key of the item set.
func (s *LRItems) Core() string {
	items := make([]LRItem, len(s.Entries))
	for i, e := range s.Entries {
		items[i] = e.Item
	}
	slices.SortFunc(items, func(a, b LRItem) int {
		if a.Rule != b.Rule {
			return a.Rule - b.Rule
		}
		return a.Pos - b.Pos
	})
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%d.%d;", it.Rule, it.Pos)
	}
	return b.String()
}

// Format renders the items one per line with a dot at the position, using
// the given productions.
func (s *LRItems) Format(prods []grammar.Production) string {
	var b strings.Builder
	for i, e := range s.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		p := prods[e.Item.Rule]
		b.WriteString(p.Name + " →")
		for j, t := range p.Expr.Terms {
			if j == e.Item.Pos {
				b.WriteString(" •")
			}
			b.WriteString(" " + t.Symbol().String())
		}
		if e.Item.Pos == len(p.Expr.Terms) {
			b.WriteString(" •")
		}
		if e.Ahead != nil && e.Ahead.Len() > 0 {
			names := make([]string, 0, e.Ahead.Len())
			for _, a := range e.Ahead.Items {
				names = append(names, a.String())
			}
			b.WriteString(", " + strings.Join(names, "/"))
		}
	}
	return b.String()
}
